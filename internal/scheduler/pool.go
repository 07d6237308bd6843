package scheduler

import (
	"context"

	"github.com/seqpipe/pairedio"
)

// Pool holds a fixed number of reusable chunks. Get blocks while every
// chunk is in flight, which bounds memory and applies back-pressure to the
// reader.
type Pool struct {
	slots chan *pairedio.Chunk
}

// NewPool creates a pool of n chunks. n is at least 1.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{slots: make(chan *pairedio.Chunk, n)}
	for i := 0; i < n; i++ {
		p.slots <- pairedio.NewChunk()
	}
	return p
}

// Get takes a chunk, waiting until one is free or ctx is done.
func (p *Pool) Get(ctx context.Context) (*pairedio.Chunk, error) {
	select {
	case c := <-p.slots:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put empties c and returns it to the pool. Chunks beyond the pool size are
// dropped.
func (p *Pool) Put(c *pairedio.Chunk) {
	if c == nil {
		return
	}
	c.Reset()
	select {
	case p.slots <- c:
	default:
	}
}

// Size returns the number of chunks the pool was created with.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// InFlight returns the number of chunks currently taken.
func (p *Pool) InFlight() int {
	return cap(p.slots) - len(p.slots)
}
