package transform

import (
	"context"

	"github.com/seqpipe/pairedio"
)

// Compile-time check that Passthrough implements pairedio.Step.
var _ pairedio.Step = (*Passthrough)(nil)

// Passthrough copies each mate batch to the output of the same read type,
// checking that the mates stay paired.
type Passthrough struct {
	paired  bool
	opts    options
	records int64
}

// NewPassthrough returns a passthrough stage. For single-end data only mate
// 1 is copied.
func NewPassthrough(paired bool, opts ...Option) *Passthrough {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Passthrough{paired: paired, opts: o}
}

// Process appends the mate lines to their outputs.
func (p *Passthrough) Process(ctx context.Context, chunk *pairedio.Chunk) (*pairedio.Chunk, error) {
	n, err := checkMates(chunk, p.paired, p.opts)
	if err != nil {
		return chunk, err
	}
	for _, mate := range mates(p.paired) {
		chunk.Output[mate] = append(chunk.Output[mate], chunk.Mates[mate]...)
	}
	p.records += int64(n)
	return chunk, nil
}

// Finalize is a no-op.
func (p *Passthrough) Finalize(ctx context.Context) error {
	return nil
}

// Records returns the number of records (pairs, when paired) processed.
func (p *Passthrough) Records() int64 {
	return p.records
}
