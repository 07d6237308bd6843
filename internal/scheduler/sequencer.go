package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/seqpipe/pairedio"
)

// Sequencer errors.
var (
	ErrDuplicate = errors.New("scheduler: duplicate sequence number")
	ErrUnknown   = errors.New("scheduler: unexpected sequence number")
	ErrPending   = errors.New("scheduler: chunks still pending")
)

// Sequencer restores read order to chunks finished by concurrent workers.
//
// The read loop registers each chunk with Expect before handing it out.
// Workers Push chunks back in any order, and Ready yields them in the order
// they were expected. The ready channel is sized by capacity, the most
// chunks that can exist at once, so Push never blocks.
type Sequencer struct {
	mu       sync.Mutex
	expected []uint64
	pending  map[uint64]*pairedio.Chunk
	ready    chan *pairedio.Chunk
	closed   bool
}

// NewSequencer creates a sequencer for at most capacity chunks in flight.
func NewSequencer(capacity int) *Sequencer {
	if capacity < 1 {
		capacity = 1
	}
	return &Sequencer{
		pending: make(map[uint64]*pairedio.Chunk),
		ready:   make(chan *pairedio.Chunk, capacity),
	}
}

// Expect registers seq as the next chunk in read order. Sequence numbers
// must increase.
func (s *Sequencer) Expect(seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.expected); n > 0 && seq <= s.expected[n-1] {
		return fmt.Errorf("%w: %d after %d", ErrDuplicate, seq, s.expected[n-1])
	}
	s.expected = append(s.expected, seq)
	return nil
}

// Push hands back the chunk registered as seq and releases every chunk that
// is now in order.
func (s *Sequencer) Push(seq uint64, chunk *pairedio.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: %d pushed after close", ErrUnknown, seq)
	}
	if _, ok := s.pending[seq]; ok {
		return fmt.Errorf("%w: %d pushed twice", ErrDuplicate, seq)
	}
	if !s.isExpected(seq) {
		return fmt.Errorf("%w: %d", ErrUnknown, seq)
	}
	s.pending[seq] = chunk

	for len(s.expected) > 0 {
		next, ok := s.pending[s.expected[0]]
		if !ok {
			break
		}
		delete(s.pending, s.expected[0])
		s.expected = s.expected[1:]
		s.ready <- next
	}
	return nil
}

func (s *Sequencer) isExpected(seq uint64) bool {
	for _, e := range s.expected {
		if e == seq {
			return true
		}
	}
	return false
}

// Ready yields chunks in expected order. It is closed by Close.
func (s *Sequencer) Ready() <-chan *pairedio.Chunk {
	return s.ready
}

// Held returns the number of chunks pushed but waiting on an earlier one.
func (s *Sequencer) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close closes the ready channel once every expected chunk has been pushed.
// It is an error to close with chunks outstanding; the channel is closed
// regardless.
func (s *Sequencer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.ready)

	if len(s.expected) > 0 {
		return fmt.Errorf("%w: %d expected, %d held", ErrPending, len(s.expected), len(s.pending))
	}
	return nil
}
