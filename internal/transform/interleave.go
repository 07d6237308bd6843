package transform

import (
	"context"

	"github.com/seqpipe/pairedio"
)

// Compile-time check that Interleave implements pairedio.Step.
var _ pairedio.Step = (*Interleave)(nil)

// Interleave writes both mates to the mate 1 output, alternating one record
// of mate 1 with the matching record of mate 2.
type Interleave struct {
	opts    options
	records int64
}

// NewInterleave returns an interleaving stage.
func NewInterleave(opts ...Option) *Interleave {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Interleave{opts: o}
}

// Process appends the interleaved records to the mate 1 output.
func (s *Interleave) Process(ctx context.Context, chunk *pairedio.Chunk) (*pairedio.Chunk, error) {
	n, err := checkMates(chunk, true, s.opts)
	if err != nil {
		return chunk, err
	}

	per := s.opts.linesPerRecord
	mate1 := chunk.Mates[pairedio.Mate1]
	mate2 := chunk.Mates[pairedio.Mate2]
	out := chunk.Output[pairedio.Mate1]
	for i := 0; i < len(mate1); i += per {
		out = append(out, mate1[i:i+per]...)
		out = append(out, mate2[i:i+per]...)
	}
	chunk.Output[pairedio.Mate1] = out

	s.records += int64(n)
	return chunk, nil
}

// Finalize is a no-op.
func (s *Interleave) Finalize(ctx context.Context) error {
	return nil
}

// Records returns the number of pairs processed.
func (s *Interleave) Records() int64 {
	return s.records
}
