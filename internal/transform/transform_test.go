package transform

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/seqpipe/pairedio"
)

func record(name, seq string) []string {
	return []string{"@" + name, seq, "+", "IIII"[:len(seq)]}
}

func pairedChunk(offset int, mate1, mate2 []string) *pairedio.Chunk {
	c := pairedio.NewChunk()
	c.Offset = offset
	c.Mates[pairedio.Mate1] = mate1
	c.Mates[pairedio.Mate2] = mate2
	return c
}

func concat(batches ...[]string) []string {
	var out []string
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}

func TestPassthrough(t *testing.T) {
	mate1 := concat(record("r1/1", "ACGT"), record("r2/1", "GG"))
	mate2 := concat(record("r1/2", "TGCA"), record("r2/2", "CC"))

	p := NewPassthrough(true)
	chunk, err := p.Process(context.Background(), pairedChunk(1, mate1, mate2))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !reflect.DeepEqual(chunk.Output[pairedio.Mate1], mate1) {
		t.Errorf("mate 1 output = %q", chunk.Output[pairedio.Mate1])
	}
	if !reflect.DeepEqual(chunk.Output[pairedio.Mate2], mate2) {
		t.Errorf("mate 2 output = %q", chunk.Output[pairedio.Mate2])
	}
	if p.Records() != 2 {
		t.Errorf("Records() = %d, want 2", p.Records())
	}
	if err := p.Finalize(context.Background()); err != nil {
		t.Errorf("Finalize() error = %v", err)
	}
}

func TestPassthrough_SingleEnd(t *testing.T) {
	mate1 := record("r1", "ACGT")

	p := NewPassthrough(false)
	chunk, err := p.Process(context.Background(), pairedChunk(1, mate1, nil))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(chunk.Output[pairedio.Mate2]) != 0 {
		t.Errorf("single-end run wrote mate 2: %q", chunk.Output[pairedio.Mate2])
	}
	if len(chunk.Output[pairedio.Mate1]) != 4 {
		t.Errorf("mate 1 output = %q", chunk.Output[pairedio.Mate1])
	}
}

func TestPassthrough_Errors(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		mate1 []string
		mate2 []string
		want  error
	}{
		{
			name:  "unequal files",
			mate1: concat(record("r1", "A"), record("r2", "C")),
			mate2: record("r1", "A"),
			want:  ErrMateMismatch,
		},
		{
			name:  "truncated record",
			mate1: []string{"@r1", "ACGT"},
			mate2: []string{"@r1", "ACGT"},
			want:  ErrPartialRecord,
		},
		{
			name:  "bad header",
			opts:  []Option{WithValidation(true)},
			mate1: []string{">r1", "ACGT", "+", "IIII"},
			mate2: record("r1", "ACGT"),
			want:  ErrMalformed,
		},
		{
			name:  "bad separator",
			opts:  []Option{WithValidation(true)},
			mate1: record("r1", "ACGT"),
			mate2: []string{"@r1", "ACGT", "-", "IIII"},
			want:  ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPassthrough(true, tt.opts...)
			_, err := p.Process(context.Background(), pairedChunk(1, tt.mate1, tt.mate2))
			if !errors.Is(err, tt.want) {
				t.Errorf("Process() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPassthrough_WithoutValidation(t *testing.T) {
	p := NewPassthrough(false, WithLinesPerRecord(2))
	if _, err := p.Process(context.Background(), pairedChunk(1, []string{"x", "y"}, nil)); err != nil {
		t.Errorf("Process() error = %v", err)
	}
}

func TestInterleave(t *testing.T) {
	r1 := record("r1/1", "ACGT")
	r2 := record("r2/1", "GG")
	m1 := record("r1/2", "TGCA")
	m2 := record("r2/2", "CC")

	s := NewInterleave()
	chunk, err := s.Process(context.Background(), pairedChunk(1, concat(r1, r2), concat(m1, m2)))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := concat(r1, m1, r2, m2)
	if got := chunk.Output[pairedio.Mate1]; !reflect.DeepEqual(got, want) {
		t.Errorf("output = %q, want %q", got, want)
	}
	if len(chunk.Output[pairedio.Mate2]) != 0 {
		t.Errorf("mate 2 output = %q, want empty", chunk.Output[pairedio.Mate2])
	}
	if s.Records() != 2 {
		t.Errorf("Records() = %d, want 2", s.Records())
	}

	if _, err := s.Process(context.Background(), pairedChunk(9, r1, nil)); !errors.Is(err, ErrMateMismatch) {
		t.Errorf("Process(unpaired) error = %v, want ErrMateMismatch", err)
	}
}
