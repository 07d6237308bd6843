// Package transform provides the stages that sit between the readers and
// writers: copying mates to their outputs and interleaving pairs.
package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/seqpipe/pairedio"
)

// Pairing errors.
var (
	// ErrMateMismatch indicates the mate batches of a chunk hold different
	// numbers of lines, so the input files are of unequal length.
	ErrMateMismatch = errors.New("transform: mate 1 and mate 2 differ in length")

	// ErrPartialRecord indicates a batch ends inside a record.
	ErrPartialRecord = errors.New("transform: input ends with a partial record")

	// ErrMalformed indicates a record whose header or separator line is
	// missing its marker.
	ErrMalformed = errors.New("transform: malformed record")
)

// Option configures a stage.
type Option func(*options)

type options struct {
	linesPerRecord int
	validate       bool
}

func defaultOptions() options {
	return options{linesPerRecord: pairedio.DefaultLinesPerRecord}
}

// WithLinesPerRecord sets the record size. Default is 4.
func WithLinesPerRecord(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.linesPerRecord = n
		}
	}
}

// WithValidation checks that every record starts with '@' and that its
// third line starts with '+'. Only meaningful for four-line records.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// checkMates verifies the mate batches of chunk hold whole, matching
// records and returns the number of records per mate.
func checkMates(chunk *pairedio.Chunk, paired bool, opts options) (int, error) {
	mate1 := chunk.Mates[pairedio.Mate1]
	if paired {
		mate2 := chunk.Mates[pairedio.Mate2]
		if len(mate1) != len(mate2) {
			return 0, fmt.Errorf("%w: %d and %d lines at line %d", ErrMateMismatch, len(mate1), len(mate2), chunk.Offset)
		}
	}

	if len(mate1)%opts.linesPerRecord != 0 {
		return 0, fmt.Errorf("%w: %d trailing lines at line %d",
			ErrPartialRecord, len(mate1)%opts.linesPerRecord, chunk.Offset+len(mate1)-len(mate1)%opts.linesPerRecord)
	}

	if opts.validate {
		for _, mate := range mates(paired) {
			if err := validate(chunk.Mates[mate], chunk.Offset, mate); err != nil {
				return 0, err
			}
		}
	}

	return len(mate1) / opts.linesPerRecord, nil
}

func validate(lines []string, offset int, mate pairedio.ReadType) error {
	for i := 0; i+3 < len(lines); i += 4 {
		if !strings.HasPrefix(lines[i], "@") {
			return fmt.Errorf("%w: %s line %d: header does not start with '@'", ErrMalformed, mate, offset+i)
		}
		if !strings.HasPrefix(lines[i+2], "+") {
			return fmt.Errorf("%w: %s line %d: separator does not start with '+'", ErrMalformed, mate, offset+i+2)
		}
	}
	return nil
}

func mates(paired bool) []pairedio.ReadType {
	if paired {
		return []pairedio.ReadType{pairedio.Mate1, pairedio.Mate2}
	}
	return []pairedio.ReadType{pairedio.Mate1}
}
