package pairedio

import (
	"errors"
	"fmt"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrInvalidRole indicates a step was constructed with a read type it
	// cannot serve.
	ErrInvalidRole = errors.New("pairedio: invalid read type")

	// ErrInvalidBatchSize indicates a non-positive reader batch size.
	ErrInvalidBatchSize = errors.New("pairedio: batch size must be positive")

	// ErrIO matches every *IOError.
	ErrIO = errors.New("pairedio: i/o error")

	// ErrOutOfOrder indicates a writer received a chunk with a lower offset
	// than the previous one.
	ErrOutOfOrder = errors.New("pairedio: chunk delivered out of order")

	// ErrFinalized indicates Finalize was called more than once, or Process
	// was called after Finalize.
	ErrFinalized = errors.New("pairedio: step already finalized")

	// ErrClosed indicates the step has been closed.
	ErrClosed = errors.New("pairedio: step closed")
)

// IOError is returned when opening, reading, writing or closing a stream
// fails. These errors are fatal to the pipeline and never retried.
type IOError struct {
	Op   string
	Role ReadType
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("pairedio: %s %s: %v", e.Op, e.Role, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
