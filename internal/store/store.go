// Package store defines the storage backend interface for FASTQ streams.
package store

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when an object does not exist in the store.
var ErrNotFound = errors.New("store: object not found")

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// Open opens the named object for streaming reads.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create creates or truncates the named object. The data is only
	// guaranteed to be stored once Close returns nil.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Close releases any resources held by the store.
	Close() error
}

// JoinPrefix normalizes a key prefix so it is empty or ends in one slash.
func JoinPrefix(prefix, name string) string {
	for len(prefix) > 0 && prefix[len(prefix)-1] == '/' {
		prefix = prefix[:len(prefix)-1]
	}
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
