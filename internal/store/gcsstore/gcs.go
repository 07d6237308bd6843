// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/seqpipe/pairedio/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	chunk  int
}

// New creates a new GCS store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithChunkSize sets the resumable upload chunk size in bytes.
// Zero keeps the client library default.
func WithChunkSize(n int) Option {
	return func(s *Store) {
		s.chunk = n
	}
}

// Open streams the named object.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// Check for cancellation before starting.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := s.bucket.Object(s.key(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, s.key(name))
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	return reader, nil
}

// Create returns a writer that uploads the object; the upload completes when
// the writer is closed.
func (s *Store) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := s.bucket.Object(s.key(name)).NewWriter(ctx)
	w.ContentType = "text/plain"
	if s.chunk > 0 {
		w.ChunkSize = s.chunk
	}
	return w, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

// key returns the full object key for a name.
func (s *Store) key(name string) string {
	return store.JoinPrefix(s.prefix, name)
}
