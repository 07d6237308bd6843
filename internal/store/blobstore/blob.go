// Package blobstore implements a storage backend on portable gocloud.dev
// buckets, addressed by URL (mem://, file:///path, and any driver the
// binary links in).
package blobstore

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"github.com/seqpipe/pairedio/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a gocloud.dev bucket backend.
type Store struct {
	bucket *blob.Bucket
	prefix string
}

// Open opens the bucket at url.
func Open(ctx context.Context, url, prefix string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opening bucket: %w", err)
	}
	return New(bucket, prefix), nil
}

// New wraps an open bucket. The store takes ownership of the bucket.
func New(bucket *blob.Bucket, prefix string) *Store {
	return &Store{bucket: bucket, prefix: prefix}
}

// Open streams the named object.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, s.key(name), nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, s.key(name))
		}
		return nil, fmt.Errorf("opening object: %w", err)
	}
	return r, nil
}

// Create returns a writer for the named object; the object becomes visible
// when the writer is closed.
func (s *Store) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	w, err := s.bucket.NewWriter(ctx, s.key(name), &blob.WriterOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return nil, fmt.Errorf("creating object: %w", err)
	}
	return w, nil
}

// Close closes the bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

func (s *Store) key(name string) string {
	return store.JoinPrefix(s.prefix, name)
}
