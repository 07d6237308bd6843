package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"gocloud.dev/blob/memblob"

	"github.com/seqpipe/pairedio/internal/store"
)

func TestStore_CreateThenOpen(t *testing.T) {
	ctx := context.Background()
	s := New(memblob.OpenBucket(nil), "runs/42")
	defer s.Close()

	w, err := s.Create(ctx, "out.discarded")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := io.WriteString(w, "@bad\nNNNN\n+\n####\n"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ok, err := s.bucket.Exists(ctx, "runs/42/out.discarded")
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v; want object under prefix", ok, err)
	}

	r, err := s.Open(ctx, "out.discarded")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "@bad\nNNNN\n+\n####\n" {
		t.Errorf("Open() data = %q", got)
	}
}

func TestStore_OpenNotFound(t *testing.T) {
	s := New(memblob.OpenBucket(nil), "")
	defer s.Close()

	_, err := s.Open(context.Background(), "nope.fq")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestOpen_URL(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://", "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	w, err := s.Create(ctx, "x.fq")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
