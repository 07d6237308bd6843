package diskstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/seqpipe/pairedio/internal/store"
)

func TestStore_Open(t *testing.T) {
	dir := t.TempDir()

	data := []byte("@r1\nACGT\n+\nIIII\n")
	if err := os.WriteFile(filepath.Join(dir, "reads_1.fq"), data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	r, err := s.Open(context.Background(), "reads_1.fq")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Open() data = %q, want %q", got, data)
	}
}

func TestStore_OpenAbsolutePath(t *testing.T) {
	root := t.TempDir()
	other := filepath.Join(t.TempDir(), "elsewhere.fq")
	if err := os.WriteFile(other, []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r, err := s.Open(context.Background(), other)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	r.Close()
}

func TestStore_OpenNotFound(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = s.Open(context.Background(), "missing.fq")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestStore_CreateTruncatesAndMakesDirs(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for _, content := range []string{"first version, longer\n", "second\n"} {
		w, err := s.Create(ctx, filepath.Join("out", "sample.pair1.truncated"))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := io.WriteString(w, content); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, "out", "sample.pair1.truncated"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "second\n" {
		t.Errorf("file = %q, want %q", got, "second\n")
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path")
	if err == nil {
		t.Error("New() with invalid path should return error")
	}
}

func TestNew_NotDirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New(f)
	if err == nil {
		t.Error("New() with file (not directory) should return error")
	}
}
