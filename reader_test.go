package pairedio

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// equalLines compares batches, treating nil and empty as equal.
func equalLines(got, want []string) bool {
	if len(got) == 0 && len(want) == 0 {
		return true
	}
	return reflect.DeepEqual(got, want)
}

func newTestReader(t *testing.T, data string, opts ...Option) *ReadStep {
	t.Helper()
	opener := newFakeOpener(map[ReadType]string{Mate1: data})
	r, err := NewReader(context.Background(), opener, Mate1, opts...)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestReader_Batches(t *testing.T) {
	r := newTestReader(t, numberedLines(6), WithBatchLines(2))
	ctx := context.Background()

	want := []struct {
		offset int
		lines  []string
	}{
		{1, []string{"line1", "line2"}},
		{3, []string{"line3", "line4"}},
		{5, []string{"line5", "line6"}},
		{7, []string{}},
		{7, []string{}},
	}

	var chunk *Chunk
	for i, w := range want {
		var err error
		chunk, err = r.Process(ctx, chunk)
		if err != nil {
			t.Fatalf("Process() #%d error = %v", i, err)
		}
		if chunk.Offset != w.offset {
			t.Errorf("Process() #%d offset = %d, want %d", i, chunk.Offset, w.offset)
		}
		if got := chunk.Mates[Mate1]; !equalLines(got, w.lines) {
			t.Errorf("Process() #%d lines = %q, want %q", i, got, w.lines)
		}
	}
	if !chunk.Terminal() {
		t.Error("Terminal() = false after end of input")
	}
}

func TestReader_BatchCount(t *testing.T) {
	tests := []struct {
		lines    int
		capacity int
	}{
		{0, 4},
		{1, 4},
		{4, 4},
		{5, 4},
		{17, 4},
		{100, 7},
		{3, 1},
	}

	for _, tt := range tests {
		r := newTestReader(t, numberedLines(tt.lines), WithBatchLines(tt.capacity))

		batches, total := 0, 0
		var chunk *Chunk
		for {
			var err error
			chunk, err = r.Process(context.Background(), chunk)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			n := len(chunk.Mates[Mate1])
			if n == 0 {
				break
			}
			if n > tt.capacity {
				t.Fatalf("batch of %d lines exceeds capacity %d", n, tt.capacity)
			}
			if chunk.Offset != total+1 {
				t.Errorf("offset = %d, want %d", chunk.Offset, total+1)
			}
			batches++
			total += n
		}

		want := (tt.lines + tt.capacity - 1) / tt.capacity
		if batches != want || total != tt.lines {
			t.Errorf("L=%d C=%d: %d batches with %d lines, want %d batches with %d lines",
				tt.lines, tt.capacity, batches, total, want, tt.lines)
		}
	}
}

func TestReader_LineContent(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"carriage return kept", "@r1\r\nACGT\r\n", []string{"@r1\r", "ACGT\r"}},
		{"unterminated final line", "@r1\nACGT", []string{"@r1", "ACGT"}},
		{"empty lines", "\n\nx\n", []string{"", "", "x"}},
		{"empty input", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(t, tt.data, WithBatchLines(10))
			chunk, err := r.Process(context.Background(), nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if got := chunk.Mates[Mate1]; !equalLines(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReader_ReusesBatch(t *testing.T) {
	r := newTestReader(t, numberedLines(8), WithBatchLines(4))
	ctx := context.Background()

	chunk, err := r.Process(ctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	first := &chunk.Mates[Mate1][0]

	chunk, err = r.Process(ctx, chunk)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if &chunk.Mates[Mate1][0] != first {
		t.Error("second batch did not reuse the first batch's storage")
	}
	if chunk.Mates[Mate1][0] != "line5" {
		t.Errorf("line = %q, want line5", chunk.Mates[Mate1][0])
	}
}

func TestReader_LeavesOtherMate(t *testing.T) {
	r := newTestReader(t, numberedLines(2))
	chunk := NewChunk()
	chunk.Mates[Mate2] = []string{"keep"}

	chunk, err := r.Process(context.Background(), chunk)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !reflect.DeepEqual(chunk.Mates[Mate2], []string{"keep"}) {
		t.Errorf("mate 2 batch = %q, want untouched", chunk.Mates[Mate2])
	}
}

func TestNewReader_Errors(t *testing.T) {
	ctx := context.Background()

	for _, role := range []ReadType{Singleton, Collapsed, CollapsedTruncated, Discarded, ReadType(-1), ReadType(42)} {
		opener := newFakeOpener(nil)
		if _, err := NewReader(ctx, opener, role); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("NewReader(%s) error = %v, want ErrInvalidRole", role, err)
		}
		if opener.opens != 0 {
			t.Errorf("NewReader(%s) opened a stream", role)
		}
	}

	opener := newFakeOpener(map[ReadType]string{Mate1: ""})
	if _, err := NewReader(ctx, opener, Mate1, WithBatchLines(0)); !errors.Is(err, ErrInvalidBatchSize) {
		t.Errorf("NewReader(batch 0) error = %v, want ErrInvalidBatchSize", err)
	}

	opener = newFakeOpener(nil)
	_, err := NewReader(ctx, opener, Mate2)
	if !errors.Is(err, ErrIO) {
		t.Errorf("NewReader(missing input) error = %v, want ErrIO", err)
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "open" || ioErr.Role != Mate2 {
		t.Errorf("NewReader(missing input) error = %#v, want open IOError for mate2", err)
	}
}

func TestReader_ReadError(t *testing.T) {
	readErr := errors.New("disk on fire")
	opener := newFakeOpener(map[ReadType]string{Mate1: "a\nb\n"})
	opener.readErr = readErr

	r, err := NewReader(context.Background(), opener, Mate1, WithBatchLines(10))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()

	chunk, err := r.Process(context.Background(), nil)
	if !errors.Is(err, readErr) || !errors.Is(err, ErrIO) {
		t.Fatalf("Process() error = %v, want read IOError", err)
	}
	if chunk == nil {
		t.Fatal("Process() returned nil chunk on error")
	}
}

func TestReader_Lifecycle(t *testing.T) {
	r := newTestReader(t, numberedLines(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Process(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Process(cancelled) error = %v, want context.Canceled", err)
	}

	if err := r.Finalize(context.Background()); err != nil {
		t.Errorf("Finalize() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := r.Process(context.Background(), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Process() after Close error = %v, want ErrClosed", err)
	}
}
