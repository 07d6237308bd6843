package files

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/seqpipe/pairedio"
	"github.com/seqpipe/pairedio/internal/config"
	"github.com/seqpipe/pairedio/internal/store"
	"github.com/seqpipe/pairedio/internal/store/memstore"
)

const fastq = "@r1\nACGT\n+\nIIII\n@r2\nTTTT\n+\nIIII\n"

func compress(t *testing.T, name string, data string) []byte {
	t.Helper()
	c, err := CodecByName(name, 0)
	if err != nil {
		t.Fatalf("CodecByName(%q) error = %v", name, err)
	}
	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	if _, err := io.WriteString(w, data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func newResolver(t *testing.T, st store.Store, modify func(*config.Settings)) *Resolver {
	t.Helper()
	s := config.Default()
	s.Input1 = "reads_1.fq"
	s.Input2 = "reads_2.fq"
	s.Basename = "out"
	if modify != nil {
		modify(&s)
	}
	r, err := New(st, s, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain", []byte(fastq), config.CompressionNone},
		{"empty", nil, config.CompressionNone},
		{"one byte", []byte{0x1f}, config.CompressionNone},
		{"gzip", compress(t, config.CompressionGzip, fastq), config.CompressionGzip},
		{"bzip2", compress(t, config.CompressionBzip2, fastq), config.CompressionBzip2},
		{"zstd", compress(t, config.CompressionZstd, fastq), config.CompressionZstd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := bufio.NewReader(bytes.NewReader(tt.data))
			c, err := Detect(br)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got := c.Name(); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
			rest, err := io.ReadAll(br)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !bytes.Equal(rest, tt.data) {
				t.Error("Detect() consumed input")
			}
		})
	}
}

// failingStore opens objects whose first read fails.
type failingStore struct {
	store.Store
	err    error
	closed int
}

func (s *failingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s, nil
}

func (s *failingStore) Read(p []byte) (int, error) { return 0, s.err }

func (s *failingStore) Close() error {
	s.closed++
	return nil
}

func TestDetect_ReadError(t *testing.T) {
	errDisk := errors.New("disk on fire")
	br := bufio.NewReader(&failingStore{err: errDisk})

	if _, err := Detect(br); !errors.Is(err, errDisk) {
		t.Errorf("Detect() error = %v, want %v", err, errDisk)
	}
}

func TestResolver_OpenReadError(t *testing.T) {
	errDisk := errors.New("disk on fire")
	st := &failingStore{err: errDisk}
	r := newResolver(t, st, nil)

	_, err := r.OpenInput(context.Background(), pairedio.Mate1)
	if !errors.Is(err, errDisk) {
		t.Fatalf("OpenInput() error = %v, want %v", err, errDisk)
	}
	if !strings.Contains(err.Error(), "reads_1.fq") {
		t.Errorf("OpenInput() error = %q, want input name", err)
	}
	if st.closed != 1 {
		t.Errorf("raw stream closed %d times, want 1", st.closed)
	}
}

func TestCodecByName_Unknown(t *testing.T) {
	if _, err := CodecByName("lz4", 0); err == nil {
		t.Error("CodecByName(lz4) expected error")
	}
}

func TestResolver_OpenInput(t *testing.T) {
	for _, name := range []string{config.CompressionNone, config.CompressionGzip, config.CompressionBzip2, config.CompressionZstd} {
		t.Run(name, func(t *testing.T) {
			st := memstore.New()
			st.Set("reads_1.fq", compress(t, name, fastq))
			r := newResolver(t, st, nil)

			rc, err := r.OpenInput(context.Background(), pairedio.Mate1)
			if err != nil {
				t.Fatalf("OpenInput() error = %v", err)
			}
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if err := rc.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if string(got) != fastq {
				t.Errorf("OpenInput() content = %q, want %q", got, fastq)
			}
		})
	}
}

func TestResolver_OpenInputErrors(t *testing.T) {
	st := memstore.New()
	r := newResolver(t, st, func(s *config.Settings) { s.Input2 = "" })
	ctx := context.Background()

	if _, err := r.OpenInput(ctx, pairedio.Mate1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("OpenInput(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := r.OpenInput(ctx, pairedio.Mate2); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("OpenInput(mate2, single-end) error = %v, want ErrInvalid", err)
	}
	if _, err := r.OpenInput(ctx, pairedio.Discarded); !errors.Is(err, pairedio.ErrInvalidRole) {
		t.Errorf("OpenInput(discarded) error = %v, want ErrInvalidRole", err)
	}
}

func TestResolver_OpenOutput(t *testing.T) {
	st := memstore.New()
	r := newResolver(t, st, func(s *config.Settings) { s.Compression = config.CompressionGzip })

	if got, want := r.OutputPath(pairedio.Mate1), "out.pair1.truncated.gz"; got != want {
		t.Fatalf("OutputPath() = %q, want %q", got, want)
	}

	w, err := r.OpenOutput(context.Background(), pairedio.Mate1)
	if err != nil {
		t.Fatalf("OpenOutput() error = %v", err)
	}
	if _, err := io.WriteString(w, fastq); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, ok := st.Get("out.pair1.truncated.gz"); ok {
		t.Error("object visible before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, ok := st.Get("out.pair1.truncated.gz")
	if !ok {
		t.Fatal("object missing after Close")
	}
	if !bytes.HasPrefix(data, gzipMagic) {
		t.Errorf("output is not gzip: % x", data[:min(len(data), 4)])
	}

	// Reading the output back goes through detection.
	st.Set("reads_1.fq", data)
	rc, err := r.OpenInput(context.Background(), pairedio.Mate1)
	if err != nil {
		t.Fatalf("OpenInput() error = %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != fastq {
		t.Errorf("round trip = %q, want %q", got, fastq)
	}
}

func TestResolver_OutputPathOverride(t *testing.T) {
	r := newResolver(t, memstore.New(), func(s *config.Settings) {
		s.Compression = config.CompressionZstd
		s.Outputs = map[string]string{"singleton": "lonely.fq"}
	})

	if got := r.OutputPath(pairedio.Singleton); got != "lonely.fq" {
		t.Errorf("OutputPath(singleton) = %q, want override", got)
	}
	if got := r.OutputPath(pairedio.Discarded); !strings.HasSuffix(got, ".discarded.zst") {
		t.Errorf("OutputPath(discarded) = %q", got)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := OpenStore(ctx, config.Storage{Backend: config.BackendDisk, Root: t.TempDir()})
	if err != nil {
		t.Fatalf("OpenStore(disk) error = %v", err)
	}
	st.Close()

	st, err = OpenStore(ctx, config.Storage{Backend: config.BackendBlob, URL: "mem://"})
	if err != nil {
		t.Fatalf("OpenStore(blob) error = %v", err)
	}
	st.Close()

	if _, err := OpenStore(ctx, config.Storage{Backend: "ftp"}); err == nil {
		t.Error("OpenStore(ftp) expected error")
	}
}
