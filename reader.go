package pairedio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/seqpipe/pairedio/internal/stats"
)

const readBufferSize = 256 * 1024

// ReadStep reads fixed-size batches of lines from the mate 1 or mate 2 input
// into Chunk.Mates. Once the input is exhausted every call yields an empty
// batch, which marks the end of the stream.
type ReadStep struct {
	mate     ReadType
	input    io.ReadCloser
	reader   *bufio.Reader
	offset   int
	capacity int
	eof      bool
	reported bool
	closed   bool

	stats  stats.Collector
	logger *zap.Logger
}

// Compile-time check that ReadStep implements Step.
var _ Step = (*ReadStep)(nil)

// NewReader opens the input for mate, which must be Mate1 or Mate2.
// The stream stays open until Close.
func NewReader(ctx context.Context, opener Opener, mate ReadType, opts ...Option) (*ReadStep, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if !mate.IsMate() {
		return nil, fmt.Errorf("%w: reader requires mate1 or mate2, got %s", ErrInvalidRole, mate)
	}
	if cfg.batchLines < 1 {
		return nil, fmt.Errorf("%w: got %d lines", ErrInvalidBatchSize, cfg.batchLines)
	}

	input, err := opener.OpenInput(ctx, mate)
	if err != nil {
		return nil, &IOError{Op: "open", Role: mate, Err: err}
	}

	r := &ReadStep{
		mate:     mate,
		input:    input,
		reader:   bufio.NewReaderSize(input, readBufferSize),
		offset:   1,
		capacity: cfg.batchLines,
		stats:    cfg.stats,
		logger:   cfg.logger.With(zap.Stringer("role", mate)),
	}

	r.logger.Debug("reader opened", zap.Int("batchLines", r.capacity))

	return r, nil
}

// Process reads up to the batch capacity of lines into chunk.Mates for this
// reader's mate, replacing what was there, and stamps chunk.Offset with the
// line number of the first line. A nil chunk is allocated.
//
// Lines are split on '\n' and stored without it; nothing else is changed.
// An empty batch means the input is exhausted; its offset is one past the
// last line. On a read error the chunk is returned with the error so the
// caller can release it.
func (r *ReadStep) Process(ctx context.Context, chunk *Chunk) (*Chunk, error) {
	if r.closed {
		return chunk, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return chunk, err
	}

	if chunk == nil {
		chunk = NewChunk()
	}
	chunk.ensure()

	lines := clearLines(chunk.Mates[r.mate])
	chunk.Offset = r.offset

	for !r.eof && len(lines) < r.capacity {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				chunk.Mates[r.mate] = lines
				return chunk, &IOError{Op: "read", Role: r.mate, Err: err}
			}
			r.eof = true
			if line != "" {
				lines = append(lines, line)
			}
			break
		}
		lines = append(lines, line[:len(line)-1])
	}

	chunk.Mates[r.mate] = lines
	r.offset += len(lines)

	if len(lines) > 0 {
		r.stats.IncCounter(stats.MetricChunksRead, 1)
		r.stats.IncCounter(stats.MetricLinesRead, int64(len(lines)))
	} else if !r.reported {
		r.reported = true
		r.logger.Debug("end of input", zap.Int("lines", r.offset-1))
	}

	return chunk, nil
}

// Finalize is a no-op; the input is released by Close.
func (r *ReadStep) Finalize(ctx context.Context) error {
	return nil
}

// Close closes the input stream. It is safe to call more than once.
func (r *ReadStep) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.input.Close(); err != nil {
		return &IOError{Op: "close", Role: r.mate, Err: err}
	}
	return nil
}

// Mate returns the mate this reader serves.
func (r *ReadStep) Mate() ReadType {
	return r.mate
}

// Offset returns the line number the next batch will start at.
func (r *ReadStep) Offset() int {
	return r.offset
}
