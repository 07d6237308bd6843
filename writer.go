package pairedio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seqpipe/pairedio/internal/progress"
	"github.com/seqpipe/pairedio/internal/stats"
)

const writeBufferSize = 256 * 1024

// WriteStep writes the Chunk.Output batch of one read type to its output
// file, in the order chunks are presented, and clears the batch for reuse.
type WriteStep struct {
	role           ReadType
	output         io.WriteCloser
	writer         *bufio.Writer
	timer          *progress.Timer
	linesPerRecord int
	lastOffset     int

	lines     int64
	bytes     int64
	chunks    int64
	finalized bool
	closed    bool

	stats  stats.Collector
	logger *zap.Logger
}

// Compile-time check that WriteStep implements Step.
var _ Step = (*WriteStep)(nil)

// NewWriter creates or truncates the output for role. With WithProgress(true)
// a progress timer reports throughput as records are written.
func NewWriter(ctx context.Context, opener Opener, role ReadType, opts ...Option) (*WriteStep, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if !role.Valid() {
		return nil, fmt.Errorf("%w: writer got %s", ErrInvalidRole, role)
	}

	output, err := opener.OpenOutput(ctx, role)
	if err != nil {
		return nil, &IOError{Op: "open", Role: role, Err: err}
	}

	w := &WriteStep{
		role:           role,
		output:         output,
		writer:         bufio.NewWriterSize(output, writeBufferSize),
		linesPerRecord: cfg.linesPerRecord,
		stats:          cfg.stats,
		logger:         cfg.logger.With(zap.Stringer("role", role)),
	}
	if cfg.progress {
		w.timer = progress.New(progress.Options{
			Output:   cfg.progressOutput,
			Interval: cfg.progressInterval,
		})
	}

	w.logger.Debug("writer opened", zap.Bool("progress", cfg.progress))

	return w, nil
}

// Process writes every line of chunk.Output for this writer's read type,
// each followed by a newline, then empties the batch. An empty batch writes
// nothing.
//
// Chunks must arrive in non-decreasing offset order; the writer does not
// reorder and rejects a chunk whose offset is lower than the previous one.
func (w *WriteStep) Process(ctx context.Context, chunk *Chunk) (*Chunk, error) {
	switch {
	case w.closed:
		return chunk, ErrClosed
	case w.finalized:
		return chunk, ErrFinalized
	}
	if err := ctx.Err(); err != nil {
		return chunk, err
	}

	chunk.ensure()
	if chunk.Offset < w.lastOffset {
		return chunk, fmt.Errorf("%w: %s writer got offset %d after %d", ErrOutOfOrder, w.role, chunk.Offset, w.lastOffset)
	}
	w.lastOffset = chunk.Offset

	start := time.Now()
	lines := chunk.Output[w.role]

	var written int64
	for _, line := range lines {
		n, err := w.writer.WriteString(line)
		written += int64(n)
		if err == nil {
			err = w.writer.WriteByte('\n')
		}
		if err != nil {
			return chunk, &IOError{Op: "write", Role: w.role, Err: err}
		}
		written++
	}

	chunk.Output[w.role] = clearLines(lines)

	if len(lines) > 0 {
		w.record(int64(len(lines)), written)
		w.stats.ObserveHistogram(stats.MetricWriteSeconds, time.Since(start).Seconds())
	}

	return chunk, nil
}

// record updates counters and the progress timer after a batch is written.
func (w *WriteStep) record(lines, bytes int64) {
	per := int64(w.linesPerRecord)
	records := (w.lines+lines)/per - w.lines/per

	w.lines += lines
	w.bytes += bytes
	w.chunks++

	w.stats.IncCounter(stats.MetricChunksWritten, 1)
	w.stats.IncCounter(stats.MetricLinesWritten, lines)
	w.stats.IncCounter(stats.MetricBytesWritten, bytes)

	if w.timer != nil {
		w.timer.AddBytes(bytes)
		w.timer.Increment(records)
	}
}

// Finalize flushes buffered output and prints the progress summary if
// progress reporting is enabled. It must be called exactly once, after the
// last call to Process.
func (w *WriteStep) Finalize(ctx context.Context) error {
	switch {
	case w.closed:
		return ErrClosed
	case w.finalized:
		return ErrFinalized
	}
	w.finalized = true

	if err := w.writer.Flush(); err != nil {
		return &IOError{Op: "flush", Role: w.role, Err: err}
	}

	if w.timer != nil {
		w.timer.Finalize()
	}

	w.logger.Debug("writer finalized",
		zap.Int64("lines", w.lines),
		zap.Int64("bytes", w.bytes),
		zap.Int64("chunks", w.chunks),
	)

	return nil
}

// Close flushes anything not yet flushed and closes the output, completing
// any compressed stream. It is safe to call more than once and after a
// failed Process or Finalize.
func (w *WriteStep) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if ferr := w.writer.Flush(); ferr != nil {
		err = multierr.Append(err, &IOError{Op: "flush", Role: w.role, Err: ferr})
	}
	if cerr := w.output.Close(); cerr != nil {
		err = multierr.Append(err, &IOError{Op: "close", Role: w.role, Err: cerr})
	}
	return err
}

// Role returns the read type this writer serves.
func (w *WriteStep) Role() ReadType {
	return w.role
}

// Lines returns the number of lines written so far.
func (w *WriteStep) Lines() int64 {
	return w.lines
}

// Bytes returns the number of bytes written so far, including newlines.
func (w *WriteStep) Bytes() int64 {
	return w.bytes
}
