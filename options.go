package pairedio

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/seqpipe/pairedio/internal/stats"
)

const (
	// DefaultLinesPerRecord is the number of lines in a FASTQ record.
	DefaultLinesPerRecord = 4

	// DefaultBatchRecords is the number of records read into each chunk.
	DefaultBatchRecords = 4096

	// DefaultBatchLines is the default reader batch capacity in lines.
	DefaultBatchLines = DefaultBatchRecords * DefaultLinesPerRecord

	// DefaultProgressInterval is the number of records between progress reports.
	DefaultProgressInterval = 1_000_000
)

// Option configures a ReadStep or WriteStep.
type Option interface {
	apply(*options)
}

// options holds the step configuration.
type options struct {
	batchLines       int
	linesPerRecord   int
	progress         bool
	progressOutput   io.Writer
	progressInterval int64
	stats            stats.Collector
	logger           *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		batchLines:       DefaultBatchLines,
		linesPerRecord:   DefaultLinesPerRecord,
		progressOutput:   os.Stderr,
		progressInterval: DefaultProgressInterval,
		stats:            stats.NewNoop(),
		logger:           zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithBatchLines sets the number of lines a reader puts in each chunk.
// It should be a multiple of the lines per record so batches hold whole
// records. Default is DefaultBatchLines.
func WithBatchLines(n int) Option {
	return optionFunc(func(o *options) {
		o.batchLines = n
	})
}

// WithLinesPerRecord sets the record size used for progress counts.
// Default is 4.
func WithLinesPerRecord(n int) Option {
	return optionFunc(func(o *options) {
		if n > 0 {
			o.linesPerRecord = n
		}
	})
}

// WithProgress enables progress reports on writers.
func WithProgress(enabled bool) Option {
	return optionFunc(func(o *options) {
		o.progress = enabled
	})
}

// WithProgressOutput sets where progress reports are printed.
// Default is os.Stderr.
func WithProgressOutput(w io.Writer) Option {
	return optionFunc(func(o *options) {
		o.progressOutput = w
	})
}

// WithProgressInterval sets the number of records between progress reports.
func WithProgressInterval(records int64) Option {
	return optionFunc(func(o *options) {
		if records > 0 {
			o.progressInterval = records
		}
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		if c != nil {
			o.stats = c
		}
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		if l != nil {
			o.logger = l
		}
	})
}
