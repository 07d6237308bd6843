// Package pipeline assembles readers, stages and writers from settings and
// runs them with the scheduler.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seqpipe/pairedio"
	"github.com/seqpipe/pairedio/internal/config"
	"github.com/seqpipe/pairedio/internal/files"
	"github.com/seqpipe/pairedio/internal/scheduler"
	"github.com/seqpipe/pairedio/internal/stats"
	"github.com/seqpipe/pairedio/internal/store"
	"github.com/seqpipe/pairedio/internal/transform"
)

// Mode selects what a run does with the records it reads.
type Mode int

const (
	// Copy writes each mate to its own output.
	Copy Mode = iota
	// Interleave writes both mates to the mate 1 output.
	Interleave
	// Verify checks pairing and record structure without writing.
	Verify
)

func (m Mode) String() string {
	switch m {
	case Copy:
		return "copy"
	case Interleave:
		return "interleave"
	case Verify:
		return "verify"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Pipeline runs settings against a store.
type Pipeline struct {
	settings config.Settings
	resolver *files.Resolver
	stats    stats.Collector
	logger   *zap.Logger
	progress io.Writer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStats sets the stats collector passed to every step.
func WithStats(c stats.Collector) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.stats = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress prints writer progress to w. Nil disables progress.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) {
		p.progress = w
	}
}

// New validates settings and returns a pipeline over st. The store is not
// owned by the pipeline.
func New(settings config.Settings, st store.Store, opts ...Option) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		settings: settings,
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	resolver, err := files.New(st, settings, p.logger.Named("files"))
	if err != nil {
		return nil, err
	}
	p.resolver = resolver
	return p, nil
}

// Settings returns the validated settings.
func (p *Pipeline) Settings() config.Settings {
	return p.settings
}

// Resolver returns the resolver used to open inputs and outputs.
func (p *Pipeline) Resolver() *files.Resolver {
	return p.resolver
}

// Run reads every input to the end, runs the stages for mode and writes
// the outputs. Every step is closed before Run returns.
func (p *Pipeline) Run(ctx context.Context, mode Mode) (result scheduler.Stats, err error) {
	if mode == Interleave && !p.settings.Paired() {
		return result, fmt.Errorf("%w: interleaving needs two inputs", config.ErrInvalid)
	}

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	stepOpts := []pairedio.Option{
		pairedio.WithBatchLines(p.settings.BatchLines()),
		pairedio.WithStats(p.stats),
		pairedio.WithLogger(p.logger),
	}

	var readers []pairedio.Step
	for _, mate := range p.settings.Mates() {
		r, err := pairedio.NewReader(ctx, p.resolver, mate, stepOpts...)
		if err != nil {
			return result, err
		}
		closers = append(closers, r)
		readers = append(readers, r)
	}

	var writers []pairedio.Step
	if mode != Verify {
		writerOpts := append([]pairedio.Option{}, stepOpts...)
		if p.progress != nil {
			writerOpts = append(writerOpts, pairedio.WithProgress(true), pairedio.WithProgressOutput(p.progress))
		}
		for i, role := range p.outputRoles(mode) {
			opts := writerOpts
			if i > 0 {
				// Only the first output reports progress.
				opts = stepOpts
			}
			w, err := pairedio.NewWriter(ctx, p.resolver, role, opts...)
			if err != nil {
				return result, err
			}
			closers = append(closers, w)
			writers = append(writers, w)
		}
	}

	paired := p.settings.Paired()
	return scheduler.Run(ctx, scheduler.Plan{
		Readers: readers,
		Writers: writers,
		NewStages: func() ([]pairedio.Step, error) {
			if mode == Interleave {
				return []pairedio.Step{transform.NewInterleave()}, nil
			}
			return []pairedio.Step{transform.NewPassthrough(paired, transform.WithValidation(mode == Verify))}, nil
		},
		Workers: p.settings.Threads,
		Stats:   p.stats,
		Logger:  p.logger.Named("scheduler").With(zap.Stringer("mode", mode)),
	})
}

func (p *Pipeline) outputRoles(mode Mode) []pairedio.ReadType {
	if mode == Interleave {
		return []pairedio.ReadType{pairedio.Mate1}
	}
	return p.settings.OutputRoles()
}

// InputStats describes one input file.
type InputStats struct {
	Mate    pairedio.ReadType
	Name    string
	Lines   int64
	Records int64
	Bytes   int64
}

// Inputs counts the lines, records and bytes of each input. Bytes are
// counted after decompression, one newline per line.
func (p *Pipeline) Inputs(ctx context.Context) ([]InputStats, error) {
	var result []InputStats
	for _, mate := range p.settings.Mates() {
		s, err := p.countInput(ctx, mate)
		if err != nil {
			return result, err
		}
		result = append(result, s)
	}
	return result, nil
}

func (p *Pipeline) countInput(ctx context.Context, mate pairedio.ReadType) (s InputStats, err error) {
	name, err := p.settings.InputPath(mate)
	if err != nil {
		return s, err
	}
	s = InputStats{Mate: mate, Name: name}

	r, err := pairedio.NewReader(ctx, p.resolver, mate,
		pairedio.WithBatchLines(p.settings.BatchLines()),
		pairedio.WithLogger(p.logger),
	)
	if err != nil {
		return s, err
	}
	defer func() { err = multierr.Append(err, r.Close()) }()

	var chunk *pairedio.Chunk
	for {
		if chunk, err = r.Process(ctx, chunk); err != nil {
			return s, err
		}
		lines := chunk.Mates[mate]
		if len(lines) == 0 {
			break
		}
		s.Lines += int64(len(lines))
		for _, line := range lines {
			s.Bytes += int64(len(line)) + 1
		}
	}
	s.Records = s.Lines / pairedio.DefaultLinesPerRecord
	return s, nil
}
