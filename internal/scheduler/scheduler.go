// Package scheduler drives pairedio steps over a bounded pool of chunks.
//
// One read loop runs the readers on each chunk in turn. Workers run their
// own instances of the transformation stages on chunks in any order, and a
// sequencer restores read order before the write loop runs the writers.
// The first error from any loop cancels the rest.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seqpipe/pairedio"
	"github.com/seqpipe/pairedio/internal/stats"
)

// StageFactory builds the transformation stages for one worker. Each worker
// gets its own instances, so stages need not be safe for concurrent use.
type StageFactory func() ([]pairedio.Step, error)

// Plan describes a run.
type Plan struct {
	// Readers fill each chunk, in order. At least one is required.
	Readers []pairedio.Step

	// NewStages builds the stages run by each worker. Nil means chunks go
	// straight from the readers to the writers.
	NewStages StageFactory

	// Writers consume each chunk in read order.
	Writers []pairedio.Step

	// Workers is the number of goroutines running stages. Default: 1.
	Workers int

	// Slots is the number of chunks in flight. Default: 2 * Workers.
	Slots int

	// RunID tags log entries. Default: a random UUID.
	RunID string

	Stats  stats.Collector
	Logger *zap.Logger
}

// Stats summarizes a completed run.
type Stats struct {
	RunID    string
	Chunks   int64
	Lines    int64
	Duration time.Duration
}

type item struct {
	seq   uint64
	chunk *pairedio.Chunk
}

type runner struct {
	plan   Plan
	pool   *Pool
	seq    *Sequencer
	work   chan item
	logger *zap.Logger
	stats  stats.Collector

	chunks atomic.Int64
	lines  atomic.Int64
}

// Run executes plan until the readers reach the end of their inputs, then
// finalizes the stages and writers. Steps are not closed; the caller owns
// them.
func Run(ctx context.Context, plan Plan) (Stats, error) {
	if len(plan.Readers) == 0 {
		return Stats{}, fmt.Errorf("scheduler: no readers")
	}
	if plan.Workers < 1 {
		plan.Workers = 1
	}
	if plan.Slots < 1 {
		plan.Slots = 2 * plan.Workers
	}
	if plan.RunID == "" {
		plan.RunID = uuid.NewString()
	}
	if plan.Stats == nil {
		plan.Stats = stats.NewNoop()
	}
	if plan.Logger == nil {
		plan.Logger = zap.NewNop()
	}

	stages := make([][]pairedio.Step, plan.Workers)
	if plan.NewStages != nil {
		for i := range stages {
			s, err := plan.NewStages()
			if err != nil {
				return Stats{}, fmt.Errorf("building stages for worker %d: %w", i, err)
			}
			stages[i] = s
		}
	}

	r := &runner{
		plan:   plan,
		pool:   NewPool(plan.Slots),
		seq:    NewSequencer(plan.Slots),
		work:   make(chan item, plan.Workers),
		logger: plan.Logger.With(zap.String("run", plan.RunID)),
		stats:  plan.Stats,
	}

	r.logger.Info("run started",
		zap.Int("readers", len(plan.Readers)),
		zap.Int("writers", len(plan.Writers)),
		zap.Int("workers", plan.Workers),
		zap.Int("slots", plan.Slots),
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return r.read(ctx) })

	var workers sync.WaitGroup
	for i := range stages {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			return r.process(ctx, i, stages[i])
		})
	}
	g.Go(func() error {
		workers.Wait()
		if ctx.Err() != nil {
			return nil
		}
		return r.seq.Close()
	})

	g.Go(func() error { return r.write(ctx) })

	err := g.Wait()
	result := Stats{
		RunID:    plan.RunID,
		Chunks:   r.chunks.Load(),
		Lines:    r.lines.Load(),
		Duration: time.Since(start),
	}
	if err != nil {
		r.logger.Error("run failed", zap.Error(err), zap.Int64("chunks", result.Chunks))
		return result, err
	}

	r.logger.Info("run finished",
		zap.Int64("chunks", result.Chunks),
		zap.Int64("lines", result.Lines),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// read fills chunks from the pool until a terminal chunk, then closes the
// work channel. Work is left open on error so workers exit on cancellation
// rather than treating the run as complete.
func (r *runner) read(ctx context.Context) error {
	for seq := uint64(0); ; seq++ {
		chunk, err := r.pool.Get(ctx)
		if err != nil {
			return err
		}
		r.stats.SetGauge(stats.MetricChunksInFlight, int64(r.pool.InFlight()))

		for _, reader := range r.plan.Readers {
			if chunk, err = reader.Process(ctx, chunk); err != nil {
				return err
			}
		}

		if chunk.Terminal() {
			r.pool.Put(chunk)
			for _, reader := range r.plan.Readers {
				if err := reader.Finalize(ctx); err != nil {
					return err
				}
			}
			r.logger.Debug("end of input", zap.Uint64("chunks", seq))
			close(r.work)
			return nil
		}

		var lines int
		for _, batch := range chunk.Mates {
			lines += len(batch)
		}
		r.chunks.Add(1)
		r.lines.Add(int64(lines))

		if err := r.seq.Expect(seq); err != nil {
			return err
		}
		select {
		case r.work <- item{seq: seq, chunk: chunk}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// process runs one worker's stages on chunks until the work channel closes,
// then finalizes them.
func (r *runner) process(ctx context.Context, worker int, stages []pairedio.Step) error {
	logger := r.logger.With(zap.Int("worker", worker))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case it, ok := <-r.work:
			if !ok {
				for _, stage := range stages {
					if err := stage.Finalize(ctx); err != nil {
						return err
					}
				}
				logger.Debug("worker finished")
				return nil
			}

			start := time.Now()
			chunk := it.chunk
			for _, stage := range stages {
				var err error
				if chunk, err = stage.Process(ctx, chunk); err != nil {
					return fmt.Errorf("chunk at line %d: %w", it.chunk.Offset, err)
				}
			}
			r.stats.ObserveHistogram(stats.MetricStageSeconds, time.Since(start).Seconds())
			r.stats.IncCounter(stats.MetricChunksProcessed, 1)

			if err := r.seq.Push(it.seq, chunk); err != nil {
				return err
			}
			r.stats.SetGauge(stats.MetricChunksReordered, int64(r.seq.Held()))
		}
	}
}

// write runs the writers on chunks in read order, returns each chunk to the
// pool and finalizes the writers once the sequencer is drained.
func (r *runner) write(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-r.seq.Ready():
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				for _, writer := range r.plan.Writers {
					if err := writer.Finalize(ctx); err != nil {
						return err
					}
				}
				return nil
			}

			for _, writer := range r.plan.Writers {
				var err error
				if chunk, err = writer.Process(ctx, chunk); err != nil {
					return err
				}
			}
			r.pool.Put(chunk)
			r.stats.SetGauge(stats.MetricChunksInFlight, int64(r.pool.InFlight()))
		}
	}
}
