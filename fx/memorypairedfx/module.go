// Package memorypairedfx provides an fx module for a pairedio pipeline over
// an in-memory store. Useful for testing.
package memorypairedfx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/seqpipe/pairedio/internal/config"
	"github.com/seqpipe/pairedio/internal/pipeline"
	"github.com/seqpipe/pairedio/internal/stats"
	"github.com/seqpipe/pairedio/internal/stats/logger"
	"github.com/seqpipe/pairedio/internal/store/memstore"
)

// Module provides a *pipeline.Pipeline and its *memstore.Store.
// Requires a config.Settings and a *zap.Logger to be provided.
var Module = fx.Module("memorypaired",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newPipeline,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("pairedio.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the pipeline.
type Params struct {
	fx.In

	Settings  config.Settings
	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
}

// Result holds the provided pipeline.
type Result struct {
	fx.Out

	Pipeline *pipeline.Pipeline
}

func newPipeline(p Params) (Result, error) {
	pl, err := pipeline.New(p.Settings, p.Store,
		pipeline.WithStats(p.Collector),
		pipeline.WithLogger(p.Logger.Named("pairedio")),
	)
	if err != nil {
		return Result{}, err
	}
	return Result{Pipeline: pl}, nil
}
