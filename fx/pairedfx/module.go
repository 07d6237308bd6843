// Package pairedfx provides an fx module for a pairedio pipeline whose
// storage backend is chosen by configuration.
package pairedfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/seqpipe/pairedio/internal/config"
	"github.com/seqpipe/pairedio/internal/files"
	"github.com/seqpipe/pairedio/internal/pipeline"
	"github.com/seqpipe/pairedio/internal/stats"
	"github.com/seqpipe/pairedio/internal/stats/logger"
	"github.com/seqpipe/pairedio/internal/store"
)

// Module provides a *pipeline.Pipeline.
// Requires a config.Settings and a *zap.Logger to be provided.
var Module = fx.Module("paired",
	fx.Provide(
		newStatsCollector,
		newStore,
		newPipeline,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("pairedio.stats"))
}

// StoreParams holds dependencies for opening the store.
type StoreParams struct {
	fx.In

	Settings  config.Settings
	Lifecycle fx.Lifecycle
}

func newStore(p StoreParams) (store.Store, error) {
	st, err := files.OpenStore(context.Background(), p.Settings.Storage)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return st.Close()
		},
	})

	return st, nil
}

// Params holds dependencies for creating the pipeline.
type Params struct {
	fx.In

	Settings  config.Settings
	Store     store.Store
	Logger    *zap.Logger
	Collector stats.Collector
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
