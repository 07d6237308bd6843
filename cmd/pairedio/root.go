package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seqpipe/pairedio/internal/config"
	"github.com/seqpipe/pairedio/internal/files"
	"github.com/seqpipe/pairedio/internal/pipeline"
	"github.com/seqpipe/pairedio/internal/stats"
	statslogger "github.com/seqpipe/pairedio/internal/stats/logger"
	statsprom "github.com/seqpipe/pairedio/internal/stats/prometheus"
)

var (
	// Global flags.
	configPath  string
	verbose     bool
	metricsAddr string

	// Settings overrides.
	input1      string
	input2      string
	basename    string
	compression string
	threads     int
	batch       int
	storageURL  string
)

var rootCmd = &cobra.Command{
	Use:   "pairedio",
	Short: "Chunked reading and writing of paired-end FASTQ files",
	Long: `Pairedio reads single-end or paired-end FASTQ files in fixed-size
chunks, runs them through worker stages in parallel and writes the outputs
in input order.

Inputs compressed with gzip, bzip2 or zstd are detected automatically.

Examples:
  # Copy a pair of files to sample.pair1.truncated.gz and friends
  pairedio run -1 reads_1.fq.gz -2 reads_2.fq.gz --basename sample --compression gzip

  # Check that two files are properly paired
  pairedio verify -1 reads_1.fq -2 reads_2.fq

  # Count records
  pairedio stats -1 reads_1.fq.bz2`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML settings file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during a run")

	rootCmd.PersistentFlags().StringVarP(&input1, "input1", "1", "", "mate 1 (or single-end) FASTQ file")
	rootCmd.PersistentFlags().StringVarP(&input2, "input2", "2", "", "mate 2 FASTQ file")
	rootCmd.PersistentFlags().StringVar(&basename, "basename", "", "prefix for output file names (default \"your_output\")")
	rootCmd.PersistentFlags().StringVar(&compression, "compression", "", "output compression: none, gzip, bzip2 or zstd")
	rootCmd.PersistentFlags().IntVarP(&threads, "threads", "t", 0, "worker goroutines (default 1)")
	rootCmd.PersistentFlags().IntVar(&batch, "batch-records", 0, "records per chunk (default 4096)")
	rootCmd.PersistentFlags().StringVar(&storageURL, "storage-url", "", "gocloud.dev bucket URL to read and write, e.g. mem:// or file:///data")
}

// env holds what every subcommand needs.
type env struct {
	runID    string
	settings config.Settings
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	stats    stats.Collector
	close    func() error
}

// loadSettings reads the config file, if any, and applies flag overrides.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings := config.Default()
	if configPath != "" {
		var err error
		if settings, err = config.Load(configPath); err != nil {
			return settings, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("input1") {
		settings.Input1 = input1
	}
	if flags.Changed("input2") {
		settings.Input2 = input2
	}
	if flags.Changed("basename") {
		settings.Basename = basename
	}
	if flags.Changed("compression") {
		settings.Compression = compression
	}
	if flags.Changed("threads") {
		settings.Threads = threads
	}
	if flags.Changed("batch-records") {
		settings.BatchRecords = batch
	}
	if flags.Changed("storage-url") {
		settings.Storage.Backend = config.BackendBlob
		settings.Storage.URL = storageURL
	}
	return settings, nil
}

func newLogger(runID string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("run", runID)), nil
}

// setup builds the logger, stats collector, store and pipeline for a
// subcommand. The returned env must be closed.
func setup(ctx context.Context, cmd *cobra.Command, opts ...pipeline.Option) (*env, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger, err := newLogger(runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	e := &env{runID: runID, settings: settings, logger: logger}
	closers := []func() error{func() error {
		// Sync fails on terminals; nothing useful to report.
		_ = logger.Sync()
		return nil
	}}
	e.close = func() error {
		var err error
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
		return err
	}

	if metricsAddr != "" {
		registry := prometheus.NewRegistry()
		e.stats = statsprom.New(registry, statsprom.WithConstLabels(prometheus.Labels{"run": runID}))
		stop := serveMetrics(metricsAddr, registry, logger)
		closers = append(closers, stop)
	} else {
		collector := statslogger.New(logger.Named("stats"))
		e.stats = collector
		closers = append(closers, func() error {
			collector.Flush()
			return nil
		})
	}

	st, err := files.OpenStore(ctx, settings.Storage)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	closers = append(closers, st.Close)

	opts = append([]pipeline.Option{
		pipeline.WithStats(e.stats),
		pipeline.WithLogger(logger),
	}, opts...)
	e.pipeline, err = pipeline.New(settings, st, opts...)
	if err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

// serveMetrics serves registry on addr until the returned function is called.
func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) func() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
