// Package prometheus exports pairedio metrics to a Prometheus registry.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seqpipe/pairedio/internal/stats"
)

// DurationBuckets are the histogram buckets for per-batch timings, from
// 100µs to about 26s.
var DurationBuckets = prometheus.ExponentialBuckets(0.0001, 4, 10)

// Collector implements stats.Collector with Prometheus metrics created on
// first use.
type Collector struct {
	registry prometheus.Registerer
	labels   prometheus.Labels

	mu      sync.RWMutex
	metrics map[string]prometheus.Collector
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithConstLabels attaches labels to every metric, such as a run id.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Collector) {
		c.labels = labels
	}
}

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer, opts ...Option) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	c := &Collector{
		registry: registry,
		metrics:  make(map[string]prometheus.Collector),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IncCounter adds delta to a counter. Negative deltas are ignored.
func (c *Collector) IncCounter(name string, delta int64) {
	if delta < 0 {
		return
	}
	counter := lookup(c, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Name:        name,
			Help:        stats.Help(name),
			ConstLabels: c.labels,
		})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := lookup(c, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        name,
			Help:        stats.Help(name),
			ConstLabels: c.labels,
		})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram with DurationBuckets.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := lookup(c, name, func() prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        name,
			Help:        stats.Help(name),
			ConstLabels: c.labels,
			Buckets:     DurationBuckets,
		})
	})
	histogram.Observe(value)
}

// lookup returns the metric registered under name, creating and
// registering it on first use. A metric already in the registry is reused.
// If the name is taken by a metric of another kind, the new metric is used
// unregistered.
func lookup[M prometheus.Collector](c *Collector, name string, create func() M) M {
	c.mu.RLock()
	existing, ok := c.metrics[name].(M)
	c.mu.RUnlock()
	if ok {
		return existing
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok = c.metrics[name].(M); ok {
		return existing
	}

	metric := create()
	if err := c.registry.Register(metric); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				metric = existing
			}
		}
	}
	c.metrics[name] = metric
	return metric
}
