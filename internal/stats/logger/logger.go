// Package logger provides a stats collector that keeps running totals and
// logs them with zap. It is used when no metrics endpoint is configured.
package logger

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/seqpipe/pairedio/internal/stats"
)

// Collector implements stats.Collector by accumulating counters and logging
// each update at debug level. Flush logs the totals at info level.
type Collector struct {
	logger *zap.Logger

	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]int64
	observed map[string]int64
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new logger-based collector.
// If logger is nil, a no-op logger is used.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		logger:   logger,
		counters: make(map[string]int64),
		gauges:   make(map[string]int64),
		observed: make(map[string]int64),
	}
}

// IncCounter adds delta to a running total.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.counters[name] += delta
	total := c.counters[name]
	c.mu.Unlock()

	c.logger.Debug("counter",
		zap.String("metric", name),
		zap.Int64("delta", delta),
		zap.Int64("total", total),
	)
}

// SetGauge records the latest value of a gauge.
func (c *Collector) SetGauge(name string, value int64) {
	c.mu.Lock()
	c.gauges[name] = value
	c.mu.Unlock()

	c.logger.Debug("gauge",
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs an observation and counts it.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.mu.Lock()
	c.observed[name]++
	c.mu.Unlock()

	c.logger.Debug("histogram",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}

// Counter returns the running total of a counter.
func (c *Collector) Counter(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

// Flush logs every counter total and the number of histogram observations,
// in name order.
func (c *Collector) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make([]zap.Field, 0, len(c.counters)+len(c.observed))
	for _, name := range sortedKeys(c.counters) {
		fields = append(fields, zap.Int64(name, c.counters[name]))
	}
	for _, name := range sortedKeys(c.observed) {
		fields = append(fields, zap.Int64(name+"_count", c.observed[name]))
	}
	c.logger.Info("metrics", fields...)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
