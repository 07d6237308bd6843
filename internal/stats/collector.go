// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Reader metrics.
	MetricChunksRead = "pairedio_chunks_read_total"
	MetricLinesRead  = "pairedio_lines_read_total"

	// Writer metrics.
	MetricChunksWritten = "pairedio_chunks_written_total"
	MetricLinesWritten  = "pairedio_lines_written_total"
	MetricBytesWritten  = "pairedio_bytes_written_total"
	MetricWriteSeconds  = "pairedio_write_seconds"

	// Scheduler metrics.
	MetricChunksInFlight  = "pairedio_chunks_in_flight"
	MetricChunksReordered = "pairedio_chunks_reordered"
	MetricChunksProcessed = "pairedio_chunks_processed_total"
	MetricStageSeconds    = "pairedio_stage_seconds"
)

var help = map[string]string{
	MetricChunksRead:      "Non-empty batches read from the mate inputs.",
	MetricLinesRead:       "Lines read from the mate inputs.",
	MetricChunksWritten:   "Non-empty batches written to outputs.",
	MetricLinesWritten:    "Lines written to outputs.",
	MetricBytesWritten:    "Bytes written to outputs before compression.",
	MetricWriteSeconds:    "Time spent writing one batch.",
	MetricChunksInFlight:  "Chunks taken from the pool and not yet returned.",
	MetricChunksReordered: "Chunks held back waiting for an earlier offset.",
	MetricChunksProcessed: "Chunks passed through all transformation stages.",
	MetricStageSeconds:    "Time spent in the transformation stages for one chunk.",
}

// Help returns the description of a metric, or its name if unknown.
func Help(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
