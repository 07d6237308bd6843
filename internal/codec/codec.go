// Package codec provides compression and decompression for FASTQ streams.
package codec

import "io"

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it. Closing the returned
	// writer completes the compressed stream but does not close w.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
	// Name returns the configuration name (e.g., "zstd", "gzip", "none").
	Name() string
}

// Level values accepted by codec constructors.
const (
	// DefaultLevel selects the codec's own default.
	DefaultLevel = 0
)
