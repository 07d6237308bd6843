// Package gzipcodec provides a gzip compression codec.
//
// Compression runs on multiple goroutines through pgzip; FASTQ output is
// large and gzip is usually the bottleneck of a trimming run.
package gzipcodec

import (
	"io"

	"github.com/klauspost/pgzip"

	"github.com/seqpipe/pairedio/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements gzip compression.
type Codec struct {
	level int
}

// New returns a new gzip codec. A level of codec.DefaultLevel uses
// gzip.DefaultCompression; otherwise 1 (fastest) to 9 (best).
func New(level int) *Codec {
	if level == codec.DefaultLevel {
		level = pgzip.DefaultCompression
	}
	return &Codec{level: level}
}

// Reader wraps r to decompress gzip data. Concatenated gzip members, as
// written by many sequencers, are read as one stream.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return pgzip.NewReader(r)
}

// Writer wraps w to compress data with gzip.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return pgzip.NewWriterLevel(w, c.level)
}

// Extension returns "gz".
func (c *Codec) Extension() string {
	return "gz"
}

// Name returns "gzip".
func (c *Codec) Name() string {
	return "gzip"
}
