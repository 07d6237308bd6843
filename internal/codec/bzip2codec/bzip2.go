// Package bzip2codec provides a bzip2 compression codec.
package bzip2codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/seqpipe/pairedio/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements bzip2 compression.
type Codec struct {
	level int
}

// New returns a new bzip2 codec. Levels run from 1 to 9;
// codec.DefaultLevel selects bzip2.DefaultCompression.
func New(level int) *Codec {
	if level == codec.DefaultLevel {
		level = bzip2.DefaultCompression
	}
	return &Codec{level: level}
}

// Reader wraps r to decompress bzip2 data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}

// Writer wraps w to compress data with bzip2.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: c.level})
}

// Extension returns "bz2".
func (c *Codec) Extension() string {
	return "bz2"
}

// Name returns "bzip2".
func (c *Codec) Name() string {
	return "bzip2"
}
