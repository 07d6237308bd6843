// Package files maps read types to streams: it resolves configured names
// against a store, detects compressed inputs and compresses outputs.
package files

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seqpipe/pairedio"
	"github.com/seqpipe/pairedio/internal/codec"
	"github.com/seqpipe/pairedio/internal/codec/bzip2codec"
	"github.com/seqpipe/pairedio/internal/codec/gzipcodec"
	"github.com/seqpipe/pairedio/internal/codec/noopcodec"
	"github.com/seqpipe/pairedio/internal/codec/zstdcodec"
	"github.com/seqpipe/pairedio/internal/config"
	"github.com/seqpipe/pairedio/internal/store"
)

const sniffSize = 4

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Compile-time check that Resolver implements pairedio.Opener.
var _ pairedio.Opener = (*Resolver)(nil)

// Resolver opens the inputs and outputs of a run. It does not own the
// store; close the store after every stream is closed.
type Resolver struct {
	store    store.Store
	settings config.Settings
	output   codec.Codec
	logger   *zap.Logger
}

// New returns a Resolver for settings over st. The output codec is chosen
// from settings.Compression.
func New(st store.Store, settings config.Settings, logger *zap.Logger) (*Resolver, error) {
	c, err := CodecByName(settings.Compression, settings.CompressionLevel)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:    st,
		settings: settings,
		output:   c,
		logger:   logger,
	}, nil
}

// CodecByName returns the codec for a compression name.
func CodecByName(name string, level int) (codec.Codec, error) {
	switch name {
	case "", config.CompressionNone:
		return noopcodec.New(), nil
	case config.CompressionGzip:
		return gzipcodec.New(level), nil
	case config.CompressionBzip2:
		return bzip2codec.New(level), nil
	case config.CompressionZstd:
		return zstdcodec.New(level), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}

// Detect returns the codec matching the magic bytes at the head of br
// without consuming them. Unrecognized or short input is treated as plain
// text. Read errors other than io.EOF are returned.
func Detect(br *bufio.Reader) (codec.Codec, error) {
	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("sniffing compression: %w", err)
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return gzipcodec.New(codec.DefaultLevel), nil
	case bytes.HasPrefix(head, bzip2Magic):
		return bzip2codec.New(codec.DefaultLevel), nil
	case bytes.HasPrefix(head, zstdMagic):
		return zstdcodec.New(codec.DefaultLevel), nil
	default:
		return noopcodec.New(), nil
	}
}

// OpenInput opens the input of a mate, decompressing it if needed.
func (r *Resolver) OpenInput(ctx context.Context, mate pairedio.ReadType) (io.ReadCloser, error) {
	name, err := r.settings.InputPath(mate)
	if err != nil {
		return nil, err
	}
	return r.Open(ctx, name)
}

// Open opens a named object, decompressing it if needed.
func (r *Resolver) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	raw, err := r.store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}

	br := bufio.NewReader(raw)
	c, err := Detect(br)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("opening %s: %w", name, err), raw.Close())
	}
	decoded, err := c.Reader(br)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("decoding %s as %s: %w", name, c.Name(), err), raw.Close())
	}

	r.logger.Debug("input opened", zap.String("name", name), zap.String("codec", c.Name()))

	return &readChain{Reader: decoded, closers: []io.Closer{decoded, raw}}, nil
}

// OpenOutput creates or truncates the output of a read type, compressing
// it with the configured codec.
func (r *Resolver) OpenOutput(ctx context.Context, role pairedio.ReadType) (io.WriteCloser, error) {
	name := r.OutputPath(role)

	raw, err := r.store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}

	encoded, err := r.output.Writer(raw)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("encoding %s as %s: %w", name, r.output.Name(), err), raw.Close())
	}

	r.logger.Debug("output opened", zap.String("name", name), zap.String("codec", r.output.Name()))

	return &writeChain{Writer: encoded, closers: []io.Closer{encoded, raw}}, nil
}

// OutputPath returns the name an output is written to.
func (r *Resolver) OutputPath(role pairedio.ReadType) string {
	return r.settings.OutputPath(role, r.output.Extension())
}

// readChain reads from the outermost decoder and closes every layer,
// innermost decoder first.
type readChain struct {
	io.Reader
	closers []io.Closer
}

func (c *readChain) Close() error {
	return closeAll(c.closers)
}

// writeChain writes to the outermost encoder. Close completes the encoded
// stream before closing the object beneath it.
type writeChain struct {
	io.Writer
	closers []io.Closer
}

func (c *writeChain) Close() error {
	return closeAll(c.closers)
}

func closeAll(closers []io.Closer) error {
	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
