package pairedio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// fakeOpener serves inputs from strings and collects outputs in buffers.
type fakeOpener struct {
	mu      sync.Mutex
	inputs  map[ReadType]string
	outputs map[ReadType]*closeBuffer
	opens   int
	readErr error
	openErr error
}

func newFakeOpener(inputs map[ReadType]string) *fakeOpener {
	return &fakeOpener{
		inputs:  inputs,
		outputs: make(map[ReadType]*closeBuffer),
	}
}

func (o *fakeOpener) OpenInput(ctx context.Context, mate ReadType) (io.ReadCloser, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if o.openErr != nil {
		return nil, o.openErr
	}
	data, ok := o.inputs[mate]
	if !ok {
		return nil, fmt.Errorf("no input for %s", mate)
	}
	var r io.Reader = strings.NewReader(data)
	if o.readErr != nil {
		r = io.MultiReader(r, &errReader{err: o.readErr})
	}
	return io.NopCloser(r), nil
}

func (o *fakeOpener) OpenOutput(ctx context.Context, role ReadType) (io.WriteCloser, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if o.openErr != nil {
		return nil, o.openErr
	}
	buf := &closeBuffer{}
	o.outputs[role] = buf
	return buf, nil
}

func (o *fakeOpener) output(role ReadType) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if buf, ok := o.outputs[role]; ok {
		return buf.String()
	}
	return ""
}

type closeBuffer struct {
	bytes.Buffer
	closed   bool
	writeErr error
}

func (b *closeBuffer) Write(p []byte) (int, error) {
	if b.writeErr != nil {
		return 0, b.writeErr
	}
	return b.Buffer.Write(p)
}

func (b *closeBuffer) Close() error {
	if b.closed {
		return errors.New("closed twice")
	}
	b.closed = true
	return nil
}

type errReader struct {
	err error
}

func (r *errReader) Read(p []byte) (int, error) {
	return 0, r.err
}

// numberedLines returns n lines "line1" .. "lineN", newline terminated.
func numberedLines(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "line%d\n", i)
	}
	return sb.String()
}
