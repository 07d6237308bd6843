// Package pairedio provides the chunked read and write steps of a paired-end
// FASTQ processing pipeline.
//
// A ReadStep fills one mate's line batch of a Chunk with a fixed number of
// raw lines and stamps the chunk with the 1-based offset of its first line.
// Chunks may then be processed out of order by any number of workers; a
// scheduler restores offset order before handing them to WriteSteps, which
// append each output batch verbatim to its file and clear it for reuse.
//
// Example usage:
//
//	mate1, err := pairedio.NewReader(ctx, resolver, pairedio.Mate1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mate1.Close()
//
//	chunk, err := mate1.Process(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d lines from offset %d\n", len(chunk.Mates[0]), chunk.Offset)
package pairedio

import (
	"context"
	"io"
)

// Step is a single stage of the pipeline. The scheduler hands a chunk to
// Process and receives it back; ownership of the chunk moves with the call.
//
// A step instance is not safe for concurrent use. Callers must serialize
// Process and Finalize on a single instance.
type Step interface {
	// Process consumes or fills the chunk and returns it. A nil chunk may be
	// passed to steps that create chunks (readers).
	Process(ctx context.Context, chunk *Chunk) (*Chunk, error)

	// Finalize is called exactly once after the last Process call.
	Finalize(ctx context.Context) error
}

// Opener resolves read types to streams. It is implemented by the file
// resolver, which applies input paths, default output names and compression.
type Opener interface {
	// OpenInput opens the input stream for mate 1 or mate 2.
	OpenInput(ctx context.Context, mate ReadType) (io.ReadCloser, error)

	// OpenOutput creates (or truncates) the output stream for a read type.
	OpenOutput(ctx context.Context, role ReadType) (io.WriteCloser, error)
}
