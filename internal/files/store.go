package files

import (
	"context"
	"fmt"

	"github.com/seqpipe/pairedio/internal/config"
	"github.com/seqpipe/pairedio/internal/store"
	"github.com/seqpipe/pairedio/internal/store/blobstore"
	"github.com/seqpipe/pairedio/internal/store/diskstore"
	"github.com/seqpipe/pairedio/internal/store/gcsstore"
	"github.com/seqpipe/pairedio/internal/store/s3store"
)

// OpenStore opens the store selected by cfg.Backend.
func OpenStore(ctx context.Context, cfg config.Storage) (store.Store, error) {
	switch cfg.Backend {
	case "", config.BackendDisk:
		root := cfg.Root
		if root == "" {
			root = "."
		}
		return diskstore.New(root)

	case config.BackendS3:
		opts := []s3store.Option{s3store.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(cfg.Endpoint))
		}
		return s3store.New(ctx, cfg.Bucket, opts...)

	case config.BackendGCS:
		return gcsstore.New(ctx, cfg.Bucket, gcsstore.WithPrefix(cfg.Prefix))

	case config.BackendBlob:
		return blobstore.Open(ctx, cfg.URL, cfg.Prefix)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
