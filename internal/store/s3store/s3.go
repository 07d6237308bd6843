// Package s3store implements an AWS S3 storage backend.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/seqpipe/pairedio/internal/store"
)

// DefaultPartSize is the multipart upload part size. With the S3 limit of
// 10000 parts it caps a single object at about 156 GiB.
const DefaultPartSize = 16 << 20

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// API is the subset of the S3 client used by the store.
type API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Compile-time check that the SDK client satisfies API.
var _ API = (*s3.Client)(nil)

// Store is an AWS S3 storage backend.
//
// Reads stream the object body. Writes stream through the SDK multipart
// uploader as they arrive.
type Store struct {
	client   API
	uploader *manager.Uploader
	bucket   string
	prefix   string
	region   string
	endpoint string
	partSize int64
}

// New creates a new S3 store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	s := &Store{bucket: bucketName, partSize: DefaultPartSize}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.client == nil {
		var loadOpts []func(*config.LoadOptions) error
		if s.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(s.region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if s.endpoint != "" {
				o.BaseEndpoint = aws.String(s.endpoint)
				o.UsePathStyle = true
			}
		})
	}

	s.uploader = manager.NewUploader(s.client, func(u *manager.Uploader) {
		u.PartSize = s.partSize
	})

	return s, nil
}

// Option configures a Store.
type Option func(*Store) error

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) error {
		s.prefix = prefix
		return nil
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *Store) error {
		s.region = region
		return nil
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
// Path-style addressing is used with a custom endpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *Store) error {
		if endpoint == "" {
			return errors.New("s3store: empty endpoint")
		}
		s.endpoint = endpoint
		return nil
	}
}

// WithClient replaces the S3 client. Region and endpoint options are
// ignored when a client is given.
func WithClient(client API) Option {
	return func(s *Store) error {
		s.client = client
		return nil
	}
}

// WithPartSize sets the multipart upload part size in bytes.
func WithPartSize(n int64) Option {
	return func(s *Store) error {
		if n < manager.MinUploadPartSize {
			return fmt.Errorf("s3store: part size %d below minimum %d", n, manager.MinUploadPartSize)
		}
		s.partSize = n
		return nil
	}
}

// Open streams the named object.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// Check for cancellation before starting.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", store.ErrNotFound, s.bucket, s.key(name))
		}
		return nil, fmt.Errorf("getting object: %w", err)
	}
	return result.Body, nil
}

// Create returns a writer that streams the object to S3. The upload
// completes when the writer is closed.
func (s *Store) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	w := &uploadWriter{pw: pw, done: make(chan struct{})}

	go func() {
		defer close(w.done)
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name)),
			Body:   pr,
		})
		if err != nil {
			w.err = fmt.Errorf("uploading s3://%s/%s: %w", s.bucket, s.key(name), err)
		}
		// Unblocks pending writes if the upload stopped early.
		pr.CloseWithError(w.err)
	}()

	return w, nil
}

// Close releases resources.
func (s *Store) Close() error {
	// S3 client doesn't need explicit closing.
	return nil
}

// key returns the full object key for a name.
func (s *Store) key(name string) string {
	return store.JoinPrefix(s.prefix, name)
}

// uploadWriter feeds an in-flight upload through a pipe.
type uploadWriter struct {
	pw     *io.PipeWriter
	done   chan struct{}
	err    error // set before done is closed
	closed bool
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	n, err := w.pw.Write(p)
	if err != nil {
		<-w.done
		if w.err != nil {
			return n, w.err
		}
	}
	return n, err
}

func (w *uploadWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_ = w.pw.Close()
	<-w.done
	return w.err
}
