// Package artifact stages share payloads in a gocloud blob bucket.
package artifact

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"medtrack/config"
	"medtrack/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets on device
	_ "gocloud.dev/blob/memblob"  // mem:// buckets in tests
	"gocloud.dev/gcerrors"
)

// Store implements service.ArtifactStore on top of a blob bucket.
type Store struct {
	bucket  *blob.Bucket
	baseURL string
	logger  *slog.Logger
}

var _ service.ArtifactStore = (*Store)(nil)

// Params holds dependencies for the artifact store, injected by Fx.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

// New opens the configured share bucket and closes it when the app stops.
func New(params Params) (*Store, error) {
	bucketURL := "mem://"
	if params.Config.Share != nil && params.Config.Share.BucketURL != "" {
		bucketURL = params.Config.Share.BucketURL
	}

	store, err := Open(context.Background(), bucketURL, params.Logger)
	if err != nil {
		return nil, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

// Open opens bucketURL. Local file buckets get their directory created.
func Open(ctx context.Context, bucketURL string, logger *slog.Logger) (*Store, error) {
	parsed, err := url.Parse(bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid bucket url %q", bucketURL)
	}

	if parsed.Scheme == "file" {
		if err := os.MkdirAll(parsed.Path, 0o750); err != nil {
			return nil, errors.Wrap(err, "failed to create share directory")
		}
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %q", bucketURL)
	}

	parsed.RawQuery = ""
	baseURL := parsed.String()
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Store{
		bucket:  bucket,
		baseURL: baseURL,
		logger:  logger,
	}, nil
}

// Put writes data under key and returns the artifact's URL.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return "", errors.Wrapf(err, "failed to write artifact %q", key)
	}

	s.logger.Debug("Artifact staged", slog.String("key", key), slog.Int("bytes", len(data)))

	return s.baseURL + key, nil
}

// Delete removes key. A missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, key)
	if err == nil || gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}

	return errors.Wrapf(err, "failed to delete artifact %q", key)
}

// Read returns the staged bytes under key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read artifact %q", key)
	}

	return data, nil
}

// Close releases the bucket.
func (s *Store) Close() error {
	return errors.Wrap(s.bucket.Close(), "failed to close bucket")
}
