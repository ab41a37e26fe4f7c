// Package filestore defines the object-store capability bucketlink depends on.
//
// Drivers (MinIO, AWS S3) implement Store. The link resolver and the bucket
// provisioner depend only on this package, never on a driver package.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	ok, err := store.ObjectExists(ctx, "docs", "report.pdf")
package filestore

import (
	"context"
	"time"
)

// DefaultLinkTTL is the validity window of a presigned link when the
// caller does not choose one.
const DefaultLinkTTL = time.Hour

// Store is the interface every object-store driver implements.
// Implementations must be safe for concurrent use.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// ListBuckets returns all buckets accessible with the configured credentials.
	ListBuckets(ctx context.Context) ([]BucketInfo, error)

	// BucketExists reports whether bucket exists. A missing bucket is
	// (false, nil), not an error.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// MakeBucket creates bucket. Creating a bucket that already exists
	// returns an error of kind errs.ErrKindAlreadyExists.
	MakeBucket(ctx context.Context, bucket string) error

	// StatObject returns metadata for the object at key inside bucket
	// without downloading its content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// ObjectExists reports whether key exists inside bucket. A missing
	// object or bucket is (false, nil).
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// PresignGetURL returns a time-limited URL that allows anyone to download
	// the object at key inside bucket without credentials.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
