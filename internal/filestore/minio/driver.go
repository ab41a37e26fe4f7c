// Package minio provides a MinIO implementation of filestore.Store.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	link, err := store.PresignGetURL(ctx, "docs", "report.pdf", time.Hour)
package minio

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/koustreak/bucketlink/internal/errs"
	"github.com/koustreak/bucketlink/internal/filestore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultRegion = "us-east-1"

// Driver is a MinIO implementation of filestore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client  *miniogo.Client
	presign *miniogo.Client // same as client unless a public endpoint is configured
	region  string
}

var _ filestore.Store = (*Driver)(nil)

// New connects to MinIO using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	d, err := newDriver(cfg)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// newDriver builds the clients without touching the network.
func newDriver(cfg *filestore.Config) (*Driver, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	client, err := newClient(cfg.Endpoint, cfg, region)
	if err != nil {
		return nil, err
	}

	presign := client
	if cfg.PublicEndpoint != "" {
		presign, err = newClient(cfg.PublicEndpoint, cfg, region)
		if err != nil {
			return nil, err
		}
	}

	return &Driver{client: client, presign: presign, region: region}, nil
}

func newClient(endpoint string, cfg *filestore.Config, region string) (*miniogo.Client, error) {
	host, secure, err := splitEndpoint(endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	client, err := miniogo.New(host, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}
	return client, nil
}

// splitEndpoint accepts either "host:port" or a full URL. A URL scheme
// overrides useSSL.
func splitEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, useSSL, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", false, errs.Wrap(errs.ErrKindInvalidInput, "invalid storage endpoint", err)
	}
	return u.Host, u.Scheme == "https", nil
}

// --- filestore.Store implementation ---

// Ping verifies the MinIO server is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op for MinIO; the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// ListBuckets returns all buckets accessible with the configured credentials.
func (d *Driver) ListBuckets(ctx context.Context) ([]filestore.BucketInfo, error) {
	raw, err := d.client.ListBuckets(ctx)
	if err != nil {
		return nil, mapError(err, "failed to list buckets")
	}

	buckets := make([]filestore.BucketInfo, len(raw))
	for i, b := range raw {
		buckets[i] = filestore.BucketInfo{
			Name:      b.Name,
			CreatedAt: b.CreationDate,
		}
	}
	return buckets, nil
}

// BucketExists reports whether bucket exists.
func (d *Driver) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ok, err := d.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, mapError(err, "failed to check bucket")
	}
	return ok, nil
}

// MakeBucket creates bucket in the configured region.
func (d *Driver) MakeBucket(ctx context.Context, bucket string) error {
	err := d.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{Region: d.region})
	if err != nil {
		return mapError(err, "failed to create bucket "+bucket)
	}
	return nil
}

// StatObject returns metadata for the object at key inside bucket
// without downloading its content.
func (d *Driver) StatObject(ctx context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	stat, err := d.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	return &filestore.ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

// ObjectExists stats the object and folds "not found" into false.
func (d *Driver) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := d.StatObject(ctx, bucket, key)
	switch {
	case err == nil:
		return true, nil
	case errs.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// PresignGetURL returns a time-limited public download URL for the object.
func (d *Driver) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = filestore.DefaultLinkTTL
	}
	u, err := d.presign.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", mapError(err, "failed to generate presigned URL")
	}
	return u.String(), nil
}
