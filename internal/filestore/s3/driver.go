// Package s3 provides an AWS SDK v2 implementation of filestore.Store.
//
// It talks to AWS S3 when no endpoint is configured, and to any
// S3-compatible server (MinIO, LocalStack, Ceph) in path-style mode when
// one is.
package s3

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/koustreak/bucketlink/internal/errs"
	"github.com/koustreak/bucketlink/internal/filestore"
)

const defaultRegion = "us-east-1"

// Driver implements filestore.Store using aws-sdk-go-v2.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client  *s3.Client
	presign *s3.PresignClient
	region  string
}

var _ filestore.Store = (*Driver)(nil)

// New builds the S3 clients from cfg and pings the backend.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	d, err := newDriver(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func newDriver(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to load AWS config", err)
	}

	client := s3.NewFromConfig(awsCfg, withEndpoint(cfg.Endpoint, cfg.UseSSL))

	// Links handed to clients may need a different host than the one the
	// service uses internally.
	presignBase := client
	if cfg.PublicEndpoint != "" {
		presignBase = s3.NewFromConfig(awsCfg, withEndpoint(cfg.PublicEndpoint, cfg.UseSSL))
	}

	return &Driver{
		client:  client,
		presign: s3.NewPresignClient(presignBase),
		region:  region,
	}, nil
}

func withEndpoint(endpoint string, useSSL bool) func(*s3.Options) {
	return func(o *s3.Options) {
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(normalizeEndpoint(endpoint, useSSL))
		o.UsePathStyle = true // required for MinIO
	}
}

func normalizeEndpoint(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// Ping lists buckets to verify credentials and connectivity.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx, &s3.ListBucketsInput{}); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op; the SDK manages its own HTTP transport.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) ListBuckets(ctx context.Context) ([]filestore.BucketInfo, error) {
	out, err := d.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, mapError(err, "failed to list buckets")
	}

	buckets := make([]filestore.BucketInfo, len(out.Buckets))
	for i, b := range out.Buckets {
		buckets[i] = filestore.BucketInfo{
			Name:      aws.ToString(b.Name),
			CreatedAt: aws.ToTime(b.CreationDate),
		}
	}
	return buckets, nil
}

func (d *Driver) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := d.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}
	mapped := mapError(err, "failed to check bucket")
	if mapped.Kind == errs.ErrKindNotFound {
		return false, nil
	}
	return false, mapped
}

func (d *Driver) MakeBucket(ctx context.Context, bucket string) error {
	in := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint.
	if d.region != defaultRegion {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(d.region),
		}
	}
	if _, err := d.client.CreateBucket(ctx, in); err != nil {
		return mapError(err, "failed to create bucket "+bucket)
	}
	return nil
}

func (d *Driver) StatObject(ctx context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	out, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &filestore.ObjectInfo{
		Key:          key,
		Size:         size,
		ContentType:  aws.ToString(out.ContentType),
		ETag:         strings.Trim(aws.ToString(out.ETag), `"`),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

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

func (d *Driver) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = filestore.DefaultLinkTTL
	}
	req, err := d.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", mapError(err, "failed to generate presigned URL")
	}
	return req.URL, nil
}
