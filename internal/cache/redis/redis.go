// Package redis provides a go-redis implementation of cache.Store.
//
// Compressed values are stored as raw zstd frames; uncompressed values are
// stored as plain strings.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/koustreak/bucketlink/internal/cache"
	"github.com/koustreak/bucketlink/internal/errs"
	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config holds Redis connection configuration.
type Config struct {
	// URL is a redis:// or rediss:// connection string,
	// e.g. "redis://:secret@localhost:6379/0".
	URL string

	// PoolSize overrides the go-redis default when non-zero.
	PoolSize int
}

// Cache implements cache.Store on a pooled go-redis client.
type Cache struct {
	client *goredis.Client
}

var _ cache.Store = (*Cache)(nil)

// New parses cfg.URL, opens the client and verifies it with a ping.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid redis url", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	c := &Cache{client: goredis.NewClient(opts)}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.client.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) Get(ctx context.Context, key string, compressed bool) (string, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapError(err, "cache get failed")
	}

	if !compressed {
		return string(raw), true, nil
	}
	value, err := cache.Decompress(raw)
	if err != nil {
		return "", false, errs.Wrap(errs.ErrKindQueryFailed, "cache value is not compressed", err)
	}
	return value, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration, compress bool) error {
	var payload any = value
	if compress {
		payload = cache.Compress(value)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return mapError(err, "cache set failed")
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return mapError(err, "cache delete failed")
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return mapError(err, "failed to connect to redis")
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func mapError(err error, msg string) *errs.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	var rerr goredis.Error
	if errors.As(err, &rerr) {
		// The server answered; the command itself failed.
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
