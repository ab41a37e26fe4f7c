// Package cache defines the key/value capability the link resolver uses to
// remember issued links.
//
// Values are strings; TTLs are owned and enforced by the backend. A value
// written with compress=true must be read back with compressed=true.
package cache

import (
	"context"
	"time"
)

// Store is the interface every cache driver implements.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value under key. A missing key is ("", false, nil).
	Get(ctx context.Context, key string, compressed bool) (string, bool, error)

	// Set writes value under key, replacing any previous value. A zero
	// ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration, compress bool) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases pooled connections.
	Close() error
}
