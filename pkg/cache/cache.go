// Package cache defines the cache abstraction shared by components that
// memoize upstream fetches, with an in-memory TTL implementation. The
// redis package provides the distributed variant of the same interface.
package cache

import (
	"context"
	"time"
)

// Cache is a typed key/value cache with per-entry TTL. Get reports a miss
// (false, nil) for absent or expired keys; implementations must never treat
// a miss as an error.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
