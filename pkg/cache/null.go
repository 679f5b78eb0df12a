package cache

import (
	"context"
	"time"
)

// NullCache discards writes and misses every read. It stands in when
// caching is turned off (--no-cache, or an API deployment without
// Redis) so callers never branch on a nil cache.
type NullCache struct{}

// NewNullCache returns the no-op cache.
func NewNullCache() Cache {
	return NullCache{}
}

// Get always misses.
func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close is a no-op.
func (NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = NullCache{}
