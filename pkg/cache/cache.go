// Package cache provides pluggable byte caches for merge results.
//
// Normalization is deterministic and idempotent, so a merge result can be
// cached by a content hash of the layer's shapes plus the tolerance
// configuration and replayed safely. Three backends are provided:
//
//   - [FileCache]: local directory cache for CLI usage
//   - [RedisCache]: shared cache for the HTTP API
//   - [NullCache]: no-op cache for tests or disabled caching
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional TTL.
// Implementations must treat a missing key as a miss, not an error.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// MergeKeyOpts identifies one normalization configuration for cache
// keying. Two calls with equal shape hashes and equal options produce
// identical results.
type MergeKeyOpts struct {
	LayerID      string  `json:"layer_id"`
	Endpoints    float64 `json:"endpoints"`
	Intersection float64 `json:"intersection"`
	ShortSegment float64 `json:"short_segment"`
}

// MergeKey generates the cache key for a merge result from the content
// hash of the input shapes and the normalization options.
func MergeKey(shapesHash string, opts MergeKeyOpts) string {
	return namespacedKey("merge", shapesHash, opts)
}
