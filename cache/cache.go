package cache

import (
	"context"
	"time"
)

// ManifestKeyPrefix namespaces manifest entries; the updater appends the
// manifest URL so distinct release feeds never shadow each other.
const ManifestKeyPrefix = "stepladder:manifest:"

// Cache stores small byte payloads with a time-to-live.
type Cache interface {
	// Get returns the cached value. ok is false when the key is absent,
	// expired, or the backend failed; a failed backend is a miss, never an
	// error the caller has to handle.
	Get(ctx context.Context, key string) (value []byte, ok bool)
	// Set stores value under key for ttl. A non-positive ttl stores the
	// value without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
