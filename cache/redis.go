package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stepladder-dev/stepladder/internal/logger"
)

// Redis caches manifests in a Redis instance shared by a fleet, so one
// machine's update check warms the cache for every other.
type Redis struct {
	client *redis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis returns a cache backed by the Redis instance at addr.
func NewRedis(addr string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewRedisWithClient wraps an already configured client.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get returns the cached value. Backend failures are logged and degrade to a
// miss so an unreachable Redis never blocks an update check.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WarnKV(ctx, "Manifest cache read failed, treating as miss", "key", key, "error", err)
		}

		return nil, false
	}

	return value, true
}

// Set stores value under key for ttl.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}

	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying client connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
