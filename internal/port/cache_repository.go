package port

import (
	"context"
	"time"
)

// CacheRepository is the volatile key/value layer. It doubles as the
// distributed-lock store: SetNX is the lock-acquisition primitive, and TTLs
// bound both cache staleness and the damage of a crashed lock holder.
type CacheRepository interface {
	// Get returns the cached blob, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX atomically creates key only if absent, returning whether this
	// caller won.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeleteByPattern removes every key matching a glob-style pattern,
	// e.g. "products:*".
	DeleteByPattern(ctx context.Context, pattern string) error
}
