package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/port"
	"github.com/google/uuid"
)

// acquireLock claims key via set-if-absent. A held key means another
// operation is in flight and the caller gets domain.ErrLockConflict straight
// back; there is no server-side queueing. The returned release deletes the
// key and must run on every exit path; if the delete fails the TTL expires
// the key anyway.
func acquireLock(ctx context.Context, cache port.CacheRepository, key string, ttl time.Duration, log *slog.Logger) (func(), error) {
	token := uuid.NewString()

	ok, err := cache.SetNX(ctx, key, []byte(token), ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockConflict
	}

	release := func() {
		// Release even when the request context is already cancelled.
		if err := cache.Delete(context.WithoutCancel(ctx), key); err != nil {
			log.Warn("lock release failed, ttl will expire it", "key", key, "error", err)
		}
	}
	return release, nil
}
