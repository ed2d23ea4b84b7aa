// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package runlock keeps list synchronisation jobs to one run at a time.
package runlock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/redis"
)

// TTL bounds a run. A crashed run frees its lock once it expires.
const TTL = 30 * time.Minute

// Releaser is a held lock.
type Releaser interface {
	Release(ctx context.Context) error
}

// Locker hands out run locks. [RedisLocker] adapts the platform locker.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (Releaser, error)
}

// RedisLocker adapts [*redis.Locker] to [Locker].
type RedisLocker struct {
	Locker *redis.Locker
}

func (locker RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (Releaser, error) {
	lock, err := locker.Locker.Acquire(ctx, name, ttl)
	if err != nil {
		return nil, err
	}
	return lock, nil
}

/*
Hold takes the named lock for [TTL].

Description: The returned release outlives the caller's cancellation, so an
aborted run still unlocks.

Returns:
  - func(): Releases the lock, logging a failure
  - error: Conflict carrying busy when another run holds the lock
*/
func Hold(ctx context.Context, locker Locker, name, busy string, logger *slog.Logger) (func(), error) {
	lock, err := locker.Acquire(ctx, name, TTL)
	if errors.Is(err, redis.ErrLockHeld) {
		return nil, apperr.Conflict(busy)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			logger.Warn("sync_unlock_failed", slog.String("lock", name), slog.Any("error", err))
		}
	}, nil
}
