// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/shelfsync/internal/platform/constants"
)

// ErrLockHeld is returned by [Locker.Acquire] when another holder owns the key.
var ErrLockHeld = errors.New("redis: lock already held")

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out named, expiring locks.
type Locker struct {
	client redis.UniversalClient
}

// NewLocker wraps a go-redis client.
func NewLocker(client redis.UniversalClient) *Locker {
	return &Locker{client: client}
}

// Lock is a held lock. Call Release when done, the TTL covers crashed holders.
type Lock struct {
	client redis.UniversalClient
	key    string
	token  string
}

// Acquire takes the lock called name for at most ttl.
func (locker *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lock, error) {
	key := constants.RedisPrefixJobLock + name
	token := uuid.NewString()

	acquired, err := locker.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire %s: %w", name, err)
	}
	if !acquired {
		return nil, ErrLockHeld
	}

	return &Lock{client: locker.client, key: key, token: token}, nil
}

// Release frees the lock if it has not expired and been taken over since.
func (lock *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, lock.client, []string{lock.key}, lock.token).Err(); err != nil {
		return fmt.Errorf("redis: release %s: %w", lock.key, err)
	}
	return nil
}
