// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package langfilter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/shelfsync/internal/platform/constants"
)

// RedisCache keeps detections as JSON strings without expiry.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps a go-redis client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (cache *RedisCache) Get(ctx context.Context, title string) (Detection, bool, error) {
	raw, err := cache.client.Get(ctx, constants.RedisPrefixTitleLanguage+title).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Detection{}, false, nil
		}
		return Detection{}, false, fmt.Errorf("redis_get_title_language_failed: %w", err)
	}

	var detection Detection
	if err := json.Unmarshal(raw, &detection); err != nil {
		return Detection{}, false, fmt.Errorf("redis_decode_title_language_failed: %w", err)
	}
	return detection, true, nil
}

// PutIfAbsent stores detection with SETNX; an existing entry wins.
func (cache *RedisCache) PutIfAbsent(ctx context.Context, title string, detection Detection) error {
	raw, err := json.Marshal(detection)
	if err != nil {
		return err
	}

	if err := cache.client.SetNX(ctx, constants.RedisPrefixTitleLanguage+title, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis_put_title_language_failed: %w", err)
	}
	return nil
}
