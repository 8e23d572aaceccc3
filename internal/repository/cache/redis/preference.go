package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/repository/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Cache Redis偏好缓存
type Cache struct {
	rdb redis.Cmdable
}

func NewCache(rdb redis.Cmdable) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context, recipient string) (domain.Preferences, error) {
	key := cache.PreferenceKey(recipient)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// 键不存在
			return domain.Preferences{}, cache.ErrKeyNotFound
		}
		return domain.Preferences{}, fmt.Errorf("failed to get preferences from redis %w", err)
	}

	var prefs domain.Preferences
	if err := json.Unmarshal([]byte(val), &prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to unmarshal preferences data %w", err)
	}
	return prefs, nil
}

func (c *Cache) Set(ctx context.Context, prefs domain.Preferences) error {
	key := cache.PreferenceKey(prefs.Recipient)
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences data %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, cache.DefaultExpiredTime).Err(); err != nil {
		return fmt.Errorf("failed to set preferences to redis %w", err)
	}
	return nil
}
