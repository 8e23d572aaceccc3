package local

import (
	"context"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/repository/cache"
	ca "github.com/patrickmn/go-cache"
)

// Cache 进程内偏好缓存，挡掉热点接收者对Redis的反复查询
type Cache struct {
	c *ca.Cache
}

func NewCache(c *ca.Cache) *Cache {
	return &Cache{c: c}
}

func (l *Cache) Get(_ context.Context, recipient string) (domain.Preferences, error) {
	key := cache.PreferenceKey(recipient)
	v, ok := l.c.Get(key)
	if !ok {
		return domain.Preferences{}, cache.ErrKeyNotFound
	}
	return v.(domain.Preferences), nil
}

func (l *Cache) Set(_ context.Context, prefs domain.Preferences) error {
	key := cache.PreferenceKey(prefs.Recipient)
	l.c.Set(key, prefs, cache.DefaultExpiredTime)
	return nil
}
