package cache

import (
	"context"
	"fmt"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"github.com/pkg/errors"
)

var ErrKeyNotFound = errors.New("key not found")

// DefaultExpiredTime 偏好缓存过期时间
const DefaultExpiredTime = 10 * time.Minute

// PreferenceCache 偏好缓存接口，Redis与本地实现共用
type PreferenceCache interface {
	Get(ctx context.Context, recipient string) (domain.Preferences, error)
	Set(ctx context.Context, prefs domain.Preferences) error
}

// PreferenceKey 生成偏好缓存键
func PreferenceKey(recipient string) string {
	return fmt.Sprintf("preference:%s", recipient)
}
