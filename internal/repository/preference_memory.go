package repository

import (
	"context"
	"fmt"
	"sync"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
)

// memoryPreferenceRepository 进程内偏好存储，默认实现
type memoryPreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[string]domain.Preferences
}

func NewMemoryPreferenceRepository() PreferenceRepository {
	return &memoryPreferenceRepository{
		prefs: make(map[string]domain.Preferences),
	}
}

func (r *memoryPreferenceRepository) Get(_ context.Context, recipient string) (domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefs, ok := r.prefs[recipient]
	if !ok {
		return domain.Preferences{}, fmt.Errorf("%w: %q", errs.ErrPreferencesNotFound, recipient)
	}
	return prefs, nil
}

func (r *memoryPreferenceRepository) Save(_ context.Context, prefs domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[prefs.Recipient] = prefs
	return nil
}
