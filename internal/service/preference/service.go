package preference

import (
	"context"
	"errors"
	"fmt"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
	"gitee.com/visioncare/notification-center/internal/repository"
)

// Service 通知偏好服务
//
//go:generate mockgen -source=./service.go -destination=./mocks/preference.mock.go -package=preferencemocks -typed Service
type Service interface {
	// GetByRecipient 查询接收者偏好，首次查询时懒创建默认值
	GetByRecipient(ctx context.Context, recipient string) (domain.Preferences, error)
	// Update 部分合并更新，记录不存在时先懒创建默认值再合并
	Update(ctx context.Context, recipient string, patch domain.PreferencesPatch) (domain.Preferences, error)
}

type service struct {
	repo repository.PreferenceRepository
}

func NewService(repo repository.PreferenceRepository) Service {
	return &service{repo: repo}
}

func (s *service) GetByRecipient(ctx context.Context, recipient string) (domain.Preferences, error) {
	prefs, err := s.repo.Get(ctx, recipient)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, errs.ErrPreferencesNotFound) {
		return domain.Preferences{}, fmt.Errorf("failed to load preferences for %q: %w", recipient, err)
	}

	prefs = domain.DefaultPreferences(recipient)
	if err := s.repo.Save(ctx, prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to store default preferences for %q: %w", recipient, err)
	}
	return prefs, nil
}

func (s *service) Update(ctx context.Context, recipient string, patch domain.PreferencesPatch) (domain.Preferences, error) {
	prefs, err := s.GetByRecipient(ctx, recipient)
	if err != nil {
		return domain.Preferences{}, err
	}
	merged := prefs.Merge(patch)
	if err := s.repo.Save(ctx, merged); err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to update preferences for %q: %w", recipient, err)
	}
	return merged, nil
}
