package repository

import (
	"context"
	"errors"
	"fmt"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/repository/cache"
	"gitee.com/visioncare/notification-center/internal/repository/dao"
	"github.com/gotomicro/ego/core/elog"
)

// PreferenceRepository 接收者偏好的键值存储。记录只增改不删
//
//go:generate mockgen -source=./preference.go -destination=./mocks/preference.mock.go -package=repomocks -typed PreferenceRepository
type PreferenceRepository interface {
	// Get 未找到时返回 errs.ErrPreferencesNotFound
	Get(ctx context.Context, recipient string) (domain.Preferences, error)
	Save(ctx context.Context, prefs domain.Preferences) error
}

// preferenceRepository GORM落库实现，前面可叠加缓存装饰器
type preferenceRepository struct {
	d dao.PreferenceDAO
}

func NewPreferenceRepository(d dao.PreferenceDAO) PreferenceRepository {
	return &preferenceRepository{d: d}
}

func (r *preferenceRepository) Get(ctx context.Context, recipient string) (domain.Preferences, error) {
	entity, err := r.d.GetByRecipient(ctx, recipient)
	if err != nil {
		return domain.Preferences{}, err
	}
	return r.toDomain(entity), nil
}

func (r *preferenceRepository) Save(ctx context.Context, prefs domain.Preferences) error {
	return r.d.Upsert(ctx, r.toEntity(prefs))
}

func (r *preferenceRepository) toEntity(p domain.Preferences) dao.Preference {
	entity := dao.Preference{
		Recipient:            p.Recipient,
		Email:                p.Email,
		SMS:                  p.SMS,
		AppointmentReminders: p.AppointmentReminders,
		SatisfactionSurveys:  p.SatisfactionSurveys,
		Marketing:            p.Marketing,
		Timezone:             p.Timezone,
		Language:             p.Language,
	}
	if p.QuietHours != nil {
		entity.QuietHoursStart = p.QuietHours.Start
		entity.QuietHoursEnd = p.QuietHours.End
		entity.QuietHoursTimezone = p.QuietHours.Timezone
	}
	return entity
}

func (r *preferenceRepository) toDomain(entity dao.Preference) domain.Preferences {
	p := domain.Preferences{
		Recipient:            entity.Recipient,
		Email:                entity.Email,
		SMS:                  entity.SMS,
		AppointmentReminders: entity.AppointmentReminders,
		SatisfactionSurveys:  entity.SatisfactionSurveys,
		Marketing:            entity.Marketing,
		Timezone:             entity.Timezone,
		Language:             entity.Language,
	}
	if entity.QuietHoursStart != "" || entity.QuietHoursEnd != "" {
		p.QuietHours = &domain.QuietHours{
			Start:    entity.QuietHoursStart,
			End:      entity.QuietHoursEnd,
			Timezone: entity.QuietHoursTimezone,
		}
	}
	return p
}

// CachedPreferenceRepository 本地+Redis两级缓存装饰器，缓存错误降级直查底层存储
type CachedPreferenceRepository struct {
	repo   PreferenceRepository
	local  cache.PreferenceCache
	remote cache.PreferenceCache
	logger *elog.Component
}

func NewCachedPreferenceRepository(repo PreferenceRepository, local, remote cache.PreferenceCache) *CachedPreferenceRepository {
	return &CachedPreferenceRepository{
		repo:   repo,
		local:  local,
		remote: remote,
		logger: elog.DefaultLogger,
	}
}

func (r *CachedPreferenceRepository) Get(ctx context.Context, recipient string) (domain.Preferences, error) {
	if prefs, err := r.local.Get(ctx, recipient); err == nil {
		return prefs, nil
	}
	if prefs, err := r.remote.Get(ctx, recipient); err == nil {
		if serr := r.local.Set(ctx, prefs); serr != nil {
			r.logger.Warn("回填本地偏好缓存失败", elog.FieldErr(serr))
		}
		return prefs, nil
	} else if !errors.Is(err, cache.ErrKeyNotFound) {
		r.logger.Warn("读取偏好缓存失败", elog.FieldErr(err))
	}

	prefs, err := r.repo.Get(ctx, recipient)
	if err != nil {
		return domain.Preferences{}, err
	}
	r.fill(ctx, prefs)
	return prefs, nil
}

func (r *CachedPreferenceRepository) Save(ctx context.Context, prefs domain.Preferences) error {
	if err := r.repo.Save(ctx, prefs); err != nil {
		return fmt.Errorf("failed to persist preferences: %w", err)
	}
	r.fill(ctx, prefs)
	return nil
}

func (r *CachedPreferenceRepository) fill(ctx context.Context, prefs domain.Preferences) {
	if err := r.local.Set(ctx, prefs); err != nil {
		r.logger.Warn("写本地偏好缓存失败", elog.FieldErr(err))
	}
	if err := r.remote.Set(ctx, prefs); err != nil {
		r.logger.Warn("写Redis偏好缓存失败", elog.FieldErr(err))
	}
}
