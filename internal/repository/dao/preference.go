package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/visioncare/notification-center/internal/errs"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Preference 接收者偏好表，接收者标识上有唯一索引
type Preference struct {
	ID                   uint64 `gorm:"primaryKey;autoIncrement"`
	Recipient            string `gorm:"type:VARCHAR(256);NOT NULL;uniqueIndex:idx_recipient;comment:'接收者标识，邮箱或手机号'"`
	Email                bool   `gorm:"NOT NULL;DEFAULT:1;comment:'邮件渠道开关'"`
	SMS                  bool   `gorm:"NOT NULL;DEFAULT:1;comment:'短信渠道开关'"`
	AppointmentReminders bool   `gorm:"NOT NULL;DEFAULT:1"`
	SatisfactionSurveys  bool   `gorm:"NOT NULL;DEFAULT:1"`
	Marketing            bool   `gorm:"NOT NULL;DEFAULT:0"`
	Timezone             string `gorm:"type:VARCHAR(64)"`
	Language             string `gorm:"type:VARCHAR(16)"`
	QuietHoursStart      string `gorm:"type:VARCHAR(5);comment:'HH:MM'"`
	QuietHoursEnd        string `gorm:"type:VARCHAR(5);comment:'HH:MM'"`
	QuietHoursTimezone   string `gorm:"type:VARCHAR(64)"`
	Ctime                int64
	Utime                int64
}

// PreferenceDAO 偏好数据访问
type PreferenceDAO interface {
	GetByRecipient(ctx context.Context, recipient string) (Preference, error)
	Upsert(ctx context.Context, data Preference) error
}

type preferenceDAO struct {
	db *egorm.Component
}

func NewPreferenceDAO(db *egorm.Component) PreferenceDAO {
	return &preferenceDAO{db: db}
}

func (d *preferenceDAO) GetByRecipient(ctx context.Context, recipient string) (Preference, error) {
	var entity Preference
	err := d.db.WithContext(ctx).Where("recipient = ?", recipient).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Preference{}, fmt.Errorf("%w: %q", errs.ErrPreferencesNotFound, recipient)
		}
		return Preference{}, err
	}
	return entity, nil
}

func (d *preferenceDAO) Upsert(ctx context.Context, data Preference) error {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "recipient"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "sms", "appointment_reminders", "satisfaction_surveys", "marketing",
			"timezone", "language", "quiet_hours_start", "quiet_hours_end", "quiet_hours_timezone",
			"utime",
		}),
	}).Create(&data).Error
}
