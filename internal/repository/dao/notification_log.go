package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/visioncare/notification-center/internal/errs"
	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// NotificationLog 投递日志表
type NotificationLog struct {
	ID         uint64  `gorm:"primaryKey;comment:'雪花算法ID'"`
	Channel    string  `gorm:"type:ENUM('sms','email');NOT NULL;index:idx_status_retry,priority:2;comment:'发送渠道'"`
	Recipient  string  `gorm:"type:VARCHAR(256);NOT NULL;comment:'接收者标识，邮箱或手机号'"`
	Template   string  `gorm:"type:VARCHAR(64);NOT NULL;comment:'模板名'"`
	Status     string  `gorm:"type:ENUM('pending','sent','failed','delivered','bounced');NOT NULL;index:idx_status_retry,priority:1;comment:'发送状态'"`
	MessageID  string  `gorm:"type:VARCHAR(128);comment:'供应商消息ID'"`
	Provider   string  `gorm:"type:VARCHAR(64);comment:'供应商名称'"`
	Error      string  `gorm:"type:TEXT;comment:'失败原因'"`
	Cost       float64 `gorm:"comment:'单条成本，美元'"`
	SentAt     int64   `gorm:"NOT NULL;index;comment:'发送时间，毫秒'"`
	RetryCount int8    `gorm:"NOT NULL;DEFAULT:0;comment:'重试次数'"`
	Metadata   string  `gorm:"type:TEXT;comment:'预约ID、医生姓名、优先级等，JSON'"`
	Ctime      int64
	Utime      int64
}

// NotificationLogDAO 投递日志数据访问
type NotificationLogDAO interface {
	Create(ctx context.Context, data NotificationLog) (NotificationLog, error)
	MarkRetrySucceeded(ctx context.Context, id uint64) error
	FindRetryable(ctx context.Context, maxRetryCount int8) ([]NotificationLog, error)
	List(ctx context.Context, limit, offset int) ([]NotificationLog, error)
	FindAll(ctx context.Context) ([]NotificationLog, error)
}

type notificationLogDAO struct {
	db *egorm.Component
}

// NewNotificationLogDAO 创建投递日志DAO实例
func NewNotificationLogDAO(db *egorm.Component) NotificationLogDAO {
	return &notificationLogDAO{db: db}
}

func (d *notificationLogDAO) Create(ctx context.Context, data NotificationLog) (NotificationLog, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now

	if err := d.db.WithContext(ctx).Create(&data).Error; err != nil {
		if d.isUniqueConstraintError(err) {
			return NotificationLog{}, fmt.Errorf("%w: id = %d", errs.ErrLogDuplicate, data.ID)
		}
		return NotificationLog{}, fmt.Errorf("%w: %w", errs.ErrCreateLogFailed, err)
	}
	return data, nil
}

func (d *notificationLogDAO) MarkRetrySucceeded(ctx context.Context, id uint64) error {
	now := time.Now().UnixMilli()
	res := d.db.WithContext(ctx).Model(&NotificationLog{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      "sent",
			"retry_count": gorm.Expr("`retry_count` + 1"),
			"utime":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id = %d", errs.ErrNotificationNotFound, id)
	}
	return nil
}

func (d *notificationLogDAO) FindRetryable(ctx context.Context, maxRetryCount int8) ([]NotificationLog, error) {
	var entities []NotificationLog
	err := d.db.WithContext(ctx).
		Where("status = ? AND retry_count < ?", "failed", maxRetryCount).
		Order("sent_at ASC").
		Find(&entities).Error
	return entities, err
}

func (d *notificationLogDAO) List(ctx context.Context, limit, offset int) ([]NotificationLog, error) {
	var entities []NotificationLog
	err := d.db.WithContext(ctx).
		Order("sent_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entities).Error
	return entities, err
}

func (d *notificationLogDAO) FindAll(ctx context.Context) ([]NotificationLog, error) {
	var entities []NotificationLog
	err := d.db.WithContext(ctx).Find(&entities).Error
	return entities, err
}

// isUniqueConstraintError 检查是否是唯一索引冲突错误
func (d *notificationLogDAO) isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	me := new(mysql.MySQLError)
	if ok := errors.As(err, &me); ok {
		const uniqueIndexErrNo uint16 = 1062
		return me.Number == uniqueIndexErrNo
	}
	return false
}
