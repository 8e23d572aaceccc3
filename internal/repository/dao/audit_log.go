package dao

import (
	"context"
	"time"

	"github.com/ego-component/egorm"
)

// AuditLog 审计日志表，只追加
type AuditLog struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	UserID       string `gorm:"type:VARCHAR(256);NOT NULL;index;comment:'接收者标识'"`
	Action       string `gorm:"type:VARCHAR(64);NOT NULL"`
	Resource     string `gorm:"type:VARCHAR(64);comment:'模板名'"`
	Details      string `gorm:"type:TEXT"`
	Success      bool   `gorm:"NOT NULL"`
	ErrorMessage string `gorm:"type:TEXT"`
	Ctime        int64
}

type AuditLogDAO interface {
	Create(ctx context.Context, data AuditLog) error
}

type auditLogDAO struct {
	db *egorm.Component
}

func NewAuditLogDAO(db *egorm.Component) AuditLogDAO {
	return &auditLogDAO{db: db}
}

func (d *auditLogDAO) Create(ctx context.Context, data AuditLog) error {
	data.Ctime = time.Now().UnixMilli()
	return d.db.WithContext(ctx).Create(&data).Error
}
