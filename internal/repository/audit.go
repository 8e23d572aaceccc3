package repository

import (
	"context"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/repository/dao"
)

// AuditRepository 审计条目落库
type AuditRepository interface {
	Create(ctx context.Context, entry domain.AuditEntry) error
}

type auditRepository struct {
	d dao.AuditLogDAO
}

func NewAuditRepository(d dao.AuditLogDAO) AuditRepository {
	return &auditRepository{d: d}
}

func (r *auditRepository) Create(ctx context.Context, entry domain.AuditEntry) error {
	return r.d.Create(ctx, dao.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		Resource:     entry.Resource,
		Details:      entry.Details,
		Success:      entry.Success,
		ErrorMessage: entry.ErrorMessage,
	})
}
