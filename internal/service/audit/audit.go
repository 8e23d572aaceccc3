package audit

import (
	"context"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	auditevt "gitee.com/visioncare/notification-center/internal/event/audit"
	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/sonyflake"
)

// Service 审计汇。编排层在每次投递尝试后调用，
// 任何内部失败都不会传播回调用方
//
//go:generate mockgen -source=./audit.go -destination=./mocks/audit.mock.go -package=auditmocks -typed Service
type Service interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}

type service struct {
	producer    auditevt.AuditEventProducer
	idGenerator *sonyflake.Sonyflake
	logger      *elog.Component
}

func NewService(producer auditevt.AuditEventProducer, idGenerator *sonyflake.Sonyflake) Service {
	return &service{
		producer:    producer,
		idGenerator: idGenerator,
		logger:      elog.DefaultLogger,
	}
}

func (s *service) Record(ctx context.Context, entry domain.AuditEntry) {
	s.logger.Info("审计",
		elog.String("action", entry.Action),
		elog.String("userId", entry.UserID),
		elog.String("resource", entry.Resource),
		elog.Any("success", entry.Success),
	)

	if s.producer == nil {
		return
	}

	id, err := s.idGenerator.NextID()
	if err != nil {
		s.logger.Warn("审计事件ID生成失败", elog.FieldErr(err))
		return
	}

	evt := auditevt.AuditEvent{
		ID:           id,
		UserID:       entry.UserID,
		Action:       entry.Action,
		Resource:     entry.Resource,
		Details:      entry.Details,
		Success:      entry.Success,
		ErrorMessage: entry.ErrorMessage,
		Timestamp:    time.Now().UnixMilli(),
	}
	if err := s.producer.Produce(ctx, evt); err != nil {
		// 审计失败不影响发送主流程
		s.logger.Warn("审计事件投递失败", elog.FieldErr(err))
	}
}
