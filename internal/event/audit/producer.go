package audit

import (
	"context"

	"gitee.com/visioncare/notification-center/internal/pkg/mqx"
	"github.com/ecodeclub/mq-api"
)

//go:generate mockgen -source=./producer.go -package=evtmocks -destination=./mocks/audit.mock.go -typed AuditEventProducer
type AuditEventProducer interface {
	Produce(ctx context.Context, evt AuditEvent) error
}

func NewAuditEventProducer(q mq.MQ) (AuditEventProducer, error) {
	return mqx.NewGeneralProducer[AuditEvent](q, eventName)
}
