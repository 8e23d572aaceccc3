package console

import (
	"context"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"github.com/gofrs/uuid"
	"github.com/gotomicro/ego/core/elog"
)

// Provider 把消息打印到控制台，本地调试用
type Provider struct {
	logger *elog.Component
}

func NewProvider() *Provider {
	return &Provider{
		logger: elog.DefaultLogger,
	}
}

func (p *Provider) Send(_ context.Context, msg domain.Message) (domain.SendResponse, error) {
	p.logger.Info("发送消息",
		elog.String("channel", string(msg.Channel)),
		elog.String("to", msg.To),
		elog.Any("message", msg))
	id, err := uuid.NewV4()
	if err != nil {
		return domain.SendResponse{Status: domain.SendStatusFailed}, err
	}
	return domain.SendResponse{
		Success:      true,
		Status:       domain.SendStatusSent,
		MessageID:    id.String(),
		Provider:     "console",
		DeliveryTime: time.Now(),
	}, nil
}
