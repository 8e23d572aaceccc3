package tracing

import (
	"context"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/service/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Provider 为供应商实现添加链路追踪的装饰器
type Provider struct {
	provider provider.Provider
	tracer   trace.Tracer
}

// NewProvider 创建一个新的带有链路追踪的供应商
func NewProvider(p provider.Provider) *Provider {
	return &Provider{
		provider: p,
		tracer:   otel.Tracer("notification-center/provider"),
	}
}

func (p *Provider) Send(ctx context.Context, msg domain.Message) (domain.SendResponse, error) {
	ctx, span := p.tracer.Start(ctx, "Provider.Send",
		trace.WithAttributes(
			attribute.String("message.channel", string(msg.Channel)),
			attribute.String("message.template", string(msg.Template)),
		))
	defer span.End()

	response, err := p.provider.Send(ctx, msg)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.String("message.id", response.MessageID),
			attribute.String("message.status", string(response.Status)),
			attribute.Float64("message.cost", response.Cost),
		)
	}

	return response, err
}
