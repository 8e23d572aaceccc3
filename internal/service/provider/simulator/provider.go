// Package simulator 用固定延迟和固定失败概率模拟外部供应商，
// 是 Twilio/SendGrid 一类集成的替身
package simulator

import (
	"context"
	"fmt"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
	"gitee.com/visioncare/notification-center/internal/service/provider"
	"github.com/gofrs/uuid"
)

// Rand 随机源。*rand.Rand 直接满足，测试可以注入确定性实现
type Rand interface {
	Float64() float64
}

// Config 单个模拟渠道的参数
type Config struct {
	Name         string // 供应商名称
	Channel      domain.Channel
	Latency      time.Duration // 模拟网络/供应商延迟
	FailureRate  float64       // 每次调用的失败概率
	Cost         float64       // 单条成本，美元
	FailureError string        // 渠道特定的失败消息
}

// SMSConfig 默认短信模拟参数
func SMSConfig(name string) Config {
	return Config{
		Name:         name,
		Channel:      domain.ChannelSMS,
		Latency:      time.Second,
		FailureRate:  0.05,
		Cost:         0.01,
		FailureError: "SMS delivery failed: provider rejected the message",
	}
}

// EmailConfig 默认邮件模拟参数
func EmailConfig(name string) Config {
	return Config{
		Name:         name,
		Channel:      domain.ChannelEmail,
		Latency:      2 * time.Second,
		FailureRate:  0.03,
		Cost:         0.001,
		FailureError: "Email delivery failed: provider rejected the message",
	}
}

type simProvider struct {
	cfg  Config
	rand Rand
	now  func() time.Time
}

// NewProvider 创建模拟供应商。rand 与 now 注入以便测试强制命中两个分支
func NewProvider(cfg Config, random Rand, now func() time.Time) provider.Provider {
	return &simProvider{
		cfg:  cfg,
		rand: random,
		now:  now,
	}
}

// Send 模拟一次投递：先挂起固定延迟，再按失败概率抽样一次。
// 延迟期间响应上下文取消（相比历史行为是新增的加固）
func (p *simProvider) Send(ctx context.Context, _ domain.Message) (domain.SendResponse, error) {
	select {
	case <-ctx.Done():
		return domain.SendResponse{
			Success:  false,
			Status:   domain.SendStatusFailed,
			Provider: p.cfg.Name,
			Error:    ctx.Err().Error(),
		}, ctx.Err()
	case <-time.After(p.cfg.Latency):
	}

	if p.rand.Float64() < p.cfg.FailureRate {
		return domain.SendResponse{
			Success:  false,
			Status:   domain.SendStatusFailed,
			Provider: p.cfg.Name,
			Error:    p.cfg.FailureError,
		}, fmt.Errorf("%w: %s", errs.ErrDeliveryFailed, p.cfg.FailureError)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return domain.SendResponse{
			Success:  false,
			Status:   domain.SendStatusFailed,
			Provider: p.cfg.Name,
			Error:    err.Error(),
		}, fmt.Errorf("%w: %w", errs.ErrDeliveryFailed, err)
	}

	return domain.SendResponse{
		Success:      true,
		Status:       domain.SendStatusSent,
		MessageID:    id.String(),
		Provider:     p.cfg.Name,
		DeliveryTime: p.now(),
		Cost:         p.cfg.Cost,
	}, nil
}
