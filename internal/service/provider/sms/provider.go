package sms

import (
	"context"
	"fmt"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
	"gitee.com/visioncare/notification-center/internal/service/provider"
	"gitee.com/visioncare/notification-center/internal/service/provider/sms/client"
)

// TemplateRef 云厂商侧的模板引用。
// 模板需要事先在厂商控制台报备，这里只记录映射关系
type TemplateRef struct {
	ID         string   `yaml:"id"`
	ParamOrder []string `yaml:"paramOrder"`
}

// Config SMS供应商配置
type Config struct {
	Name      string                             `yaml:"name"`
	SignName  string                             `yaml:"signName"`
	Cost      float64                            `yaml:"cost"` // 单条成本，美元
	Templates map[domain.TemplateKey]TemplateRef `yaml:"templates"`
}

// smsProvider SMS供应商，支持 aliyun、腾讯云
type smsProvider struct {
	cfg    Config
	client client.Client
}

// NewSMSProvider SMS供应商
func NewSMSProvider(cfg Config, client client.Client) provider.Provider {
	return &smsProvider{
		cfg:    cfg,
		client: client,
	}
}

// Send 发送短信
func (p *smsProvider) Send(_ context.Context, msg domain.Message) (domain.SendResponse, error) {
	ref, ok := p.cfg.Templates[msg.Template]
	if !ok {
		return p.failed(fmt.Sprintf("no provider template for %q", msg.Template)),
			fmt.Errorf("%w: 供应商 %s 未配置模板 %s", errs.ErrTemplateNotFound, p.cfg.Name, msg.Template)
	}

	resp, err := p.client.Send(client.SendReq{
		PhoneNumbers:  []string{msg.To},
		SignName:      p.cfg.SignName,
		TemplateID:    ref.ID,
		TemplateParam: msg.Params,
		ParamOrder:    ref.ParamOrder,
	})
	if err != nil {
		return p.failed(err.Error()), fmt.Errorf("%w: %w", errs.ErrDeliveryFailed, err)
	}

	for _, status := range resp.PhoneNumbers {
		if status.Code != client.OK {
			return p.failed(status.Message),
				fmt.Errorf("%w: Code = %s, Message = %s", errs.ErrDeliveryFailed, status.Code, status.Message)
		}
	}

	return domain.SendResponse{
		Success:      true,
		Status:       domain.SendStatusSent,
		MessageID:    resp.RequestID,
		Provider:     p.cfg.Name,
		DeliveryTime: time.Now(),
		Cost:         p.cfg.Cost,
	}, nil
}

func (p *smsProvider) failed(errMsg string) domain.SendResponse {
	return domain.SendResponse{
		Status:   domain.SendStatusFailed,
		Provider: p.cfg.Name,
		Error:    errMsg,
	}
}
