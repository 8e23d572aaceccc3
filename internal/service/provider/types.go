package provider

import (
	"context"

	"gitee.com/visioncare/notification-center/internal/domain"
)

// Provider 供应商接口。编排层只依赖这个接口，
// 模拟实现和真实供应商实现可以互换
//
//go:generate mockgen -source=./types.go -destination=./mocks/provider.mock.go -package=providermocks -typed Provider
type Provider interface {
	// Send 投递一条消息
	Send(ctx context.Context, msg domain.Message) (domain.SendResponse, error)
}
