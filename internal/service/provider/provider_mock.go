package provider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
)

// MockProvider 测试用供应商。默认全部成功；
// 可通过 FailNext 让接下来的若干次调用失败
type MockProvider struct {
	count    int64
	failNext int64

	mu   sync.Mutex
	sent []domain.Message
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// FailNext 接下来 n 次调用返回失败
func (m *MockProvider) FailNext(n int64) {
	atomic.StoreInt64(&m.failNext, n)
}

// Sent 返回已经收到的全部消息副本
func (m *MockProvider) Sent() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *MockProvider) Send(_ context.Context, msg domain.Message) (domain.SendResponse, error) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	v := atomic.AddInt64(&m.count, 1)
	if atomic.AddInt64(&m.failNext, -1) >= 0 {
		return domain.SendResponse{
			Status:   domain.SendStatusFailed,
			Provider: "mock",
			Error:    "mock provider failure",
		}, fmt.Errorf("%w: mock provider failure", errs.ErrDeliveryFailed)
	}
	return domain.SendResponse{
		Success:      true,
		Status:       domain.SendStatusSent,
		MessageID:    fmt.Sprintf("mock-%d", v),
		Provider:     "mock",
		Cost:         0.01,
		DeliveryTime: time.Now(),
	}, nil
}
