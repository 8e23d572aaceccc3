package notification

import (
	"context"
	"testing"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
	retrypkg "gitee.com/visioncare/notification-center/internal/pkg/retry"
	"gitee.com/visioncare/notification-center/internal/repository"
	"gitee.com/visioncare/notification-center/internal/service/audit"
	"gitee.com/visioncare/notification-center/internal/service/preference"
	"gitee.com/visioncare/notification-center/internal/service/provider"
	"gitee.com/visioncare/notification-center/internal/service/provider/simulator"
	"gitee.com/visioncare/notification-center/internal/service/template"
	"github.com/sony/sonyflake"
	"github.com/stretchr/testify/suite"
)

type DispatchTestSuite struct {
	suite.Suite

	mockProvider *provider.MockProvider
	logRepo      repository.NotificationLogRepository
	prefSvc      preference.Service
	svc          Service
}

func (s *DispatchTestSuite) SetupTest() {
	s.mockProvider = provider.NewMockProvider()
	s.logRepo = repository.NewMemoryNotificationLogRepository()
	s.prefSvc = preference.NewService(repository.NewMemoryPreferenceRepository())

	idGenerator := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: func() (uint16, error) {
			return 1, nil
		},
	})

	s.svc = NewService(
		map[domain.Channel]provider.Provider{
			domain.ChannelSMS:   s.mockProvider,
			domain.ChannelEmail: s.mockProvider,
		},
		template.NewCatalog(),
		s.prefSvc,
		preference.NewGate(),
		s.logRepo,
		audit.NewService(nil, idGenerator),
		idGenerator,
		retrypkg.Config{
			Type: "fixed",
			FixedInterval: &retrypkg.FixedIntervalConfig{
				Interval:   1,
				MaxRetries: 100,
			},
		},
	)
}

func (s *DispatchTestSuite) smsRequest() domain.Notification {
	return domain.Notification{
		Channel: domain.ChannelSMS,
		Recipient: domain.Recipient{
			Phone: "+15551234567",
			Name:  "Pat",
		},
		Template: domain.TemplateAppointmentReminder,
		Data: map[string]string{
			"name":            "Pat",
			"doctorName":      "Dr. X",
			"appointmentDate": "2024-01-15",
			"appointmentTime": "14:00",
			"location":        "Main Office",
		},
	}
}

func (s *DispatchTestSuite) TestSendSuccess() {
	resp, err := s.svc.Send(context.Background(), s.smsRequest())
	s.Require().NoError(err)

	s.True(resp.Success)
	s.Equal(domain.SendStatusSent, resp.Status)
	s.Equal("mock", resp.Provider)
	s.NotEmpty(resp.MessageID)

	// 渲染结果里不应残留占位符
	sent := s.mockProvider.Sent()
	s.Require().Len(sent, 1)
	s.NotContains(sent[0].Text, "{{")
	s.Contains(sent[0].Text, "Dr. X")

	logs, err := s.svc.ListLogs(context.Background(), 10, 0)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(domain.SendStatusSent, logs[0].Status)
	s.Equal(int8(0), logs[0].RetryCount)
	s.Equal("+15551234567", logs[0].Recipient)
}

func (s *DispatchTestSuite) TestSendValidationFailure() {
	req := s.smsRequest()
	req.Recipient.Phone = ""

	resp, err := s.svc.Send(context.Background(), req)
	s.Require().ErrorIs(err, errs.ErrInvalidParameter)

	s.False(resp.Success)
	s.Equal(domain.SendStatusFailed, resp.Status)
	s.Contains(resp.Error, "Invalid notification request")
	s.Contains(resp.Error, "Phone number required")

	// 校验失败不碰供应商，但要落一条失败日志
	s.Empty(s.mockProvider.Sent())
	logs, err := s.svc.ListLogs(context.Background(), 10, 0)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(domain.SendStatusFailed, logs[0].Status)
}

func (s *DispatchTestSuite) TestSendPreferenceBlocked() {
	off := false
	_, err := s.prefSvc.Update(context.Background(), "+15551234567", domain.PreferencesPatch{
		SMS: &off,
	})
	s.Require().NoError(err)

	resp, err := s.svc.Send(context.Background(), s.smsRequest())
	s.Require().ErrorIs(err, errs.ErrBlockedByPreferences)

	s.False(resp.Success)
	s.Equal(domain.SendStatusFailed, resp.Status)
	s.Equal("Notification blocked by user preferences", resp.Error)

	// 被偏好拦截时既不投递也不落日志
	s.Empty(s.mockProvider.Sent())
	logs, err := s.svc.ListLogs(context.Background(), 10, 0)
	s.Require().NoError(err)
	s.Empty(logs)
}

func (s *DispatchTestSuite) TestSendBatch() {
	valid := s.smsRequest()
	invalid := s.smsRequest()
	invalid.Recipient.Phone = ""

	responses, err := s.svc.SendBatch(context.Background(), []domain.Notification{valid, invalid, valid})
	s.Require().NoError(err)
	s.Require().Len(responses, 3)

	// 响应按下标对应，单条失败不影响其余
	s.True(responses[0].Success)
	s.False(responses[1].Success)
	s.Contains(responses[1].Error, "Phone number required")
	s.True(responses[2].Success)
}

func (s *DispatchTestSuite) TestRetryFailedUpgradesOriginal() {
	s.mockProvider.FailNext(1)
	resp, err := s.svc.Send(context.Background(), s.smsRequest())
	s.Require().Error(err)
	s.False(resp.Success)

	count, err := s.svc.RetryFailed(context.Background())
	s.Require().NoError(err)
	s.Equal(1, count)

	// 成功重试后原记录升级为 sent 且重试次数加一，新记录照常追加，共两行
	logs, err := s.svc.ListLogs(context.Background(), 10, 0)
	s.Require().NoError(err)
	s.Require().Len(logs, 2)

	var upgraded, appended int
	for _, l := range logs {
		s.Equal(domain.SendStatusSent, l.Status)
		switch l.RetryCount {
		case 1:
			upgraded++
		case 0:
			appended++
		}
	}
	s.Equal(1, upgraded)
	s.Equal(1, appended)
}

func (s *DispatchTestSuite) TestRetryCeiling() {
	_, err := s.logRepo.Create(context.Background(), domain.NotificationLog{
		ID:         42,
		Channel:    domain.ChannelSMS,
		Recipient:  "+15551234567",
		Template:   domain.TemplateAppointmentReminder,
		Status:     domain.SendStatusFailed,
		SentAt:     time.Now(),
		RetryCount: 3,
	})
	s.Require().NoError(err)

	count, err := s.svc.RetryFailed(context.Background())
	s.Require().NoError(err)
	s.Zero(count)
	s.Empty(s.mockProvider.Sent())
}

func (s *DispatchTestSuite) TestRetryBatchOutlivesBackoffBudget() {
	idGenerator := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: func() (uint16, error) {
			return 3, nil
		},
	})

	// 退避预算只够等一次，候选却有三条
	svc := NewService(
		map[domain.Channel]provider.Provider{
			domain.ChannelSMS:   s.mockProvider,
			domain.ChannelEmail: s.mockProvider,
		},
		template.NewCatalog(),
		s.prefSvc,
		preference.NewGate(),
		s.logRepo,
		audit.NewService(nil, idGenerator),
		idGenerator,
		retrypkg.Config{
			Type:          "fixed",
			FixedInterval: &retrypkg.FixedIntervalConfig{Interval: 1, MaxRetries: 1},
		},
	)

	for i := uint64(1); i <= 3; i++ {
		_, err := s.logRepo.Create(context.Background(), domain.NotificationLog{
			ID:        100 + i,
			Channel:   domain.ChannelSMS,
			Recipient: "+15551234567",
			Template:  domain.TemplateAppointmentReminder,
			Status:    domain.SendStatusFailed,
			SentAt:    time.Now(),
			Metadata:  s.smsRequest().Data,
		})
		s.Require().NoError(err)
	}

	// 策略耗尽不截断整批，每条候选都要被重试到
	count, err := svc.RetryFailed(context.Background())
	s.Require().NoError(err)
	s.Equal(3, count)
	s.Len(s.mockProvider.Sent(), 3)

	logs, err := svc.ListLogs(context.Background(), 10, 0)
	s.Require().NoError(err)
	s.Require().Len(logs, 6)

	var upgraded int
	for _, l := range logs {
		s.Equal(domain.SendStatusSent, l.Status)
		if l.RetryCount == 1 {
			upgraded++
		}
	}
	s.Equal(3, upgraded)
}

func (s *DispatchTestSuite) TestRetryFailureSwallowed() {
	s.mockProvider.FailNext(1)
	_, err := s.svc.Send(context.Background(), s.smsRequest())
	s.Require().Error(err)

	// 重试本身再次失败：整批不中断，计数为0，原记录保持 failed
	s.mockProvider.FailNext(1)
	count, err := s.svc.RetryFailed(context.Background())
	s.Require().NoError(err)
	s.Zero(count)

	logs, err := s.svc.ListLogs(context.Background(), 10, 0)
	s.Require().NoError(err)
	s.Require().Len(logs, 2)
	for _, l := range logs {
		s.Equal(domain.SendStatusFailed, l.Status)
		s.Equal(int8(0), l.RetryCount)
	}
}

func (s *DispatchTestSuite) TestStats() {
	_, err := s.svc.Send(context.Background(), s.smsRequest())
	s.Require().NoError(err)

	s.mockProvider.FailNext(1)
	_, _ = s.svc.Send(context.Background(), s.smsRequest())

	stats, err := s.svc.Stats(context.Background())
	s.Require().NoError(err)

	s.Equal(int64(2), stats.Total)
	s.Equal(stats.Total, stats.ByChannel[domain.ChannelSMS]+stats.ByChannel[domain.ChannelEmail])
	s.Equal(int64(1), stats.ByStatus[domain.SendStatusSent])
	s.Equal(int64(1), stats.ByStatus[domain.SendStatusFailed])
	s.InDelta(0.01, stats.TotalCost, 1e-9)
}

func TestDispatchTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(DispatchTestSuite))
}

// 端到端场景：仿真邮件供应商 + 确认模板
func TestSendEmailWithSimulator(t *testing.T) {
	t.Parallel()

	idGenerator := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: func() (uint16, error) {
			return 2, nil
		},
	})

	emailCfg := simulator.EmailConfig("mock-email-provider")
	emailCfg.Latency = 0
	smsCfg := simulator.SMSConfig("mock-sms-provider")
	smsCfg.Latency = 0

	svc := NewService(
		map[domain.Channel]provider.Provider{
			domain.ChannelSMS:   simulator.NewProvider(smsCfg, alwaysSucceed{}, time.Now),
			domain.ChannelEmail: simulator.NewProvider(emailCfg, alwaysSucceed{}, time.Now),
		},
		template.NewCatalog(),
		preference.NewService(repository.NewMemoryPreferenceRepository()),
		preference.NewGate(),
		repository.NewMemoryNotificationLogRepository(),
		audit.NewService(nil, idGenerator),
		idGenerator,
		retrypkg.Config{
			Type:          "fixed",
			FixedInterval: &retrypkg.FixedIntervalConfig{Interval: 1, MaxRetries: 10},
		},
	)

	resp, err := svc.Send(context.Background(), domain.Notification{
		Channel:   domain.ChannelEmail,
		Recipient: domain.Recipient{Email: "a@b.com"},
		Template:  domain.TemplateAppointmentConfirmation,
		Data: map[string]string{
			"doctorName":      "Dr. X",
			"appointmentDate": "2024-01-15",
			"appointmentTime": "14:00",
			"location":        "Main Office",
			"appointmentId":   "APT1",
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !resp.Success || resp.Status != domain.SendStatusSent {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Provider != "mock-email-provider" {
		t.Fatalf("unexpected provider: %s", resp.Provider)
	}
	if resp.Cost < 0.0009 || resp.Cost > 0.0011 {
		t.Fatalf("unexpected cost: %f", resp.Cost)
	}
}

type alwaysSucceed struct{}

func (alwaysSucceed) Float64() float64 { return 0.99 }
