package notification

import (
	"context"
	"fmt"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
	retrypkg "gitee.com/visioncare/notification-center/internal/pkg/retry"
	"gitee.com/visioncare/notification-center/internal/repository"
	"gitee.com/visioncare/notification-center/internal/service/audit"
	"gitee.com/visioncare/notification-center/internal/service/preference"
	"gitee.com/visioncare/notification-center/internal/service/provider"
	"gitee.com/visioncare/notification-center/internal/service/template"
	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/sonyflake"
	"golang.org/x/sync/errgroup"
)

const (
	// maxRetryCount 重试上限：retryCount >= 3 的记录不再被批量重试选中
	maxRetryCount int8 = 3
	// defaultSendTimeout 单次供应商调用的超时兜底
	defaultSendTimeout = 10 * time.Second
)

// Service 通知调度编排。
// 流水线：校验 -> 偏好门控 -> 渲染 -> 投递 -> 落日志 -> 审计
//
//go:generate mockgen -source=./notification.go -destination=./mocks/notification.mock.go -package=notificationmocks -typed Service
type Service interface {
	// Send 同步单条发送
	Send(ctx context.Context, n domain.Notification) (domain.SendResponse, error)
	// SendBatch 批量发送，响应与请求按下标一一对应，单条失败不影响其余
	SendBatch(ctx context.Context, ns []domain.Notification) ([]domain.SendResponse, error)
	// RetryFailed 批量重试失败记录，返回原记录被升级为 sent 的条数
	RetryFailed(ctx context.Context) (int, error)
	// ListLogs 按发送时间倒序分页查询投递日志
	ListLogs(ctx context.Context, limit, offset int) ([]domain.NotificationLog, error)
	// Stats 全量日志统计
	Stats(ctx context.Context) (domain.NotificationStats, error)
}

type dispatchService struct {
	providers     map[domain.Channel]provider.Provider
	templateSvc   template.Service
	preferenceSvc preference.Service
	gate          *preference.Gate
	logRepo       repository.NotificationLogRepository
	auditSvc      audit.Service
	idGenerator   *sonyflake.Sonyflake
	retryCfg      retrypkg.Config
	sendTimeout   time.Duration
	now           func() time.Time
	logger        *elog.Component
}

// NewService 创建调度编排服务
func NewService(
	providers map[domain.Channel]provider.Provider,
	templateSvc template.Service,
	preferenceSvc preference.Service,
	gate *preference.Gate,
	logRepo repository.NotificationLogRepository,
	auditSvc audit.Service,
	idGenerator *sonyflake.Sonyflake,
	retryCfg retrypkg.Config,
) Service {
	return &dispatchService{
		providers:     providers,
		templateSvc:   templateSvc,
		preferenceSvc: preferenceSvc,
		gate:          gate,
		logRepo:       logRepo,
		auditSvc:      auditSvc,
		idGenerator:   idGenerator,
		retryCfg:      retryCfg,
		sendTimeout:   defaultSendTimeout,
		now:           time.Now,
		logger:        elog.DefaultLogger,
	}
}

// Send 同步单条发送
func (s *dispatchService) Send(ctx context.Context, n domain.Notification) (resp domain.SendResponse, err error) {
	// 兜底：流水线任何一步的意外panic都转成失败响应并审计，不向调用方扩散
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("发送通知发生panic",
				elog.Any("recover", r),
				elog.String("recipient", n.Recipient.Key()))
			resp = domain.SendResponse{
				Status: domain.SendStatusFailed,
				Error:  fmt.Sprintf("%v", r),
			}
			err = fmt.Errorf("%w: %v", errs.ErrSendNotificationFailed, r)
			s.audit(ctx, n, resp)
		}
	}()

	// 1. 校验。失败直接返回，不碰门控和供应商，但仍然落日志并审计
	if err := n.Validate(); err != nil {
		resp := domain.SendResponse{
			Status: domain.SendStatusFailed,
			Error:  err.Error(),
		}
		s.appendLog(ctx, n, resp)
		s.audit(ctx, n, resp)
		return resp, err
	}

	// 2. 偏好门控。被拦截时不落日志，只审计
	prefs, err := s.preferenceSvc.GetByRecipient(ctx, n.Recipient.Key())
	if err != nil {
		return s.failed(ctx, n, fmt.Errorf("%w: %w", errs.ErrSendNotificationFailed, err))
	}
	if !s.gate.Allow(n, prefs) {
		resp := domain.SendResponse{
			Status: domain.SendStatusFailed,
			Error:  errs.ErrBlockedByPreferences.Error(),
		}
		s.audit(ctx, n, resp)
		return resp, fmt.Errorf("%w: recipient %s", errs.ErrBlockedByPreferences, n.Recipient.Key())
	}

	// 3. 渲染模板，缺失占位符原样保留
	content, err := s.templateSvc.Render(n.Template, n.Channel, n.Data)
	if err != nil {
		return s.failed(ctx, n, fmt.Errorf("%w: %w", errs.ErrSendNotificationFailed, err))
	}

	// 4. 投递
	resp, deliveryErr := s.deliver(ctx, n, content)

	// 5. 无论成败都追加一条日志
	s.appendLog(ctx, n, resp)

	// 6. 审计
	s.audit(ctx, n, resp)

	// 7. 返回投递结果
	if deliveryErr != nil {
		return resp, fmt.Errorf("%w: %w", errs.ErrSendNotificationFailed, deliveryErr)
	}
	return resp, nil
}

func (s *dispatchService) deliver(ctx context.Context, n domain.Notification, content template.Content) (domain.SendResponse, error) {
	p, ok := s.providers[n.Channel]
	if !ok {
		return domain.SendResponse{
			Status: domain.SendStatusFailed,
			Error:  fmt.Sprintf("no provider for channel %q", n.Channel),
		}, fmt.Errorf("%w: channel %s", errs.ErrNoAvailableProvider, n.Channel)
	}

	to := n.Recipient.Phone
	if n.Channel == domain.ChannelEmail {
		to = n.Recipient.Email
	}

	// 原始实现没有超时语义，这里给供应商调用加一层超时兜底
	sendCtx := ctx
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}

	return p.Send(sendCtx, domain.Message{
		Channel:  n.Channel,
		To:       to,
		Template: n.Template,
		Params:   n.Data,
		Subject:  content.Subject,
		Text:     content.Text,
		HTML:     content.HTML,
	})
}

// failed 意外错误统一出口：转失败响应并审计
func (s *dispatchService) failed(ctx context.Context, n domain.Notification, err error) (domain.SendResponse, error) {
	resp := domain.SendResponse{
		Status: domain.SendStatusFailed,
		Error:  err.Error(),
	}
	s.audit(ctx, n, resp)
	return resp, err
}

// appendLog 追加投递日志。日志失败只告警，不影响已经得到的投递结果
func (s *dispatchService) appendLog(ctx context.Context, n domain.Notification, resp domain.SendResponse) {
	id, err := s.idGenerator.NextID()
	if err != nil {
		s.logger.Warn("生成日志ID失败", elog.FieldErr(err))
		return
	}

	sentAt := resp.DeliveryTime
	if sentAt.IsZero() {
		sentAt = s.now()
	}

	// 数据包整体存进元数据，批量重试用它还原请求
	metadata := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		metadata[k] = v
	}
	if n.Priority != "" {
		metadata["priority"] = string(n.Priority)
	}

	_, err = s.logRepo.Create(ctx, domain.NotificationLog{
		ID:         id,
		Channel:    n.Channel,
		Recipient:  n.Recipient.Key(),
		Template:   n.Template,
		Status:     resp.Status,
		MessageID:  resp.MessageID,
		Provider:   resp.Provider,
		Error:      resp.Error,
		Cost:       resp.Cost,
		SentAt:     sentAt,
		RetryCount: 0,
		Metadata:   metadata,
	})
	if err != nil {
		s.logger.Warn("追加投递日志失败",
			elog.FieldErr(err),
			elog.String("recipient", n.Recipient.Key()))
	}
}

func (s *dispatchService) audit(ctx context.Context, n domain.Notification, resp domain.SendResponse) {
	s.auditSvc.Record(ctx, domain.AuditEntry{
		UserID:       n.Recipient.Key(),
		Action:       domain.AuditActionSendNotification,
		Resource:     string(n.Template),
		Details:      fmt.Sprintf("channel=%s provider=%s cost=%.4f", n.Channel, resp.Provider, resp.Cost),
		Success:      resp.Success,
		ErrorMessage: resp.Error,
	})
}

// SendBatch 批量发送。内部并发，结果按下标回填，单条错误吞掉
func (s *dispatchService) SendBatch(ctx context.Context, ns []domain.Notification) ([]domain.SendResponse, error) {
	if len(ns) == 0 {
		return nil, nil
	}

	responses := make([]domain.SendResponse, len(ns))
	var eg errgroup.Group
	for i := range ns {
		idx := i
		eg.Go(func() error {
			resp, err := s.Send(ctx, ns[idx])
			if err != nil {
				s.logger.Warn("批量发送中单条失败",
					elog.FieldErr(err),
					elog.String("recipient", ns[idx].Recipient.Key()))
			}
			responses[idx] = resp
			return nil
		})
	}
	// 单条错误都已吞掉，这里只等待全部完成
	_ = eg.Wait()
	return responses, nil
}

// RetryFailed 批量重试。逐条顺序执行，条与条之间按退避策略等待；
// 单条重试失败只记诊断日志，不中断整批
func (s *dispatchService) RetryFailed(ctx context.Context) (int, error) {
	entries, err := s.logRepo.FindRetryable(ctx, maxRetryCount)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrSendNotificationFailed, err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	strategy, err := retrypkg.NewRetry(s.retryCfg)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrSendNotificationFailed, err)
	}

	count := 0
	for i, entry := range entries {
		if i > 0 {
			// 策略耗尽只意味着不再等待，候选记录每条都要试到
			if d, ok := strategy.Next(); ok {
				select {
				case <-ctx.Done():
					return count, ctx.Err()
				case <-time.After(d):
				}
			}
		}

		// 重试会再走一遍 Send，成功后原记录升级、新记录照常追加，
		// 同一次成功重试在日志里是两行
		resp, err := s.Send(ctx, s.reconstruct(entry))
		if err != nil || !resp.Success {
			s.logger.Warn("重试投递失败",
				elog.FieldErr(err),
				elog.Any("logId", entry.ID),
				elog.String("recipient", entry.Recipient))
			continue
		}

		if err := s.logRepo.MarkRetrySucceeded(ctx, entry.ID); err != nil {
			s.logger.Warn("升级原日志记录失败",
				elog.FieldErr(err),
				elog.Any("logId", entry.ID))
			continue
		}
		count++
	}
	return count, nil
}

// reconstruct 从日志记录还原一个最小请求，元数据直接作为数据包
func (s *dispatchService) reconstruct(entry domain.NotificationLog) domain.Notification {
	n := domain.Notification{
		Channel:  entry.Channel,
		Template: entry.Template,
		Data:     entry.Metadata,
	}
	if n.Data == nil {
		n.Data = map[string]string{}
	}
	if entry.Channel == domain.ChannelEmail {
		n.Recipient.Email = entry.Recipient
	} else {
		n.Recipient.Phone = entry.Recipient
	}
	if p, ok := entry.Metadata["priority"]; ok {
		n.Priority = domain.Priority(p)
	}
	return n
}

// ListLogs 按发送时间倒序分页
func (s *dispatchService) ListLogs(ctx context.Context, limit, offset int) ([]domain.NotificationLog, error) {
	return s.logRepo.List(ctx, limit, offset)
}

// Stats 全量日志统计
func (s *dispatchService) Stats(ctx context.Context) (domain.NotificationStats, error) {
	return s.logRepo.Stats(ctx)
}
