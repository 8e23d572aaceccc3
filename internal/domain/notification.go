package domain

import (
	"fmt"
	"time"

	"gitee.com/visioncare/notification-center/internal/errs"
	"github.com/hashicorp/go-multierror"
)

// Channel 通知渠道
type Channel string

const (
	ChannelSMS   Channel = "sms"   // 短信
	ChannelEmail Channel = "email" // 邮件
)

func (c Channel) IsValid() bool {
	return c == ChannelSMS || c == ChannelEmail
}

// SendStatus 通知状态
type SendStatus string

const (
	SendStatusPending   SendStatus = "pending"   // 待发送
	SendStatusSent      SendStatus = "sent"      // 已提交供应商
	SendStatusDelivered SendStatus = "delivered" // 已送达
	SendStatusBounced   SendStatus = "bounced"   // 被退回
	SendStatusFailed    SendStatus = "failed"    // 发送失败
)

// TemplateKey 模板标识，只允许使用枚举内的模板
type TemplateKey string

const (
	TemplateSatisfactionSurvey      TemplateKey = "satisfactionSurvey"
	TemplateAppointmentReminder     TemplateKey = "appointmentReminder"
	TemplateAppointmentConfirmation TemplateKey = "appointmentConfirmation"
)

func (t TemplateKey) IsValid() bool {
	switch t {
	case TemplateSatisfactionSurvey, TemplateAppointmentReminder, TemplateAppointmentConfirmation:
		return true
	default:
		return false
	}
}

// Priority 发送优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Recipient 接收者。短信渠道要求 Phone，邮件渠道要求 Email
type Recipient struct {
	Phone string
	Email string
	Name  string
}

// Key 偏好存储与日志记录使用的接收者标识：优先邮箱，其次手机号
func (r Recipient) Key() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Phone
}

// Notification 一次通知请求的领域模型
type Notification struct {
	Channel       Channel
	Recipient     Recipient
	Template      TemplateKey
	Data          map[string]string // 模板渲染参数
	Priority      Priority
	ScheduledTime time.Time // 可选的计划发送时间
	RetryAttempts int       // 可选的重试次数上限覆盖，0 表示使用默认值
}

// Validate 校验请求。所有违规一次性收集，编排层会把消息拼接进响应
func (n *Notification) Validate() error {
	result := &multierror.Error{
		ErrorFormat: joinErrorFormat,
	}

	if !n.Channel.IsValid() {
		result = multierror.Append(result, fmt.Errorf("notification type must be sms or email, got %q", n.Channel))
	}
	if n.Channel == ChannelSMS && n.Recipient.Phone == "" {
		result = multierror.Append(result, fmt.Errorf("Phone number required for SMS notifications"))
	}
	if n.Channel == ChannelEmail && n.Recipient.Email == "" {
		result = multierror.Append(result, fmt.Errorf("Email address required for email notifications"))
	}
	if !n.Template.IsValid() {
		result = multierror.Append(result, fmt.Errorf("unknown template %q", n.Template))
	}
	if n.Data == nil {
		result = multierror.Append(result, fmt.Errorf("notification data is required"))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInvalidParameter, err.Error())
	}
	return nil
}

// joinErrorFormat 把校验错误拼成单行，便于直接塞进响应的 Error 字段
func joinErrorFormat(es []error) string {
	msg := ""
	for i, e := range es {
		if i > 0 {
			msg += ", "
		}
		msg += e.Error()
	}
	return msg
}

// SendResponse 单次投递尝试的结果
type SendResponse struct {
	Success      bool
	Status       SendStatus
	MessageID    string // 供应商消息ID
	Provider     string // 供应商名称
	Error        string
	DeliveryTime time.Time
	Cost         float64 // 单条成本，美元
}

// NotificationLog 一次投递尝试的追加式日志记录
type NotificationLog struct {
	ID         uint64 // 雪花算法ID
	Channel    Channel
	Recipient  string // 实际使用的接收者标识（邮箱或手机号）
	Template   TemplateKey
	Status     SendStatus
	MessageID  string
	Provider   string
	Error      string
	Cost       float64
	SentAt     time.Time
	RetryCount int8              // 初始为0，仅由重试操作递增
	Metadata   map[string]string // 预约ID、医生姓名、优先级等
}

// NotificationStats 全量日志上的统计结果
type NotificationStats struct {
	Total      int64
	ByStatus   map[SendStatus]int64
	ByChannel  map[Channel]int64
	ByTemplate map[TemplateKey]int64
	TotalCost  float64
}
