package web

import (
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
)

// SendNotificationReq 发送请求的对外契约
type SendNotificationReq struct {
	Type          string            `json:"type"`
	Recipient     RecipientVO       `json:"recipient"`
	Template      string            `json:"template"`
	Data          map[string]string `json:"data"`
	Priority      string            `json:"priority,omitempty"`
	ScheduledTime *time.Time        `json:"scheduledTime,omitempty"`
}

type RecipientVO struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

func (r SendNotificationReq) toDomain() domain.Notification {
	n := domain.Notification{
		Channel: domain.Channel(r.Type),
		Recipient: domain.Recipient{
			Phone: r.Recipient.Phone,
			Email: r.Recipient.Email,
			Name:  r.Recipient.Name,
		},
		Template: domain.TemplateKey(r.Template),
		Data:     r.Data,
		Priority: domain.Priority(r.Priority),
	}
	if r.ScheduledTime != nil {
		n.ScheduledTime = *r.ScheduledTime
	}
	return n
}

// SendNotificationResp 单次投递结果的对外契约
type SendNotificationResp struct {
	Success      bool       `json:"success"`
	Status       string     `json:"status"`
	MessageID    string     `json:"messageId,omitempty"`
	Provider     string     `json:"provider,omitempty"`
	Error        string     `json:"error,omitempty"`
	DeliveryTime *time.Time `json:"deliveryTime,omitempty"`
	Cost         *float64   `json:"cost,omitempty"`
}

func toSendResp(resp domain.SendResponse) SendNotificationResp {
	out := SendNotificationResp{
		Success:   resp.Success,
		Status:    string(resp.Status),
		MessageID: resp.MessageID,
		Provider:  resp.Provider,
		Error:     resp.Error,
	}
	if !resp.DeliveryTime.IsZero() {
		t := resp.DeliveryTime
		out.DeliveryTime = &t
	}
	if resp.Success {
		cost := resp.Cost
		out.Cost = &cost
	}
	return out
}

type BatchSendReq struct {
	Notifications []SendNotificationReq `json:"notifications"`
}

type BatchSendResp struct {
	Responses []SendNotificationResp `json:"responses"`
}

type RetryResp struct {
	Retried int `json:"retried"`
}

// NotificationLogVO 日志记录的对外视图
type NotificationLogVO struct {
	ID         uint64            `json:"id,string"`
	Type       string            `json:"type"`
	Recipient  string            `json:"recipient"`
	Template   string            `json:"template"`
	Status     string            `json:"status"`
	MessageID  string            `json:"messageId,omitempty"`
	Provider   string            `json:"provider,omitempty"`
	Error      string            `json:"error,omitempty"`
	Cost       float64           `json:"cost"`
	SentAt     time.Time         `json:"sentAt"`
	RetryCount int8              `json:"retryCount"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func toLogVO(l domain.NotificationLog) NotificationLogVO {
	return NotificationLogVO{
		ID:         l.ID,
		Type:       string(l.Channel),
		Recipient:  l.Recipient,
		Template:   string(l.Template),
		Status:     string(l.Status),
		MessageID:  l.MessageID,
		Provider:   l.Provider,
		Error:      l.Error,
		Cost:       l.Cost,
		SentAt:     l.SentAt,
		RetryCount: l.RetryCount,
		Metadata:   l.Metadata,
	}
}

type ListLogsResp struct {
	Logs []NotificationLogVO `json:"logs"`
}

type StatsResp struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByType     map[string]int64 `json:"byType"`
	ByTemplate map[string]int64 `json:"byTemplate"`
	TotalCost  float64          `json:"totalCost"`
}

func toStatsResp(stats domain.NotificationStats) StatsResp {
	out := StatsResp{
		Total:      stats.Total,
		ByStatus:   make(map[string]int64, len(stats.ByStatus)),
		ByType:     make(map[string]int64, len(stats.ByChannel)),
		ByTemplate: make(map[string]int64, len(stats.ByTemplate)),
		TotalCost:  stats.TotalCost,
	}
	for k, v := range stats.ByStatus {
		out.ByStatus[string(k)] = v
	}
	for k, v := range stats.ByChannel {
		out.ByType[string(k)] = v
	}
	for k, v := range stats.ByTemplate {
		out.ByTemplate[string(k)] = v
	}
	return out
}

// QuietHoursVO 免打扰窗口
type QuietHoursVO struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

// PreferencesVO 偏好的对外视图
type PreferencesVO struct {
	Recipient            string        `json:"recipient"`
	Email                bool          `json:"email"`
	SMS                  bool          `json:"sms"`
	AppointmentReminders bool          `json:"appointmentReminders"`
	SatisfactionSurveys  bool          `json:"satisfactionSurveys"`
	Marketing            bool          `json:"marketing"`
	Timezone             string        `json:"timezone"`
	Language             string        `json:"language"`
	QuietHours           *QuietHoursVO `json:"quietHours,omitempty"`
}

func toPreferencesVO(p domain.Preferences) PreferencesVO {
	out := PreferencesVO{
		Recipient:            p.Recipient,
		Email:                p.Email,
		SMS:                  p.SMS,
		AppointmentReminders: p.AppointmentReminders,
		SatisfactionSurveys:  p.SatisfactionSurveys,
		Marketing:            p.Marketing,
		Timezone:             p.Timezone,
		Language:             p.Language,
	}
	if p.QuietHours != nil {
		out.QuietHours = &QuietHoursVO{
			Start:    p.QuietHours.Start,
			End:      p.QuietHours.End,
			Timezone: p.QuietHours.Timezone,
		}
	}
	return out
}

// UpdatePreferencesReq 部分更新，缺省字段保持原值
type UpdatePreferencesReq struct {
	Email                *bool         `json:"email"`
	SMS                  *bool         `json:"sms"`
	AppointmentReminders *bool         `json:"appointmentReminders"`
	SatisfactionSurveys  *bool         `json:"satisfactionSurveys"`
	Marketing            *bool         `json:"marketing"`
	Timezone             *string       `json:"timezone"`
	Language             *string       `json:"language"`
	QuietHours           *QuietHoursVO `json:"quietHours"`
}

func (r UpdatePreferencesReq) toPatch() domain.PreferencesPatch {
	patch := domain.PreferencesPatch{
		Email:                r.Email,
		SMS:                  r.SMS,
		AppointmentReminders: r.AppointmentReminders,
		SatisfactionSurveys:  r.SatisfactionSurveys,
		Marketing:            r.Marketing,
		Timezone:             r.Timezone,
		Language:             r.Language,
	}
	if r.QuietHours != nil {
		patch.QuietHours = &domain.QuietHours{
			Start:    r.QuietHours.Start,
			End:      r.QuietHours.End,
			Timezone: r.QuietHours.Timezone,
		}
	}
	return patch
}
