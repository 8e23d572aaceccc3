package preference

import (
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
)

const wallClockLayout = "15:04"

// Gate 发送前的偏好门控：渠道退订、类别退订、免打扰时间窗。
// 规则按序评估，任一规则命中即拒绝
type Gate struct {
	now func() time.Time
}

func NewGate() *Gate {
	return NewGateWithClock(time.Now)
}

// NewGateWithClock 注入时钟，测试用
func NewGateWithClock(now func() time.Time) *Gate {
	return &Gate{now: now}
}

// Allow 判断该通知是否允许发送
func (g *Gate) Allow(n domain.Notification, prefs domain.Preferences) bool {
	if n.Channel == domain.ChannelEmail && !prefs.Email {
		return false
	}
	if n.Channel == domain.ChannelSMS && !prefs.SMS {
		return false
	}
	if n.Template == domain.TemplateSatisfactionSurvey && !prefs.SatisfactionSurveys {
		return false
	}
	if n.Template == domain.TemplateAppointmentReminder && !prefs.AppointmentReminders {
		return false
	}
	if prefs.QuietHours != nil && g.inQuietHours(*prefs.QuietHours) {
		return false
	}
	return true
}

// inQuietHours 判断当前时刻是否落在免打扰窗内。
// HH:MM 字符串按字典序比较，两端闭区间，不处理跨午夜窗口（如 22:00–06:00 永远不会命中），
// 与历史行为保持一致
func (g *Gate) inQuietHours(qh domain.QuietHours) bool {
	loc, err := time.LoadLocation(qh.Timezone)
	if err != nil {
		loc = time.UTC
	}
	current := g.now().In(loc).Format(wallClockLayout)
	return qh.Start <= current && current <= qh.End
}
