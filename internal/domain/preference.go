package domain

// QuietHours 每日免打扰时间窗。Start/End 为接收者本地时间的 HH:MM 字符串，
// 按字符串比较判断是否命中，窗口不跨午夜（已知限制，保持与历史行为一致）
type QuietHours struct {
	Start    string
	End      string
	Timezone string
}

// Preferences 每个接收者一条的通知偏好
type Preferences struct {
	Recipient string // 查找键：邮箱或手机号

	// 渠道开关
	Email bool
	SMS   bool

	// 按模板类别的开关
	AppointmentReminders bool
	SatisfactionSurveys  bool
	Marketing            bool

	Timezone   string
	Language   string
	QuietHours *QuietHours
}

// DefaultPreferences 首次查找时懒创建的默认值：除营销外全部开启
func DefaultPreferences(recipient string) Preferences {
	return Preferences{
		Recipient:            recipient,
		Email:                true,
		SMS:                  true,
		AppointmentReminders: true,
		SatisfactionSurveys:  true,
		Marketing:            false,
		Timezone:             "America/New_York",
		Language:             "en",
	}
}

// PreferencesPatch 部分更新。nil 字段表示保持原值
type PreferencesPatch struct {
	Email                *bool
	SMS                  *bool
	AppointmentReminders *bool
	SatisfactionSurveys  *bool
	Marketing            *bool
	Timezone             *string
	Language             *string
	QuietHours           *QuietHours
}

// Merge 把补丁合并进当前偏好，返回合并后的副本
func (p Preferences) Merge(patch PreferencesPatch) Preferences {
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.SMS != nil {
		p.SMS = *patch.SMS
	}
	if patch.AppointmentReminders != nil {
		p.AppointmentReminders = *patch.AppointmentReminders
	}
	if patch.SatisfactionSurveys != nil {
		p.SatisfactionSurveys = *patch.SatisfactionSurveys
	}
	if patch.Marketing != nil {
		p.Marketing = *patch.Marketing
	}
	if patch.Timezone != nil {
		p.Timezone = *patch.Timezone
	}
	if patch.Language != nil {
		p.Language = *patch.Language
	}
	if patch.QuietHours != nil {
		qh := *patch.QuietHours
		p.QuietHours = &qh
	}
	return p
}
