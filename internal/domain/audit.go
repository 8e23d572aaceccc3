package domain

// 审计动作
const (
	AuditActionSendNotification = "SEND_NOTIFICATION"
)

// AuditEntry 投递尝试产生的结构化审计条目，写入外部审计汇
type AuditEntry struct {
	UserID       string // 接收者标识
	Action       string
	Resource     string // 模板名
	Details      string
	Success      bool
	ErrorMessage string
}
