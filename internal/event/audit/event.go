package audit

const eventName = "audit_events"

// AuditEvent 每次投递尝试之后发出的审计事件
type AuditEvent struct {
	ID           uint64 `json:"id"`
	UserID       string `json:"userId"` // 接收者标识
	Action       string `json:"action"`
	Resource     string `json:"resource"`
	Details      string `json:"details"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage"`
	// 毫秒时间戳
	Timestamp int64 `json:"timestamp"`
}
