package errs

import (
	"errors"
)

// 定义统一的错误类型
var (
	// 响应 Error 字段直接透出下面两个错误的文案，措辞属于对外契约
	ErrInvalidParameter       = errors.New("Invalid notification request")
	ErrSendNotificationFailed = errors.New("failed to send notification")
	ErrBlockedByPreferences   = errors.New("Notification blocked by user preferences")
	ErrNotificationNotFound   = errors.New("notification log not found")
	ErrCreateLogFailed        = errors.New("failed to create notification log")
	ErrLogDuplicate           = errors.New("notification log primary key conflict")

	ErrNoAvailableProvider = errors.New("no available provider")
	ErrDeliveryFailed      = errors.New("provider delivery failed")

	ErrTemplateNotFound    = errors.New("template not found")
	ErrPreferencesNotFound = errors.New("preferences not found")
)
