package ioc

import (
	"time"

	"github.com/sony/sonyflake"
)

// InitIDGenerator 雪花ID生成器，日志和审计事件共用
func InitIDGenerator() *sonyflake.Sonyflake {
	return sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}
