package ioc

import (
	"time"

	"gitee.com/visioncare/notification-center/internal/api/web"
	"gitee.com/visioncare/notification-center/internal/pkg/ratelimit"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/server/egin"
	"github.com/redis/go-redis/v9"
)

func InitWebServer(handler *web.Handler) *egin.Component {
	server := egin.Load("server.http").Build()
	handler.RegisterRoutes(server.Engine)
	return server
}

// InitRateLimiter 发送接口的滑动窗口限流。未配置时不限流
func InitRateLimiter(rdb redis.Cmdable) ratelimit.Limiter {
	type Config struct {
		IntervalMS int `yaml:"intervalMs"`
		Rate       int `yaml:"rate"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("ratelimit", &cfg); err != nil || cfg.Rate <= 0 {
		return nil
	}
	return ratelimit.NewRedisSlidingWindowLimiter(rdb, time.Duration(cfg.IntervalMS)*time.Millisecond, cfg.Rate)
}
