package ioc

import (
	"time"

	"github.com/gotomicro/ego/core/econf"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

func InitRedisClient() *redis.Client {
	type Config struct {
		Addr string
	}
	var cfg Config
	err := econf.UnmarshalKey("redis", &cfg)
	if err != nil {
		panic(err)
	}
	return redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
}

func InitLocalCache() *gocache.Cache {
	const (
		defaultExpiration = 10 * time.Minute
		cleanupInterval   = 15 * time.Minute
	)
	return gocache.New(defaultExpiration, cleanupInterval)
}
