package ioc

import (
	"context"

	"gitee.com/visioncare/notification-center/internal/api/web"
	auditevt "gitee.com/visioncare/notification-center/internal/event/audit"
	"gitee.com/visioncare/notification-center/internal/pkg/ratelimit"
	retrypkg "gitee.com/visioncare/notification-center/internal/pkg/retry"
	"gitee.com/visioncare/notification-center/internal/repository"
	localcache "gitee.com/visioncare/notification-center/internal/repository/cache/local"
	rediscache "gitee.com/visioncare/notification-center/internal/repository/cache/redis"
	"gitee.com/visioncare/notification-center/internal/repository/dao"
	"gitee.com/visioncare/notification-center/internal/service/audit"
	"gitee.com/visioncare/notification-center/internal/service/notification"
	"gitee.com/visioncare/notification-center/internal/service/preference"
	"gitee.com/visioncare/notification-center/internal/service/template"
	"github.com/ego-component/egorm"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server/egin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// App 组装完成的应用
type App struct {
	Web           *egin.Component
	AuditConsumer *auditevt.EventConsumer
	tracer        *sdktrace.TracerProvider
}

// StartTasks 启动常驻后台任务
func (a *App) StartTasks(ctx context.Context) {
	if a.AuditConsumer != nil {
		a.AuditConsumer.Start(ctx)
	}
}

// Shutdown 退出前冲刷尚未上报的链路数据
func (a *App) Shutdown(ctx context.Context) {
	if a.tracer == nil {
		return
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		elog.DefaultLogger.Warn("关闭链路追踪失败", elog.FieldErr(err))
	}
}

// InitApp 按配置组装全部依赖。
// 默认全内存运行；storage.mode=mysql 时日志和偏好落库，偏好走两级缓存
func InitApp() *App {
	tracer := InitZipkinTracer()
	idGenerator := InitIDGenerator()

	producer, err := auditevt.NewAuditEventProducer(InitMQ())
	if err != nil {
		panic(err)
	}
	auditSvc := audit.NewService(producer, idGenerator)

	var rdb *redis.Client
	if econf.GetString("redis.addr") != "" {
		rdb = InitRedisClient()
	}

	var db *egorm.Component
	var logRepo repository.NotificationLogRepository
	var prefRepo repository.PreferenceRepository
	if econf.GetString("storage.mode") == "mysql" {
		db = InitDB()
		logRepo = repository.NewNotificationLogRepository(dao.NewNotificationLogDAO(db))
		base := repository.NewPreferenceRepository(dao.NewPreferenceDAO(db))
		if rdb != nil {
			prefRepo = repository.NewCachedPreferenceRepository(base,
				localcache.NewCache(InitLocalCache()),
				rediscache.NewCache(rdb))
		} else {
			prefRepo = base
		}
	} else {
		logRepo = repository.NewMemoryNotificationLogRepository()
		prefRepo = repository.NewMemoryPreferenceRepository()
	}

	templateSvc := initTemplateCatalog()
	prefSvc := preference.NewService(prefRepo)

	svc := notification.NewService(
		InitProviders(),
		templateSvc,
		prefSvc,
		preference.NewGate(),
		logRepo,
		auditSvc,
		idGenerator,
		initRetryConfig(),
	)

	var limiter ratelimit.Limiter
	if rdb != nil {
		limiter = InitRateLimiter(rdb)
	}

	app := &App{
		Web:    InitWebServer(web.NewHandler(svc, prefSvc, limiter)),
		tracer: tracer,
	}

	// kafka 配置了才起审计落库消费者
	if consumer := InitKafkaConsumer(); consumer != nil {
		if db == nil {
			elog.DefaultLogger.Warn("已配置 kafka 但存储不是 mysql，跳过审计落库消费者")
			return app
		}
		auditConsumer, err := auditevt.NewEventConsumer(
			repository.NewAuditRepository(dao.NewAuditLogDAO(db)), consumer)
		if err != nil {
			panic(err)
		}
		app.AuditConsumer = auditConsumer
	}

	return app
}

func initTemplateCatalog() template.Service {
	path := econf.GetString("templates.file")
	if path == "" {
		return template.NewCatalog()
	}
	svc, err := template.NewCatalogFromFile(path)
	if err != nil {
		panic(err)
	}
	return svc
}

func initRetryConfig() retrypkg.Config {
	var cfg retrypkg.Config
	if err := econf.UnmarshalKey("retry", &cfg); err != nil || cfg.Type == "" {
		return retrypkg.Config{
			Type: "exponential",
			ExponentialBackoff: &retrypkg.ExponentialBackoffConfig{
				InitialInterval: 1000,
				MaxInterval:     10000,
				MaxRetries:      10000,
			},
		}
	}
	return cfg
}
