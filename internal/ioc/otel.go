package ioc

import (
	"github.com/gotomicro/ego/core/econf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitZipkinTracer 初始化链路追踪，上报到 zipkin。
// 未配置 zipkin.url 时返回 nil，Provider 装饰器退化为无操作的全局默认
func InitZipkinTracer() *sdktrace.TracerProvider {
	type Config struct {
		URL string `yaml:"url"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("zipkin", &cfg); err != nil || cfg.URL == "" {
		return nil
	}

	exporter, err := zipkin.New(cfg.URL)
	if err != nil {
		panic(err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "notification-center"),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp
}
