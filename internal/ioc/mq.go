package ioc

import (
	"context"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/ecodeclub/ekit/retry"
	"github.com/ecodeclub/mq-api"
	kafkamq "github.com/ecodeclub/mq-api/kafka"
	"github.com/ecodeclub/mq-api/memory"
	"github.com/gotomicro/ego/core/econf"
)

var (
	q          mq.MQ
	mqInitOnce sync.Once
)

// InitMQ 初始化消息队列，失败时指数退避重试
func InitMQ() mq.MQ {
	mqInitOnce.Do(func() {
		const maxInterval = 10 * time.Second
		const maxRetries = 10
		strategy, err := retry.NewExponentialBackoffRetryStrategy(time.Second, maxInterval, maxRetries)
		if err != nil {
			panic(err)
		}
		for {
			q, err = initMQ()
			if err == nil {
				break
			}
			next, ok := strategy.Next()
			if !ok {
				panic("初始化消息队列重试失败")
			}
			time.Sleep(next)
		}
	})
	return q
}

func initMQ() (mq.MQ, error) {
	type Topic struct {
		Name       string `yaml:"name"`
		Partitions int    `yaml:"partitions"`
	}
	var topics []Topic
	if err := econf.UnmarshalKey("mq.topics", &topics); err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		topics = []Topic{{Name: "audit_events", Partitions: 1}}
	}

	// 配置了 kafka 时生产端走同一个 broker，保证落库消费者能看到本进程产生的事件；
	// 否则退化为内存队列
	var qq mq.MQ
	if addr := econf.GetString("kafka.addr"); addr != "" {
		var err error
		if qq, err = kafkamq.NewMQ("tcp", []string{addr}); err != nil {
			return nil, err
		}
	} else {
		qq = memory.NewMQ()
	}
	for _, t := range topics {
		if err := qq.CreateTopic(context.Background(), t.Name, t.Partitions); err != nil {
			return nil, err
		}
	}
	return qq, nil
}

// InitKafkaConsumer 审计事件落库消费者用的 kafka 连接。
// 未配置 kafka 时返回 nil，审计事件只进内存队列
func InitKafkaConsumer() *kafka.Consumer {
	type Config struct {
		Addr    string `yaml:"addr"`
		GroupID string `yaml:"groupId"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("kafka", &cfg); err != nil || cfg.Addr == "" {
		return nil
	}
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Addr,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		panic(err)
	}
	return consumer
}
