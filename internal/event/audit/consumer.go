package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/repository"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gotomicro/ego/core/elog"
)

const defaultReadTimeout = time.Second

//go:generate mockgen -source=./consumer.go -package=evtmocks -destination=./mocks/kafka_consumer.mock.go -typed Consumer
type Consumer interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
}

// EventConsumer 消费审计事件并落库，是外部审计汇的参考实现
type EventConsumer struct {
	repo     repository.AuditRepository
	consumer Consumer
	logger   *elog.Component
}

func NewEventConsumer(repo repository.AuditRepository, consumer *kafka.Consumer) (*EventConsumer, error) {
	if err := consumer.SubscribeTopics([]string{eventName}, nil); err != nil {
		return nil, err
	}
	return &EventConsumer{
		repo:     repo,
		consumer: consumer,
		logger:   elog.DefaultLogger,
	}, nil
}

func (c *EventConsumer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := c.Consume(ctx); err != nil {
				c.logger.Error("消费审计事件失败", elog.FieldErr(err))
			}
		}
	}()
}

func (c *EventConsumer) Consume(ctx context.Context) error {
	msg, err := c.consumer.ReadMessage(defaultReadTimeout)
	if err != nil {
		var kerr kafka.Error
		// 超时属于正常轮询
		if errors.As(err, &kerr) && kerr.IsTimeout() {
			return nil
		}
		return err
	}

	var evt AuditEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		c.logger.Warn("审计事件反序列化失败", elog.FieldErr(err))
		// 跳过坏消息，提交位点
		_, cerr := c.consumer.CommitMessage(msg)
		return cerr
	}

	if err := c.repo.Create(ctx, domain.AuditEntry{
		UserID:       evt.UserID,
		Action:       evt.Action,
		Resource:     evt.Resource,
		Details:      evt.Details,
		Success:      evt.Success,
		ErrorMessage: evt.ErrorMessage,
	}); err != nil {
		return err
	}

	_, err = c.consumer.CommitMessage(msg)
	return err
}
