package repository

import (
	"context"
	"encoding/json"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/repository/dao"
)

// NotificationLogRepository 投递日志仓储。日志只追加，
// 仅重试操作会原位修改状态和重试次数，永不删除
//
//go:generate mockgen -source=./notification.go -destination=./mocks/notification.mock.go -package=repomocks -typed NotificationLogRepository
type NotificationLogRepository interface {
	// Create 追加一条投递日志
	Create(ctx context.Context, entry domain.NotificationLog) (domain.NotificationLog, error)
	// MarkRetrySucceeded 把原记录升级为 sent 并把重试次数加一
	MarkRetrySucceeded(ctx context.Context, id uint64) error
	// FindRetryable 查找 status=failed 且 retryCount < maxRetryCount 的记录
	FindRetryable(ctx context.Context, maxRetryCount int8) ([]domain.NotificationLog, error)
	// List 按发送时间倒序分页
	List(ctx context.Context, limit, offset int) ([]domain.NotificationLog, error)
	// Stats 全量日志上的状态/渠道/模板计数与成本合计
	Stats(ctx context.Context) (domain.NotificationStats, error)
}

// logRepository GORM落库实现，可透明替换默认的内存实现
type logRepository struct {
	d dao.NotificationLogDAO
}

func NewNotificationLogRepository(d dao.NotificationLogDAO) NotificationLogRepository {
	return &logRepository{d: d}
}

func (r *logRepository) Create(ctx context.Context, entry domain.NotificationLog) (domain.NotificationLog, error) {
	created, err := r.d.Create(ctx, r.toEntity(entry))
	if err != nil {
		return domain.NotificationLog{}, err
	}
	return r.toDomain(created)
}

func (r *logRepository) MarkRetrySucceeded(ctx context.Context, id uint64) error {
	return r.d.MarkRetrySucceeded(ctx, id)
}

func (r *logRepository) FindRetryable(ctx context.Context, maxRetryCount int8) ([]domain.NotificationLog, error) {
	entities, err := r.d.FindRetryable(ctx, maxRetryCount)
	if err != nil {
		return nil, err
	}
	return r.toDomainSlice(entities)
}

func (r *logRepository) List(ctx context.Context, limit, offset int) ([]domain.NotificationLog, error) {
	entities, err := r.d.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.toDomainSlice(entities)
}

func (r *logRepository) Stats(ctx context.Context) (domain.NotificationStats, error) {
	entities, err := r.d.FindAll(ctx)
	if err != nil {
		return domain.NotificationStats{}, err
	}
	logs, err := r.toDomainSlice(entities)
	if err != nil {
		return domain.NotificationStats{}, err
	}
	return computeStats(logs), nil
}

func (r *logRepository) toEntity(entry domain.NotificationLog) dao.NotificationLog {
	metadata := ""
	if entry.Metadata != nil {
		data, err := json.Marshal(entry.Metadata)
		if err == nil {
			metadata = string(data)
		}
	}
	return dao.NotificationLog{
		ID:         entry.ID,
		Channel:    string(entry.Channel),
		Recipient:  entry.Recipient,
		Template:   string(entry.Template),
		Status:     string(entry.Status),
		MessageID:  entry.MessageID,
		Provider:   entry.Provider,
		Error:      entry.Error,
		Cost:       entry.Cost,
		SentAt:     entry.SentAt.UnixMilli(),
		RetryCount: entry.RetryCount,
		Metadata:   metadata,
	}
}

func (r *logRepository) toDomain(entity dao.NotificationLog) (domain.NotificationLog, error) {
	var metadata map[string]string
	if entity.Metadata != "" {
		if err := json.Unmarshal([]byte(entity.Metadata), &metadata); err != nil {
			return domain.NotificationLog{}, err
		}
	}
	return domain.NotificationLog{
		ID:         entity.ID,
		Channel:    domain.Channel(entity.Channel),
		Recipient:  entity.Recipient,
		Template:   domain.TemplateKey(entity.Template),
		Status:     domain.SendStatus(entity.Status),
		MessageID:  entity.MessageID,
		Provider:   entity.Provider,
		Error:      entity.Error,
		Cost:       entity.Cost,
		SentAt:     time.UnixMilli(entity.SentAt),
		RetryCount: entity.RetryCount,
		Metadata:   metadata,
	}, nil
}

func (r *logRepository) toDomainSlice(entities []dao.NotificationLog) ([]domain.NotificationLog, error) {
	logs := make([]domain.NotificationLog, 0, len(entities))
	for i := range entities {
		l, err := r.toDomain(entities[i])
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// computeStats 内存实现与落库实现共用的统计逻辑
func computeStats(logs []domain.NotificationLog) domain.NotificationStats {
	stats := domain.NotificationStats{
		ByStatus:   make(map[domain.SendStatus]int64),
		ByChannel:  make(map[domain.Channel]int64),
		ByTemplate: make(map[domain.TemplateKey]int64),
	}
	for i := range logs {
		stats.Total++
		stats.ByStatus[logs[i].Status]++
		stats.ByChannel[logs[i].Channel]++
		stats.ByTemplate[logs[i].Template]++
		stats.TotalCost += logs[i].Cost
	}
	return stats
}
