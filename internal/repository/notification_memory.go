package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
)

// memoryLogRepository 进程内追加式日志存储，默认实现。
// 进程重启后日志清空是刻意的非目标，不是缺陷
type memoryLogRepository struct {
	mu      sync.RWMutex
	entries []domain.NotificationLog
	index   map[uint64]int // id -> entries 下标
}

func NewMemoryNotificationLogRepository() NotificationLogRepository {
	return &memoryLogRepository{
		index: make(map[uint64]int),
	}
}

func (r *memoryLogRepository) Create(_ context.Context, entry domain.NotificationLog) (domain.NotificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[entry.ID]; ok {
		return domain.NotificationLog{}, fmt.Errorf("%w: id = %d", errs.ErrLogDuplicate, entry.ID)
	}
	r.index[entry.ID] = len(r.entries)
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *memoryLogRepository) MarkRetrySucceeded(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: id = %d", errs.ErrNotificationNotFound, id)
	}
	r.entries[i].Status = domain.SendStatusSent
	r.entries[i].RetryCount++
	return nil
}

func (r *memoryLogRepository) FindRetryable(_ context.Context, maxRetryCount int8) ([]domain.NotificationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.NotificationLog
	for i := range r.entries {
		if r.entries[i].Status == domain.SendStatusFailed && r.entries[i].RetryCount < maxRetryCount {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *memoryLogRepository) List(_ context.Context, limit, offset int) ([]domain.NotificationLog, error) {
	r.mu.RLock()
	sorted := make([]domain.NotificationLog, len(r.entries))
	copy(sorted, r.entries)
	r.mu.RUnlock()

	// 查询时按发送时间倒序；时间相同的记录相对顺序不做保证
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SentAt.After(sorted[j].SentAt)
	})

	if offset >= len(sorted) {
		return []domain.NotificationLog{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (r *memoryLogRepository) Stats(_ context.Context) (domain.NotificationStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return computeStats(r.entries), nil
}
