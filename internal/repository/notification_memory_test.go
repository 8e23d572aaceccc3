package repository

import (
	"context"
	"testing"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLogs(t *testing.T, repo NotificationLogRepository, n int) []domain.NotificationLog {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := make([]domain.NotificationLog, 0, n)
	for i := 0; i < n; i++ {
		entry := domain.NotificationLog{
			ID:        uint64(i + 1),
			Channel:   domain.ChannelSMS,
			Recipient: "+15551234567",
			Template:  domain.TemplateAppointmentReminder,
			Status:    domain.SendStatusSent,
			Cost:      0.01,
			SentAt:    base.Add(time.Duration(i) * time.Minute),
		}
		_, err := repo.Create(context.Background(), entry)
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return entries
}

func TestMemoryRepositoryListDescendingPaged(t *testing.T) {
	t.Parallel()

	repo := NewMemoryNotificationLogRepository()
	seedLogs(t, repo, 5)

	first, err := repo.List(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	// 最新的排最前
	assert.Equal(t, uint64(5), first[0].ID)
	assert.Equal(t, uint64(4), first[1].ID)

	second, err := repo.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, uint64(3), second[0].ID)

	// offset 越界返回空切片而不是错误
	tail, err := repo.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Empty(t, tail)

	// limit<=0 返回 offset 之后的全部
	all, err := repo.List(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryRepositoryDuplicateID(t *testing.T) {
	t.Parallel()

	repo := NewMemoryNotificationLogRepository()
	entry := domain.NotificationLog{ID: 7, SentAt: time.Now()}

	_, err := repo.Create(context.Background(), entry)
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), entry)
	assert.ErrorIs(t, err, errs.ErrLogDuplicate)
}

func TestMemoryRepositoryRetryLifecycle(t *testing.T) {
	t.Parallel()

	repo := NewMemoryNotificationLogRepository()
	_, err := repo.Create(context.Background(), domain.NotificationLog{
		ID:     1,
		Status: domain.SendStatusFailed,
		SentAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), domain.NotificationLog{
		ID:         2,
		Status:     domain.SendStatusFailed,
		RetryCount: 3,
		SentAt:     time.Now(),
	})
	require.NoError(t, err)

	// 只有 retryCount<3 的失败记录可重试
	retryable, err := repo.FindRetryable(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, retryable, 1)
	assert.Equal(t, uint64(1), retryable[0].ID)

	require.NoError(t, repo.MarkRetrySucceeded(context.Background(), 1))

	retryable, err = repo.FindRetryable(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, retryable)

	logs, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	for _, l := range logs {
		if l.ID == 1 {
			assert.Equal(t, domain.SendStatusSent, l.Status)
			assert.Equal(t, int8(1), l.RetryCount)
		}
	}

	assert.ErrorIs(t, repo.MarkRetrySucceeded(context.Background(), 99), errs.ErrNotificationNotFound)
}

func TestMemoryRepositoryStats(t *testing.T) {
	t.Parallel()

	repo := NewMemoryNotificationLogRepository()
	seedLogs(t, repo, 4)
	_, err := repo.Create(context.Background(), domain.NotificationLog{
		ID:       100,
		Channel:  domain.ChannelEmail,
		Template: domain.TemplateSatisfactionSurvey,
		Status:   domain.SendStatusFailed,
		SentAt:   time.Now(),
	})
	require.NoError(t, err)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, stats.Total, stats.ByChannel[domain.ChannelSMS]+stats.ByChannel[domain.ChannelEmail])
	assert.Equal(t, int64(4), stats.ByStatus[domain.SendStatusSent])
	assert.Equal(t, int64(1), stats.ByStatus[domain.SendStatusFailed])
	assert.Equal(t, int64(1), stats.ByTemplate[domain.TemplateSatisfactionSurvey])
	assert.InDelta(t, 0.04, stats.TotalCost, 1e-9)
}
