package preference

import (
	"context"
	"testing"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByRecipientLazyDefault(t *testing.T) {
	t.Parallel()

	svc := NewService(repository.NewMemoryPreferenceRepository())

	prefs, err := svc.GetByRecipient(context.Background(), "a@b.com")
	require.NoError(t, err)

	// 首次查询懒创建默认值：除营销外全部开启
	assert.Equal(t, "a@b.com", prefs.Recipient)
	assert.True(t, prefs.Email)
	assert.True(t, prefs.SMS)
	assert.True(t, prefs.AppointmentReminders)
	assert.True(t, prefs.SatisfactionSurveys)
	assert.False(t, prefs.Marketing)
	assert.Equal(t, "America/New_York", prefs.Timezone)
	assert.Nil(t, prefs.QuietHours)
}

func TestUpdateMergesPatch(t *testing.T) {
	t.Parallel()

	svc := NewService(repository.NewMemoryPreferenceRepository())

	off := false
	tz := "Europe/Berlin"
	updated, err := svc.Update(context.Background(), "+15551234567", domain.PreferencesPatch{
		SMS:      &off,
		Timezone: &tz,
		QuietHours: &domain.QuietHours{
			Start:    "21:00",
			End:      "08:00",
			Timezone: tz,
		},
	})
	require.NoError(t, err)

	assert.False(t, updated.SMS)
	assert.True(t, updated.Email) // 未打补丁的字段保持默认
	assert.Equal(t, tz, updated.Timezone)
	require.NotNil(t, updated.QuietHours)
	assert.Equal(t, "21:00", updated.QuietHours.Start)

	// 更新结果要能再查出来
	got, err := svc.GetByRecipient(context.Background(), "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateTwiceKeepsEarlierPatch(t *testing.T) {
	t.Parallel()

	svc := NewService(repository.NewMemoryPreferenceRepository())

	off := false
	_, err := svc.Update(context.Background(), "a@b.com", domain.PreferencesPatch{Email: &off})
	require.NoError(t, err)

	on := true
	got, err := svc.Update(context.Background(), "a@b.com", domain.PreferencesPatch{Marketing: &on})
	require.NoError(t, err)

	assert.False(t, got.Email)
	assert.True(t, got.Marketing)
}
