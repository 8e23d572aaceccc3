package template

import (
	"os"
	"path/filepath"
	"testing"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogResolve(t *testing.T) {
	t.Parallel()

	svc := NewCatalog()

	testCases := []struct {
		name    string
		key     domain.TemplateKey
		channel domain.Channel
		check   func(t *testing.T, c Content)
		wantErr error
	}{
		{
			name:    "sms reminder",
			key:     domain.TemplateAppointmentReminder,
			channel: domain.ChannelSMS,
			check: func(t *testing.T, c Content) {
				t.Helper()
				assert.Contains(t, c.Text, "{{doctorName}}")
				assert.Empty(t, c.Subject)
			},
		},
		{
			name:    "email confirmation",
			key:     domain.TemplateAppointmentConfirmation,
			channel: domain.ChannelEmail,
			check: func(t *testing.T, c Content) {
				t.Helper()
				assert.NotEmpty(t, c.Subject)
				assert.Contains(t, c.Text, "{{appointmentId}}")
				assert.Contains(t, c.HTML, "<p>")
			},
		},
		{
			name:    "unknown template",
			key:     domain.TemplateKey("passwordReset"),
			channel: domain.ChannelSMS,
			wantErr: errs.ErrTemplateNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			content, err := svc.Resolve(tc.key, tc.channel)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, content)
		})
	}
}

func TestCatalogRender(t *testing.T) {
	t.Parallel()

	svc := NewCatalog()
	content, err := svc.Render(domain.TemplateSatisfactionSurvey, domain.ChannelSMS, map[string]string{
		"name":       "Ana",
		"doctorName": "Dr. X",
		"surveyUrl":  "https://example.com/s/1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ana, thanks for visiting Dr. X. Please rate your visit: https://example.com/s/1", content.Text)
}

func TestNewCatalogFromFile(t *testing.T) {
	t.Parallel()

	t.Run("override one template, others fall back", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "templates.yaml")
		payload := `appointmentReminder:
  sms: "Custom reminder for {{name}}"
  email:
    subject: "Custom subject"
    text: "Custom text {{name}}"
    html: "<p>Custom {{name}}</p>"
`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		svc, err := NewCatalogFromFile(path)
		require.NoError(t, err)

		content, err := svc.Resolve(domain.TemplateAppointmentReminder, domain.ChannelSMS)
		require.NoError(t, err)
		assert.Equal(t, "Custom reminder for {{name}}", content.Text)

		// 未覆盖的模板使用内置默认值
		content, err = svc.Resolve(domain.TemplateSatisfactionSurvey, domain.ChannelSMS)
		require.NoError(t, err)
		assert.Contains(t, content.Text, "{{surveyUrl}}")
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "templates.yaml")
		require.NoError(t, os.WriteFile(path, []byte("newsletter:\n  sms: \"x\"\n"), 0o644))

		_, err := NewCatalogFromFile(path)
		assert.ErrorIs(t, err, errs.ErrTemplateNotFound)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := NewCatalogFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
