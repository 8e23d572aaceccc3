package template

import (
	"fmt"
	"os"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/errs"
	"gitee.com/visioncare/notification-center/internal/pkg/tplengine"
	"gopkg.in/yaml.v2"
)

// EmailContent 邮件渠道的模板内容
type EmailContent struct {
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
	HTML    string `yaml:"html"`
}

// Definition 单个模板在两个渠道上的内容
type Definition struct {
	SMS   string       `yaml:"sms"`
	Email EmailContent `yaml:"email"`
}

// Content 渠道解析后的模板内容。SMS 渠道只使用 Text
type Content struct {
	Subject string
	Text    string
	HTML    string
}

// Service 模板目录
//
//go:generate mockgen -source=./catalog.go -destination=./mocks/template.mock.go -package=templatemocks -typed Service
type Service interface {
	// Resolve 按(模板, 渠道)取出原始模板内容
	Resolve(key domain.TemplateKey, channel domain.Channel) (Content, error)
	// Render 取出模板并用数据包渲染，缺失的占位符原样保留
	Render(key domain.TemplateKey, channel domain.Channel, data map[string]string) (Content, error)
}

type catalog struct {
	defs map[domain.TemplateKey]Definition
}

// NewCatalog 使用编译期内置的模板目录
func NewCatalog() Service {
	return &catalog{defs: defaultDefinitions()}
}

// NewCatalogFromFile 从YAML文件加载模板目录，文件中缺失的模板回退到内置默认值
func NewCatalogFromFile(path string) (Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog %q: %w", path, err)
	}
	var loaded map[domain.TemplateKey]Definition
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog %q: %w", path, err)
	}
	defs := defaultDefinitions()
	for key, def := range loaded {
		if !key.IsValid() {
			return nil, fmt.Errorf("%w: %q", errs.ErrTemplateNotFound, key)
		}
		defs[key] = def
	}
	return &catalog{defs: defs}, nil
}

func (c *catalog) Resolve(key domain.TemplateKey, channel domain.Channel) (Content, error) {
	def, ok := c.defs[key]
	if !ok {
		return Content{}, fmt.Errorf("%w: %q", errs.ErrTemplateNotFound, key)
	}
	switch channel {
	case domain.ChannelSMS:
		return Content{Text: def.SMS}, nil
	case domain.ChannelEmail:
		return Content{
			Subject: def.Email.Subject,
			Text:    def.Email.Text,
			HTML:    def.Email.HTML,
		}, nil
	default:
		return Content{}, fmt.Errorf("%w: channel %q", errs.ErrTemplateNotFound, channel)
	}
}

func (c *catalog) Render(key domain.TemplateKey, channel domain.Channel, data map[string]string) (Content, error) {
	content, err := c.Resolve(key, channel)
	if err != nil {
		return Content{}, err
	}
	return Content{
		Subject: tplengine.Render(content.Subject, data),
		Text:    tplengine.Render(content.Text, data),
		HTML:    tplengine.Render(content.HTML, data),
	}, nil
}

// defaultDefinitions 内置模板，YAML目录缺失时的回退
func defaultDefinitions() map[domain.TemplateKey]Definition {
	return map[domain.TemplateKey]Definition{
		domain.TemplateAppointmentReminder: {
			SMS: "Hi {{name}}, this is a reminder of your visit with {{doctorName}} on {{appointmentDate}} at {{appointmentTime}}. Location: {{location}}.",
			Email: EmailContent{
				Subject: "Appointment Reminder - {{appointmentDate}}",
				Text:    "Hi {{name}},\n\nThis is a reminder of your visit with {{doctorName}} on {{appointmentDate}} at {{appointmentTime}}.\nLocation: {{location}}\n\nVisionCare Clinic",
				HTML:    "<p>Hi {{name}},</p><p>This is a reminder of your visit with <strong>{{doctorName}}</strong> on {{appointmentDate}} at {{appointmentTime}}.</p><p>Location: {{location}}</p><p>VisionCare Clinic</p>",
			},
		},
		domain.TemplateAppointmentConfirmation: {
			SMS: "Hi {{name}}, your appointment with {{doctorName}} is confirmed for {{appointmentDate}} at {{appointmentTime}}. Ref: {{appointmentId}}.",
			Email: EmailContent{
				Subject: "Appointment Confirmation - {{appointmentDate}}",
				Text:    "Hi {{name}},\n\nYour appointment with {{doctorName}} is confirmed for {{appointmentDate}} at {{appointmentTime}}.\nLocation: {{location}}\nReference: {{appointmentId}}\n\nVisionCare Clinic",
				HTML:    "<p>Hi {{name}},</p><p>Your appointment with <strong>{{doctorName}}</strong> is confirmed for {{appointmentDate}} at {{appointmentTime}}.</p><p>Location: {{location}}<br>Reference: {{appointmentId}}</p><p>VisionCare Clinic</p>",
			},
		},
		domain.TemplateSatisfactionSurvey: {
			SMS: "Hi {{name}}, thanks for visiting {{doctorName}}. Please rate your visit: {{surveyUrl}}",
			Email: EmailContent{
				Subject: "How was your visit with {{doctorName}}?",
				Text:    "Hi {{name}},\n\nThanks for visiting {{doctorName}}. We would love your feedback:\n{{surveyUrl}}\n\nVisionCare Clinic",
				HTML:    "<p>Hi {{name}},</p><p>Thanks for visiting <strong>{{doctorName}}</strong>. We would love your feedback:</p><p><a href=\"{{surveyUrl}}\">Take the survey</a></p><p>VisionCare Clinic</p>",
			},
		},
	}
}
