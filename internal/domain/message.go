package domain

// Message 渲染完成、可直接投递的消息。
// 模拟供应商使用渲染后的文本；真实短信供应商走模板ID+参数
type Message struct {
	Channel  Channel
	To       string // 手机号或邮箱
	Template TemplateKey
	Params   map[string]string

	// 渲染结果。SMS 渠道只有 Text
	Subject string
	Text    string
	HTML    string
}
