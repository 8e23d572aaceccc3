package client

import "errors"

// OK 云厂商成功响应码
const OK = "OK"

var (
	ErrInvalidParameter = errors.New("参数非法")
	ErrSendFailed       = errors.New("发送短信失败")
)

//go:generate mockgen -source=./client.go -destination=./mocks/client.mock.go -package=clientmocks -typed Client

// Client 屏蔽云厂商差异的短信客户端
type Client interface {
	Send(req SendReq) (SendResp, error)
}

// SendReq 发送请求。模板参数以键值对传入，
// 需要按位置传参的厂商按 ParamOrder 取值
type SendReq struct {
	PhoneNumbers  []string
	SignName      string
	TemplateID    string
	TemplateParam map[string]string
	ParamOrder    []string
}

// SendResp 按手机号返回发送状态
type SendResp struct {
	RequestID    string
	PhoneNumbers map[string]SendRespStatus
}

type SendRespStatus struct {
	Code    string
	Message string
}
