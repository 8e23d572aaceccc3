package ioc

import (
	"math/rand"
	"time"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/service/provider"
	"gitee.com/visioncare/notification-center/internal/service/provider/console"
	"gitee.com/visioncare/notification-center/internal/service/provider/metrics"
	"gitee.com/visioncare/notification-center/internal/service/provider/simulator"
	"gitee.com/visioncare/notification-center/internal/service/provider/sms"
	"gitee.com/visioncare/notification-center/internal/service/provider/sms/client"
	"gitee.com/visioncare/notification-center/internal/service/provider/tracing"
	"github.com/gotomicro/ego/core/econf"
)

type providerConfig struct {
	Mode string `yaml:"mode"` // simulator 或 console 或 sms
	Name string `yaml:"name"`

	// mode=sms 时生效
	Vendor string     `yaml:"vendor"` // aliyun 或 tencentcloud
	SMS    sms.Config `yaml:"sms"`
}

// InitProviders 按配置组装各渠道供应商，并套上指标与链路装饰器
func InitProviders() map[domain.Channel]provider.Provider {
	type Config struct {
		SMS   providerConfig `yaml:"sms"`
		Email providerConfig `yaml:"email"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("providers", &cfg); err != nil {
		panic(err)
	}

	random := rand.New(rand.NewSource(time.Now().UnixNano()))
	return map[domain.Channel]provider.Provider{
		domain.ChannelSMS:   decorate("sms", buildSMSProvider(cfg.SMS, random)),
		domain.ChannelEmail: decorate("email", buildEmailProvider(cfg.Email, random)),
	}
}

func decorate(name string, p provider.Provider) provider.Provider {
	return tracing.NewProvider(metrics.NewProvider(name, p))
}

func buildSMSProvider(cfg providerConfig, random simulator.Rand) provider.Provider {
	switch cfg.Mode {
	case "console":
		return console.NewProvider()
	case "sms":
		return sms.NewSMSProvider(cfg.SMS, initSMSClient(cfg.Vendor))
	default:
		simCfg := simulator.SMSConfig(cfg.Name)
		if simCfg.Name == "" {
			simCfg.Name = "mock-sms-provider"
		}
		return simulator.NewProvider(simCfg, random, time.Now)
	}
}

func buildEmailProvider(cfg providerConfig, random simulator.Rand) provider.Provider {
	switch cfg.Mode {
	case "console":
		return console.NewProvider()
	default:
		simCfg := simulator.EmailConfig(cfg.Name)
		if simCfg.Name == "" {
			simCfg.Name = "mock-email-provider"
		}
		return simulator.NewProvider(simCfg, random, time.Now)
	}
}

func initSMSClient(vendor string) client.Client {
	switch vendor {
	case "tencentcloud":
		return initTxSms()
	default:
		return initAliyunSms()
	}
}

func initAliyunSms() client.Client {
	type Config struct {
		RegionID        string `yaml:"regionId"`
		AccessKeyID     string `yaml:"accessKeyId"`
		AccessKeySecret string `yaml:"accessKeySecret"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("sms.aliyun", &cfg); err != nil {
		panic(err)
	}
	cli, err := client.NewAliyunSMS(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		panic(err)
	}
	return cli
}

func initTxSms() client.Client {
	type Config struct {
		RegionID        string `yaml:"regionId"`
		AccessKeyID     string `yaml:"accessKeyId"`
		AccessKeySecret string `yaml:"accessKeySecret"`
		AppID           string `yaml:"appId"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("sms.tx", &cfg); err != nil {
		panic(err)
	}
	cli, err := client.NewTencentCloudSMS(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.AppID)
	if err != nil {
		panic(err)
	}
	return cli
}
