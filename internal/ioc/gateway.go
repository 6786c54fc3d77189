package ioc

import (
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	limitpkg "gitee.com/flycash/task-reminder/internal/pkg/ratelimit"
	retrypkg "gitee.com/flycash/task-reminder/internal/pkg/retry"
	"gitee.com/flycash/task-reminder/internal/service/provider"
	"gitee.com/flycash/task-reminder/internal/service/provider/metrics"
	"gitee.com/flycash/task-reminder/internal/service/provider/ratelimit"
	"gitee.com/flycash/task-reminder/internal/service/provider/tracing"
	"gitee.com/flycash/task-reminder/internal/service/provider/whatsapp"
	"github.com/gotomicro/ego/core/econf"
	"github.com/redis/go-redis/v9"
)

const providerName = "evolution"

// InitGatewayConfig 网关配置在启动时读一次，之后作为值到处传递
func InitGatewayConfig() domain.GatewayConfig {
	var cfg domain.GatewayConfig
	err := econf.UnmarshalKey("gateway", &cfg)
	if err != nil {
		panic(err)
	}
	if err = cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func InitProvider(rdb *redis.Client) provider.Provider {
	var retryCfg retrypkg.Config
	err := econf.UnmarshalKey("gateway.retry", &retryCfg)
	if err != nil {
		panic(err)
	}

	type LimitConfig struct {
		Interval time.Duration `yaml:"interval"`
		Rate     int           `yaml:"rate"`
	}
	var limitCfg LimitConfig
	err = econf.UnmarshalKey("gateway.rateLimit", &limitCfg)
	if err != nil {
		panic(err)
	}

	var p provider.Provider = whatsapp.NewClient(retryCfg)
	if limitCfg.Rate > 0 {
		limiter := limitpkg.NewRedisSlidingWindowLimiter(rdb, limitCfg.Interval, limitCfg.Rate)
		p = ratelimit.NewProvider(p, limiter)
	}
	return metrics.NewProvider(providerName, tracing.NewProvider(p))
}
