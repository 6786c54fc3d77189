package ioc

import (
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/service/scheduler"
	"gitee.com/flycash/task-reminder/internal/service/sender"
	"github.com/gotomicro/ego/core/econf"
)

func InitSenderConfig(gateway domain.GatewayConfig) sender.Config {
	type Config struct {
		Concurrency int  `yaml:"concurrency"`
		MaxAttempts int8 `yaml:"maxAttempts"`
	}
	var cfg Config
	err := econf.UnmarshalKey("dispatch", &cfg)
	if err != nil {
		panic(err)
	}
	return sender.Config{
		Gateway:     gateway,
		Concurrency: cfg.Concurrency,
		MaxAttempts: cfg.MaxAttempts,
	}
}

func InitDispatchConfig() scheduler.DispatchConfig {
	type Config struct {
		BatchSize       int           `yaml:"batchSize"`
		BatchTimeout    time.Duration `yaml:"batchTimeout"`
		MinLoopDuration time.Duration `yaml:"minLoopDuration"`
	}
	var cfg Config
	err := econf.UnmarshalKey("dispatch", &cfg)
	if err != nil {
		panic(err)
	}
	return scheduler.DispatchConfig{
		BatchSize:       cfg.BatchSize,
		BatchTimeout:    cfg.BatchTimeout,
		MinLoopDuration: cfg.MinLoopDuration,
	}
}
