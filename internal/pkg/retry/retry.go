package retry

import (
	"fmt"
	"time"

	"github.com/ecodeclub/ekit/retry"
)

type Config struct {
	Type               string                    `json:"type" yaml:"type"` // 重试策略
	FixedInterval      *FixedIntervalConfig      `json:"fixedInterval" yaml:"fixedInterval"`
	ExponentialBackoff *ExponentialBackoffConfig `json:"exponentialBackoff" yaml:"exponentialBackoff"`
}

type ExponentialBackoffConfig struct {
	// 初始重试间隔 单位ms
	InitialInterval int `json:"initialInterval" yaml:"initialInterval"`
	// 最大重试间隔 单位ms
	MaxInterval int `json:"maxInterval" yaml:"maxInterval"`
	// 最大重试次数
	MaxRetries int32 `json:"maxRetries" yaml:"maxRetries"`
}

type FixedIntervalConfig struct {
	MaxRetries int32 `json:"maxRetries" yaml:"maxRetries"`
	Interval   int   `json:"interval" yaml:"interval"`
}

// NewRetry 根据配置构建重试策略
func NewRetry(cfg Config) (retry.Strategy, error) {
	switch cfg.Type {
	case "fixed":
		return retry.NewFixedIntervalRetryStrategy(msToDuration(cfg.FixedInterval.Interval), cfg.FixedInterval.MaxRetries)
	case "exponential":
		return retry.NewExponentialBackoffRetryStrategy(msToDuration(cfg.ExponentialBackoff.InitialInterval), msToDuration(cfg.ExponentialBackoff.MaxInterval), cfg.ExponentialBackoff.MaxRetries)
	default:
		return nil, fmt.Errorf("unknown retry type: %s", cfg.Type)
	}
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
