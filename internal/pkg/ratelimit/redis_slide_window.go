package ratelimit

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	//go:embed lua/slide_window.lua
	slidingWindowScript string

	_ Limiter = (*RedisSlidingWindowLimiter)(nil)
)

// RedisSlidingWindowLimiter 基于Redis的滑动窗口限流器
// 多实例共享同一个窗口，限的是整个集群对网关的调用量
type RedisSlidingWindowLimiter struct {
	cmd       redis.Cmdable
	interval  time.Duration
	rate      int
	keyPrefix string
}

// NewRedisSlidingWindowLimiter 创建一个基于Redis的滑动窗口限流器
func NewRedisSlidingWindowLimiter(cmd redis.Cmdable, interval time.Duration, rate int) *RedisSlidingWindowLimiter {
	return &RedisSlidingWindowLimiter{
		cmd:       cmd,
		interval:  interval,
		rate:      rate,
		keyPrefix: "ratelimit:",
	}
}

// Limit 判断是否应该限流
func (r *RedisSlidingWindowLimiter) Limit(ctx context.Context, key string) (bool, error) {
	return r.cmd.Eval(ctx, slidingWindowScript,
		[]string{r.getCountKey(key)},
		r.interval.Milliseconds(),
		r.rate,
		time.Now().UnixMilli(),
	).Bool()
}

func (r *RedisSlidingWindowLimiter) getCountKey(key string) string {
	return fmt.Sprintf("%scount:%s", r.keyPrefix, key)
}
