package loopjob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

// 没有分布式任务调度平台，靠分布式锁保证同一时刻只有一个实例在跑循环

const defaultTimeout = time.Second * 3

type InfiniteLoop struct {
	dclient dlock.Client
	key     string
	logger  *elog.Component
	biz     func(ctx context.Context) error
}

func NewInfiniteLoop(
	dclient dlock.Client,
	// 要执行的业务。ctx 被取消的时候会退出全部循环
	biz func(ctx context.Context) error,
	key string,
) *InfiniteLoop {
	return &InfiniteLoop{
		dclient: dclient,
		key:     key,
		logger:  elog.DefaultLogger.With(elog.String("key", key)),
		biz:     biz,
	}
}

// Run 当 ctx 被取消的时候退出
func (l *InfiniteLoop) Run(ctx context.Context) {
	const interval = time.Minute
	for {
		lock, err := l.dclient.NewLock(ctx, l.key, interval)
		if err != nil {
			l.logger.Error("初始化分布式锁失败，重试",
				elog.Any("err", err))
			time.Sleep(interval)
			continue
		}

		lockCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		// 没抢到锁说明别的实例在跑，歇一会再试
		err = lock.Lock(lockCtx)
		cancel()
		if err != nil {
			time.Sleep(interval)
			continue
		}

		err = l.bizLoop(ctx, lock)
		// 要么是续约失败，要么是 ctx 本身已经结束
		if err != nil {
			l.logger.Error("执行业务失败，将执行重试", elog.FieldErr(err))
		}
		// 此时 ctx 可能已被取消，解锁要用独立的 Context
		unCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		//nolint:contextcheck // 原始 ctx 可能已被取消，但仍需尝试解锁操作
		unErr := lock.Unlock(unCtx)
		cancel()
		if unErr != nil {
			l.logger.Error("释放分布式锁失败", elog.Any("err", unErr))
		}
		err = ctx.Err()
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			l.logger.Info("任务被取消，退出任务循环")
			return
		default:
			time.Sleep(interval)
		}
	}
}

func (l *InfiniteLoop) bizLoop(ctx context.Context, lock dlock.Lock) error {
	for {
		err := l.biz(ctx)
		if err != nil {
			l.logger.Error("业务执行失败", elog.FieldErr(err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		refCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		err = lock.Refresh(refCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("分布式锁续约失败 %w", err)
		}
	}
}
