package ratelimit

import (
	"context"
	"fmt"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"
	limitpkg "gitee.com/flycash/task-reminder/internal/pkg/ratelimit"
	"gitee.com/flycash/task-reminder/internal/service/provider"
	"github.com/gotomicro/ego/core/elog"
)

const limitKey = "gateway_send"

// Provider 为网关供应商添加发送限流的装饰器
// 被限流的发送按网络层失败处理，调度器会在下个tick重试
type Provider struct {
	provider provider.Provider
	limiter  limitpkg.Limiter
	logger   *elog.Component
}

// NewProvider 创建一个新的带有发送限流的供应商
func NewProvider(p provider.Provider, limiter limitpkg.Limiter) *Provider {
	return &Provider{
		provider: p,
		limiter:  limiter,
		logger:   elog.DefaultLogger,
	}
}

func (p *Provider) FetchInstances(ctx context.Context, cfg domain.GatewayConfig) ([]domain.GatewayInstance, error) {
	return p.provider.FetchInstances(ctx, cfg)
}

func (p *Provider) Send(ctx context.Context, cfg domain.GatewayConfig, handle domain.ChannelHandle, phone, text string) (domain.DeliveryResult, error) {
	limited, err := p.limiter.Limit(ctx, limitKey)
	if err != nil {
		// 限流器故障时放行，不能因为Redis抖动停掉所有投递
		p.logger.Warn("限流器判定失败，放行本次发送", elog.FieldErr(err))
		return p.provider.Send(ctx, cfg, handle, phone, text)
	}
	if limited {
		result := domain.DeliveryResult{
			Status: domain.DeliveryStatusTransport,
			Body:   errs.ErrSendRateLimited.Error(),
		}
		return result, fmt.Errorf("%w: key=%s", errs.ErrSendRateLimited, limitKey)
	}
	return p.provider.Send(ctx, cfg, handle, phone, text)
}
