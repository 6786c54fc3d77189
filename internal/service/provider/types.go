package provider

import (
	"context"

	"gitee.com/flycash/task-reminder/internal/domain"
)

// Provider 消息网关供应商接口
// 网关配置在每次调用时显式传入，不持有可变的全局状态
type Provider interface {
	// FetchInstances 拉取网关实例列表
	FetchInstances(ctx context.Context, cfg domain.GatewayConfig) ([]domain.GatewayInstance, error)
	// Send 通过指定实例发送消息
	// 返回的 DeliveryResult 永远有效，err 是对非成功分类的包装，方便上层用 errors.Is 判定
	Send(ctx context.Context, cfg domain.GatewayConfig, handle domain.ChannelHandle, phone, text string) (domain.DeliveryResult, error)
}
