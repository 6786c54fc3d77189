package tracing

import (
	"context"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/service/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Provider 为网关供应商添加链路追踪的装饰器
type Provider struct {
	provider provider.Provider
	tracer   trace.Tracer
}

// NewProvider 创建一个新的带有链路追踪的供应商
func NewProvider(p provider.Provider) *Provider {
	return &Provider{
		provider: p,
		tracer:   otel.Tracer("task-reminder/provider"),
	}
}

func (p *Provider) FetchInstances(ctx context.Context, cfg domain.GatewayConfig) ([]domain.GatewayInstance, error) {
	ctx, span := p.tracer.Start(ctx, "Provider.FetchInstances",
		trace.WithAttributes(
			attribute.String("gateway.instance", cfg.Instance),
		))
	defer span.End()

	instances, err := p.provider.FetchInstances(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("gateway.instanceCount", len(instances)))
	}

	return instances, err
}

func (p *Provider) Send(ctx context.Context, cfg domain.GatewayConfig, handle domain.ChannelHandle, phone, text string) (domain.DeliveryResult, error) {
	ctx, span := p.tracer.Start(ctx, "Provider.Send",
		trace.WithAttributes(
			attribute.String("gateway.instance", handle.Instance),
			attribute.Bool("gateway.confirmed", handle.Confirmed),
		))
	defer span.End()

	result, err := p.provider.Send(ctx, cfg, handle, phone, text)

	span.SetAttributes(attribute.String("delivery.status", result.Status.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err
}
