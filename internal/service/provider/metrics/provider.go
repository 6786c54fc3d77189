package metrics

import (
	"context"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/service/provider"
	"github.com/prometheus/client_golang/prometheus"
)

// Provider 为网关供应商添加指标收集的装饰器
type Provider struct {
	provider            provider.Provider
	sendDurationSummary *prometheus.SummaryVec
	sendCounter         *prometheus.CounterVec
	sendStatusCounter   *prometheus.CounterVec
	name                string
}

// NewProvider 创建一个新的带有指标收集的供应商
func NewProvider(name string, p provider.Provider) *Provider {
	sendDurationSummary := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "gateway_send_duration_seconds",
			Help:       "网关发送提醒耗时统计（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
			MaxAge:     time.Minute * 5,
		},
		[]string{"provider", "instance", "status"},
	)

	sendCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_send_total",
			Help: "网关发送提醒总数",
		},
		[]string{"provider", "instance"},
	)

	sendStatusCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_send_status_total",
			Help: "网关发送提醒状态统计",
		},
		[]string{"provider", "instance", "status"},
	)

	// 注册指标
	prometheus.MustRegister(sendDurationSummary, sendCounter, sendStatusCounter)

	return &Provider{
		provider:            p,
		sendDurationSummary: sendDurationSummary,
		sendCounter:         sendCounter,
		sendStatusCounter:   sendStatusCounter,
		name:                name,
	}
}

func (p *Provider) FetchInstances(ctx context.Context, cfg domain.GatewayConfig) ([]domain.GatewayInstance, error) {
	return p.provider.FetchInstances(ctx, cfg)
}

// Send 发送提醒并记录指标
func (p *Provider) Send(ctx context.Context, cfg domain.GatewayConfig, handle domain.ChannelHandle, phone, text string) (domain.DeliveryResult, error) {
	startTime := time.Now()

	p.sendCounter.WithLabelValues(
		p.name,
		handle.Instance,
	).Inc()

	result, err := p.provider.Send(ctx, cfg, handle, phone, text)

	duration := time.Since(startTime).Seconds()

	p.sendStatusCounter.WithLabelValues(
		p.name,
		handle.Instance,
		result.Status.String(),
	).Inc()

	p.sendDurationSummary.WithLabelValues(
		p.name,
		handle.Instance,
		result.Status.String(),
	).Observe(duration)

	return result, err
}
