package domain

import (
	"fmt"

	"gitee.com/flycash/task-reminder/internal/errs"
)

// GatewayConfig 消息网关配置，调用时显式传入，不做全局可变单例
type GatewayConfig struct {
	BaseURL  string // 网关地址
	APIKey   string // 网关密钥
	Instance string // 期望使用的实例名
}

func (c GatewayConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: BaseURL 不能为空", errs.ErrInvalidParameter)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: APIKey 不能为空", errs.ErrInvalidParameter)
	}
	if c.Instance == "" {
		return fmt.Errorf("%w: Instance 不能为空", errs.ErrInvalidParameter)
	}
	return nil
}

// InstanceStateOpen 网关实例在线状态标记
const InstanceStateOpen = "open"

// GatewayInstance 网关实例，运维侧随时可能增删或改名
type GatewayInstance struct {
	Name  string
	State string
}

// Live 实例是否处于可投递状态
func (i GatewayInstance) Live() bool {
	return i.State == InstanceStateOpen
}

// ChannelHandle 解析出来的出站通道
type ChannelHandle struct {
	Instance  string // 实例名
	State     string // 实例上报的连接状态
	Confirmed bool   // 是否经过实例列表确认，未确认时投递会快速失败
}

// DeliveryStatus 单次投递结果分类
type DeliveryStatus string

const (
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"       // 投递成功
	DeliveryStatusAuthFail  DeliveryStatus = "AUTH_FAILED"     // 401，终态，不重试
	DeliveryStatusGateway   DeliveryStatus = "GATEWAY_ERROR"   // 非401的4xx/5xx，可重试
	DeliveryStatusTransport DeliveryStatus = "TRANSPORT_ERROR" // 网络层失败，可重试
	DeliveryStatusMalformed DeliveryStatus = "MALFORMED"       // 2xx但缺少消息ID
)

func (s DeliveryStatus) String() string {
	return string(s)
}

// Retryable 该结果是否值得调度器在后续tick中重试
func (s DeliveryStatus) Retryable() bool {
	return s == DeliveryStatusGateway || s == DeliveryStatusTransport || s == DeliveryStatusMalformed
}

// DeliveryResult 投递客户端的归一化结果
type DeliveryResult struct {
	Status     DeliveryStatus
	MessageID  string // 网关返回的消息标识，成功时非空
	HTTPStatus int    // 网关HTTP状态码，网络层失败时为0
	Body       string // 原始响应体或错误描述，写入审计
}
