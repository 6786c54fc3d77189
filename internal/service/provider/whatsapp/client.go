package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"
	retrypkg "gitee.com/flycash/task-reminder/internal/pkg/retry"
)

const (
	// DefaultCountryCode 未带国家码的本地号码统一补上巴西国家码
	DefaultCountryCode = "55"
	// 本地号码最长11位（两位区号+九位号码），超过说明已带国家码
	localNumberMaxLen = 11

	defaultHTTPTimeout = 10 * time.Second
)

// Client 消息网关客户端
// 封装实例列表和文本发送两个HTTP调用，并把HTTP结果归一化成 DeliveryResult
type Client struct {
	httpClient *http.Client
	retryCfg   retrypkg.Config
}

// NewClient 创建网关客户端
// retryCfg 只作用于网络层失败的同次尝试内重试，鉴权失败永远不重试
func NewClient(retryCfg retrypkg.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		retryCfg: retryCfg,
	}
}

// instanceWire 网关实例列表的两种响应形态
// 扁平: {"instanceName":"x","state":"open"}
// 嵌套: {"instance":{"instanceName":"x","status":"open"}}
type instanceWire struct {
	InstanceName     string        `json:"instanceName"`
	Name             string        `json:"name"`
	State            string        `json:"state"`
	Status           string        `json:"status"`
	ConnectionStatus string        `json:"connectionStatus"`
	Instance         *instanceWire `json:"instance"`
}

func (w instanceWire) toDomain() domain.GatewayInstance {
	if w.Instance != nil {
		return w.Instance.toDomain()
	}
	name := w.InstanceName
	if name == "" {
		name = w.Name
	}
	state := w.State
	if state == "" {
		state = w.Status
	}
	if state == "" {
		state = w.ConnectionStatus
	}
	return domain.GatewayInstance{Name: name, State: state}
}

// FetchInstances 拉取网关实例列表
func (c *Client) FetchInstances(ctx context.Context, cfg domain.GatewayConfig) ([]domain.GatewayInstance, error) {
	url := fmt.Sprintf("%s/instance/fetchInstances", strings.TrimSuffix(cfg.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrTransportFailed, err)
	}
	req.Header.Set("apikey", cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrTransportFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrTransportFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status=%d body=%s", errs.ErrGatewayFailed, resp.StatusCode, string(body))
	}

	var wires []instanceWire
	if err := json.Unmarshal(body, &wires); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrMalformedResponse, err)
	}

	instances := make([]domain.GatewayInstance, 0, len(wires))
	for _, w := range wires {
		instance := w.toDomain()
		if instance.Name != "" {
			instances = append(instances, instance)
		}
	}
	return instances, nil
}

// sendTextResponse 发送成功的响应里嵌套着消息标识 key.id
type sendTextResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
}

// Send 通过指定实例发送文本消息
func (c *Client) Send(ctx context.Context, cfg domain.GatewayConfig, handle domain.ChannelHandle, phone, text string) (domain.DeliveryResult, error) {
	number := NormalizePhone(phone)

	strategy, err := retrypkg.NewRetry(c.retryCfg)
	if err != nil {
		// 重试配置不对就只发一次
		strategy = nil
	}

	for {
		result, err := c.sendOnce(ctx, cfg, handle.Instance, number, text)
		if result.Status != domain.DeliveryStatusTransport || strategy == nil {
			return result, err
		}

		interval, ok := strategy.Next()
		if !ok {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", errs.ErrTransportFailed, ctx.Err())
		case <-time.After(interval):
		}
	}
}

func (c *Client) sendOnce(ctx context.Context, cfg domain.GatewayConfig, instance, number, text string) (domain.DeliveryResult, error) {
	url := fmt.Sprintf("%s/message/sendText/%s", strings.TrimSuffix(cfg.BaseURL, "/"), instance)

	payload, err := json.Marshal(map[string]string{
		"number": number,
		"text":   text,
	})
	if err != nil {
		return domain.DeliveryResult{Status: domain.DeliveryStatusTransport, Body: err.Error()},
			fmt.Errorf("%w: %w", errs.ErrTransportFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.DeliveryResult{Status: domain.DeliveryStatusTransport, Body: err.Error()},
			fmt.Errorf("%w: %w", errs.ErrTransportFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.DeliveryResult{Status: domain.DeliveryStatusTransport, Body: err.Error()},
			fmt.Errorf("%w: %w", errs.ErrTransportFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.DeliveryResult{Status: domain.DeliveryStatusTransport, Body: err.Error()},
			fmt.Errorf("%w: %w", errs.ErrTransportFailed, err)
	}

	return c.classify(resp.StatusCode, body)
}

// classify 把HTTP结果归一化成投递结果
// 401是终态：密钥失效，重试只会造成重试风暴
// 2xx但缺少 key.id 也算失败：网关的成功状态码并不可信
func (c *Client) classify(statusCode int, body []byte) (domain.DeliveryResult, error) {
	rawBody := string(body)

	if statusCode == http.StatusUnauthorized {
		result := domain.DeliveryResult{
			Status:     domain.DeliveryStatusAuthFail,
			HTTPStatus: statusCode,
			Body:       rawBody,
		}
		return result, fmt.Errorf("%w: status=%d", errs.ErrAuthFailed, statusCode)
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		result := domain.DeliveryResult{
			Status:     domain.DeliveryStatusGateway,
			HTTPStatus: statusCode,
			Body:       rawBody,
		}
		return result, fmt.Errorf("%w: status=%d body=%s", errs.ErrGatewayFailed, statusCode, rawBody)
	}

	var parsed sendTextResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Key.ID == "" {
		result := domain.DeliveryResult{
			Status:     domain.DeliveryStatusMalformed,
			HTTPStatus: statusCode,
			Body:       rawBody,
		}
		return result, fmt.Errorf("%w: body=%s", errs.ErrMalformedResponse, rawBody)
	}

	return domain.DeliveryResult{
		Status:     domain.DeliveryStatusDelivered,
		MessageID:  parsed.Key.ID,
		HTTPStatus: statusCode,
		Body:       rawBody,
	}, nil
}

// NormalizePhone 手机号归一化：去掉所有非数字字符，本地号码补上国家码
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 0 && len(digits) <= localNumberMaxLen {
		return DefaultCountryCode + digits
	}
	return digits
}
