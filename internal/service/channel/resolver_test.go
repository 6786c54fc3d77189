package channel

import (
	"context"
	"errors"
	"testing"

	"gitee.com/flycash/task-reminder/internal/domain"
	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	instances []domain.GatewayInstance
	err       error
}

func (f *fakeProvider) FetchInstances(_ context.Context, _ domain.GatewayConfig) ([]domain.GatewayInstance, error) {
	return f.instances, f.err
}

func (f *fakeProvider) Send(_ context.Context, _ domain.GatewayConfig, _ domain.ChannelHandle, _, _ string) (domain.DeliveryResult, error) {
	return domain.DeliveryResult{}, nil
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	cfg := domain.GatewayConfig{BaseURL: "http://gw", APIKey: "k", Instance: "main"}

	testCases := []struct {
		name     string
		provider *fakeProvider
		expected domain.ChannelHandle
	}{
		{
			name:     "拉取失败回退到首选实例名",
			provider: &fakeProvider{err: errors.New("connection refused")},
			expected: domain.ChannelHandle{Instance: "main"},
		},
		{
			name: "首选实例在线",
			provider: &fakeProvider{instances: []domain.GatewayInstance{
				{Name: "backup", State: "open"},
				{Name: "main", State: "open"},
			}},
			expected: domain.ChannelHandle{Instance: "main", State: "open", Confirmed: true},
		},
		{
			name: "首选不在线切换到其它在线实例",
			provider: &fakeProvider{instances: []domain.GatewayInstance{
				{Name: "main", State: "close"},
				{Name: "backup", State: "open"},
			}},
			expected: domain.ChannelHandle{Instance: "backup", State: "open", Confirmed: true},
		},
		{
			name: "没有在线实例时拿列表第一个",
			provider: &fakeProvider{instances: []domain.GatewayInstance{
				{Name: "main", State: "close"},
				{Name: "backup", State: "connecting"},
			}},
			expected: domain.ChannelHandle{Instance: "main", State: "close"},
		},
		{
			name:     "列表为空回退到首选实例名",
			provider: &fakeProvider{instances: []domain.GatewayInstance{}},
			expected: domain.ChannelHandle{Instance: "main"},
		},
	}

	for idx := range testCases {
		tc := testCases[idx]
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			resolver := NewResolver(tc.provider)
			assert.Equal(t, tc.expected, resolver.Resolve(t.Context(), cfg))
		})
	}
}
