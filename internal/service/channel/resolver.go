package channel

import (
	"context"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/service/provider"
	"github.com/gotomicro/ego/core/elog"
)

// Resolver 网关实例解析器
// 实例集合由运维侧管理，随时可能和配置漂移，所以解析永远不失败，
// 最坏情况退化成未经确认的首选实例名，让投递环节快速暴露真实错误
type Resolver interface {
	// Resolve 从网关实例列表里挑一个可用的出站通道
	Resolve(ctx context.Context, cfg domain.GatewayConfig) domain.ChannelHandle
}

type resolver struct {
	provider provider.Provider
	logger   *elog.Component
}

// NewResolver 创建网关实例解析器
func NewResolver(p provider.Provider) Resolver {
	return &resolver{
		provider: p,
		logger:   elog.DefaultLogger,
	}
}

// Resolve 按优先级挑选实例，依次是：
// 1. 列表拉取失败 -> 未经确认的首选实例名
// 2. 首选实例在线 -> 首选实例
// 3. 任意在线实例
// 4. 任意实例（无论状态）
// 5. 列表为空 -> 未经确认的首选实例名
func (r *resolver) Resolve(ctx context.Context, cfg domain.GatewayConfig) domain.ChannelHandle {
	instances, err := r.provider.FetchInstances(ctx, cfg)
	if err != nil {
		r.logger.Warn("拉取网关实例列表失败，回退到首选实例名",
			elog.FieldErr(err),
			elog.String("instance", cfg.Instance),
		)
		return domain.ChannelHandle{Instance: cfg.Instance}
	}

	// 首选实例在线时永远优先
	for _, instance := range instances {
		if instance.Name == cfg.Instance && instance.Live() {
			return domain.ChannelHandle{
				Instance:  instance.Name,
				State:     instance.State,
				Confirmed: true,
			}
		}
	}

	// 其次任意在线实例
	for _, instance := range instances {
		if instance.Live() {
			r.logger.Info("首选实例不在线，切换到其它在线实例",
				elog.String("preferred", cfg.Instance),
				elog.String("selected", instance.Name),
			)
			return domain.ChannelHandle{
				Instance:  instance.Name,
				State:     instance.State,
				Confirmed: true,
			}
		}
	}

	// 没有在线实例就拿第一个，投递会失败但错误信息是真实的
	if len(instances) > 0 {
		first := instances[0]
		r.logger.Warn("没有在线实例，使用列表中的第一个",
			elog.String("selected", first.Name),
			elog.String("state", first.State),
		)
		return domain.ChannelHandle{
			Instance: first.Name,
			State:    first.State,
		}
	}

	r.logger.Warn("网关实例列表为空，回退到首选实例名",
		elog.String("instance", cfg.Instance),
	)
	return domain.ChannelHandle{Instance: cfg.Instance}
}
