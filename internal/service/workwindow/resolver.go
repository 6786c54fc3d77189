package workwindow

import (
	"context"
	"fmt"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/repository"
	ca "github.com/patrickmn/go-cache"
)

const (
	defaultExpiration = 5 * time.Minute
	cleanupInterval   = 10 * time.Minute
)

// Resolver 参与人工作时段解析器
// 工作时段缺失时落到默认窗口，永远不会因为时段问题阻塞排期
type Resolver interface {
	// Resolve 返回参与人信息，参与人不存在时返回 errs.ErrParticipantNotFound
	Resolve(ctx context.Context, participantID int64) (domain.Participant, error)
}

type resolver struct {
	repo  repository.ParticipantRepository
	cache *ca.Cache
}

// NewResolver 创建工作时段解析器，带本地缓存
func NewResolver(repo repository.ParticipantRepository) Resolver {
	return &resolver{
		repo:  repo,
		cache: ca.New(defaultExpiration, cleanupInterval),
	}
}

func (r *resolver) Resolve(ctx context.Context, participantID int64) (domain.Participant, error) {
	key := cacheKey(participantID)
	if v, ok := r.cache.Get(key); ok {
		return v.(domain.Participant), nil
	}

	participant, err := r.repo.GetByID(ctx, participantID)
	if err != nil {
		return domain.Participant{}, err
	}

	r.cache.Set(key, participant, ca.DefaultExpiration)
	return participant, nil
}

func cacheKey(participantID int64) string {
	return fmt.Sprintf("participant:%d", participantID)
}
