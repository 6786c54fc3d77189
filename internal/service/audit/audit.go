package audit

import (
	"context"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/repository"
	"github.com/gotomicro/ego/core/elog"
)

// Service 投递审计服务
type Service interface {
	// Record 追加一条审计记录。尽力而为：写入失败只记日志，不影响调用方
	Record(ctx context.Context, record domain.DeliveryRecord)
	// ListRecent 最近的审计记录，诊断页使用
	ListRecent(ctx context.Context, limit int) ([]domain.DeliveryRecord, error)
}

type service struct {
	repo   repository.DeliveryLogRepository
	logger *elog.Component
}

// NewService 创建审计服务
func NewService(repo repository.DeliveryLogRepository) Service {
	return &service{
		repo:   repo,
		logger: elog.DefaultLogger,
	}
}

func (s *service) Record(ctx context.Context, record domain.DeliveryRecord) {
	if record.Resource == "" {
		record.Resource = domain.AuditResourceNotification
	}
	_, err := s.repo.Create(ctx, record)
	if err != nil {
		s.logger.Error("写入审计记录失败",
			elog.FieldErr(err),
			elog.Any("resourceID", record.ResourceID),
			elog.String("action", record.Action),
		)
	}
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]domain.DeliveryRecord, error) {
	return s.repo.ListRecent(ctx, limit)
}
