package repository

import (
	"context"
	"encoding/json"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	pkgdao "gitee.com/flycash/task-reminder/internal/pkg/dao"
	"gitee.com/flycash/task-reminder/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

// DeliveryLogRepository 投递日志仓储接口，append-only
type DeliveryLogRepository interface {
	// Create 追加一条投递日志
	Create(ctx context.Context, record domain.DeliveryRecord) (domain.DeliveryRecord, error)
	// ListRecent 最近的日志，诊断页使用
	ListRecent(ctx context.Context, limit int) ([]domain.DeliveryRecord, error)
}

// deliveryLogRepository 投递日志仓储实现
type deliveryLogRepository struct {
	dao dao.DeliveryLogDAO
}

// NewDeliveryLogRepository 创建投递日志仓储实例
func NewDeliveryLogRepository(d dao.DeliveryLogDAO) DeliveryLogRepository {
	return &deliveryLogRepository{
		dao: d,
	}
}

func (r *deliveryLogRepository) Create(ctx context.Context, record domain.DeliveryRecord) (domain.DeliveryRecord, error) {
	payload, err := record.Payload.Marshal()
	if err != nil {
		return domain.DeliveryRecord{}, err
	}
	created, err := r.dao.Create(ctx, dao.DeliveryLog{
		ReminderID: record.ReminderID,
		Resource:   record.Resource,
		ResourceID: record.ResourceID,
		Action:     record.Action,
		Payload:    pkgdao.JSON(payload),
	})
	if err != nil {
		return domain.DeliveryRecord{}, err
	}
	return r.toDomain(created), nil
}

func (r *deliveryLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.DeliveryRecord, error) {
	logs, err := r.dao.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(logs, func(_ int, src dao.DeliveryLog) domain.DeliveryRecord {
		return r.toDomain(src)
	}), nil
}

func (r *deliveryLogRepository) toDomain(entity dao.DeliveryLog) domain.DeliveryRecord {
	var payload domain.AuditPayload
	// 载荷是自己写入的JSON，解析失败时保留空载荷即可
	_ = json.Unmarshal(entity.Payload, &payload)
	return domain.DeliveryRecord{
		ID:         entity.ID,
		ReminderID: entity.ReminderID,
		Resource:   entity.Resource,
		ResourceID: entity.ResourceID,
		Action:     entity.Action,
		Payload:    payload,
		Ctime:      time.UnixMilli(entity.Ctime),
	}
}
