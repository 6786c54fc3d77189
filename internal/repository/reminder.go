package repository

import (
	"context"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

// ReminderStats 诊断页用的提醒计数
type ReminderStats struct {
	Due        int64 // 已到期待投递
	Future     int64 // 未到期待投递
	DeadLetter int64 // 死信
}

// ReminderRepository 提醒仓储接口
type ReminderRepository interface {
	// Create 创建一条提醒，幂等：同元组已有记录时返回 errs.ErrReminderDuplicate
	Create(ctx context.Context, reminder domain.Reminder) (domain.Reminder, error)

	// GetByID 根据ID获取提醒
	GetByID(ctx context.Context, id int64) (domain.Reminder, error)
	// GetByTaskID 根据任务ID获取提醒列表
	GetByTaskID(ctx context.Context, taskID int64) ([]domain.Reminder, error)

	// FindDue 获取已到投递时间的待投递提醒
	FindDue(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error)

	// Claim 抢占提醒，返回 false 表示已被其它实例抢走
	Claim(ctx context.Context, id int64) (bool, error)

	// MarkSent 标记投递成功
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	// MarkRetry 标记本次失败、等待下个tick重试
	MarkRetry(ctx context.Context, id int64) error
	// MarkDeadLetter 标记死信
	MarkDeadLetter(ctx context.Context, id int64) error

	// ResetStaleSending 崩溃恢复：重置滞留在SENDING的提醒
	ResetStaleSending(ctx context.Context, grace time.Duration, batchSize int) (int64, error)

	// Stats 诊断计数
	Stats(ctx context.Context, now time.Time) (ReminderStats, error)
}

// reminderRepository 提醒仓储实现
type reminderRepository struct {
	dao dao.ReminderDAO
}

// NewReminderRepository 创建提醒仓储实例
func NewReminderRepository(d dao.ReminderDAO) ReminderRepository {
	return &reminderRepository{
		dao: d,
	}
}

func (r *reminderRepository) Create(ctx context.Context, reminder domain.Reminder) (domain.Reminder, error) {
	created, err := r.dao.Create(ctx, r.toEntity(reminder))
	if err != nil {
		return domain.Reminder{}, err
	}
	return r.toDomain(created), nil
}

func (r *reminderRepository) GetByID(ctx context.Context, id int64) (domain.Reminder, error) {
	entity, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Reminder{}, err
	}
	return r.toDomain(entity), nil
}

func (r *reminderRepository) GetByTaskID(ctx context.Context, taskID int64) ([]domain.Reminder, error) {
	entities, err := r.dao.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, src dao.Reminder) domain.Reminder {
		return r.toDomain(src)
	}), nil
}

func (r *reminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error) {
	entities, err := r.dao.FindDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, src dao.Reminder) domain.Reminder {
		return r.toDomain(src)
	}), nil
}

func (r *reminderRepository) Claim(ctx context.Context, id int64) (bool, error) {
	return r.dao.Claim(ctx, id)
}

func (r *reminderRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	return r.dao.MarkSent(ctx, id, sentAt)
}

func (r *reminderRepository) MarkRetry(ctx context.Context, id int64) error {
	return r.dao.MarkRetry(ctx, id)
}

func (r *reminderRepository) MarkDeadLetter(ctx context.Context, id int64) error {
	return r.dao.MarkDeadLetter(ctx, id)
}

func (r *reminderRepository) ResetStaleSending(ctx context.Context, grace time.Duration, batchSize int) (int64, error) {
	return r.dao.ResetStaleSending(ctx, grace, batchSize)
}

func (r *reminderRepository) Stats(ctx context.Context, now time.Time) (ReminderStats, error) {
	due, err := r.dao.CountDue(ctx, now)
	if err != nil {
		return ReminderStats{}, err
	}
	future, err := r.dao.CountFuture(ctx, now)
	if err != nil {
		return ReminderStats{}, err
	}
	dead, err := r.dao.CountByStatus(ctx, domain.ReminderStatusFailed.String())
	if err != nil {
		return ReminderStats{}, err
	}
	return ReminderStats{Due: due, Future: future, DeadLetter: dead}, nil
}

// toEntity 将领域对象转换为DAO实体
func (r *reminderRepository) toEntity(reminder domain.Reminder) dao.Reminder {
	var sentAt int64
	if reminder.SentAt != nil {
		sentAt = reminder.SentAt.UnixMilli()
	}
	return dao.Reminder{
		ID:            reminder.ID,
		TaskID:        reminder.TaskID,
		ParticipantID: reminder.ParticipantID,
		ReminderType:  reminder.Type.String(),
		ScheduledTime: reminder.ScheduledTime.UnixMilli(),
		Status:        reminder.Status.String(),
		SentAt:        sentAt,
		AttemptCount:  reminder.AttemptCount,
	}
}

// toDomain 将DAO实体转换为领域对象
func (r *reminderRepository) toDomain(entity dao.Reminder) domain.Reminder {
	var sentAt *time.Time
	if entity.SentAt > 0 {
		t := time.UnixMilli(entity.SentAt)
		sentAt = &t
	}
	return domain.Reminder{
		ID:            entity.ID,
		TaskID:        entity.TaskID,
		ParticipantID: entity.ParticipantID,
		Type:          domain.ReminderType(entity.ReminderType),
		ScheduledTime: time.UnixMilli(entity.ScheduledTime),
		Status:        domain.ReminderStatus(entity.Status),
		SentAt:        sentAt,
		AttemptCount:  entity.AttemptCount,
	}
}
