package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"

	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type ReminderDAO interface {
	// Create 创建单条提醒记录，(task_id, participant_id, reminder_type) 冲突时返回 ErrReminderDuplicate
	Create(ctx context.Context, data Reminder) (Reminder, error)

	// GetByID 根据ID查询提醒
	GetByID(ctx context.Context, id int64) (Reminder, error)
	// GetByTaskID 根据任务ID查询提醒列表
	GetByTaskID(ctx context.Context, taskID int64) ([]Reminder, error)

	// FindDue 查询已到投递时间的待投递提醒
	FindDue(ctx context.Context, now time.Time, limit int) ([]Reminder, error)

	// Claim 抢占提醒，PENDING -> SENDING 的原子条件更新
	// 返回 false 表示已被其它调度器实例抢走
	Claim(ctx context.Context, id int64) (bool, error)

	// MarkSent 投递成功 SENDING -> SUCCEEDED
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	// MarkRetry 投递失败但可重试 SENDING -> PENDING，尝试次数+1
	MarkRetry(ctx context.Context, id int64) error
	// MarkDeadLetter 重试耗尽或遇到终态错误 SENDING -> FAILED
	MarkDeadLetter(ctx context.Context, id int64) error

	// ResetStaleSending 把超过宽限期仍处于SENDING的提醒重置回PENDING，进程崩溃恢复路径
	ResetStaleSending(ctx context.Context, grace time.Duration, batchSize int) (int64, error)

	// CountDue 待投递且已到期的数量
	CountDue(ctx context.Context, now time.Time) (int64, error)
	// CountFuture 待投递且未到期的数量
	CountFuture(ctx context.Context, now time.Time) (int64, error)
	// CountByStatus 按状态统计
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// Reminder 提醒记录表
type Reminder struct {
	ID            int64  `gorm:"primaryKey;comment:'雪花算法变种ID'"`
	TaskID        int64  `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_task_participant_type,priority:1;comment:'任务ID'"`
	ParticipantID int64  `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_task_participant_type,priority:2;comment:'参与人ID'"`
	ReminderType  string `gorm:"type:ENUM('DELEGATION','WORK_START','WORK_MID','WORK_END');NOT NULL;uniqueIndex:idx_task_participant_type,priority:3;comment:'提醒类型'"`
	ScheduledTime int64  `gorm:"NOT NULL;index:idx_status_scheduled,priority:2;comment:'计划投递时间'"`
	Status        string `gorm:"type:ENUM('PENDING','SENDING','SUCCEEDED','FAILED');DEFAULT:'PENDING';index:idx_status_scheduled,priority:1;comment:'投递状态'"`
	SentAt        int64  `gorm:"comment:'投递成功时间，未成功为0'"`
	AttemptCount  int8   `gorm:"type:TINYINT;NOT NULL;DEFAULT:0;comment:'已尝试次数'"`
	Ctime         int64
	Utime         int64
}

type reminderDAO struct {
	db *egorm.Component
}

// NewReminderDAO 创建提醒DAO实例
func NewReminderDAO(db *egorm.Component) ReminderDAO {
	return &reminderDAO{
		db: db,
	}
}

func (d *reminderDAO) Create(ctx context.Context, data Reminder) (Reminder, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now
	data.Status = domain.ReminderStatusPending.String()

	err := d.db.WithContext(ctx).Create(&data).Error
	if err != nil {
		if d.isUniqueConstraintError(err) {
			return Reminder{}, fmt.Errorf("%w", errs.ErrReminderDuplicate)
		}
		return Reminder{}, err
	}
	return data, nil
}

// isUniqueConstraintError 检查是否是唯一索引冲突错误
func (d *reminderDAO) isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	me := new(mysql.MySQLError)
	if ok := errors.As(err, &me); ok {
		const uniqueIndexErrNo uint16 = 1062
		return me.Number == uniqueIndexErrNo
	}
	return false
}

func (d *reminderDAO) GetByID(ctx context.Context, id int64) (Reminder, error) {
	var reminder Reminder
	err := d.db.WithContext(ctx).First(&reminder, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Reminder{}, fmt.Errorf("%w: id=%d", errs.ErrReminderNotFound, id)
		}
		return Reminder{}, err
	}
	return reminder, nil
}

func (d *reminderDAO) GetByTaskID(ctx context.Context, taskID int64) ([]Reminder, error) {
	var reminders []Reminder
	err := d.db.WithContext(ctx).Where("task_id = ?", taskID).Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("查询任务提醒列表失败: taskID=%d %w", taskID, err)
	}
	return reminders, nil
}

func (d *reminderDAO) FindDue(ctx context.Context, now time.Time, limit int) ([]Reminder, error) {
	var res []Reminder
	err := d.db.WithContext(ctx).
		Where("status = ? AND scheduled_time <= ?", domain.ReminderStatusPending.String(), now.UnixMilli()).
		Order("scheduled_time ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

// Claim 单条原子条件更新，RowsAffected 是抢占成败的唯一判定
func (d *reminderDAO) Claim(ctx context.Context, id int64) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("id = ? AND status = ?", id, domain.ReminderStatusPending.String()).
		Updates(map[string]any{
			"status": domain.ReminderStatusSending.String(),
			"utime":  time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (d *reminderDAO) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	result := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("id = ? AND status = ?", id, domain.ReminderStatusSending.String()).
		Updates(map[string]any{
			"status":        domain.ReminderStatusSucceeded.String(),
			"sent_at":       sentAt.UnixMilli(),
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"utime":         time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected < 1 {
		return fmt.Errorf("%w: id=%d", errs.ErrReminderClaimed, id)
	}
	return nil
}

func (d *reminderDAO) MarkRetry(ctx context.Context, id int64) error {
	result := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("id = ? AND status = ?", id, domain.ReminderStatusSending.String()).
		Updates(map[string]any{
			"status":        domain.ReminderStatusPending.String(),
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"utime":         time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected < 1 {
		return fmt.Errorf("%w: id=%d", errs.ErrReminderClaimed, id)
	}
	return nil
}

func (d *reminderDAO) MarkDeadLetter(ctx context.Context, id int64) error {
	result := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("id = ? AND status = ?", id, domain.ReminderStatusSending.String()).
		Updates(map[string]any{
			"status":        domain.ReminderStatusFailed.String(),
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"utime":         time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected < 1 {
		return fmt.Errorf("%w: id=%d", errs.ErrReminderClaimed, id)
	}
	return nil
}

// ResetStaleSending 先查ID再按ID更新
// MySQL不允许UPDATE的IN子查询带LIMIT，也不允许子查询引用被更新的表
func (d *reminderDAO) ResetStaleSending(ctx context.Context, grace time.Duration, batchSize int) (int64, error) {
	now := time.Now()
	ddl := now.Add(-grace).UnixMilli()
	var ids []int64
	err := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("status = ? AND utime <= ?", domain.ReminderStatusSending.String(), ddl).
		Order("utime ASC").
		Limit(batchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	// 保留status条件，避免覆盖两条语句之间刚完成终态迁移的行
	res := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("id IN ? AND status = ?", ids, domain.ReminderStatusSending.String()).
		Updates(map[string]any{
			"status": domain.ReminderStatusPending.String(),
			"utime":  now.UnixMilli(),
		})
	return res.RowsAffected, res.Error
}

func (d *reminderDAO) CountDue(ctx context.Context, now time.Time) (int64, error) {
	var cnt int64
	err := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("status = ? AND scheduled_time <= ?", domain.ReminderStatusPending.String(), now.UnixMilli()).
		Count(&cnt).Error
	return cnt, err
}

func (d *reminderDAO) CountFuture(ctx context.Context, now time.Time) (int64, error) {
	var cnt int64
	err := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("status = ? AND scheduled_time > ?", domain.ReminderStatusPending.String(), now.UnixMilli()).
		Count(&cnt).Error
	return cnt, err
}

func (d *reminderDAO) CountByStatus(ctx context.Context, status string) (int64, error) {
	var cnt int64
	err := d.db.WithContext(ctx).Model(&Reminder{}).
		Where("status = ?", status).
		Count(&cnt).Error
	return cnt, err
}
