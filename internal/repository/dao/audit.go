package dao

import (
	"context"
	"fmt"
	"time"

	"gitee.com/flycash/task-reminder/internal/errs"
	pkgdao "gitee.com/flycash/task-reminder/internal/pkg/dao"

	"github.com/ego-component/egorm"
)

type DeliveryLogDAO interface {
	// Create 追加一条投递日志，只插入，永不更新
	Create(ctx context.Context, data DeliveryLog) (DeliveryLog, error)
	// ListRecent 按时间倒序取最近的日志，诊断页使用
	ListRecent(ctx context.Context, limit int) ([]DeliveryLog, error)
}

// DeliveryLog 投递审计表，append-only
type DeliveryLog struct {
	ID         int64       `gorm:"primaryKey;autoIncrement"`
	ReminderID int64       `gorm:"type:BIGINT;NOT NULL;DEFAULT:0;index:idx_reminder_id;comment:'关联提醒，手动发送为0'"`
	Resource   string      `gorm:"type:VARCHAR(64);NOT NULL;comment:'资源标记'"`
	ResourceID int64       `gorm:"type:BIGINT;NOT NULL;index:idx_resource_id;comment:'任务ID'"`
	Action     string      `gorm:"type:VARCHAR(64);NOT NULL;comment:'提醒类型或特殊动作'"`
	Payload    pkgdao.JSON `gorm:"type:JSON;NOT NULL;comment:'自由载荷'"`
	Ctime      int64       `gorm:"index:idx_ctime"`
}

type deliveryLogDAO struct {
	db *egorm.Component
}

// NewDeliveryLogDAO 创建投递日志DAO实例
func NewDeliveryLogDAO(db *egorm.Component) DeliveryLogDAO {
	return &deliveryLogDAO{
		db: db,
	}
}

func (d *deliveryLogDAO) Create(ctx context.Context, data DeliveryLog) (DeliveryLog, error) {
	data.Ctime = time.Now().UnixMilli()
	if err := d.db.WithContext(ctx).Create(&data).Error; err != nil {
		return DeliveryLog{}, fmt.Errorf("%w: %w", errs.ErrCreateDeliveryLogFailed, err)
	}
	return data, nil
}

func (d *deliveryLogDAO) ListRecent(ctx context.Context, limit int) ([]DeliveryLog, error) {
	var logs []DeliveryLog
	err := d.db.WithContext(ctx).
		Order("ctime DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
