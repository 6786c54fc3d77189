package dao

import (
	"context"
	"errors"
	"fmt"

	"gitee.com/flycash/task-reminder/internal/errs"

	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

// 任务表由CRUD层负责写入和迁移，本核心只读

type TaskDAO interface {
	// GetByID 读取任务快照，投递前复查任务状态用
	GetByID(ctx context.Context, id int64) (Task, error)
}

// Task 任务表只读视图
type Task struct {
	ID           int64  `gorm:"primaryKey"`
	Title        string `gorm:"type:VARCHAR(256);NOT NULL"`
	Description  string `gorm:"type:TEXT"`
	Priority     string `gorm:"type:ENUM('LOW','MEDIUM','HIGH');NOT NULL"`
	Status       string `gorm:"type:ENUM('BACKLOG','IN_PROGRESS','IN_REVIEW','DONE');NOT NULL"`
	Deadline     int64  `gorm:"comment:'截止日期，无则为0'"`
	AssigneeID   int64  `gorm:"type:BIGINT;NOT NULL"`
	AssignorName string `gorm:"type:VARCHAR(256);comment:'指派人展示名'"`
	ProjectID    int64  `gorm:"type:BIGINT;NOT NULL"`
	ProjectName  string `gorm:"type:VARCHAR(256);NOT NULL"`
	Ctime        int64
	Utime        int64
}

type taskDAO struct {
	db *egorm.Component
}

// NewTaskDAO 创建任务只读DAO实例
func NewTaskDAO(db *egorm.Component) TaskDAO {
	return &taskDAO{
		db: db,
	}
}

func (d *taskDAO) GetByID(ctx context.Context, id int64) (Task, error) {
	var task Task
	err := d.db.WithContext(ctx).First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Task{}, fmt.Errorf("%w: id=%d", errs.ErrTaskNotFound, id)
		}
		return Task{}, err
	}
	return task, nil
}
