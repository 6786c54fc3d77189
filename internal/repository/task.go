package repository

import (
	"context"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/repository/dao"
)

// TaskRepository 任务只读仓储接口
type TaskRepository interface {
	// GetByID 读取任务快照
	GetByID(ctx context.Context, id int64) (domain.Task, error)
}

type taskRepository struct {
	dao dao.TaskDAO
}

// NewTaskRepository 创建任务只读仓储实例
func NewTaskRepository(d dao.TaskDAO) TaskRepository {
	return &taskRepository{
		dao: d,
	}
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (domain.Task, error) {
	entity, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	var deadline *time.Time
	if entity.Deadline > 0 {
		t := time.UnixMilli(entity.Deadline)
		deadline = &t
	}
	return domain.Task{
		ID:           entity.ID,
		Title:        entity.Title,
		Description:  entity.Description,
		Priority:     domain.Priority(entity.Priority),
		Status:       domain.TaskStatus(entity.Status),
		Deadline:     deadline,
		AssigneeID:   entity.AssigneeID,
		AssignorName: entity.AssignorName,
		ProjectID:    entity.ProjectID,
		ProjectName:  entity.ProjectName,
	}, nil
}
