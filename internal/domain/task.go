package domain

import (
	"fmt"
	"time"

	"gitee.com/flycash/task-reminder/internal/errs"
)

// Priority 任务优先级
type Priority string

const (
	PriorityLow    Priority = "LOW"    // 低优先级
	PriorityMedium Priority = "MEDIUM" // 中优先级
	PriorityHigh   Priority = "HIGH"   // 高优先级
)

func (p Priority) String() string {
	return string(p)
}

// TaskStatus 任务生命周期状态
type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "BACKLOG"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) String() string {
	return string(s)
}

// TriggerReason 触发重新计算提醒计划的原因，来自任务CRUD层
type TriggerReason string

const (
	TriggerTaskCreated   TriggerReason = "TASK_CREATED"
	TriggerTaskAssigned  TriggerReason = "TASK_ASSIGNED"
	TriggerStatusChanged TriggerReason = "STATUS_CHANGED"
)

// Task 任务快照，由CRUD层维护，本核心只读
type Task struct {
	ID           int64      // 任务唯一标识
	Title        string     // 标题
	Description  string     // 描述
	Priority     Priority   // 优先级
	Status       TaskStatus // 生命周期状态
	Deadline     *time.Time // 截止日期，可以为空
	AssigneeID   int64      // 执行人
	AssignorName string     // 指派人展示名，用于消息展示
	ProjectID    int64      // 所属项目
	ProjectName  string     // 项目名称，用于消息展示
}

func (t *Task) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("%w: ID = %d", errs.ErrInvalidParameter, t.ID)
	}

	if t.Title == "" {
		return fmt.Errorf("%w: Title = %q", errs.ErrInvalidParameter, t.Title)
	}

	if t.Priority != PriorityLow && t.Priority != PriorityMedium && t.Priority != PriorityHigh {
		return fmt.Errorf("%w: Priority = %q", errs.ErrInvalidParameter, t.Priority)
	}

	if t.Status != TaskStatusBacklog && t.Status != TaskStatusInProgress &&
		t.Status != TaskStatusInReview && t.Status != TaskStatusDone {
		return fmt.Errorf("%w: Status = %q", errs.ErrInvalidParameter, t.Status)
	}

	if t.AssigneeID <= 0 {
		return fmt.Errorf("%w: AssigneeID = %d", errs.ErrInvalidParameter, t.AssigneeID)
	}

	return nil
}

// Active 任务是否仍处于需要提醒的状态
func (t *Task) Active() bool {
	return t.Status != TaskStatusDone
}
