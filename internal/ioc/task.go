package ioc

import (
	"context"

	"gitee.com/flycash/task-reminder/internal/service/scheduler"
)

// Task 常驻后台循环
type Task interface {
	Start(ctx context.Context)
}

func InitTasks(t1 *scheduler.DispatchTask,
	t2 *scheduler.StaleClaimTask,
) []Task {
	return []Task{
		t1,
		t2,
	}
}
