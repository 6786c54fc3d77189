package ioc

import (
	"context"

	"gitee.com/flycash/task-reminder/internal/repository"
	auditsvc "gitee.com/flycash/task-reminder/internal/service/audit"
	plannersvc "gitee.com/flycash/task-reminder/internal/service/planner"
	sendersvc "gitee.com/flycash/task-reminder/internal/service/sender"
	"github.com/gotomicro/ego/server/egin"
)

type App struct {
	WebServer *egin.Component
	Tasks     []Task

	PlannerSvc   plannersvc.Service
	SenderSvc    sendersvc.ReminderSender
	AuditSvc     auditsvc.Service
	ReminderRepo repository.ReminderRepository
}

func (a *App) StartTasks(ctx context.Context) {
	for _, t := range a.Tasks {
		go func(t Task) {
			t.Start(ctx)
		}(t)
	}
}
