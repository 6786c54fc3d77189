package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"
	"gitee.com/flycash/task-reminder/internal/pkg/idgen"
	"gitee.com/flycash/task-reminder/internal/repository"
	"gitee.com/flycash/task-reminder/internal/service/audit"
	"gitee.com/flycash/task-reminder/internal/service/workwindow"
	"github.com/gotomicro/ego/core/elog"
)

// DELEGATION 提醒推后几秒，给触发排期的任务事务留出提交时间
const delegationDelay = 5 * time.Second

// Service 提醒排期策略引擎
type Service interface {
	// Plan 根据任务优先级和执行人工作时段计算提醒集合并落库
	// 幂等：同元组已有未发送提醒时跳过，不重复不改期
	// 返回本次真正新建的提醒
	Plan(ctx context.Context, task domain.Task, trigger domain.TriggerReason) ([]domain.Reminder, error)
}

type planner struct {
	repo         repository.ReminderRepository
	participants workwindow.Resolver
	auditSvc     audit.Service
	idGen        *idgen.Generator
	logger       *elog.Component
	now          func() time.Time
}

// NewService 创建排期策略引擎
func NewService(
	repo repository.ReminderRepository,
	participants workwindow.Resolver,
	auditSvc audit.Service,
) Service {
	return &planner{
		repo:         repo,
		participants: participants,
		auditSvc:     auditSvc,
		idGen:        idgen.NewGenerator(),
		logger:       elog.DefaultLogger,
		now:          time.Now,
	}
}

func (p *planner) Plan(ctx context.Context, task domain.Task, trigger domain.TriggerReason) ([]domain.Reminder, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	// 已完成的任务不再产生新提醒
	if !task.Active() {
		return nil, nil
	}

	participant, err := p.participants.Resolve(ctx, task.AssigneeID)
	if err != nil || !participant.Reachable() {
		// 没有联系方式就整体跳过，但要留下审计痕迹
		p.auditSvc.Record(ctx, domain.DeliveryRecord{
			Resource:   domain.AuditResourceNotification,
			ResourceID: task.ID,
			Action:     domain.AuditActionImmediateSkipped,
			Payload: domain.AuditPayload{
				TaskTitle:  task.Title,
				TriggerKey: string(trigger),
				Error:      errs.ErrNoContactAddress.Error(),
			},
		})
		return nil, nil
	}

	now := p.now()
	types := domain.TypesForPriority(task.Priority)

	created := make([]domain.Reminder, 0, len(types))
	for _, reminderType := range types {
		reminder := domain.Reminder{
			TaskID:        task.ID,
			ParticipantID: participant.ID,
			Type:          reminderType,
			ScheduledTime: p.scheduleTime(reminderType, participant.Work, now),
			Status:        domain.ReminderStatusPending,
		}
		reminder.ID = p.idGen.GenerateID(task.ID, participant.ID, reminderType.String(), reminder.ScheduledTime)

		stored, err := p.repo.Create(ctx, reminder)
		if err != nil {
			if errors.Is(err, errs.ErrReminderDuplicate) {
				// 同元组已有提醒，幂等跳过
				continue
			}
			// 存储故障向上冒泡，但调用方不能因此阻塞任务保存
			return created, fmt.Errorf("%w: taskID=%d type=%s: %w",
				errs.ErrPlanReminder, task.ID, reminderType, err)
		}
		created = append(created, stored)
	}

	p.logger.Info("提醒排期完成",
		elog.Any("taskID", task.ID),
		elog.String("priority", task.Priority.String()),
		elog.String("trigger", string(trigger)),
		elog.Any("created", len(created)),
	)
	return created, nil
}

// scheduleTime 提醒类型到具体时间戳的映射
func (p *planner) scheduleTime(reminderType domain.ReminderType, window domain.WorkWindow, now time.Time) time.Time {
	switch reminderType {
	case domain.ReminderTypeWorkStart:
		return window.Start.NextOccurrence(now)
	case domain.ReminderTypeWorkMid:
		return window.Midpoint().NextOccurrence(now)
	case domain.ReminderTypeWorkEnd:
		return window.End.NextOccurrence(now)
	default:
		// DELEGATION 以及一切兜底：立刻（略微推后）
		return now.Add(delegationDelay)
	}
}
