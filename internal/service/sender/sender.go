package sender

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"
	"gitee.com/flycash/task-reminder/internal/repository"
	"gitee.com/flycash/task-reminder/internal/service/audit"
	"gitee.com/flycash/task-reminder/internal/service/channel"
	"gitee.com/flycash/task-reminder/internal/service/formatter"
	"gitee.com/flycash/task-reminder/internal/service/provider"
	"gitee.com/flycash/task-reminder/internal/service/workwindow"
	"github.com/gofrs/uuid"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 8
	defaultMaxAttempts = int8(3)
)

// Config 发送器配置，启动时装配成值传入，运行期不可变
type Config struct {
	Gateway     domain.GatewayConfig
	Concurrency int
	MaxAttempts int8
}

// ManualSendReq 手动触发的单发请求
type ManualSendReq struct {
	TaskID          int64
	ParticipantID   int64
	ReminderType    domain.ReminderType
	TriggeredByName string
}

// ManualSendResp 手动触发的单发结果
type ManualSendResp struct {
	MessageID string
	Instance  string
}

// ReminderSender 提醒发送器
type ReminderSender interface {
	// BatchSend 发送一批已到期的提醒
	// 通道在批次内只解析一次；单条失败不影响同批其它提醒
	BatchSend(ctx context.Context, reminders []domain.Reminder) error
	// SendNow 手动触发的单发路径，绕过提醒表，同步返回结果，无论成败都写审计
	SendNow(ctx context.Context, req ManualSendReq) (ManualSendResp, error)
}

type sender struct {
	repo         repository.ReminderRepository
	tasks        repository.TaskRepository
	participants workwindow.Resolver
	resolver     channel.Resolver
	provider     provider.Provider
	auditSvc     audit.Service
	cfg          Config
	logger       *elog.Component
}

// NewSender 创建提醒发送器
func NewSender(
	repo repository.ReminderRepository,
	tasks repository.TaskRepository,
	participants workwindow.Resolver,
	resolver channel.Resolver,
	p provider.Provider,
	auditSvc audit.Service,
	cfg Config,
) ReminderSender {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &sender{
		repo:         repo,
		tasks:        tasks,
		participants: participants,
		resolver:     resolver,
		provider:     p,
		auditSvc:     auditSvc,
		cfg:          cfg,
		logger:       elog.DefaultLogger,
	}
}

// BatchSend 并发发送一批提醒，抢占是协调的唯一手段，不加任何锁
func (s *sender) BatchSend(ctx context.Context, reminders []domain.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}

	// 每个批次只做一次实例发现，容忍批次之间的实例漂移
	handle := s.resolver.Resolve(ctx, s.cfg.Gateway)

	var mu sync.Mutex
	var errList *multierror.Error

	var eg errgroup.Group
	eg.SetLimit(s.cfg.Concurrency)
	for i := range reminders {
		reminder := reminders[i]
		eg.Go(func() error {
			if err := s.sendOne(ctx, handle, reminder); err != nil {
				mu.Lock()
				errList = multierror.Append(errList, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	return errList.ErrorOrNil()
}

// sendOne 单条提醒的完整状态机：抢占 -> 复查任务 -> 投递 -> 终态落库 + 审计
// 返回的错误只代表基础设施故障，投递失败在这里就地消化
func (s *sender) sendOne(ctx context.Context, handle domain.ChannelHandle, reminder domain.Reminder) error {
	claimed, err := s.repo.Claim(ctx, reminder.ID)
	if err != nil {
		return fmt.Errorf("抢占提醒失败: id=%d %w", reminder.ID, err)
	}
	if !claimed {
		// 被其它实例抢走了，不是错误
		return nil
	}

	task, err := s.tasks.GetByID(ctx, reminder.TaskID)
	if err != nil && !errors.Is(err, errs.ErrTaskNotFound) {
		// 任务表暂时读不了，放回去等下个tick
		return s.retryOrDeadLetter(ctx, reminder, domain.AuditPayload{Error: err.Error()})
	}

	// 任务已删除、已完成或已改派的陈旧提醒：在投递口过滤，直接死信
	if err != nil || !task.Active() || task.AssigneeID != reminder.ParticipantID {
		if dlErr := s.repo.MarkDeadLetter(ctx, reminder.ID); dlErr != nil {
			return fmt.Errorf("标记陈旧提醒失败: id=%d %w", reminder.ID, dlErr)
		}
		s.auditSvc.Record(ctx, domain.DeliveryRecord{
			ReminderID: reminder.ID,
			Resource:   domain.AuditResourceNotification,
			ResourceID: reminder.TaskID,
			Action:     domain.AuditActionStaleTask,
			Payload:    domain.AuditPayload{TaskTitle: task.Title},
		})
		return nil
	}

	participant, err := s.participants.Resolve(ctx, reminder.ParticipantID)
	if err != nil || !participant.Reachable() {
		// 联系方式没了，提醒无法投递，死信并审计
		if dlErr := s.repo.MarkDeadLetter(ctx, reminder.ID); dlErr != nil {
			return fmt.Errorf("标记不可达提醒失败: id=%d %w", reminder.ID, dlErr)
		}
		s.auditSvc.Record(ctx, domain.DeliveryRecord{
			ReminderID: reminder.ID,
			Resource:   domain.AuditResourceNotification,
			ResourceID: reminder.TaskID,
			Action:     domain.AuditActionImmediateSkipped,
			Payload: domain.AuditPayload{
				TaskTitle: task.Title,
				Error:     errs.ErrNoContactAddress.Error(),
			},
		})
		return nil
	}

	text := formatter.Format(task, reminder.Type, task.AssignorName)
	result, _ := s.provider.Send(ctx, s.cfg.Gateway, handle, participant.Phone, text)

	payload := domain.AuditPayload{
		MessageID:   result.MessageID,
		PhoneNumber: participant.Phone,
		TaskTitle:   task.Title,
		Instance:    handle.Instance,
		RawResponse: result.Body,
	}

	if result.Status == domain.DeliveryStatusDelivered {
		if markErr := s.repo.MarkSent(ctx, reminder.ID, time.Now()); markErr != nil {
			return fmt.Errorf("标记投递成功失败: id=%d %w", reminder.ID, markErr)
		}
		s.auditSvc.Record(ctx, domain.DeliveryRecord{
			ReminderID: reminder.ID,
			Resource:   domain.AuditResourceNotification,
			ResourceID: reminder.TaskID,
			Action:     reminder.Type.String(),
			Payload:    payload,
		})
		return nil
	}

	// 鉴权失败是终态：密钥已经失效，重试只会制造重试风暴
	if result.Status == domain.DeliveryStatusAuthFail {
		if dlErr := s.repo.MarkDeadLetter(ctx, reminder.ID); dlErr != nil {
			return fmt.Errorf("标记鉴权死信失败: id=%d %w", reminder.ID, dlErr)
		}
		payload.Error = errs.ErrAuthFailed.Error()
		s.auditSvc.Record(ctx, domain.DeliveryRecord{
			ReminderID: reminder.ID,
			Resource:   domain.AuditResourceNotification,
			ResourceID: reminder.TaskID,
			Action:     domain.AuditActionTriggerError,
			Payload:    payload,
		})
		return nil
	}

	payload.Error = result.Status.String()
	return s.retryOrDeadLetter(ctx, reminder, payload)
}

// retryOrDeadLetter 可重试失败的归宿：没到上限放回PENDING，到了上限死信
func (s *sender) retryOrDeadLetter(ctx context.Context, reminder domain.Reminder, payload domain.AuditPayload) error {
	if reminder.AttemptCount+1 >= s.cfg.MaxAttempts {
		if err := s.repo.MarkDeadLetter(ctx, reminder.ID); err != nil {
			return fmt.Errorf("标记死信失败: id=%d %w", reminder.ID, err)
		}
		s.auditSvc.Record(ctx, domain.DeliveryRecord{
			ReminderID: reminder.ID,
			Resource:   domain.AuditResourceNotification,
			ResourceID: reminder.TaskID,
			Action:     domain.AuditActionTriggerError,
			Payload:    payload,
		})
		s.logger.Warn("提醒重试耗尽，进入死信",
			elog.Any("reminderID", reminder.ID),
			elog.Any("attempts", reminder.AttemptCount+1),
		)
		return nil
	}

	if err := s.repo.MarkRetry(ctx, reminder.ID); err != nil {
		return fmt.Errorf("标记重试失败: id=%d %w", reminder.ID, err)
	}
	s.auditSvc.Record(ctx, domain.DeliveryRecord{
		ReminderID: reminder.ID,
		Resource:   domain.AuditResourceNotification,
		ResourceID: reminder.TaskID,
		Action:     domain.AuditActionTriggerError,
		Payload:    payload,
	})
	return nil
}

// SendNow 手动触发的单发路径
func (s *sender) SendNow(ctx context.Context, req ManualSendReq) (ManualSendResp, error) {
	if err := req.ReminderType.Validate(); err != nil {
		return ManualSendResp{}, err
	}

	triggerKey := uuid.Must(uuid.NewV4()).String()

	task, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		s.auditSvc.Record(ctx, domain.DeliveryRecord{
			Resource:   domain.AuditResourceNotification,
			ResourceID: req.TaskID,
			Action:     domain.AuditActionTriggerError,
			Payload:    domain.AuditPayload{Error: err.Error(), TriggerKey: triggerKey},
		})
		return ManualSendResp{}, err
	}

	participant, err := s.participants.Resolve(ctx, req.ParticipantID)
	if err != nil || !participant.Reachable() {
		s.auditSvc.Record(ctx, domain.DeliveryRecord{
			Resource:   domain.AuditResourceNotification,
			ResourceID: req.TaskID,
			Action:     domain.AuditActionImmediateSkipped,
			Payload: domain.AuditPayload{
				TaskTitle:  task.Title,
				Error:      errs.ErrNoContactAddress.Error(),
				TriggerKey: triggerKey,
			},
		})
		return ManualSendResp{}, fmt.Errorf("%w: participantID=%d", errs.ErrNoContactAddress, req.ParticipantID)
	}

	handle := s.resolver.Resolve(ctx, s.cfg.Gateway)
	text := formatter.Format(task, req.ReminderType, req.TriggeredByName)
	result, sendErr := s.provider.Send(ctx, s.cfg.Gateway, handle, participant.Phone, text)

	payload := domain.AuditPayload{
		MessageID:   result.MessageID,
		PhoneNumber: participant.Phone,
		TaskTitle:   task.Title,
		Instance:    handle.Instance,
		RawResponse: result.Body,
		TriggerKey:  triggerKey,
	}

	if result.Status == domain.DeliveryStatusDelivered {
		s.auditSvc.Record(ctx, domain.DeliveryRecord{
			Resource:   domain.AuditResourceNotification,
			ResourceID: req.TaskID,
			Action:     req.ReminderType.String(),
			Payload:    payload,
		})
		return ManualSendResp{MessageID: result.MessageID, Instance: handle.Instance}, nil
	}

	payload.Error = result.Status.String()
	s.auditSvc.Record(ctx, domain.DeliveryRecord{
		Resource:   domain.AuditResourceNotification,
		ResourceID: req.TaskID,
		Action:     domain.AuditActionTriggerError,
		Payload:    payload,
	})
	return ManualSendResp{Instance: handle.Instance}, sendErr
}
