package sender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"
	"gitee.com/flycash/task-reminder/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminderRepo struct {
	repository.ReminderRepository

	mu          sync.Mutex
	claimResult map[int64]bool
	sent        []int64
	retried     []int64
	deadLetter  []int64
}

func (f *fakeReminderRepo) Claim(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimResult == nil {
		return true, nil
	}
	claimed, ok := f.claimResult[id]
	if !ok {
		return true, nil
	}
	return claimed, nil
}

func (f *fakeReminderRepo) MarkSent(_ context.Context, id int64, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeReminderRepo) MarkRetry(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retried = append(f.retried, id)
	return nil
}

func (f *fakeReminderRepo) MarkDeadLetter(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadLetter = append(f.deadLetter, id)
	return nil
}

type fakeTaskRepo struct {
	tasks map[int64]domain.Task
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id int64) (domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, errs.ErrTaskNotFound
	}
	return task, nil
}

type fakeParticipantResolver struct {
	participants map[int64]domain.Participant
}

func (f *fakeParticipantResolver) Resolve(_ context.Context, id int64) (domain.Participant, error) {
	p, ok := f.participants[id]
	if !ok {
		return domain.Participant{}, errs.ErrParticipantNotFound
	}
	return p, nil
}

type fakeChannelResolver struct {
	handle domain.ChannelHandle
}

func (f *fakeChannelResolver) Resolve(_ context.Context, _ domain.GatewayConfig) domain.ChannelHandle {
	return f.handle
}

type fakeProvider struct {
	mu      sync.Mutex
	results map[string]domain.DeliveryResult
	sends   []string
}

func (f *fakeProvider) FetchInstances(_ context.Context, _ domain.GatewayConfig) ([]domain.GatewayInstance, error) {
	return nil, nil
}

func (f *fakeProvider) Send(_ context.Context, _ domain.GatewayConfig, _ domain.ChannelHandle, phone, _ string) (domain.DeliveryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, phone)
	if result, ok := f.results[phone]; ok {
		var err error
		if result.Status != domain.DeliveryStatusDelivered {
			err = errors.New(result.Status.String())
		}
		return result, err
	}
	return domain.DeliveryResult{Status: domain.DeliveryStatusDelivered, MessageID: "MSG1"}, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	records []domain.DeliveryRecord
}

func (f *fakeAudit) Record(_ context.Context, record domain.DeliveryRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
}

func (f *fakeAudit) ListRecent(_ context.Context, _ int) ([]domain.DeliveryRecord, error) {
	return f.records, nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	actions := make([]string, 0, len(f.records))
	for _, r := range f.records {
		actions = append(actions, r.Action)
	}
	return actions
}

type senderFixture struct {
	repo      *fakeReminderRepo
	tasks     *fakeTaskRepo
	provider  *fakeProvider
	auditSvc  *fakeAudit
	underTest ReminderSender
}

func newFixture() *senderFixture {
	repo := &fakeReminderRepo{}
	tasks := &fakeTaskRepo{tasks: map[int64]domain.Task{
		1: {
			ID:           1,
			Title:        "Revisar contrato",
			Priority:     domain.PriorityHigh,
			Status:       domain.TaskStatusInProgress,
			AssigneeID:   10,
			AssignorName: "Maria",
		},
	}}
	participants := &fakeParticipantResolver{participants: map[int64]domain.Participant{
		10: {ID: 10, Name: "João", Phone: "5511999998888"},
	}}
	prov := &fakeProvider{}
	auditSvc := &fakeAudit{}

	return &senderFixture{
		repo:     repo,
		tasks:    tasks,
		provider: prov,
		auditSvc: auditSvc,
		underTest: NewSender(repo, tasks, participants, &fakeChannelResolver{
			handle: domain.ChannelHandle{Instance: "main", Confirmed: true},
		}, prov, auditSvc, Config{
			Gateway:     domain.GatewayConfig{BaseURL: "http://gw", APIKey: "k", Instance: "main"},
			Concurrency: 2,
			MaxAttempts: 3,
		}),
	}
}

func dueReminder(id int64) domain.Reminder {
	return domain.Reminder{
		ID:            id,
		TaskID:        1,
		ParticipantID: 10,
		Type:          domain.ReminderTypeDelegation,
		ScheduledTime: time.Now().Add(-time.Minute),
		Status:        domain.ReminderStatusPending,
	}
}

func TestSender_BatchSend_Success(t *testing.T) {
	t.Parallel()

	f := newFixture()
	err := f.underTest.BatchSend(t.Context(), []domain.Reminder{dueReminder(100), dueReminder(101)})

	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{100, 101}, f.repo.sent)
	assert.Len(t, f.provider.sends, 2)
	assert.ElementsMatch(t, []string{
		domain.ReminderTypeDelegation.String(),
		domain.ReminderTypeDelegation.String(),
	}, f.auditSvc.actions())
}

func TestSender_BatchSend_SkipsLostClaim(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.claimResult = map[int64]bool{100: false, 101: true}

	err := f.underTest.BatchSend(t.Context(), []domain.Reminder{dueReminder(100), dueReminder(101)})

	require.NoError(t, err)
	// 没抢到的那条不投递也不算失败
	assert.Equal(t, []int64{101}, f.repo.sent)
	assert.Len(t, f.provider.sends, 1)
}

func TestSender_BatchSend_StaleTaskDeadLetters(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(f *senderFixture)
	}{
		{
			name:   "任务已删除",
			mutate: func(f *senderFixture) { delete(f.tasks.tasks, 1) },
		},
		{
			name: "任务已完成",
			mutate: func(f *senderFixture) {
				task := f.tasks.tasks[1]
				task.Status = domain.TaskStatusDone
				f.tasks.tasks[1] = task
			},
		},
		{
			name: "任务已改派",
			mutate: func(f *senderFixture) {
				task := f.tasks.tasks[1]
				task.AssigneeID = 99
				f.tasks.tasks[1] = task
			},
		},
	}

	for idx := range testCases {
		tc := testCases[idx]
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			tc.mutate(f)

			err := f.underTest.BatchSend(t.Context(), []domain.Reminder{dueReminder(100)})

			require.NoError(t, err)
			assert.Equal(t, []int64{100}, f.repo.deadLetter)
			assert.Empty(t, f.provider.sends)
			assert.Equal(t, []string{domain.AuditActionStaleTask}, f.auditSvc.actions())
		})
	}
}

func TestSender_BatchSend_AuthFailureIsTerminal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.provider.results = map[string]domain.DeliveryResult{
		"5511999998888": {Status: domain.DeliveryStatusAuthFail, HTTPStatus: 401},
	}

	err := f.underTest.BatchSend(t.Context(), []domain.Reminder{dueReminder(100)})

	require.NoError(t, err)
	// 鉴权失败直接死信，不进重试
	assert.Equal(t, []int64{100}, f.repo.deadLetter)
	assert.Empty(t, f.repo.retried)
	assert.Equal(t, []string{domain.AuditActionTriggerError}, f.auditSvc.actions())
}

func TestSender_BatchSend_RetryableFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.provider.results = map[string]domain.DeliveryResult{
		"5511999998888": {Status: domain.DeliveryStatusGateway, HTTPStatus: 500},
	}

	reminder := dueReminder(100)
	reminder.AttemptCount = 0

	err := f.underTest.BatchSend(t.Context(), []domain.Reminder{reminder})

	require.NoError(t, err)
	assert.Equal(t, []int64{100}, f.repo.retried)
	assert.Empty(t, f.repo.deadLetter)
}

func TestSender_BatchSend_RetryCeilingDeadLetters(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.provider.results = map[string]domain.DeliveryResult{
		"5511999998888": {Status: domain.DeliveryStatusGateway, HTTPStatus: 500},
	}

	reminder := dueReminder(100)
	reminder.AttemptCount = 2 // 本次是第三次尝试

	err := f.underTest.BatchSend(t.Context(), []domain.Reminder{reminder})

	require.NoError(t, err)
	assert.Equal(t, []int64{100}, f.repo.deadLetter)
	assert.Empty(t, f.repo.retried)
}

func TestSender_BatchSend_FailureIsolation(t *testing.T) {
	t.Parallel()

	// 一条投递失败不影响同批其它提醒
	f := newFixture()
	f.tasks.tasks[2] = domain.Task{
		ID:         2,
		Title:      "Outra tarefa",
		Priority:   domain.PriorityLow,
		Status:     domain.TaskStatusInProgress,
		AssigneeID: 20,
	}
	// 参与人20没有联系方式
	failing := domain.Reminder{
		ID:            200,
		TaskID:        2,
		ParticipantID: 20,
		Type:          domain.ReminderTypeWorkStart,
		Status:        domain.ReminderStatusPending,
	}

	err := f.underTest.BatchSend(t.Context(), []domain.Reminder{failing, dueReminder(100)})

	require.NoError(t, err)
	assert.Equal(t, []int64{100}, f.repo.sent)
	assert.Equal(t, []int64{200}, f.repo.deadLetter)
}

func TestSender_SendNow_Success(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp, err := f.underTest.SendNow(t.Context(), ManualSendReq{
		TaskID:          1,
		ParticipantID:   10,
		ReminderType:    domain.ReminderTypeInProgressPing,
		TriggeredByName: "Carlos",
	})

	require.NoError(t, err)
	assert.Equal(t, "MSG1", resp.MessageID)
	assert.Equal(t, "main", resp.Instance)

	actions := f.auditSvc.actions()
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ReminderTypeInProgressPing.String(), actions[0])
	// 手动触发要带关联键
	assert.NotEmpty(t, f.auditSvc.records[0].Payload.TriggerKey)
}

func TestSender_SendNow_InvalidType(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.underTest.SendNow(t.Context(), ManualSendReq{
		TaskID:        1,
		ParticipantID: 10,
		ReminderType:  domain.ReminderType("BOGUS"),
	})

	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	assert.Empty(t, f.auditSvc.actions())
}

func TestSender_SendNow_TaskNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.underTest.SendNow(t.Context(), ManualSendReq{
		TaskID:        42,
		ParticipantID: 10,
		ReminderType:  domain.ReminderTypeCompletedPing,
	})

	assert.ErrorIs(t, err, errs.ErrTaskNotFound)
	assert.Equal(t, []string{domain.AuditActionTriggerError}, f.auditSvc.actions())
}

func TestSender_SendNow_FailureStillAudited(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.provider.results = map[string]domain.DeliveryResult{
		"5511999998888": {Status: domain.DeliveryStatusGateway, HTTPStatus: 502},
	}

	_, err := f.underTest.SendNow(t.Context(), ManualSendReq{
		TaskID:        1,
		ParticipantID: 10,
		ReminderType:  domain.ReminderTypeInReviewPing,
	})

	assert.Error(t, err)
	assert.Equal(t, []string{domain.AuditActionTriggerError}, f.auditSvc.actions())
}
