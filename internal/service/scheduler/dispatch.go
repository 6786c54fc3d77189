package scheduler

import (
	"context"
	"time"

	"gitee.com/flycash/task-reminder/internal/pkg/loopjob"
	"gitee.com/flycash/task-reminder/internal/repository"
	"gitee.com/flycash/task-reminder/internal/service/sender"
	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

const (
	dispatchLockKey = "task_reminder_dispatch_loop"

	defaultBatchSize       = 100
	defaultBatchTimeout    = time.Minute
	defaultMinLoopDuration = time.Second * 10
)

// DispatchConfig 投递循环配置
type DispatchConfig struct {
	BatchSize int
	// BatchTimeout 单个批次的执行超时
	BatchTimeout time.Duration
	// MinLoopDuration 批次未装满时的休眠时长，避免空转打爆数据库
	MinLoopDuration time.Duration
}

// DispatchTask 提醒投递循环
// 分布式锁保证同一时刻只有一个实例在扫表，抢占CAS兜底并发安全
type DispatchTask struct {
	dclient dlock.Client
	repo    repository.ReminderRepository
	sender  sender.ReminderSender
	cfg     DispatchConfig
	logger  *elog.Component
}

// NewDispatchTask 创建提醒投递循环
func NewDispatchTask(
	dclient dlock.Client,
	repo repository.ReminderRepository,
	s sender.ReminderSender,
	cfg DispatchConfig,
) *DispatchTask {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaultBatchTimeout
	}
	if cfg.MinLoopDuration <= 0 {
		cfg.MinLoopDuration = defaultMinLoopDuration
	}
	return &DispatchTask{
		dclient: dclient,
		repo:    repo,
		sender:  s,
		cfg:     cfg,
		logger:  elog.DefaultLogger,
	}
}

func (t *DispatchTask) Start(ctx context.Context) {
	lj := loopjob.NewInfiniteLoop(t.dclient, t.loop, dispatchLockKey)
	lj.Run(ctx)
}

func (t *DispatchTask) loop(ctx context.Context) error {
	loopCtx, cancel := context.WithTimeout(ctx, t.cfg.BatchTimeout)
	defer cancel()

	cnt, err := t.Process(loopCtx)
	if err != nil {
		return err
	}

	// 没装满说明表里暂时没活，歇一会
	if cnt < t.cfg.BatchSize {
		time.Sleep(t.cfg.MinLoopDuration)
	}
	return nil
}

// Process 扫一批到期提醒并投递，返回本批扫到的条数
// 诊断接口会直接调用，所以单独暴露出来
func (t *DispatchTask) Process(ctx context.Context) (int, error) {
	reminders, err := t.repo.FindDue(ctx, time.Now(), t.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(reminders) == 0 {
		return 0, nil
	}

	if err := t.sender.BatchSend(ctx, reminders); err != nil {
		// 单条失败已在发送器里消化过，这里只剩基础设施故障
		t.logger.Error("批量投递部分失败", elog.FieldErr(err))
	}

	t.logger.Info("投递批次完成", elog.Any("count", len(reminders)))
	return len(reminders), nil
}
