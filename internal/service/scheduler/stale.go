package scheduler

import (
	"context"
	"time"

	"gitee.com/flycash/task-reminder/internal/pkg/loopjob"
	"gitee.com/flycash/task-reminder/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

const (
	staleLockKey = "task_reminder_stale_claim_loop"

	// 抢占后超过这个时长还停在SENDING，就认为持有者已经崩了
	staleGrace = time.Minute

	staleBatchSize = 10
	staleSleepTime = time.Second * 10
)

// StaleClaimTask 崩溃恢复循环
// 实例在抢占和落终态之间崩掉会把提醒遗留在SENDING，这里把它们放回PENDING
type StaleClaimTask struct {
	dclient dlock.Client
	repo    repository.ReminderRepository
	logger  *elog.Component
}

// NewStaleClaimTask 创建崩溃恢复循环
func NewStaleClaimTask(dclient dlock.Client, repo repository.ReminderRepository) *StaleClaimTask {
	return &StaleClaimTask{
		dclient: dclient,
		repo:    repo,
		logger:  elog.DefaultLogger,
	}
}

func (t *StaleClaimTask) Start(ctx context.Context) {
	lj := loopjob.NewInfiniteLoop(t.dclient, t.loop, staleLockKey)
	lj.Run(ctx)
}

func (t *StaleClaimTask) loop(ctx context.Context) error {
	cnt, err := t.repo.ResetStaleSending(ctx, staleGrace, staleBatchSize)
	if err != nil {
		return err
	}
	if cnt > 0 {
		t.logger.Warn("重置滞留的SENDING提醒", elog.Any("count", cnt))
	}
	// 一批没装满说明没有积压，慢慢扫就行
	if cnt < staleBatchSize {
		time.Sleep(staleSleepTime)
	}
	return nil
}
