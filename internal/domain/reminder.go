package domain

import (
	"fmt"
	"time"

	"gitee.com/flycash/task-reminder/internal/errs"
)

// ReminderType 提醒类型
type ReminderType string

const (
	ReminderTypeDelegation ReminderType = "DELEGATION" // 任务刚被指派
	ReminderTypeWorkStart  ReminderType = "WORK_START" // 工作时段开始
	ReminderTypeWorkMid    ReminderType = "WORK_MID"   // 工作时段中点
	ReminderTypeWorkEnd    ReminderType = "WORK_END"   // 工作时段结束

	// 手动触发的状态回显提醒，不落库，只走单发路径
	ReminderTypeInProgressPing ReminderType = "IN_PROGRESS_PING"
	ReminderTypeInReviewPing   ReminderType = "IN_REVIEW_PING"
	ReminderTypeCompletedPing  ReminderType = "COMPLETED_PING"
)

func (t ReminderType) String() string {
	return string(t)
}

func (t ReminderType) Validate() error {
	switch t {
	case ReminderTypeDelegation, ReminderTypeWorkStart, ReminderTypeWorkMid, ReminderTypeWorkEnd,
		ReminderTypeInProgressPing, ReminderTypeInReviewPing, ReminderTypeCompletedPing:
		return nil
	default:
		return fmt.Errorf("%w: ReminderType = %q", errs.ErrInvalidParameter, t)
	}
}

// TypesForPriority 优先级到提醒类型集合的映射，策略不变式
func TypesForPriority(p Priority) []ReminderType {
	switch p {
	case PriorityHigh:
		return []ReminderType{
			ReminderTypeDelegation,
			ReminderTypeWorkStart,
			ReminderTypeWorkMid,
			ReminderTypeWorkEnd,
		}
	case PriorityMedium:
		return []ReminderType{
			ReminderTypeDelegation,
			ReminderTypeWorkStart,
			ReminderTypeWorkMid,
		}
	case PriorityLow:
		return []ReminderType{ReminderTypeWorkStart}
	default:
		return nil
	}
}

// ReminderStatus 提醒投递状态
type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "PENDING"   // 待投递
	ReminderStatusSending   ReminderStatus = "SENDING"   // 已被抢占，投递中
	ReminderStatusSucceeded ReminderStatus = "SUCCEEDED" // 投递成功
	ReminderStatusFailed    ReminderStatus = "FAILED"    // 重试耗尽，死信
)

func (s ReminderStatus) String() string {
	return string(s)
}

// Reminder 提醒领域模型，本核心拥有的唯一持久化单元
type Reminder struct {
	ID            int64        // 提醒唯一标识
	TaskID        int64        // 关联任务
	ParticipantID int64        // 接收提醒的参与人
	Type          ReminderType // 提醒类型
	ScheduledTime time.Time    // 计划投递时间
	Status        ReminderStatus
	SentAt        *time.Time // 投递成功时间
	AttemptCount  int8       // 当前已尝试次数
}

func (r *Reminder) Validate() error {
	if r.TaskID <= 0 {
		return fmt.Errorf("%w: TaskID = %d", errs.ErrInvalidParameter, r.TaskID)
	}

	if r.ParticipantID <= 0 {
		return fmt.Errorf("%w: ParticipantID = %d", errs.ErrInvalidParameter, r.ParticipantID)
	}

	if err := r.Type.Validate(); err != nil {
		return err
	}

	if r.ScheduledTime.IsZero() {
		return fmt.Errorf("%w: ScheduledTime 不能为零值", errs.ErrInvalidParameter)
	}

	return nil
}
