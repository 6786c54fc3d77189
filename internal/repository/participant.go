package repository

import (
	"context"
	"fmt"
	"strings"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"
	"gitee.com/flycash/task-reminder/internal/repository/dao"
)

// ParticipantRepository 参与人只读仓储接口
type ParticipantRepository interface {
	// GetByID 读取参与人信息，工作时段缺失或非法时落到默认窗口
	GetByID(ctx context.Context, id int64) (domain.Participant, error)
}

type participantRepository struct {
	dao dao.ParticipantDAO
}

// NewParticipantRepository 创建参与人只读仓储实例
func NewParticipantRepository(d dao.ParticipantDAO) ParticipantRepository {
	return &participantRepository{
		dao: d,
	}
}

func (r *participantRepository) GetByID(ctx context.Context, id int64) (domain.Participant, error) {
	entity, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Participant{}, err
	}

	window := domain.DefaultWorkWindow()
	start, err1 := parseClock(entity.WorkStart)
	end, err2 := parseClock(entity.WorkEnd)
	if err1 == nil && err2 == nil {
		window = domain.WorkWindow{Start: start, End: end}
	}

	return domain.Participant{
		ID:    entity.ID,
		Name:  entity.Name,
		Phone: entity.Phone,
		Work:  window,
	}, nil
}

// parseClock 解析 HH:MM 格式的时刻
func parseClock(s string) (domain.ClockTime, error) {
	const parts = 2
	segments := strings.SplitN(s, ":", parts)
	if len(segments) != parts {
		return domain.ClockTime{}, fmt.Errorf("%w: 时刻格式非法 %q", errs.ErrInvalidParameter, s)
	}
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return domain.ClockTime{}, fmt.Errorf("%w: 时刻格式非法 %q", errs.ErrInvalidParameter, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return domain.ClockTime{}, fmt.Errorf("%w: 时刻越界 %q", errs.ErrInvalidParameter, s)
	}
	return domain.ClockTime{Hour: hour, Minute: minute}, nil
}
