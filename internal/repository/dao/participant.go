package dao

import (
	"context"
	"errors"
	"fmt"

	"gitee.com/flycash/task-reminder/internal/errs"

	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

// 参与人目录由人员管理层负责写入，本核心只读

type ParticipantDAO interface {
	// GetByID 读取参与人信息
	GetByID(ctx context.Context, id int64) (Participant, error)
}

// Participant 参与人表只读视图
type Participant struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"type:VARCHAR(256);NOT NULL"`
	Phone     string `gorm:"type:VARCHAR(32);comment:'国际格式手机号，可为空'"`
	WorkStart string `gorm:"type:VARCHAR(8);comment:'每日工作开始 HH:MM'"`
	WorkEnd   string `gorm:"type:VARCHAR(8);comment:'每日工作结束 HH:MM'"`
	Ctime     int64
	Utime     int64
}

type participantDAO struct {
	db *egorm.Component
}

// NewParticipantDAO 创建参与人只读DAO实例
func NewParticipantDAO(db *egorm.Component) ParticipantDAO {
	return &participantDAO{
		db: db,
	}
}

func (d *participantDAO) GetByID(ctx context.Context, id int64) (Participant, error) {
	var participant Participant
	err := d.db.WithContext(ctx).First(&participant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Participant{}, fmt.Errorf("%w: id=%d", errs.ErrParticipantNotFound, id)
		}
		return Participant{}, err
	}
	return participant, nil
}
