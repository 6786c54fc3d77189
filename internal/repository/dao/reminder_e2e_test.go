//go:build e2e

package dao

import (
	"context"
	"testing"
	"time"

	testioc "gitee.com/flycash/task-reminder/internal/test/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func TestReminderDAOSuite(t *testing.T) {
	suite.Run(t, new(ReminderDAOTestSuite))
}

type ReminderDAOTestSuite struct {
	suite.Suite
	db  *gorm.DB
	dao ReminderDAO
}

func (s *ReminderDAOTestSuite) SetupSuite() {
	s.db = testioc.InitDB()
	err := s.db.AutoMigrate(&Reminder{})
	s.NoError(err)
	s.dao = NewReminderDAO(s.db)
}

func (s *ReminderDAOTestSuite) TearDownTest() {
	s.db.Exec("TRUNCATE TABLE `reminders`")
}

func (s *ReminderDAOTestSuite) TestCreateAndDuplicate() {
	t := s.T()
	ctx := context.Background()

	reminder := Reminder{
		ID:            1,
		TaskID:        1,
		ParticipantID: 10,
		ReminderType:  "DELEGATION",
		ScheduledTime: time.Now().UnixMilli(),
	}

	created, err := s.dao.Create(ctx, reminder)
	assert.NoError(t, err)
	assert.Equal(t, "PENDING", created.Status)
	assert.NotZero(t, created.Ctime)
	assert.NotZero(t, created.Utime)

	// 同元组再插一条，唯一索引挡住
	reminder.ID = 2
	_, err = s.dao.Create(ctx, reminder)
	assert.Error(t, err)
}

func (s *ReminderDAOTestSuite) TestClaimLifecycle() {
	t := s.T()
	ctx := context.Background()

	reminder := Reminder{
		ID:            1,
		TaskID:        1,
		ParticipantID: 10,
		ReminderType:  "WORK_START",
		ScheduledTime: time.Now().Add(-time.Minute).UnixMilli(),
	}
	_, err := s.dao.Create(ctx, reminder)
	assert.NoError(t, err)

	// 第一次抢占成功，第二次失败
	claimed, err := s.dao.Claim(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.dao.Claim(ctx, 1)
	assert.NoError(t, err)
	assert.False(t, claimed)

	// SENDING态可以落终态
	err = s.dao.MarkSent(ctx, 1, time.Now())
	assert.NoError(t, err)

	var result Reminder
	err = s.db.First(&result, "id = ?", 1).Error
	assert.NoError(t, err)
	assert.Equal(t, "SUCCEEDED", result.Status)
	assert.NotZero(t, result.SentAt)
	assert.Equal(t, int8(1), result.AttemptCount)
}

func (s *ReminderDAOTestSuite) TestFindDueOrdering() {
	t := s.T()
	ctx := context.Background()
	now := time.Now()

	later := Reminder{ID: 1, TaskID: 1, ParticipantID: 10, ReminderType: "WORK_END", ScheduledTime: now.Add(-time.Minute).UnixMilli()}
	earlier := Reminder{ID: 2, TaskID: 1, ParticipantID: 10, ReminderType: "WORK_START", ScheduledTime: now.Add(-time.Hour).UnixMilli()}
	future := Reminder{ID: 3, TaskID: 1, ParticipantID: 10, ReminderType: "WORK_MID", ScheduledTime: now.Add(time.Hour).UnixMilli()}

	for _, r := range []Reminder{later, earlier, future} {
		_, err := s.dao.Create(ctx, r)
		assert.NoError(t, err)
	}

	due, err := s.dao.FindDue(ctx, now, 10)
	assert.NoError(t, err)
	assert.Len(t, due, 2)
	// 按计划时间升序
	assert.Equal(t, int64(2), due[0].ID)
	assert.Equal(t, int64(1), due[1].ID)
}

func (s *ReminderDAOTestSuite) TestResetStaleSending() {
	t := s.T()
	ctx := context.Background()

	reminder := Reminder{
		ID:            1,
		TaskID:        1,
		ParticipantID: 10,
		ReminderType:  "DELEGATION",
		ScheduledTime: time.Now().Add(-time.Hour).UnixMilli(),
	}
	_, err := s.dao.Create(ctx, reminder)
	assert.NoError(t, err)

	claimed, err := s.dao.Claim(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, claimed)

	// 把utime改老，模拟抢占者崩溃
	err = s.db.Model(&Reminder{}).Where("id = ?", 1).
		Update("utime", time.Now().Add(-time.Hour).UnixMilli()).Error
	assert.NoError(t, err)

	cnt, err := s.dao.ResetStaleSending(ctx, time.Minute, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), cnt)

	var result Reminder
	err = s.db.First(&result, "id = ?", 1).Error
	assert.NoError(t, err)
	assert.Equal(t, "PENDING", result.Status)
}
