package domain

import (
	"fmt"
	"time"
)

const (
	defaultWorkStartHour = 8
	defaultWorkEndHour   = 17
	minutesPerHour       = 60
)

// ClockTime 一天内的时刻，不带日期
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// OnDay 把时刻落到指定日期上
func (c ClockTime) OnDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// NextOccurrence 今天未过就用今天，过了就顺延到明天
func (c ClockTime) NextOccurrence(now time.Time) time.Time {
	occurrence := c.OnDay(now)
	if !occurrence.After(now) {
		occurrence = occurrence.AddDate(0, 0, 1)
	}
	return occurrence
}

// WorkWindow 参与人每天的工作时段
type WorkWindow struct {
	Start ClockTime
	End   ClockTime
}

// DefaultWorkWindow 没有配置时段时的兜底窗口 08:00-17:00
func DefaultWorkWindow() WorkWindow {
	return WorkWindow{
		Start: ClockTime{Hour: defaultWorkStartHour},
		End:   ClockTime{Hour: defaultWorkEndHour},
	}
}

// Midpoint 工作时段的中点时刻
func (w WorkWindow) Midpoint() ClockTime {
	startMinutes := w.Start.Hour*minutesPerHour + w.Start.Minute
	endMinutes := w.End.Hour*minutesPerHour + w.End.Minute
	mid := (startMinutes + endMinutes) / 2
	return ClockTime{Hour: mid / minutesPerHour, Minute: mid % minutesPerHour}
}

// Participant 任务参与人，由人员目录维护，本核心只读
type Participant struct {
	ID    int64  // 参与人唯一标识
	Name  string // 展示名
	Phone string // 国际格式手机号，为空表示不可投递
	Work  WorkWindow
}

// Reachable 是否有可投递的联系方式
func (p *Participant) Reachable() bool {
	return p.Phone != ""
}
