package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockTime_NextOccurrence(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	testCases := []struct {
		name     string
		clock    ClockTime
		now      time.Time
		expected time.Time
	}{
		{
			name:     "时刻未到，落在今天",
			clock:    ClockTime{Hour: 17},
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
			expected: time.Date(2025, 3, 10, 17, 0, 0, 0, loc),
		},
		{
			name:     "时刻已过，顺延到明天",
			clock:    ClockTime{Hour: 8},
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
			expected: time.Date(2025, 3, 11, 8, 0, 0, 0, loc),
		},
		{
			name:     "恰好等于当前时刻，顺延到明天",
			clock:    ClockTime{Hour: 9},
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
			expected: time.Date(2025, 3, 11, 9, 0, 0, 0, loc),
		},
		{
			name:     "跨月顺延",
			clock:    ClockTime{Hour: 8, Minute: 30},
			now:      time.Date(2025, 3, 31, 12, 0, 0, 0, loc),
			expected: time.Date(2025, 4, 1, 8, 30, 0, 0, loc),
		},
	}

	for idx := range testCases {
		tc := testCases[idx]
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.clock.NextOccurrence(tc.now))
		})
	}
}

func TestWorkWindow_Midpoint(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		window   WorkWindow
		expected ClockTime
	}{
		{
			name:     "默认时段 08:00-17:00 的中点",
			window:   DefaultWorkWindow(),
			expected: ClockTime{Hour: 12, Minute: 30},
		},
		{
			name: "整点时段",
			window: WorkWindow{
				Start: ClockTime{Hour: 9},
				End:   ClockTime{Hour: 18},
			},
			expected: ClockTime{Hour: 13, Minute: 30},
		},
		{
			name: "带分钟的时段",
			window: WorkWindow{
				Start: ClockTime{Hour: 8, Minute: 30},
				End:   ClockTime{Hour: 12, Minute: 30},
			},
			expected: ClockTime{Hour: 10, Minute: 30},
		},
	}

	for idx := range testCases {
		tc := testCases[idx]
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.window.Midpoint())
		})
	}
}

func TestParticipant_Reachable(t *testing.T) {
	t.Parallel()

	withPhone := Participant{ID: 1, Phone: "5511999998888"}
	assert.True(t, withPhone.Reachable())

	withoutPhone := Participant{ID: 2}
	assert.False(t, withoutPhone.Reachable())
}
