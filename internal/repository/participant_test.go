package repository

import (
	"context"
	"testing"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/repository/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParticipantDAO struct {
	entity dao.Participant
	err    error
}

func (f *fakeParticipantDAO) GetByID(_ context.Context, _ int64) (dao.Participant, error) {
	return f.entity, f.err
}

func TestParticipantRepository_GetByID(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		entity   dao.Participant
		expected domain.WorkWindow
	}{
		{
			name: "合法时段",
			entity: dao.Participant{
				ID: 1, Name: "João", Phone: "5511999998888",
				WorkStart: "09:30", WorkEnd: "18:00",
			},
			expected: domain.WorkWindow{
				Start: domain.ClockTime{Hour: 9, Minute: 30},
				End:   domain.ClockTime{Hour: 18},
			},
		},
		{
			name: "时段缺失落到默认窗口",
			entity: dao.Participant{
				ID: 2, Name: "Ana", Phone: "5511888887777",
			},
			expected: domain.DefaultWorkWindow(),
		},
		{
			name: "时段非法落到默认窗口",
			entity: dao.Participant{
				ID: 3, Name: "Rui", Phone: "5511777776666",
				WorkStart: "morning", WorkEnd: "18:00",
			},
			expected: domain.DefaultWorkWindow(),
		},
		{
			name: "时段越界落到默认窗口",
			entity: dao.Participant{
				ID: 4, Name: "Lia", Phone: "5511666665555",
				WorkStart: "25:00", WorkEnd: "18:00",
			},
			expected: domain.DefaultWorkWindow(),
		},
	}

	for idx := range testCases {
		tc := testCases[idx]
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := NewParticipantRepository(&fakeParticipantDAO{entity: tc.entity})

			participant, err := repo.GetByID(t.Context(), tc.entity.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, participant.Work)
			assert.Equal(t, tc.entity.Phone, participant.Phone)
		})
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	clock, err := parseClock("08:15")
	require.NoError(t, err)
	assert.Equal(t, domain.ClockTime{Hour: 8, Minute: 15}, clock)

	_, err = parseClock("8")
	assert.Error(t, err)

	_, err = parseClock("12:60")
	assert.Error(t, err)
}
