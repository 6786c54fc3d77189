package workwindow

import (
	"context"
	"testing"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParticipantRepo struct {
	participant domain.Participant
	err         error
	calls       int
}

func (f *fakeParticipantRepo) GetByID(_ context.Context, _ int64) (domain.Participant, error) {
	f.calls++
	return f.participant, f.err
}

func TestResolver_Resolve_CachesHits(t *testing.T) {
	t.Parallel()

	repo := &fakeParticipantRepo{participant: domain.Participant{
		ID:    10,
		Name:  "João",
		Phone: "5511999998888",
		Work:  domain.DefaultWorkWindow(),
	}}
	resolver := NewResolver(repo)

	first, err := resolver.Resolve(t.Context(), 10)
	require.NoError(t, err)

	second, err := resolver.Resolve(t.Context(), 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// 第二次命中缓存，不再查库
	assert.Equal(t, 1, repo.calls)
}

func TestResolver_Resolve_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	repo := &fakeParticipantRepo{err: errs.ErrParticipantNotFound}
	resolver := NewResolver(repo)

	_, err := resolver.Resolve(t.Context(), 42)
	assert.ErrorIs(t, err, errs.ErrParticipantNotFound)

	_, err = resolver.Resolve(t.Context(), 42)
	assert.ErrorIs(t, err, errs.ErrParticipantNotFound)
	// 失败不缓存，每次都会重查
	assert.Equal(t, 2, repo.calls)
}
