package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_GenerateID(t *testing.T) {
	t.Parallel()

	generator := NewGenerator()
	stime := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	id1 := generator.GenerateID(1, 2, "WORK_START", stime)
	id2 := generator.GenerateID(1, 2, "WORK_START", stime)

	assert.NotZero(t, id1)
	// 同业务键同时间靠序列号区分
	assert.NotEqual(t, id1, id2)
}

func TestGenerator_DifferentKeysDiffer(t *testing.T) {
	t.Parallel()

	generator := NewGenerator()
	stime := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	id1 := generator.GenerateID(1, 2, "WORK_START", stime)
	id2 := generator.GenerateID(1, 2, "WORK_END", stime)
	id3 := generator.GenerateID(3, 2, "WORK_START", stime)

	assert.NotEqual(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func TestExtractTimestamp(t *testing.T) {
	t.Parallel()

	generator := NewGenerator()
	stime := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	id := generator.GenerateID(7, 8, "DELEGATION", stime)
	extracted := ExtractTimestamp(id)

	assert.Equal(t, stime.UnixMilli(), extracted.UnixMilli())
}

func TestGenerator_ZeroTimeUsesNow(t *testing.T) {
	t.Parallel()

	generator := NewGenerator()
	before := time.Now().Add(-time.Second)

	id := generator.GenerateID(1, 1, "DELEGATION", time.Time{})
	extracted := ExtractTimestamp(id)

	assert.True(t, extracted.After(before))
	assert.True(t, extracted.Before(time.Now().Add(time.Second)))
}
