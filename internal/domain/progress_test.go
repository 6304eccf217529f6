package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func threeDays(programID primitive.ObjectID) []ProgramDay {
	return []ProgramDay{
		{ID: primitive.NewObjectID(), ProgramID: programID, DayNumber: 1},
		{ID: primitive.NewObjectID(), ProgramID: programID, DayNumber: 2},
		{ID: primitive.NewObjectID(), ProgramID: programID, DayNumber: 3},
	}
}

func TestNewProgramProgressSnapshotsDays(t *testing.T) {
	programID := primitive.NewObjectID()
	days := threeDays(programID)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	p := NewProgramProgress(programID, days, now)

	assert.True(t, p.IsRegistered)
	assert.False(t, p.IsCompleted)
	require.Len(t, p.Days, 3)
	for i, d := range p.Days {
		assert.Equal(t, days[i].ID, d.DayID)
		assert.Equal(t, i+1, d.DayNumber)
		assert.False(t, d.IsCompleted)
		assert.Nil(t, d.CompletedAt)
		assert.Nil(t, d.NewDayLockedToDate)
	}
	assert.NotNil(t, p.CompletedDays)
}

func TestDayCompleteSetsLockExactly24h(t *testing.T) {
	p := NewProgramProgress(primitive.NewObjectID(), threeDays(primitive.NewObjectID()), time.Now())
	now := time.Date(2025, 3, 30, 23, 30, 0, 0, time.UTC)

	day := p.FindDay(p.Days[1].DayID)
	require.NotNil(t, day)
	entry := day.Complete(4, now)

	// mutation goes through to the enrollment, not a copy
	assert.True(t, p.Days[1].IsCompleted)
	assert.Equal(t, 4, p.Days[1].LastCompletedStep)
	assert.Equal(t, now, *p.Days[1].CompletedAt)
	assert.Equal(t, p.Days[1].CompletedAt.Add(24*time.Hour), *p.Days[1].NewDayLockedToDate)
	assert.Equal(t, CompletedDay{DayID: p.Days[1].DayID, DayNumber: 2, CompletedAt: now}, entry)
}

func TestDistinctCompletedDaysDedupes(t *testing.T) {
	programID := primitive.NewObjectID()
	p := NewProgramProgress(programID, threeDays(programID), time.Now())
	now := time.Now()
	for _, d := range p.Days {
		p.CompletedDays = append(p.CompletedDays, CompletedDay{DayID: d.DayID, CompletedAt: now})
	}
	// duplicate log entry from a lost race
	p.CompletedDays = append(p.CompletedDays, CompletedDay{DayID: p.Days[0].DayID, CompletedAt: now})

	assert.Len(t, p.CompletedDays, 4)
	assert.Equal(t, 3, p.DistinctCompletedDays())
	assert.True(t, p.AllDaysCompleted(3))
	assert.False(t, p.AllDaysCompleted(4))
	assert.False(t, (&ProgramProgress{}).AllDaysCompleted(0))
}

func TestLastCompletionPicksLatest(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	p := ProgramProgress{CompletedDays: []CompletedDay{
		{DayID: a, CompletedAt: base.Add(48 * time.Hour)},
		{DayID: b, CompletedAt: base},
	}}

	last, ok := p.LastCompletion()
	require.True(t, ok)
	assert.Equal(t, a, last.DayID)

	_, ok = (&ProgramProgress{}).LastCompletion()
	assert.False(t, ok)
}

func TestIsDayAccessible(t *testing.T) {
	programID := primitive.NewObjectID()
	p := NewProgramProgress(programID, threeDays(programID), time.Now())
	done := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	p.Days[0].Complete(0, done)

	tests := []struct {
		name  string
		index int
		now   time.Time
		want  bool
	}{
		{name: "first day always open", index: 0, now: done, want: true},
		{name: "second day locked right after completion", index: 1, now: done.Add(time.Hour), want: false},
		{name: "second day opens at lock date", index: 1, now: done.Add(24 * time.Hour), want: true},
		{name: "third day locked while second incomplete", index: 2, now: done.Add(72 * time.Hour), want: false},
		{name: "out of range", index: 3, now: done, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDayAccessible(p.Days, tt.index, tt.now))
		})
	}
}
