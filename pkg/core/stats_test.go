package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monodeaf/notemode/pkg/core"
)

func at(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2024, month, day, hour, minute, 0, 0, time.UTC)
}

// statsStore returns a store whose "now" is 2024-05-10 15:00 UTC.
func statsStore(t *testing.T) *core.Store {
	t.Helper()
	clock := &fakeClock{t: at(time.May, 10, 15, 0)}
	return newTestStore(t, newFakeRepository(), clock)
}

func TestStats_DailyStats(t *testing.T) {
	s := statsStore(t)
	a := s.CreateGroup("A", core.Background{})
	b := s.CreateGroup("B", core.Background{})
	s.ImportNotes(a.ID, []core.ImportedNote{
		{Title: "old", CreatedAt: at(time.May, 1, 12, 0)},
		{Title: "d8", CreatedAt: at(time.May, 8, 9, 0)},
		{Title: "future", CreatedAt: at(time.May, 11, 0, 0)},
	})
	s.ImportNotes(b.ID, []core.ImportedNote{
		{Title: "early", CreatedAt: at(time.May, 10, 0, 0)},
		{Title: "late", CreatedAt: time.Date(2024, time.May, 10, 23, 59, 59, 999e6, time.UTC)},
	})

	stats := s.DailyStats(3)
	require.Len(t, stats, 3)
	assert.Equal(t, at(time.May, 8, 0, 0), stats[0].Date)
	assert.Equal(t, at(time.May, 10, 0, 0), stats[2].Date)

	assert.Equal(t, []int{1, 0, 2}, []int{stats[0].Created, stats[1].Created, stats[2].Created})
	assert.Equal(t, []int{2, 2, 4}, []int{stats[0].Total, stats[1].Total, stats[2].Total})

	assert.Empty(t, s.DailyStats(0))
	assert.Empty(t, s.DailyStats(-4))
	assert.Equal(t, stats, s.DailyStats(3))
}

func TestStats_GroupStats(t *testing.T) {
	s := statsStore(t)
	a := s.CreateGroup("A", core.Background{})
	b := s.CreateGroup("B", core.Background{})
	s.ImportNotes(a.ID, []core.ImportedNote{{Title: "a", CreatedAt: at(time.May, 9, 8, 0)}})
	s.ImportNotes(b.ID, []core.ImportedNote{
		{Title: "b1", CreatedAt: at(time.May, 9, 8, 0)},
		{Title: "b2", CreatedAt: at(time.May, 10, 8, 0)},
	})

	stats, ok := s.GroupStats(b.ID, 2)
	require.True(t, ok)
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Created)
	assert.Equal(t, 1, stats[0].Total)
	assert.Equal(t, 1, stats[1].Created)
	assert.Equal(t, 2, stats[1].Total)
}

func TestStats_TotalStatsEmpty(t *testing.T) {
	s := statsStore(t)
	st := s.TotalStats()
	assert.Equal(t, 0, st.Total)
	assert.Equal(t, 0, st.LongestStreak)
	assert.Equal(t, time.Sunday, st.MostActiveDay)
	assert.Equal(t, "0:00 - 3:00", st.PeakActivityTime)
}

func TestStats_TotalStatsHistograms(t *testing.T) {
	s := statsStore(t)
	g := s.CreateGroup("G", core.Background{})
	// 2024-05-06 is a Monday.
	s.ImportNotes(g.ID, []core.ImportedNote{
		{Title: "mon-morning", CreatedAt: at(time.May, 6, 9, 15)},
		{Title: "mon-noon", CreatedAt: at(time.May, 6, 11, 59)},
		{Title: "tue-night", CreatedAt: at(time.May, 7, 22, 0)},
		{Title: "wed-night", CreatedAt: at(time.May, 8, 23, 30)},
		{Title: "wed-late", CreatedAt: at(time.May, 8, 21, 0)},
	})

	st := s.TotalStats()
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, [8]int{0, 0, 0, 2, 0, 0, 0, 3}, st.HourlyActivity)
	assert.Equal(t, [7]int{0, 2, 1, 2, 0, 0, 0}, st.WeekdayActivity)
	assert.Equal(t, 7, st.PeakBucket)
	assert.Equal(t, "21:00 - 24:00", st.PeakActivityTime)
	// Monday and Wednesday tie; Monday is reached first.
	assert.Equal(t, time.Monday, st.MostActiveDay)
	assert.Equal(t, 3, st.LongestStreak)

	assert.Equal(t, st, s.TotalStats())
}

func TestStats_TiesGoToFirstInChronologicalScan(t *testing.T) {
	s := statsStore(t)
	g := s.CreateGroup("G", core.Background{})
	// Imported newest first; the scan still starts with the Tuesday note.
	s.ImportNotes(g.ID, []core.ImportedNote{
		{Title: "mon", CreatedAt: at(time.May, 13, 1, 0)},
		{Title: "tue", CreatedAt: at(time.May, 7, 13, 0)},
	})

	st := s.TotalStats()
	assert.Equal(t, time.Tuesday, st.MostActiveDay)
	assert.Equal(t, 4, st.PeakBucket)
}

func TestStats_StreakWithGaps(t *testing.T) {
	s := statsStore(t)
	g := s.CreateGroup("G", core.Background{})
	// Three notes two days apart: no consecutive days.
	s.ImportNotes(g.ID, []core.ImportedNote{
		{Title: "a", CreatedAt: at(time.May, 1, 10, 0)},
		{Title: "b", CreatedAt: at(time.May, 3, 10, 0)},
		{Title: "c", CreatedAt: at(time.May, 5, 10, 0)},
	})
	assert.Equal(t, 1, s.TotalStats().LongestStreak)
}

func TestStats_StreakIndependentOfStorageOrder(t *testing.T) {
	s := statsStore(t)
	g1 := s.CreateGroup("G1", core.Background{})
	g2 := s.CreateGroup("G2", core.Background{})
	// Run of 3 days split across groups and entered out of order,
	// plus a run of 2 days later on.
	s.ImportNotes(g1.ID, []core.ImportedNote{
		{Title: "d3", CreatedAt: at(time.April, 3, 23, 0)},
		{Title: "d1", CreatedAt: at(time.April, 1, 8, 0)},
		{Title: "d10", CreatedAt: at(time.April, 10, 8, 0)},
	})
	s.ImportNotes(g2.ID, []core.ImportedNote{
		{Title: "d2", CreatedAt: at(time.April, 2, 1, 0)},
		{Title: "d2-again", CreatedAt: at(time.April, 2, 18, 0)},
		{Title: "d11", CreatedAt: at(time.April, 11, 8, 0)},
	})
	assert.Equal(t, 3, s.TotalStats().LongestStreak)
}

func TestStats_GroupEditStats(t *testing.T) {
	s := statsStore(t)
	g := s.CreateGroup("G", core.Background{})
	s.ImportNotes(g.ID, []core.ImportedNote{
		{Title: "second", Content: "héllo", CreatedAt: at(time.May, 7, 9, 30)}, // Tuesday
		{Title: "first", Content: "abc", CreatedAt: at(time.May, 6, 9, 0)},     // Monday
		{Title: "empty", CreatedAt: at(time.May, 6, 18, 0)},
	})

	st, ok := s.GroupEditStats(g.ID)
	require.True(t, ok)
	assert.Equal(t, 8, st.TotalCharacters)
	assert.Equal(t, 3, st.AverageCharactersPerNote)
	assert.Equal(t, 2, st.EditsByHour[9])
	assert.Equal(t, 1, st.EditsByHour[18])
	assert.Equal(t, 8, st.CharactersByHour[9])
	assert.Equal(t, 3, st.CharactersByDay[time.Monday])
	assert.Equal(t, 5, st.CharactersByDay[time.Tuesday])
	assert.Equal(t, []core.EditPoint{
		{Date: "2024-05-06", Characters: 3},
		{Date: "2024-05-06", Characters: 0},
		{Date: "2024-05-07", Characters: 5},
	}, st.EditHistory)

	empty := s.CreateGroup("E", core.Background{})
	est, ok := s.GroupEditStats(empty.ID)
	require.True(t, ok)
	assert.Equal(t, 0, est.AverageCharactersPerNote)
	assert.Empty(t, est.EditHistory)
}
