package core

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Number of three-hour buckets in TotalStats.HourlyActivity.
const hourBuckets = 8

// DayStat counts notes for one calendar day.
type DayStat struct {
	Date    time.Time // midnight, store location
	Created int       // notes created that day
	Total   int       // notes created up to the end of that day
}

// TotalStats summarizes every note of the bound user.
type TotalStats struct {
	Total            int
	HourlyActivity   [hourBuckets]int // creation hour / 3
	WeekdayActivity  [7]int           // indexed by time.Weekday
	MostActiveDay    time.Weekday
	PeakBucket       int
	PeakActivityTime string // e.g. "9:00 - 12:00"
	LongestStreak    int    // consecutive calendar days with at least one note
}

// EditStats summarizes the content of one group.
type EditStats struct {
	TotalCharacters          int
	AverageCharactersPerNote int
	EditsByHour              [24]int // notes per creation hour
	CharactersByHour         [24]int
	CharactersByDay          [7]int // indexed by time.Weekday
	EditHistory              []EditPoint
}

// EditPoint is the size of one note on its creation day.
type EditPoint struct {
	Date       string // DateKeyLayout
	Characters int
}

// DailyStats returns one DayStat per day for the last rangeDays days,
// today included, oldest first, across all groups.
func (s *Store) DailyStats(rangeDays int) []DayStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dayStatsLocked(s.chronologicalLocked(), rangeDays)
}

// GroupStats is DailyStats restricted to one group.
func (s *Store) GroupStats(groupID string, rangeDays int) ([]DayStat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, false
	}
	refs := make([]NoteRef, 0, len(g.Notes))
	for _, n := range g.Notes {
		refs = append(refs, NoteRef{GroupID: g.ID, GroupName: g.Name, Note: *n})
	}
	return s.dayStatsLocked(refs, rangeDays), true
}

func (s *Store) dayStatsLocked(refs []NoteRef, rangeDays int) []DayStat {
	out := make([]DayStat, 0, max(rangeDays, 0))
	y, m, d := s.now().In(s.loc).Date()
	for i := rangeDays - 1; i >= 0; i-- {
		start := time.Date(y, m, d-i, 0, 0, 0, 0, s.loc)
		end := time.Date(y, m, d-i+1, 0, 0, 0, 0, s.loc)
		stat := DayStat{Date: start}
		for _, ref := range refs {
			at := ref.Note.CreatedAt
			if !at.Before(end) {
				continue
			}
			stat.Total++
			if !at.Before(start) {
				stat.Created++
			}
		}
		out = append(out, stat)
	}
	return out
}

// TotalStats scans every note in chronological order. Ties for the most
// active day and the peak bucket go to the one reached first in that scan.
func (s *Store) TotalStats() TotalStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st TotalStats
	var dayOrder, bucketOrder []int
	seenDay := make(map[int]bool)
	seenBucket := make(map[int]bool)

	var lastDay int64
	run := 0
	for i, ref := range s.chronologicalLocked() {
		at := ref.Note.CreatedAt.In(s.loc)
		st.Total++

		bucket := at.Hour() / 3
		day := int(at.Weekday())
		st.HourlyActivity[bucket]++
		st.WeekdayActivity[day]++
		if !seenBucket[bucket] {
			seenBucket[bucket] = true
			bucketOrder = append(bucketOrder, bucket)
		}
		if !seenDay[day] {
			seenDay[day] = true
			dayOrder = append(dayOrder, day)
		}

		dayNum := civilDay(at)
		switch {
		case i == 0:
			run = 1
		case dayNum-lastDay == 1:
			run++
		case dayNum != lastDay:
			run = 1
		}
		lastDay = dayNum
		st.LongestStreak = max(st.LongestStreak, run)
	}

	st.MostActiveDay = time.Sunday
	best := 0
	for _, day := range dayOrder {
		if st.WeekdayActivity[day] > best {
			best = st.WeekdayActivity[day]
			st.MostActiveDay = time.Weekday(day)
		}
	}

	best = 0
	for _, b := range bucketOrder {
		if st.HourlyActivity[b] > best {
			best = st.HourlyActivity[b]
			st.PeakBucket = b
		}
	}
	st.PeakActivityTime = BucketLabel(st.PeakBucket)
	return st
}

// BucketLabel renders a three-hour bucket index as "H:00 - H:00".
func BucketLabel(bucket int) string {
	return fmt.Sprintf("%d:00 - %d:00", bucket*3, (bucket+1)*3)
}

// GroupEditStats measures the content of a group's notes. Characters are
// counted as Unicode code points.
func (s *Store) GroupEditStats(groupID string) (EditStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return EditStats{}, false
	}

	refs := make([]NoteRef, 0, len(g.Notes))
	for _, n := range g.Notes {
		refs = append(refs, NoteRef{GroupID: g.ID, Note: *n})
	}
	sortRefs(refs)

	st := EditStats{EditHistory: make([]EditPoint, 0, len(refs))}
	for _, ref := range refs {
		at := ref.Note.CreatedAt.In(s.loc)
		length := utf8.RuneCountInString(ref.Note.Content)

		st.TotalCharacters += length
		st.EditsByHour[at.Hour()]++
		st.CharactersByHour[at.Hour()] += length
		st.CharactersByDay[at.Weekday()] += length
		st.EditHistory = append(st.EditHistory, EditPoint{
			Date:       at.Format(DateKeyLayout),
			Characters: length,
		})
	}
	if len(refs) > 0 {
		st.AverageCharactersPerNote = int(math.Round(float64(st.TotalCharacters) / float64(len(refs))))
	}
	return st, true
}

// civilDay numbers the calendar day of t (in its own location) so that
// consecutive days differ by exactly one, DST or not.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
