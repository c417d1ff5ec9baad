package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// Entry is one normalized day of a habit's history.
type Entry struct {
	Date      time.Time
	Completed bool
	Count     int
}

// Series is the date-indexed, de-duplicated completion history of one habit,
// sorted ascending by date. Built once per request and treated as read-only
// by every downstream computation.
type Series struct {
	HabitID string
	Name    string
	Entries []Entry
}

// BuildSeries normalizes raw logs into a Series. Logs are keyed by calendar
// day (time-of-day zeroed); when two logs collide on the same day the
// later-listed one wins. A log with a zero date is malformed input and fails
// hard. Missing days are not interpolated: an absent date is a different
// state from a logged "missed".
func BuildSeries(habitID, name string, logs []*domain.HabitLog) (*Series, error) {
	byDay := make(map[time.Time]Entry, len(logs))

	for _, l := range logs {
		if l.Date.IsZero() {
			return nil, fmt.Errorf("%w: log %s has no date", domain.ErrInvalidLogData, l.ID)
		}
		day := domain.DayOf(l.Date)
		byDay[day] = Entry{
			Date:      day,
			Completed: l.IsCompleted(),
			Count:     l.CompletedCount,
		}
	}

	entries := make([]Entry, 0, len(byDay))
	for _, e := range byDay {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	return &Series{
		HabitID: habitID,
		Name:    name,
		Entries: entries,
	}, nil
}

// BuildAllSeries groups logs by habit and normalizes each group. Habit names
// come from the provided habits; logs for unknown habits are skipped.
func BuildAllSeries(habits []*domain.Habit, logs []*domain.HabitLog) ([]*Series, error) {
	names := make(map[string]string, len(habits))
	order := make([]string, 0, len(habits))
	for _, h := range habits {
		names[h.ID] = h.Name
		order = append(order, h.ID)
	}

	grouped := make(map[string][]*domain.HabitLog)
	for _, l := range logs {
		if _, known := names[l.HabitID]; !known {
			continue
		}
		grouped[l.HabitID] = append(grouped[l.HabitID], l)
	}

	series := make([]*Series, 0, len(grouped))
	for _, habitID := range order {
		habitLogs, ok := grouped[habitID]
		if !ok {
			continue
		}
		s, err := BuildSeries(habitID, names[habitID], habitLogs)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}

	return series, nil
}

func (s *Series) Len() int {
	return len(s.Entries)
}

// CompletionRate returns the completed share over the trailing n entries
// (all entries when n <= 0 or exceeds the series length).
func (s *Series) CompletionRate(lastN int) float64 {
	entries := s.Entries
	if lastN > 0 && lastN < len(entries) {
		entries = entries[len(entries)-lastN:]
	}
	if len(entries) == 0 {
		return 0
	}

	completed := 0
	for _, e := range entries {
		if e.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(entries))
}

// descending returns the entries newest-first without mutating the series.
func (s *Series) descending() []Entry {
	out := make([]Entry, len(s.Entries))
	for i, e := range s.Entries {
		out[len(s.Entries)-1-i] = e
	}
	return out
}
