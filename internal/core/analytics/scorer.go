package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// Score derives streaks, consistency, trend and day-of-week performance for
// a single habit. The same formulas feed the gamification counters, so the
// worker and the insights endpoints always agree.
func (e *Engine) Score(s *Series) *domain.HabitScore {
	current, longest := e.Streaks(s)

	score := &domain.HabitScore{
		HabitID:          s.HabitID,
		HabitName:        s.Name,
		CurrentStreak:    current,
		LongestStreak:    longest,
		ConsistencyScore: e.ConsistencyScore(s.Entries),
		Trend:            e.Trend(s),
	}

	score.DayOfWeekStats, score.BestDay, score.WorstDay = e.dayOfWeekStats(s)

	return score
}

// Streaks walks the entries newest-first. The current streak is the run of
// completed entries starting at the most recent one; the longest streak is
// the maximum such run anywhere in the history. By default runs survive
// calendar gaps between entries; StrictCalendarStreaks requires day-adjacent
// dates.
func (e *Engine) Streaks(s *Series) (current, longest int) {
	desc := s.descending()
	if len(desc) == 0 {
		return 0, 0
	}

	run := 0
	atHead := true
	for i, entry := range desc {
		if entry.Completed && (i == 0 || e.runContinues(desc[i-1], entry)) {
			run++
		} else if entry.Completed {
			run = 1
		} else {
			run = 0
		}

		if run > longest {
			longest = run
		}
		if atHead {
			if run == 0 {
				atHead = false
			} else {
				current = run
				if i+1 < len(desc) && (!desc[i+1].Completed || !e.runContinues(entry, desc[i+1])) {
					atHead = false
				}
			}
		}
	}

	return current, longest
}

// runContinues reports whether the older entry extends a run ending at the
// newer one.
func (e *Engine) runContinues(newer, older Entry) bool {
	if !e.cfg.StrictCalendarStreaks {
		return true
	}
	return newer.Date.Sub(older.Date) == 24*time.Hour
}

// ConsistencyScore is the completion ratio plus a bonus that grows with
// in-progress runs: every completed entry adds StreakBonusStep times the
// length of the run it sits in, so sustained streaks earn quadratically
// more than scattered completions. Capped at MaxScore.
func (e *Engine) ConsistencyScore(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}

	completed := 0
	run := 0
	bonus := 0.0

	for _, entry := range entries {
		if entry.Completed {
			completed++
			run++
			bonus += e.cfg.StreakBonusStep * float64(run)
		} else {
			run = 0
		}
	}

	ratio := float64(completed) / float64(len(entries)) * 100
	score := ratio + bonus
	if score > e.cfg.MaxScore {
		score = e.cfg.MaxScore
	}
	return score
}

// Trend compares the completion rate of the chronological second half
// against the first. The delta must strictly exceed TrendDelta to leave
// "stable"; short histories are always stable.
func (e *Engine) Trend(s *Series) domain.TrendDirection {
	n := len(s.Entries)
	if n < e.cfg.MinTrendEntries {
		return domain.TrendStable
	}

	half := n / 2
	firstRate := completionRate(s.Entries[:half])
	secondRate := completionRate(s.Entries[half:])

	delta := secondRate - firstRate
	switch {
	case delta > e.cfg.TrendDelta:
		return domain.TrendImproving
	case delta < -e.cfg.TrendDelta:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// dayOfWeekStats aggregates completion per weekday. Best and worst days are
// picked walking Sunday..Saturday, first encountered wins on ties, so the
// result is deterministic.
func (e *Engine) dayOfWeekStats(s *Series) ([]domain.DayOfWeekStat, string, string) {
	var completed, total [7]int

	for _, entry := range s.Entries {
		wd := int(entry.Date.Weekday())
		total[wd]++
		if entry.Completed {
			completed[wd]++
		}
	}

	var stats []domain.DayOfWeekStat
	bestDay, worstDay := "", ""
	bestRate, worstRate := -1.0, 2.0

	for wd := 0; wd < 7; wd++ {
		if total[wd] == 0 {
			continue
		}
		rate := float64(completed[wd]) / float64(total[wd])
		name := time.Weekday(wd).String()

		stats = append(stats, domain.DayOfWeekStat{
			Weekday:   name,
			Completed: completed[wd],
			Total:     total[wd],
			Rate:      rate,
		})

		if rate > bestRate {
			bestRate = rate
			bestDay = name
		}
		if rate < worstRate {
			worstRate = rate
			worstDay = name
		}
	}

	return stats, bestDay, worstDay
}

func completionRate(entries []Entry) float64 {
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
