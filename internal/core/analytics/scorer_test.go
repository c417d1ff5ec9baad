package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

func TestEngine_Streaks(t *testing.T) {
	engine := newEngine()

	t.Run("Miss on the latest day resets the current streak", func(t *testing.T) {
		// Days 1-3 completed, day 4 missed.
		s := patternSeries(t, "h1", "Read", []bool{true, true, true, false})

		current, longest := engine.Streaks(s)

		assert.Equal(t, 0, current)
		assert.Equal(t, 3, longest)
	})

	t.Run("Unbroken run counts as both current and longest", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", []bool{false, true, true, true, true})

		current, longest := engine.Streaks(s)

		assert.Equal(t, 4, current)
		assert.Equal(t, 4, longest)
	})

	t.Run("Longest streak found mid-series", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", []bool{true, true, true, true, false, true, true})

		current, longest := engine.Streaks(s)

		assert.Equal(t, 2, current)
		assert.Equal(t, 4, longest)
	})

	t.Run("Empty series has no streaks", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", nil)

		current, longest := engine.Streaks(s)

		assert.Equal(t, 0, current)
		assert.Equal(t, 0, longest)
	})

	t.Run("Calendar gaps are tolerated by default", func(t *testing.T) {
		logs := []*domain.HabitLog{
			makeLog("h1", day(0), domain.StatusCompleted),
			makeLog("h1", day(2), domain.StatusCompleted), // day 1 never logged
		}
		s, err := analytics.BuildSeries("h1", "Read", logs)
		require.NoError(t, err)

		current, longest := engine.Streaks(s)

		assert.Equal(t, 2, current)
		assert.Equal(t, 2, longest)
	})

	t.Run("Strict mode breaks streaks on calendar gaps", func(t *testing.T) {
		cfg := analytics.DefaultConfig()
		cfg.StrictCalendarStreaks = true
		strict := analytics.NewEngine(cfg)

		logs := []*domain.HabitLog{
			makeLog("h1", day(0), domain.StatusCompleted),
			makeLog("h1", day(2), domain.StatusCompleted),
			makeLog("h1", day(3), domain.StatusCompleted),
		}
		s, err := analytics.BuildSeries("h1", "Read", logs)
		require.NoError(t, err)

		current, longest := strict.Streaks(s)

		assert.Equal(t, 2, current)
		assert.Equal(t, 2, longest)
	})
}

func TestEngine_ConsistencyScore(t *testing.T) {
	engine := newEngine()

	t.Run("Empty input scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, engine.ConsistencyScore(nil))
	})

	t.Run("Streak bonus rewards sustained runs over scattered wins", func(t *testing.T) {
		// Same ratio (3/6), different arrangement.
		scattered := patternSeries(t, "h1", "Read", []bool{true, false, true, false, true, false})
		streaked := patternSeries(t, "h2", "Run", []bool{false, false, false, true, true, true})

		scatteredScore := engine.ConsistencyScore(scattered.Entries)
		streakedScore := engine.ConsistencyScore(streaked.Entries)

		// scattered: 50 + 0.5*(1+1+1); streaked: 50 + 0.5*(1+2+3).
		assert.InDelta(t, 51.5, scatteredScore, 1e-9)
		assert.InDelta(t, 53.0, streakedScore, 1e-9)
		assert.Greater(t, streakedScore, scatteredScore)
	})

	t.Run("Score is capped at 100", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", repeatPattern([]bool{true}, 60))

		assert.Equal(t, 100.0, engine.ConsistencyScore(s.Entries))
	})
}

func TestEngine_Trend(t *testing.T) {
	engine := newEngine()

	t.Run("Short history is always stable", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", []bool{false, false, false, true, true, true})

		assert.Equal(t, domain.TrendStable, engine.Trend(s))
	})

	t.Run("Clear improvement is detected", func(t *testing.T) {
		pattern := append(repeatPattern([]bool{false}, 10), repeatPattern([]bool{true}, 10)...)
		s := patternSeries(t, "h1", "Read", pattern)

		assert.Equal(t, domain.TrendImproving, engine.Trend(s))
	})

	t.Run("Clear decline is detected", func(t *testing.T) {
		pattern := append(repeatPattern([]bool{true}, 10), repeatPattern([]bool{false}, 10)...)
		s := patternSeries(t, "h1", "Read", pattern)

		assert.Equal(t, domain.TrendDeclining, engine.Trend(s))
	})

	t.Run("Delta of exactly 0.10 stays stable", func(t *testing.T) {
		// First half 5/10 completed, second half 6/10: the threshold is
		// strictly greater-than.
		firstHalf := repeatPattern([]bool{true, false}, 10)
		secondHalf := append(repeatPattern([]bool{true}, 6), repeatPattern([]bool{false}, 4)...)
		s := patternSeries(t, "h1", "Read", append(firstHalf, secondHalf...))

		assert.Equal(t, domain.TrendStable, engine.Trend(s))
	})
}

func TestEngine_Score(t *testing.T) {
	engine := newEngine()

	t.Run("Improving habit with a closing streak", func(t *testing.T) {
		// 20 entries: 3 completed among the first 13, last 7 all completed.
		pattern := make([]bool, 20)
		pattern[0], pattern[4], pattern[8] = true, true, true
		for i := 13; i < 20; i++ {
			pattern[i] = true
		}
		s := patternSeries(t, "h1", "Read", pattern)

		score := engine.Score(s)

		assert.Equal(t, domain.TrendImproving, score.Trend)
		assert.Equal(t, 7, score.CurrentStreak)
		assert.Equal(t, 7, score.LongestStreak)

		// 10/20 completed raw, so anything above 50 is streak bonus.
		assert.Greater(t, score.ConsistencyScore, 50.0)
		assert.LessOrEqual(t, score.ConsistencyScore, 100.0)
		assert.Equal(t, "h1", score.HabitID)
		assert.Equal(t, "Read", score.HabitName)
	})

	t.Run("Day-of-week stats pick deterministic best and worst days", func(t *testing.T) {
		// day(0) is 2024-03-01, a Friday. Fridays completed, Saturdays missed.
		logs := []*domain.HabitLog{
			makeLog("h1", day(0), domain.StatusCompleted),  // Friday
			makeLog("h1", day(1), domain.StatusMissed),     // Saturday
			makeLog("h1", day(7), domain.StatusCompleted),  // Friday
			makeLog("h1", day(8), domain.StatusMissed),     // Saturday
			makeLog("h1", day(14), domain.StatusCompleted), // Friday
		}
		s, err := analytics.BuildSeries("h1", "Read", logs)
		require.NoError(t, err)

		score := engine.Score(s)

		assert.Equal(t, "Friday", score.BestDay)
		assert.Equal(t, "Saturday", score.WorstDay)
		require.Len(t, score.DayOfWeekStats, 2)

		for _, stat := range score.DayOfWeekStats {
			switch stat.Weekday {
			case "Friday":
				assert.Equal(t, 3, stat.Completed)
				assert.Equal(t, 3, stat.Total)
				assert.InDelta(t, 1.0, stat.Rate, 1e-9)
			case "Saturday":
				assert.Equal(t, 0, stat.Completed)
				assert.Equal(t, 2, stat.Total)
			}
		}
	})
}
