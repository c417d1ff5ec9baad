package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

func TestEngine_Performance(t *testing.T) {
	engine := newEngine()

	t.Run("Fewer than five entries keeps resilience neutral", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", []bool{false, false, false, false})

		metrics := engine.Performance([]*analytics.Series{s})

		assert.Equal(t, 50.0, metrics.ResilienceScore)
		assert.NotEmpty(t, metrics.ResilienceFactors)
	})

	t.Run("Momentum defaults to neutral on short streams", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", []bool{true, true, true, true, true})

		metrics := engine.Performance([]*analytics.Series{s})

		assert.Equal(t, 50.0, metrics.MomentumScore)
	})

	t.Run("Recent surge maxes out momentum", func(t *testing.T) {
		// Prior window all missed, recent window all completed.
		s := patternSeries(t, "h1", "Read", []bool{false, false, false, true, true, true})

		metrics := engine.Performance([]*analytics.Series{s})

		assert.Equal(t, 100.0, metrics.MomentumScore)
	})

	t.Run("Recent collapse bottoms out momentum", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", []bool{true, true, true, false, false, false})

		metrics := engine.Performance([]*analytics.Series{s})

		assert.Equal(t, 0.0, metrics.MomentumScore)
	})

	t.Run("All scores stay within bounds", func(t *testing.T) {
		a := patternSeries(t, "h1", "Read", repeatPattern([]bool{true, false}, 30))
		b := patternSeries(t, "h2", "Run", repeatPattern([]bool{true, true, false}, 30))

		metrics := engine.Performance([]*analytics.Series{a, b})

		for name, score := range map[string]float64{
			"consistency": metrics.ConsistencyScore,
			"momentum":    metrics.MomentumScore,
			"resilience":  metrics.ResilienceScore,
			"overall":     metrics.OverallScore,
		} {
			assert.GreaterOrEqual(t, score, 0.0, name)
			assert.LessOrEqual(t, score, 100.0, name)
		}

		expected := (metrics.ConsistencyScore + metrics.MomentumScore + metrics.ResilienceScore) / 3
		assert.InDelta(t, expected, metrics.OverallScore, 1e-9)

		assert.GreaterOrEqual(t, metrics.Percentile, 5)
		assert.LessOrEqual(t, metrics.Percentile, 95)
	})

	t.Run("Category thresholds", func(t *testing.T) {
		perfect := patternSeries(t, "h1", "Read", repeatPattern([]bool{true}, 40))
		metrics := engine.Performance([]*analytics.Series{perfect})

		// Consistency capped at 100, momentum level at 50, resilience
		// climbs to 100: overall ~83 lands in "good".
		assert.Equal(t, domain.CategoryGood, metrics.Category)
		assert.Equal(t, 100.0, metrics.ConsistencyScore)
		assert.Equal(t, 50.0, metrics.MomentumScore)
		assert.Equal(t, 100.0, metrics.ResilienceScore)

		hopeless := patternSeries(t, "h2", "Run", repeatPattern([]bool{false}, 40))
		metrics = engine.Performance([]*analytics.Series{hopeless})

		assert.Equal(t, domain.CategoryNeedsImprovement, metrics.Category)
	})

	t.Run("Resilience rewards recovery after a short failure run", func(t *testing.T) {
		// One 2-day slump inside an otherwise steady pattern.
		recovered := patternSeries(t, "h1", "Read",
			[]bool{true, true, false, false, true, true, true, true})

		metrics := engine.Performance([]*analytics.Series{recovered})

		// 50 + 6*2 - 2 + min(20, (5-2)*4) = 72.
		assert.Equal(t, 72.0, metrics.ResilienceScore)
	})

	t.Run("Merges several habit streams chronologically", func(t *testing.T) {
		a := patternSeries(t, "h1", "Read", []bool{true, true, true})
		b := patternSeries(t, "h2", "Run", []bool{false, false, false})

		metrics := engine.Performance([]*analytics.Series{a, b})

		// 3 completed of 6 union entries.
		require.NotZero(t, metrics.ConsistencyScore)
		assert.Less(t, metrics.ConsistencyScore, 60.0)
	})
}
