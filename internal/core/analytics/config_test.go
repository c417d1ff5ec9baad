package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// The heuristics are product decisions, so every weight and cut-off must be
// steerable through the config rather than baked into the algorithms.
func TestEngine_ConfigurableHeuristics(t *testing.T) {
	t.Run("Correlation confidence weights", func(t *testing.T) {
		pattern := repeatPattern([]bool{false, true}, 16)

		report := newEngine().Correlate(
			patternSeries(t, "h1", "Read", pattern),
			patternSeries(t, "h2", "Run", pattern),
		)
		require.NotNil(t, report)
		// 0.5 base + 16/100*0.3 overlap term + 1.0*0.2 effect term.
		assert.InDelta(t, 0.748, report.Confidence, 1e-9)

		cfg := analytics.DefaultConfig()
		cfg.ConfidenceBase = 0.3
		lowered := analytics.NewEngine(cfg).Correlate(
			patternSeries(t, "h1", "Read", pattern),
			patternSeries(t, "h2", "Run", pattern),
		)
		require.NotNil(t, lowered)
		assert.InDelta(t, 0.548, lowered.Confidence, 1e-9)
	})

	t.Run("Prediction confidence weights", func(t *testing.T) {
		perfect := repeatPattern([]bool{true}, 20)

		p := newEngine().Predict(patternSeries(t, "h1", "Read", perfect), 7)
		require.NotNil(t, p)
		// Stable trend, full short-term consistency: 0.5 + 1.0*0.3.
		assert.InDelta(t, 0.8, p.ConfidenceScore, 1e-9)

		cfg := analytics.DefaultConfig()
		cfg.ConfidenceGrowthWeight = 0.1
		lowered := analytics.NewEngine(cfg).Predict(patternSeries(t, "h1", "Read", perfect), 7)
		require.NotNil(t, lowered)
		assert.InDelta(t, 0.6, lowered.ConfidenceScore, 1e-9)
	})

	t.Run("Historical accuracy buckets", func(t *testing.T) {
		twenty := repeatPattern([]bool{true, false}, 20)

		p := newEngine().Predict(patternSeries(t, "h1", "Read", twenty), 7)
		require.NotNil(t, p)
		assert.Equal(t, 0.75, p.HistoricalAccuracy)

		cfg := analytics.DefaultConfig()
		cfg.AccuracyLongLen = 10
		long := analytics.NewEngine(cfg).Predict(patternSeries(t, "h1", "Read", twenty), 7)
		require.NotNil(t, long)
		assert.Equal(t, cfg.AccuracyLong, long.HistoricalAccuracy)
	})

	t.Run("Performance category cut-offs", func(t *testing.T) {
		perfect := patternSeries(t, "h1", "Read", repeatPattern([]bool{true}, 40))

		// Overall ~83 sits below the default excellent threshold of 85.
		metrics := newEngine().Performance([]*analytics.Series{perfect})
		assert.Equal(t, domain.CategoryGood, metrics.Category)

		cfg := analytics.DefaultConfig()
		cfg.ExcellentThreshold = 80
		metrics = analytics.NewEngine(cfg).Performance(
			[]*analytics.Series{patternSeries(t, "h1", "Read", repeatPattern([]bool{true}, 40))})
		assert.Equal(t, domain.CategoryExcellent, metrics.Category)
	})
}
