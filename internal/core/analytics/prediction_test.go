package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

func TestEngine_Predict(t *testing.T) {
	engine := newEngine()

	t.Run("Too little history yields no prediction", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", repeatPattern([]bool{true}, 13))

		assert.Nil(t, engine.Predict(s, 7))
	})

	t.Run("Improving trend lifts the projection above the base rate", func(t *testing.T) {
		pattern := append(repeatPattern([]bool{false}, 10), repeatPattern([]bool{true}, 10)...)
		s := patternSeries(t, "h1", "Read", pattern)

		p := engine.Predict(s, 7)
		require.NotNil(t, p)

		base := s.CompletionRate(30)
		assert.InDelta(t, base+0.10, p.PredictedValue, 1e-9)
		assert.Equal(t, domain.PredictionSuccessRate, p.Type)
		assert.Equal(t, 7, p.TimeframeDays)
		assert.Equal(t, p.IssuedAt.AddDate(0, 0, 7), p.ExpiresAt)
	})

	t.Run("Predicted value and confidence stay in bounds", func(t *testing.T) {
		patterns := [][]bool{
			repeatPattern([]bool{true}, 40),
			repeatPattern([]bool{false, true}, 25),
			append(repeatPattern([]bool{true}, 20), repeatPattern([]bool{false}, 20)...),
		}

		for _, pattern := range patterns {
			s := patternSeries(t, "h1", "Read", pattern)
			p := engine.Predict(s, 14)
			require.NotNil(t, p)

			assert.GreaterOrEqual(t, p.PredictedValue, 0.0)
			assert.LessOrEqual(t, p.PredictedValue, 1.0)
			assert.GreaterOrEqual(t, p.ConfidenceScore, 0.0)
			assert.LessOrEqual(t, p.ConfidenceScore, 0.95)
		}
	})

	t.Run("Confidence band follows the score", func(t *testing.T) {
		s := patternSeries(t, "h1", "Read", repeatPattern([]bool{true}, 40))

		p := engine.Predict(s, 7)
		require.NotNil(t, p)

		// Perfect recent consistency: 0.5 + 1.0*0.3 = 0.8.
		assert.InDelta(t, 0.8, p.ConfidenceScore, 1e-9)
		assert.Equal(t, domain.ConfidenceHigh, p.Confidence)
	})

	t.Run("Historical accuracy is a volume lookup", func(t *testing.T) {
		big := patternSeries(t, "h1", "Read", repeatPattern([]bool{true, false}, 30))
		small := patternSeries(t, "h2", "Run", repeatPattern([]bool{true, false}, 14))

		pBig := engine.Predict(big, 7)
		pSmall := engine.Predict(small, 7)
		require.NotNil(t, pBig)
		require.NotNil(t, pSmall)

		assert.Equal(t, 0.85, pBig.HistoricalAccuracy)
		assert.Equal(t, 0.75, pSmall.HistoricalAccuracy)
	})

	t.Run("Weekend slump is flagged as a risk", func(t *testing.T) {
		// Complete weekdays, miss every weekend day.
		var logs []*domain.HabitLog
		for i := 0; i < 28; i++ {
			d := day(i)
			status := domain.StatusCompleted
			if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
				status = domain.StatusMissed
			}
			logs = append(logs, makeLog("h1", d, status))
		}
		s, err := analytics.BuildSeries("h1", "Read", logs)
		require.NoError(t, err)

		p := engine.Predict(s, 7)
		require.NotNil(t, p)

		assert.Contains(t, p.RiskFactors, "Weekend completion rate falls well below the weekday rate")
		assert.NotEmpty(t, p.Recommendations)
		assert.NotEmpty(t, p.Factors)
		assert.NotEmpty(t, p.Explanation)
	})
}

func TestEngine_PredictAll(t *testing.T) {
	engine := newEngine()

	strong := patternSeries(t, "h1", "Read", repeatPattern([]bool{true}, 30))
	weak := patternSeries(t, "h2", "Run", repeatPattern([]bool{false, false, false, true}, 20))
	tooShort := patternSeries(t, "h3", "Meditate", repeatPattern([]bool{true}, 5))

	t.Run("Wraps per-habit predictions with summary text", func(t *testing.T) {
		insights := engine.PredictAll([]*analytics.Series{strong, weak, tooShort}, 7, analytics.PredictionFilter{})

		require.Len(t, insights.Predictions, 2)
		assert.Equal(t, "h1", insights.Predictions[0].HabitID)
		assert.NotEmpty(t, insights.Summary)
		assert.NotEmpty(t, insights.KeyInsights)
		assert.NotEmpty(t, insights.Recommendations)
		assert.False(t, insights.GeneratedAt.IsZero())
	})

	t.Run("Filter narrows by habit and confidence", func(t *testing.T) {
		byHabit := engine.PredictAll([]*analytics.Series{strong, weak}, 7, analytics.PredictionFilter{HabitID: "h2"})
		require.Len(t, byHabit.Predictions, 1)
		assert.Equal(t, "h2", byHabit.Predictions[0].HabitID)

		byConfidence := engine.PredictAll([]*analytics.Series{strong, weak}, 7, analytics.PredictionFilter{MinConfidence: 0.99})
		assert.Empty(t, byConfidence.Predictions)
		assert.NotEmpty(t, byConfidence.Summary)
	})

	t.Run("No predictable habits still yields a summary", func(t *testing.T) {
		insights := engine.PredictAll([]*analytics.Series{tooShort}, 7, analytics.PredictionFilter{})

		assert.Empty(t, insights.Predictions)
		assert.NotEmpty(t, insights.Summary)
		assert.Empty(t, insights.KeyInsights)
	})
}
