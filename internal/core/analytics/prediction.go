package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// PredictionFilter is a post-filter over computed predictions; it never
// alters the projection itself.
type PredictionFilter struct {
	HabitID       string
	Type          domain.PredictionType
	MinConfidence float64
}

func (f PredictionFilter) keep(p *domain.HabitPrediction) bool {
	if f.HabitID != "" && p.HabitID != f.HabitID {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	return p.ConfidenceScore >= f.MinConfidence
}

// Predict projects a habit's success rate over the coming timeframe from its
// recent base rate and trend. Returns nil when the history is too short to
// say anything: the caller simply gets no prediction for that habit.
func (e *Engine) Predict(s *Series, timeframeDays int) *domain.HabitPrediction {
	if s.Len() < e.cfg.MinPredictionEntries {
		return nil
	}
	if timeframeDays <= 0 {
		timeframeDays = 7
	}

	base := s.CompletionRate(e.cfg.PredictionWindow)
	trend := e.Trend(s)

	predicted := base
	switch trend {
	case domain.TrendImproving:
		predicted += e.cfg.TrendAdjustment
	case domain.TrendDeclining:
		predicted -= e.cfg.TrendAdjustment
	}
	predicted = clampFloat(predicted, 0, 1)

	consistencyFactor := e.recentConsistencyFactor(s)
	confidence := math.Min(e.cfg.ConfidenceSoftCap,
		e.cfg.ConfidenceBase+consistencyFactor*e.cfg.ConfidenceGrowthWeight+math.Abs(predicted-base)*e.cfg.ConfidenceEffectWeight)

	now := time.Now().UTC()
	prediction := &domain.HabitPrediction{
		HabitID:            s.HabitID,
		HabitName:          s.Name,
		Type:               domain.PredictionSuccessRate,
		PredictedValue:     predicted,
		ConfidenceScore:    confidence,
		Confidence:         e.confidenceBand(confidence),
		TimeframeDays:      timeframeDays,
		IssuedAt:           now,
		ExpiresAt:          now.AddDate(0, 0, timeframeDays),
		HistoricalAccuracy: e.historicalAccuracy(s.Len()),
	}

	weekendGap := e.weekendRiskDetected(s)
	prediction.Explanation = explainPrediction(prediction, trend)
	prediction.Factors = predictionFactors(s, base, trend, consistencyFactor)
	prediction.Recommendations = predictionRecommendations(predicted, trend, weekendGap)
	prediction.RiskFactors = predictionRisks(predicted, trend, weekendGap)

	return prediction
}

// PredictAll runs per-habit predictions, applies the filter and wraps the
// survivors with cross-habit summary text.
func (e *Engine) PredictAll(series []*Series, timeframeDays int, filter PredictionFilter) *domain.PredictionInsights {
	var predictions []*domain.HabitPrediction
	for _, s := range series {
		p := e.Predict(s, timeframeDays)
		if p == nil {
			continue
		}
		if filter.keep(p) {
			predictions = append(predictions, p)
		}
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].PredictedValue != predictions[j].PredictedValue {
			return predictions[i].PredictedValue > predictions[j].PredictedValue
		}
		return predictions[i].HabitID < predictions[j].HabitID
	})

	insights := &domain.PredictionInsights{
		Predictions: predictions,
		GeneratedAt: time.Now().UTC(),
	}
	insights.Summary = predictionSummary(predictions)
	insights.KeyInsights = keyInsights(predictions)
	insights.Recommendations = mergedRecommendations(predictions)

	return insights
}

// recentConsistencyFactor is the §consistency formula applied to the
// trailing window and rescaled to [0,1].
func (e *Engine) recentConsistencyFactor(s *Series) float64 {
	entries := s.Entries
	if len(entries) > e.cfg.ConsistencyWindow {
		entries = entries[len(entries)-e.cfg.ConsistencyWindow:]
	}
	return e.ConsistencyScore(entries) / e.cfg.MaxScore
}

func (e *Engine) confidenceBand(score float64) domain.ConfidenceBand {
	switch {
	case score >= e.cfg.HighConfidence:
		return domain.ConfidenceHigh
	case score >= e.cfg.MediumConfidence:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// historicalAccuracy is a coarse lookup by data volume; the buckets and
// values come straight from the config.
func (e *Engine) historicalAccuracy(entries int) float64 {
	switch {
	case entries >= e.cfg.AccuracyLongLen:
		return e.cfg.AccuracyLong
	case entries >= e.cfg.AccuracyMidLen:
		return e.cfg.AccuracyMid
	default:
		return e.cfg.AccuracyShort
	}
}

// weekendRiskDetected flags habits whose weekend completion rate falls below
// WeekendRiskRatio of the overall rate.
func (e *Engine) weekendRiskDetected(s *Series) bool {
	overall := s.CompletionRate(0)
	if overall == 0 {
		return false
	}

	weekendTotal, weekendCompleted := 0, 0
	for _, entry := range s.Entries {
		wd := entry.Date.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			continue
		}
		weekendTotal++
		if entry.Completed {
			weekendCompleted++
		}
	}
	if weekendTotal == 0 {
		return false
	}

	weekendRate := float64(weekendCompleted) / float64(weekendTotal)
	return weekendRate < overall*e.cfg.WeekendRiskRatio
}

func explainPrediction(p *domain.HabitPrediction, trend domain.TrendDirection) string {
	outlook := "steady"
	switch trend {
	case domain.TrendImproving:
		outlook = "an upward"
	case domain.TrendDeclining:
		outlook = "a downward"
	}
	if trend == domain.TrendStable {
		outlook = "a steady"
	}
	return fmt.Sprintf("Based on recent history, %q shows %s pattern with a projected %.0f%% success rate over the next %d days.",
		p.HabitName, outlook, p.PredictedValue*100, p.TimeframeDays)
}

func predictionFactors(s *Series, base float64, trend domain.TrendDirection, consistencyFactor float64) []string {
	factors := []string{
		fmt.Sprintf("Recent completion rate: %.0f%%", base*100),
		fmt.Sprintf("Short-term consistency: %.0f%%", consistencyFactor*100),
	}
	switch trend {
	case domain.TrendImproving:
		factors = append(factors, "Completion rate is trending up")
	case domain.TrendDeclining:
		factors = append(factors, "Completion rate is trending down")
	default:
		factors = append(factors, "Completion rate is holding steady")
	}
	if s.Len() >= 30 {
		factors = append(factors, "Long history gives the projection a solid base")
	}
	return factors
}

func predictionRecommendations(predicted float64, trend domain.TrendDirection, weekendGap bool) []string {
	var recs []string
	switch {
	case predicted >= 0.8:
		recs = append(recs, "Keep the current routine, it is working")
	case predicted >= 0.6:
		recs = append(recs, "Pair this habit with an established daily anchor to push the rate higher")
	case predicted >= 0.4:
		recs = append(recs, "Shrink the habit to its minimum viable version until completion stabilizes")
	default:
		recs = append(recs, "Restart with a much smaller daily target and rebuild the chain")
	}
	if trend == domain.TrendDeclining {
		recs = append(recs, "Schedule the habit earlier in the day before motivation fades")
	}
	if weekendGap {
		recs = append(recs, "Plan an explicit weekend slot, weekends are where this habit slips")
	}
	return recs
}

func predictionRisks(predicted float64, trend domain.TrendDirection, weekendGap bool) []string {
	var risks []string
	if predicted < 0.4 {
		risks = append(risks, "Low projected success rate")
	}
	if trend == domain.TrendDeclining {
		risks = append(risks, "Declining trend over the recent period")
	}
	if weekendGap {
		risks = append(risks, "Weekend completion rate falls well below the weekday rate")
	}
	return risks
}

func predictionSummary(predictions []*domain.HabitPrediction) string {
	if len(predictions) == 0 {
		return "Not enough history yet to generate predictions. Keep logging."
	}

	high := 0
	var sum float64
	for _, p := range predictions {
		if p.Confidence == domain.ConfidenceHigh {
			high++
		}
		sum += p.PredictedValue
	}
	avg := sum / float64(len(predictions))

	return fmt.Sprintf("%d habit(s) predicted with an average projected success rate of %.0f%% (%d high-confidence).",
		len(predictions), avg*100, high)
}

func keyInsights(predictions []*domain.HabitPrediction) []string {
	if len(predictions) == 0 {
		return nil
	}

	var insights []string
	best := predictions[0]
	insights = append(insights, fmt.Sprintf("%q has the strongest outlook at %.0f%%", best.HabitName, best.PredictedValue*100))

	worst := predictions[len(predictions)-1]
	if worst != best && worst.PredictedValue < 0.5 {
		insights = append(insights, fmt.Sprintf("%q is at risk with a projected %.0f%% success rate", worst.HabitName, worst.PredictedValue*100))
	}

	atRisk := 0
	for _, p := range predictions {
		if len(p.RiskFactors) > 0 {
			atRisk++
		}
	}
	if atRisk > 0 {
		insights = append(insights, fmt.Sprintf("%d habit(s) carry at least one risk factor", atRisk))
	}

	return insights
}

func mergedRecommendations(predictions []*domain.HabitPrediction) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, p := range predictions {
		for _, rec := range p.Recommendations {
			if seen[rec] {
				continue
			}
			seen[rec] = true
			merged = append(merged, rec)
		}
	}
	const maxRecommendations = 5
	if len(merged) > maxRecommendations {
		merged = merged[:maxRecommendations]
	}
	return merged
}
