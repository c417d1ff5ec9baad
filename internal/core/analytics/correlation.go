package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// CorrelationFilter is applied as a post-filter over the full candidate set.
// Filtering never changes the underlying computation.
type CorrelationFilter struct {
	MinCorrelation  float64
	MaxCorrelation  float64
	MinConfidence   float64
	MinDataPoints   int
	IncludePositive bool
	IncludeNegative bool
}

func DefaultCorrelationFilter() CorrelationFilter {
	return CorrelationFilter{
		MinCorrelation:  -1,
		MaxCorrelation:  1,
		IncludePositive: true,
		IncludeNegative: true,
	}
}

func (f CorrelationFilter) keep(r *domain.CorrelationReport) bool {
	if r.Coefficient < f.MinCorrelation || r.Coefficient > f.MaxCorrelation {
		return false
	}
	if r.Confidence < f.MinConfidence {
		return false
	}
	if r.DataPoints < f.MinDataPoints {
		return false
	}
	if r.Type == domain.CorrelationPositive && !f.IncludePositive {
		return false
	}
	if r.Type == domain.CorrelationNegative && !f.IncludeNegative {
		return false
	}
	return true
}

// Correlate computes the Pearson correlation between two habits over their
// overlapping dates, with each date binary-encoded as completed/not.
// Returns nil when either series is too short, the overlap is too small, or
// the coefficient sits below the noise floor: insufficient data is no
// signal, not an error.
func (e *Engine) Correlate(a, b *Series) *domain.CorrelationReport {
	if a.Len() < e.cfg.MinSeriesLen || b.Len() < e.cfg.MinSeriesLen {
		return nil
	}

	bByDay := make(map[time.Time]bool, b.Len())
	for _, entry := range b.Entries {
		bByDay[entry.Date] = entry.Completed
	}

	var xs, ys []float64
	for _, entry := range a.Entries {
		completedB, ok := bByDay[entry.Date]
		if !ok {
			continue
		}
		xs = append(xs, boolToFloat(entry.Completed))
		ys = append(ys, boolToFloat(completedB))
	}

	overlap := len(xs)
	if overlap < e.cfg.MinOverlap {
		return nil
	}

	r := pearson(xs, ys)
	if math.Abs(r) < e.cfg.NoiseFloor {
		return nil
	}

	report := &domain.CorrelationReport{
		HabitAID:    a.HabitID,
		HabitAName:  a.Name,
		HabitBID:    b.HabitID,
		HabitBName:  b.Name,
		Coefficient: r,
		Type:        domain.CorrelationPositive,
		Strength:    e.classifyStrength(r),
		Confidence:  e.correlationConfidence(r, overlap),
		DataPoints:  overlap,
	}
	if r < 0 {
		report.Type = domain.CorrelationNegative
	}

	report.Explanation = explainCorrelation(report)
	report.Insight = correlationInsight(report)

	return report
}

// CorrelateAll evaluates every habit pair and returns the surviving reports
// sorted by descending |coefficient|, ties broken by habit id pair so the
// ordering is reproducible.
func (e *Engine) CorrelateAll(series []*Series, filter CorrelationFilter) ([]*domain.CorrelationReport, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: at least two habit series required for correlation", domain.ErrInvalidLogData)
	}

	var reports []*domain.CorrelationReport
	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			report := e.Correlate(series[i], series[j])
			if report == nil {
				continue
			}
			if filter.keep(report) {
				reports = append(reports, report)
			}
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		ai := math.Abs(reports[i].Coefficient)
		aj := math.Abs(reports[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		if reports[i].HabitAID != reports[j].HabitAID {
			return reports[i].HabitAID < reports[j].HabitAID
		}
		return reports[i].HabitBID < reports[j].HabitBID
	})

	return reports, nil
}

// pearson computes r = (nΣxy − ΣxΣy) / sqrt((nΣx² − (Σx)²)(nΣy² − (Σy)²)),
// returning 0 when the denominator vanishes (a constant series).
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	denom := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denom == 0 {
		return 0
	}

	return (n*sumXY - sumX*sumY) / denom
}

func (e *Engine) classifyStrength(r float64) domain.CorrelationStrength {
	abs := math.Abs(r)
	switch {
	case abs >= e.cfg.StrongThreshold:
		return domain.StrengthStrong
	case abs >= e.cfg.ModerateThreshold:
		return domain.StrengthModerate
	default:
		return domain.StrengthWeak
	}
}

// correlationConfidence is a design heuristic, not a significance test: it
// grows with overlap size and effect strength, capped below 1.
func (e *Engine) correlationConfidence(r float64, overlap int) float64 {
	base := math.Min(e.cfg.ConfidenceSoftCap, e.cfg.ConfidenceBase+float64(overlap)/100*e.cfg.ConfidenceGrowthWeight)
	return math.Min(e.cfg.ConfidenceCap, base+math.Abs(r)*e.cfg.ConfidenceEffectWeight)
}

func explainCorrelation(r *domain.CorrelationReport) string {
	link := "tend to succeed together"
	if r.Type == domain.CorrelationNegative {
		link = "tend to move in opposite directions"
	}
	return fmt.Sprintf("%q and %q %s (%s %s correlation over %d shared days).",
		r.HabitAName, r.HabitBName, link, string(r.Strength), string(r.Type), r.DataPoints)
}

func correlationInsight(r *domain.CorrelationReport) string {
	switch {
	case r.Type == domain.CorrelationPositive && r.Strength == domain.StrengthStrong:
		return fmt.Sprintf("Completing %q is a strong signal you will also complete %q. Consider stacking them.", r.HabitAName, r.HabitBName)
	case r.Type == domain.CorrelationPositive:
		return fmt.Sprintf("Days when %q succeeds, %q often succeeds too.", r.HabitAName, r.HabitBName)
	case r.Strength == domain.StrengthStrong:
		return fmt.Sprintf("%q and %q rarely succeed on the same day. They may be competing for the same time or energy.", r.HabitAName, r.HabitBName)
	default:
		return fmt.Sprintf("%q appears to crowd out %q on some days.", r.HabitAName, r.HabitBName)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
