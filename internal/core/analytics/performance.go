package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// Performance combines every habit's log stream into user-level consistency,
// momentum and resilience scores, all in [0,100].
func (e *Engine) Performance(all []*Series) *domain.PerformanceMetrics {
	merged := mergeChronological(all)

	consistency := e.ConsistencyScore(merged)
	momentum := e.momentum(merged)
	resilience := e.resilience(merged)

	overall := (consistency + momentum + resilience) / 3

	metrics := &domain.PerformanceMetrics{
		ConsistencyScore:   consistency,
		ConsistencyFactors: consistencyFactors(consistency, merged),
		MomentumScore:      momentum,
		MomentumFactors:    momentumFactors(momentum),
		ResilienceScore:    resilience,
		ResilienceFactors:  resilienceFactors(resilience, len(merged), e.cfg.MinResilienceEntries),
		OverallScore:       overall,
		Category:           e.category(overall),
		Percentile:         percentileApprox(overall),
	}

	return metrics
}

// mergeChronological flattens all series into one date-ordered entry stream.
// Same-day entries across habits are kept: the aggregate scores look at the
// union of all logs, not one per day.
func mergeChronological(all []*Series) []Entry {
	var merged []Entry
	for _, s := range all {
		merged = append(merged, s.Entries...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged
}

// momentum compares the completion rate of the last few entries against the
// window just before it: clamp(0,100,(recent−older)*100+50). Neutral 50 when
// either window lacks data.
func (e *Engine) momentum(entries []Entry) float64 {
	w := e.cfg.MomentumWindow
	if len(entries) < 2*w {
		return 50
	}

	recent := entries[len(entries)-w:]
	older := entries[len(entries)-2*w : len(entries)-w]

	delta := completionRate(recent) - completionRate(older)
	return clampFloat(delta*100+50, 0, 100)
}

// resilience rewards quick recovery after runs of misses: start neutral,
// +2 per completed entry, −1 per non-completed, plus a recovery bonus scaled
// by the worst failure run. Short histories stay neutral.
func (e *Engine) resilience(entries []Entry) float64 {
	if len(entries) < e.cfg.MinResilienceEntries {
		return 50
	}

	score := 50.0
	failRun := 0
	maxFailRun := 0

	for _, entry := range entries {
		if entry.Completed {
			score += 2
			failRun = 0
		} else {
			score--
			failRun++
			if failRun > maxFailRun {
				maxFailRun = failRun
			}
		}
	}

	if maxFailRun > 0 {
		score += math.Min(20, float64(5-maxFailRun)*4)
	}

	return clampFloat(score, 0, 100)
}

func (e *Engine) category(overall float64) domain.PerformanceCategory {
	switch {
	case overall >= e.cfg.ExcellentThreshold:
		return domain.CategoryExcellent
	case overall >= e.cfg.GoodThreshold:
		return domain.CategoryGood
	case overall >= e.cfg.AverageThreshold:
		return domain.CategoryAverage
	default:
		return domain.CategoryNeedsImprovement
	}
}

func percentileApprox(overall float64) int {
	p := int(math.Round(overall))
	if p < 5 {
		return 5
	}
	if p > 95 {
		return 95
	}
	return p
}

func consistencyFactors(score float64, entries []Entry) []string {
	var factors []string
	switch {
	case score >= 80:
		factors = append(factors, "Completions are highly regular across all habits")
	case score >= 50:
		factors = append(factors, "Completions are fairly regular with room to grow")
	default:
		factors = append(factors, "Completions are irregular across the log history")
	}
	if len(entries) < 14 {
		factors = append(factors, "Short history, the score will sharpen as more days are logged")
	}
	return factors
}

func momentumFactors(score float64) []string {
	switch {
	case score > 60:
		return []string{"Recent days outperform the period before them"}
	case score < 40:
		return []string{"Recent days fall behind the period before them"}
	default:
		return []string{"Recent activity is level with the prior period"}
	}
}

func resilienceFactors(score float64, entryCount, minEntries int) []string {
	if entryCount < minEntries {
		return []string{fmt.Sprintf("Fewer than %d entries, resilience defaults to neutral", minEntries)}
	}
	switch {
	case score >= 70:
		return []string{"Misses are rare and followed by quick recoveries"}
	case score >= 50:
		return []string{"Occasional miss runs, but the overall balance holds"}
	default:
		return []string{"Long runs of missed entries drag the score down"}
	}
}
