package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// InsightService is the boundary between storage and the pure analytics
// engine: it loads logs through the reader port and hands plain slices to
// the engine. Nothing below this layer touches a repository.
type InsightService struct {
	habitRepo domain.HabitRepository
	logReader domain.HabitLogReader
	engine    *analytics.Engine
}

func NewInsightService(habitRepo domain.HabitRepository, logReader domain.HabitLogReader, engine *analytics.Engine) *InsightService {
	return &InsightService{
		habitRepo: habitRepo,
		logReader: logReader,
		engine:    engine,
	}
}

func (s *InsightService) loadSeries(ctx context.Context, userID string) ([]*analytics.Series, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var active []*domain.Habit
	for _, h := range habits {
		if h.IsActive() {
			active = append(active, h)
		}
	}

	logs, err := s.logReader.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return analytics.BuildAllSeries(active, logs)
}

func (s *InsightService) Correlations(ctx context.Context, userID string, filter analytics.CorrelationFilter) ([]*domain.CorrelationReport, error) {
	series, err := s.loadSeries(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.engine.CorrelateAll(series, filter)
}

func (s *InsightService) Predictions(ctx context.Context, userID string, timeframeDays int, filter analytics.PredictionFilter) (*domain.PredictionInsights, error) {
	series, err := s.loadSeries(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.engine.PredictAll(series, timeframeDays, filter), nil
}

func (s *InsightService) Performance(ctx context.Context, userID string) (*domain.PerformanceMetrics, error) {
	series, err := s.loadSeries(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.engine.Performance(series), nil
}

func (s *InsightService) HabitScore(ctx context.Context, userID, habitID string) (*domain.HabitScore, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	logs, err := s.logReader.ListByHabitID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	series, err := analytics.BuildSeries(habit.ID, habit.Name, logs)
	if err != nil {
		return nil, err
	}

	return s.engine.Score(series), nil
}

type WeeklyStatsInput struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

// WeeklyStats walks the requested day grid and reports per-habit completion
// against targets. Days without a log count as zero progress here; the
// analytics engine never sees this padded view.
func (s *InsightService) WeeklyStats(ctx context.Context, input WeeklyStatsInput) (*domain.WeeklyStats, error) {
	startDate := domain.DayOf(input.StartDate)
	endDate := domain.DayOf(input.EndDate)

	habits, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logReader.ListByUserIDAndDateRange(ctx, input.UserID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	logMap := make(map[string]map[string]int)
	for _, l := range logs {
		if _, exists := logMap[l.HabitID]; !exists {
			logMap[l.HabitID] = make(map[string]int)
		}
		dateKey := l.Date.Format("2006-01-02")
		logMap[l.HabitID][dateKey] += l.CompletedCount
	}

	stats := &domain.WeeklyStats{
		StartDate:   startDate.Format("2006-01-02"),
		EndDate:     endDate.Format("2006-01-02"),
		TotalHabits: len(habits),
		HabitStats:  make([]domain.HabitStat, 0, len(habits)),
	}

	totalDaysPossible := 0
	totalDaysCompleted := 0

	for _, h := range habits {
		hStat := domain.HabitStat{
			HabitID:       h.ID,
			HabitName:     h.Name,
			Color:         h.Color,
			Icon:          h.Icon,
			TargetCount:   h.TargetCount,
			DailyProgress: make([]int, 0),
		}

		daysInPeriod := 0
		daysAchieved := 0

		currentDate := startDate
		for !currentDate.After(endDate) {
			dateKey := currentDate.Format("2006-01-02")

			val := logMap[h.ID][dateKey]

			hStat.TotalCompleted += val
			hStat.DailyProgress = append(hStat.DailyProgress, val)

			if val >= h.TargetCount {
				daysAchieved++
				totalDaysCompleted++
			}

			daysInPeriod++
			totalDaysPossible++

			currentDate = currentDate.AddDate(0, 0, 1)
		}

		hStat.DaysCompleted = daysAchieved
		if daysInPeriod > 0 {
			hStat.CompletionRate = float64(daysAchieved) / float64(daysInPeriod) * 100
		}

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalDaysPossible > 0 {
		stats.OverallRate = float64(totalDaysCompleted) / float64(totalDaysPossible) * 100
	}

	return stats, nil
}
