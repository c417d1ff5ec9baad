package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// XP weights. Kept here, not in handlers or SQL, so the worker and the
// profile endpoint can never drift apart.
const (
	xpPerCompletion = 10
	xpPerPerfectDay = 50
)

// GamificationService derives streaks, perfect days and XP from the raw log
// stream using the same analytics engine that powers the insights
// endpoints.
type GamificationService struct {
	habitRepo domain.HabitRepository
	logRepo   domain.HabitLogRepository
	userRepo  domain.UserRepository
	engine    *analytics.Engine
}

func NewGamificationService(habitRepo domain.HabitRepository, logRepo domain.HabitLogRepository, userRepo domain.UserRepository, engine *analytics.Engine) *GamificationService {
	return &GamificationService{
		habitRepo: habitRepo,
		logRepo:   logRepo,
		userRepo:  userRepo,
		engine:    engine,
	}
}

func (s *GamificationService) Profile(ctx context.Context, userID string) (*domain.GamificationProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &domain.GamificationProfile{
		UserID:      user.ID,
		Level:       user.Level,
		TotalXP:     user.TotalXP,
		NextLevelXP: user.Level * domain.XPPerLevel,
		PerfectDays: user.PerfectDays,
		Habits:      make([]domain.HabitStreaks, 0, len(habits)),
	}

	for _, h := range habits {
		if !h.IsActive() {
			continue
		}
		profile.Habits = append(profile.Habits, domain.HabitStreaks{
			HabitID:       h.ID,
			HabitName:     h.Name,
			CurrentStreak: h.CurrentStreak,
			LongestStreak: h.LongestStreak,
		})
	}

	return profile, nil
}

// RecalculateHabit refreshes one habit's streak counters from its logs.
func (s *GamificationService) RecalculateHabit(ctx context.Context, habitID string) error {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}

	logs, err := s.logRepo.ListByHabitID(ctx, habitID)
	if err != nil {
		return err
	}

	series, err := analytics.BuildSeries(habit.ID, habit.Name, logs)
	if err != nil {
		return err
	}

	current, longest := s.engine.Streaks(series)

	if habit.CurrentStreak == current && habit.LongestStreak == longest {
		return nil
	}

	return s.habitRepo.UpdateStreaks(ctx, habitID, current, longest)
}

// RecalculateUser refreshes perfect-day and XP state from the full log
// stream. A perfect day is one where every habit active that day has a
// completed log.
func (s *GamificationService) RecalculateUser(ctx context.Context, userID string) error {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}

	activeCount := 0
	activeIDs := make(map[string]bool, len(habits))
	for _, h := range habits {
		if h.IsActive() {
			activeIDs[h.ID] = true
			activeCount++
		}
	}

	logs, err := s.logRepo.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}

	completions := 0
	completedPerDay := make(map[time.Time]map[string]bool)
	for _, l := range logs {
		if !l.IsCompleted() || !activeIDs[l.HabitID] {
			continue
		}
		completions++

		day := domain.DayOf(l.Date)
		if completedPerDay[day] == nil {
			completedPerDay[day] = make(map[string]bool)
		}
		completedPerDay[day][l.HabitID] = true
	}

	perfectDays := 0
	if activeCount > 0 {
		for _, habitsDone := range completedPerDay {
			if len(habitsDone) == activeCount {
				perfectDays++
			}
		}
	}

	totalXP := completions*xpPerCompletion + perfectDays*xpPerPerfectDay
	level := 1 + totalXP/domain.XPPerLevel

	return s.userRepo.UpdateGamification(ctx, userID, totalXP, level, perfectDays)
}
