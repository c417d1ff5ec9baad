package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type CreateHabitInput struct {
	UserID       string
	Name         string
	Description  string
	Category     string
	Color        string
	Icon         string
	ReminderTime string
	TargetCount  int
	Interval     int
	Weekdays     []int
}

type UpdateHabitInput struct {
	ID           string
	UserID       string
	Name         string
	Description  string
	Category     string
	Color        string
	Icon         string
	ReminderTime string
	TargetCount  int
	Interval     int
	Weekdays     []int
	Version      int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(
		input.UserID,
		input.Name,
		input.Description,
		input.Category,
		input.Color,
		input.Icon,
		input.ReminderTime,
		input.TargetCount,
		input.Interval,
		input.Weekdays,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) error {
	habit, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return err
	}

	if habit.UserID != input.UserID {
		return domain.ErrHabitNotFound
	}

	if input.Version > 0 && habit.Version != input.Version {
		return fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	name := mergeString(input.Name, habit.Name)
	desc := mergeString(input.Description, habit.Description)
	category := mergeString(input.Category, habit.Category)
	color := mergeString(input.Color, habit.Color)
	icon := mergeString(input.Icon, habit.Icon)

	target := habit.TargetCount
	if input.TargetCount > 0 {
		target = input.TargetCount
	}

	interval := habit.Interval
	if input.Interval > 0 {
		interval = input.Interval
	}

	weekdays := habit.Weekdays
	if input.Weekdays != nil {
		weekdays = input.Weekdays
	}

	err = habit.Update(name, desc, category, color, icon, input.ReminderTime, target, interval, weekdays)
	if err != nil {
		return err
	}

	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) error {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	habit.Archive()
	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) error {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	habit.Restore()
	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Reorder(ctx context.Context, id, userID string, newOrder int) error {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := habit.ChangePosition(newOrder); err != nil {
		return err
	}
	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if habit.UserID != userID {
		return domain.ErrHabitNotFound
	}

	return s.repo.Delete(ctx, id)
}
