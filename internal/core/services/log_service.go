package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/workers"
)

type LogService struct {
	repo      domain.HabitLogRepository
	habitRepo domain.HabitRepository
	worker    *workers.StatsWorker
}

func NewLogService(repo domain.HabitLogRepository, habitRepo domain.HabitRepository, worker *workers.StatsWorker) *LogService {
	return &LogService{
		repo:      repo,
		habitRepo: habitRepo,
		worker:    worker,
	}
}

type CreateLogInput struct {
	HabitID        string
	UserID         string
	Date           time.Time
	Status         string
	CompletedCount int
	TargetCount    *int
	Notes          string
}

type UpdateLogInput struct {
	ID             string
	UserID         string
	Status         string
	CompletedCount int
	Notes          string
	Version        int
}

func (s *LogService) Create(ctx context.Context, input CreateLogInput) (*domain.HabitLog, error) {
	log := domain.NewHabitLog(input.HabitID, input.UserID, input.Date, input.Status, input.CompletedCount)
	log.TargetCount = input.TargetCount
	log.Notes = input.Notes

	if err := log.Validate(); err != nil {
		return nil, err
	}

	habit, err := s.habitRepo.GetByID(ctx, log.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != log.UserID {
		return nil, domain.ErrUnauthorized
	}

	if err := s.repo.Create(ctx, log); err != nil {
		return nil, err
	}

	s.worker.Enqueue(log.HabitID, log.UserID)

	return log, nil
}

func (s *LogService) Update(ctx context.Context, input UpdateLogInput) (*domain.HabitLog, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrLogConflict
	}

	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.CompletedCount = input.CompletedCount
	existing.Notes = input.Notes

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	// The repository owns the version bump as part of its optimistic lock.
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.worker.Enqueue(existing.HabitID, existing.UserID)

	return existing, nil
}

func (s *LogService) GetByID(ctx context.Context, id string, userID string) (*domain.HabitLog, error) {
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if log.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return log, nil
}

func (s *LogService) ListByHabitID(ctx context.Context, habitID string, userID string) ([]*domain.HabitLog, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	return s.repo.ListByHabitID(ctx, habitID)
}

func (s *LogService) Delete(ctx context.Context, id string, userID string) error {
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if log.UserID != userID {
		return domain.ErrUnauthorized
	}

	habitID := log.HabitID

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.worker.Enqueue(habitID, userID)

	return nil
}

func (s *LogService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.HabitLog, error) {
	return s.repo.GetChanges(ctx, userID, since)
}
