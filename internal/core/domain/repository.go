package domain

import (
	"context"
	"time"
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes a habit.
	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] Returns only the deltas (changes) occurring after a specific date.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)

	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

// HabitLogReader is the read-only boundary the insight service depends on.
// The analytics engine itself never touches it: logs are loaded here and
// passed to the engine as plain slices.
type HabitLogReader interface {
	ListByHabitID(ctx context.Context, habitID string) ([]*HabitLog, error)
	ListByUserID(ctx context.Context, userID string) ([]*HabitLog, error)
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*HabitLog, error)
}

type HabitLogRepository interface {
	HabitLogReader

	Create(ctx context.Context, log *HabitLog) error
	GetByID(ctx context.Context, id string) (*HabitLog, error)
	Update(ctx context.Context, log *HabitLog) error
	Delete(ctx context.Context, id string, userID string) error

	// GetChanges [SYNC] Returns log deltas occurring after a specific date.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*HabitLog, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateGamification persists the worker-maintained XP/level/perfect-day state.
	UpdateGamification(ctx context.Context, id string, totalXP, level, perfectDays int) error
}
