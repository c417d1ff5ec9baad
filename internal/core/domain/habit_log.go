package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrLogNotFound    = errors.New("habit log not found")
	ErrLogConflict    = errors.New("habit log version conflict")
	ErrInvalidLogData = errors.New("invalid habit log data")
)

// Completion status of a single daily log. "No log for a date" is a distinct
// state from StatusMissed and must never be conflated by consumers.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusMissed    = "missed"
	StatusSkipped   = "skipped"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusMissed, StatusSkipped:
		return true
	}
	return false
}

// HabitLog is one user's daily record for one habit. Identity is the
// (user, habit, calendar date) triple; the time component of Date carries no
// meaning and is zeroed on construction.
type HabitLog struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	Date           time.Time `json:"date" db:"log_date"`
	Status         string    `json:"status" db:"status"`
	CompletedCount int       `json:"completed_count" db:"completed_count"`
	TargetCount    *int      `json:"target_count,omitempty" db:"target_count"`
	Notes          string    `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewHabitLog(habitID, userID string, date time.Time, status string, completedCount int) *HabitLog {
	now := time.Now().UTC()

	return &HabitLog{
		HabitID:        habitID,
		UserID:         userID,
		Date:           DayOf(date),
		Status:         status,
		CompletedCount: completedCount,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *HabitLog) Validate() error {
	if strings.TrimSpace(l.HabitID) == "" {
		return fmt.Errorf("%w: habit_id is required", ErrInvalidLogData)
	}
	if strings.TrimSpace(l.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidLogData)
	}
	if l.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidLogData)
	}
	if !IsValidStatus(l.Status) {
		return fmt.Errorf("%w: status must be one of completed, partial, missed, skipped", ErrInvalidLogData)
	}
	if l.CompletedCount < 0 {
		return fmt.Errorf("%w: completed_count cannot be negative", ErrInvalidLogData)
	}
	if l.TargetCount != nil && *l.TargetCount <= 0 {
		return fmt.Errorf("%w: target_count must be positive when set", ErrInvalidLogData)
	}
	return nil
}

func (l *HabitLog) IsCompleted() bool {
	return l.Status == StatusCompleted
}

// DayOf zeroes the time component so that two logs differing only in
// time-of-day collide on the same calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
