package domain

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidWeekdays    = errors.New("invalid weekdays (must be 0-6)")
	ErrInvalidTarget      = errors.New("target count cannot be negative")
	ErrInvalidInterval    = errors.New("interval cannot be negative")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
	ErrInvalidReminder    = errors.New("invalid reminder format (must be HH:MM 24h)")
	ErrHabitConflict      = errors.New("habit version conflict")
	ErrHabitNotFound      = errors.New("habit not found")
	ErrUnauthorized       = errors.New("unauthorized access to resource")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	HabitFreqDaily        = "daily"
	HabitFreqSpecificDays = "specific_days"
	HabitFreqInterval     = "interval"
	DefaultIcon           = "default_icon"
	DefaultCategory       = "general"
	MaxNameLen            = 100
	MaxDescLen            = 500
)

type Habit struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category"`
	Color         string  `json:"color"`
	Icon          string  `json:"icon"`
	SortOrder     int     `json:"sort_order"`
	ReminderTime  *string `json:"reminder_time,omitempty"`
	FrequencyType string  `json:"frequency_type"`
	Weekdays      []int   `json:"weekdays,omitempty"`
	Interval      int     `json:"interval,omitempty"`
	TargetCount   int     `json:"target_count"`

	// Gamification counters maintained by the stats worker. They must stay
	// numerically consistent with what the analytics scorer derives from
	// the same log stream.
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	uniqueMap := make(map[int]bool)
	var uniqueDays []int
	for _, d := range days {
		if !uniqueMap[d] {
			uniqueMap[d] = true
			uniqueDays = append(uniqueDays, d)
		}
	}

	sort.Ints(uniqueDays)
	return uniqueDays
}

func validateAndNormalize(name, desc, color, reminder string, target, interval int, weekdays []int) (string, int, int, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return "", 0, 0, ErrHabitNameEmpty
	}
	if len(trimmedName) > MaxNameLen {
		return "", 0, 0, ErrHabitNameTooLong
	}

	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return "", 0, 0, ErrHabitDescTooLong
	}

	if target < 0 {
		return "", 0, 0, ErrInvalidTarget
	}
	finalTarget := target
	if finalTarget == 0 {
		finalTarget = 1
	}

	if reminder != "" && !reminderRegex.MatchString(reminder) {
		return "", 0, 0, ErrInvalidReminder
	}

	if interval < 0 {
		return "", 0, 0, ErrInvalidInterval
	}

	for _, day := range weekdays {
		if day < 0 || day > 6 {
			return "", 0, 0, ErrInvalidWeekdays
		}
	}

	if color != "" && !colorRegex.MatchString(color) {
		return "", 0, 0, ErrInvalidColor
	}

	freqType := HabitFreqDaily
	if len(weekdays) > 0 {
		freqType = HabitFreqSpecificDays
	} else if interval > 1 {
		freqType = HabitFreqInterval
	}

	safeInterval := interval
	if safeInterval < 1 {
		safeInterval = 1
	}

	return freqType, safeInterval, finalTarget, nil
}

func NewHabit(userID, name, description, category, color, icon, reminder string, target, interval int, weekdays []int) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanDesc := strings.TrimSpace(description)

	freqType, safeInterval, safeTarget, err := validateAndNormalize(name, cleanDesc, color, reminder, target, interval, weekdays)
	if err != nil {
		return nil, err
	}

	if icon == "" {
		icon = DefaultIcon
	}
	if category == "" {
		category = DefaultCategory
	}

	now := time.Now().UTC()

	var remPtr *string
	if reminder != "" {
		remPtr = &reminder
	}

	return &Habit{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          strings.TrimSpace(name),
		Description:   cleanDesc,
		Category:      category,
		Color:         color,
		Icon:          icon,
		ReminderTime:  remPtr,
		TargetCount:   safeTarget,
		Weekdays:      normalizeWeekdays(weekdays),
		Interval:      safeInterval,
		FrequencyType: freqType,
		SortOrder:     0,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		StartDate:     now,
	}, nil
}

func (h *Habit) Update(name, description, category, color, icon, reminder string, target, interval int, weekdays []int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	cleanDesc := strings.TrimSpace(description)

	freqType, safeInterval, safeTarget, err := validateAndNormalize(name, cleanDesc, color, reminder, target, interval, weekdays)
	if err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}
	if category == "" {
		category = DefaultCategory
	}

	var remPtr *string
	if reminder != "" {
		remPtr = &reminder
	}

	h.Name = strings.TrimSpace(name)
	h.Description = cleanDesc
	h.Category = category
	h.Color = color
	h.Icon = icon
	h.ReminderTime = remPtr
	h.TargetCount = safeTarget
	h.Weekdays = normalizeWeekdays(weekdays)
	h.Interval = safeInterval
	h.FrequencyType = freqType

	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) UpdateStreaks(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) IsActive() bool {
	return h.ArchivedAt == nil && h.DeletedAt == nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}
