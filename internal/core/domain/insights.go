package domain

import "time"

// Result DTOs for the analytics engine. Computed fresh per request, never
// persisted. Timestamp fields are the only non-deterministic values.

type CorrelationType string

const (
	CorrelationPositive CorrelationType = "positive"
	CorrelationNegative CorrelationType = "negative"
)

type CorrelationStrength string

const (
	StrengthStrong   CorrelationStrength = "strong"
	StrengthModerate CorrelationStrength = "moderate"
	StrengthWeak     CorrelationStrength = "weak"
)

type CorrelationReport struct {
	HabitAID    string              `json:"habit_a_id"`
	HabitAName  string              `json:"habit_a_name"`
	HabitBID    string              `json:"habit_b_id"`
	HabitBName  string              `json:"habit_b_name"`
	Coefficient float64             `json:"coefficient"`
	Type        CorrelationType     `json:"type"`
	Strength    CorrelationStrength `json:"strength"`

	// Confidence is a design heuristic scaled by overlap size and effect
	// strength. It is not a statistical p-value.
	Confidence float64 `json:"confidence"`
	DataPoints int     `json:"data_points"`
	Explanation string `json:"explanation"`
	Insight     string `json:"insight"`
}

type ConfidenceBand string

const (
	ConfidenceHigh   ConfidenceBand = "high"
	ConfidenceMedium ConfidenceBand = "medium"
	ConfidenceLow    ConfidenceBand = "low"
)

type PredictionType string

const PredictionSuccessRate PredictionType = "success_rate"

type HabitPrediction struct {
	HabitID   string         `json:"habit_id"`
	HabitName string         `json:"habit_name"`
	Type      PredictionType `json:"type"`

	PredictedValue  float64        `json:"predicted_value"`
	ConfidenceScore float64        `json:"confidence_score"`
	Confidence      ConfidenceBand `json:"confidence"`
	TimeframeDays   int            `json:"timeframe_days"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`

	Explanation     string   `json:"explanation"`
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"risk_factors"`

	// HistoricalAccuracy is a coarse data-volume lookup, not a back-tested
	// accuracy figure.
	HistoricalAccuracy float64 `json:"historical_accuracy"`
}

type PredictionInsights struct {
	Predictions     []*HabitPrediction `json:"predictions"`
	Summary         string             `json:"summary"`
	KeyInsights     []string           `json:"key_insights"`
	Recommendations []string           `json:"recommendations"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

type DayOfWeekStat struct {
	Weekday   string  `json:"weekday"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

type HabitScore struct {
	HabitID          string          `json:"habit_id"`
	HabitName        string          `json:"habit_name"`
	CurrentStreak    int             `json:"current_streak"`
	LongestStreak    int             `json:"longest_streak"`
	ConsistencyScore float64         `json:"consistency_score"`
	Trend            TrendDirection  `json:"trend"`
	DayOfWeekStats   []DayOfWeekStat `json:"day_of_week_stats"`
	BestDay          string          `json:"best_day"`
	WorstDay         string          `json:"worst_day"`
}

type PerformanceCategory string

const (
	CategoryExcellent        PerformanceCategory = "excellent"
	CategoryGood             PerformanceCategory = "good"
	CategoryAverage          PerformanceCategory = "average"
	CategoryNeedsImprovement PerformanceCategory = "needs-improvement"
)

type PerformanceMetrics struct {
	ConsistencyScore   float64  `json:"consistency_score"`
	ConsistencyFactors []string `json:"consistency_factors"`
	MomentumScore      float64  `json:"momentum_score"`
	MomentumFactors    []string `json:"momentum_factors"`
	ResilienceScore    float64  `json:"resilience_score"`
	ResilienceFactors  []string `json:"resilience_factors"`

	OverallScore float64             `json:"overall_score"`
	Category     PerformanceCategory `json:"category"`

	// Percentile is clamp(5,95,round(overall)) — an approximation, not a
	// true population percentile.
	Percentile int `json:"percentile"`
}

type WeeklyStats struct {
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	TotalHabits int         `json:"total_habits"`
	OverallRate float64     `json:"overall_completion_rate"`
	HabitStats  []HabitStat `json:"habits"`
}

type HabitStat struct {
	HabitID        string  `json:"habit_id"`
	HabitName      string  `json:"habit_name"`
	Color          string  `json:"color"`
	Icon           string  `json:"icon"`
	TargetCount    int     `json:"target_count"`
	TotalCompleted int     `json:"total_completed"`
	CompletionRate float64 `json:"completion_rate"`
	DaysCompleted  int     `json:"days_completed"`
	DailyProgress  []int   `json:"daily_progress"`
}

type GamificationProfile struct {
	UserID      string         `json:"user_id"`
	Level       int            `json:"level"`
	TotalXP     int            `json:"total_xp"`
	NextLevelXP int            `json:"next_level_xp"`
	PerfectDays int            `json:"perfect_days"`
	Habits      []HabitStreaks `json:"habits"`
}

type HabitStreaks struct {
	HabitID       string `json:"habit_id"`
	HabitName     string `json:"habit_name"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}
