package analytics

// Config collects the tunable heuristics of the engine. The defaults encode
// product decisions (noise floors, bonus weights, minimum sample sizes), so
// they live here rather than as literals inside the algorithms.
type Config struct {
	// Correlation.
	MinSeriesLen      int     // entries required in each series before pairing
	MinOverlap        int     // overlapping dates required to correlate
	NoiseFloor        float64 // |r| below this is treated as no signal
	StrongThreshold   float64 // |r| >= strong
	ModerateThreshold float64 // |r| >= moderate
	ConfidenceCap     float64 // hard ceiling on correlation confidence

	// Confidence heuristics share one shape in both the correlation and
	// prediction paths: base + growth-term*GrowthWeight + effect-term*
	// EffectWeight, soft-capped. The growth term is overlap volume for
	// correlations and short-term consistency for predictions.
	ConfidenceBase         float64
	ConfidenceGrowthWeight float64
	ConfidenceEffectWeight float64
	ConfidenceSoftCap      float64

	// Trend & consistency.
	TrendDelta       float64 // half-over-half rate change needed to leave "stable"
	MinTrendEntries  int     // below this the trend is always stable
	StreakBonusStep  float64 // consistency bonus per entry of an in-progress run
	MaxScore         float64 // consistency ceiling

	// StrictCalendarStreaks requires day-adjacent dates for a streak to
	// continue. Off by default: the historical behavior counts consecutive
	// log entries regardless of calendar gaps.
	StrictCalendarStreaks bool

	// Prediction.
	MinPredictionEntries int     // entries required before predicting
	PredictionWindow     int     // trailing entries for the base rate
	ConsistencyWindow    int     // trailing entries for the consistency factor
	TrendAdjustment      float64 // shift applied for improving/declining trends
	HighConfidence       float64 // band thresholds on the confidence score
	MediumConfidence     float64
	WeekendRiskRatio     float64 // weekend rate below this share of overall flags a risk

	// Historical-accuracy lookup by data volume. A placeholder heuristic,
	// not back-tested accuracy.
	AccuracyLongLen int     // entries for the long-history bucket
	AccuracyMidLen  int     // entries for the mid-history bucket
	AccuracyLong    float64 // accuracy reported per bucket
	AccuracyMid     float64
	AccuracyShort   float64

	// Performance.
	MomentumWindow       int // entries per momentum comparison window
	MinResilienceEntries int // below this resilience defaults to neutral

	// Category cut-offs on the overall performance score.
	ExcellentThreshold float64
	GoodThreshold      float64
	AverageThreshold   float64
}

func DefaultConfig() Config {
	return Config{
		MinSeriesLen:      10,
		MinOverlap:        10,
		NoiseFloor:        0.1,
		StrongThreshold:   0.7,
		ModerateThreshold: 0.5,
		ConfidenceCap:     0.99,

		ConfidenceBase:         0.5,
		ConfidenceGrowthWeight: 0.3,
		ConfidenceEffectWeight: 0.2,
		ConfidenceSoftCap:      0.95,

		TrendDelta:      0.10,
		MinTrendEntries: 7,
		StreakBonusStep: 0.5,
		MaxScore:        100,

		MinPredictionEntries: 14,
		PredictionWindow:     30,
		ConsistencyWindow:    7,
		TrendAdjustment:      0.10,
		HighConfidence:       0.8,
		MediumConfidence:     0.6,
		WeekendRiskRatio:     0.7,

		AccuracyLongLen: 30,
		AccuracyMidLen:  14,
		AccuracyLong:    0.85,
		AccuracyMid:     0.75,
		AccuracyShort:   0.65,

		MomentumWindow:       3,
		MinResilienceEntries: 5,

		ExcellentThreshold: 85,
		GoodThreshold:      70,
		AverageThreshold:   50,
	}
}

// Engine evaluates habit log series. It is stateless apart from its config:
// every method is a pure function of its inputs, so a single Engine value is
// safe for concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
