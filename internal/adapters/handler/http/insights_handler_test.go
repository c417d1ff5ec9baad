package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/services"
)

var handlerEpoch = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func setupInsightsRouter() (*gin.Engine, *repository.InMemoryHabitRepository, *repository.InMemoryLogRepository) {
	gin.SetMode(gin.TestMode)

	habitRepo := repository.NewInMemoryHabitRepository()
	logRepo := repository.NewInMemoryLogRepository()
	engine := analytics.NewEngine(analytics.DefaultConfig())
	svc := services.NewInsightService(habitRepo, logRepo, engine)
	handler := adapterHTTP.NewInsightsHandler(svc)

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(testAuth())
	handler.RegisterRoutes(group)
	return r, habitRepo, logRepo
}

func seedRouterLogs(t *testing.T, logRepo *repository.InMemoryLogRepository, habit *domain.Habit, pattern []bool, days int) {
	t.Helper()
	for i := 0; i < days; i++ {
		status := domain.StatusMissed
		count := 0
		if pattern[i%len(pattern)] {
			status = domain.StatusCompleted
			count = 1
		}
		log := domain.NewHabitLog(habit.ID, habit.UserID, handlerEpoch.AddDate(0, 0, i), status, count)
		require.NoError(t, logRepo.Create(context.Background(), log))
	}
}

func TestInsightsHandler_Correlations(t *testing.T) {
	t.Run("Success: 200 with a strong pair", func(t *testing.T) {
		router, habitRepo, logRepo := setupInsightsRouter()

		a := seedRouterHabit(t, habitRepo, "user-1", "Sleep Early")
		b := seedRouterHabit(t, habitRepo, "user-1", "Morning Run")
		seedRouterLogs(t, logRepo, a, []bool{true, false}, 16)
		seedRouterLogs(t, logRepo, b, []bool{true, false}, 16)

		w := doRequest(router, "GET", "/api/v1/insights/correlations", "user-1", "")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Correlations []*domain.CorrelationReport `json:"correlations"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Correlations, 1)
		assert.Equal(t, domain.StrengthStrong, resp.Correlations[0].Strength)
	})

	t.Run("Fail: 400 when too few habits carry data", func(t *testing.T) {
		router, habitRepo, logRepo := setupInsightsRouter()

		a := seedRouterHabit(t, habitRepo, "user-1", "Sleep Early")
		seedRouterLogs(t, logRepo, a, []bool{true}, 16)

		w := doRequest(router, "GET", "/api/v1/insights/correlations", "user-1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "at least two habits")
	})

	t.Run("Fail: 400 on malformed filter", func(t *testing.T) {
		router, _, _ := setupInsightsRouter()

		w := doRequest(router, "GET", "/api/v1/insights/correlations?min_correlation=abc", "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 on unknown type", func(t *testing.T) {
		router, _, _ := setupInsightsRouter()

		w := doRequest(router, "GET", "/api/v1/insights/correlations?type=sideways", "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInsightsHandler_Predictions(t *testing.T) {
	t.Run("Success: 200 with prediction list", func(t *testing.T) {
		router, habitRepo, logRepo := setupInsightsRouter()

		a := seedRouterHabit(t, habitRepo, "user-1", "Deep Work")
		seedRouterLogs(t, logRepo, a, []bool{true}, 20)

		w := doRequest(router, "GET", "/api/v1/insights/predictions?timeframe_days=14", "user-1", "")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp domain.PredictionInsights
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Predictions, 1)
		assert.Equal(t, 14, resp.Predictions[0].TimeframeDays)
	})

	t.Run("Fail: 400 on out-of-range timeframe", func(t *testing.T) {
		router, _, _ := setupInsightsRouter()

		w := doRequest(router, "GET", "/api/v1/insights/predictions?timeframe_days=365", "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInsightsHandler_Performance(t *testing.T) {
	router, habitRepo, logRepo := setupInsightsRouter()

	a := seedRouterHabit(t, habitRepo, "user-1", "Deep Work")
	seedRouterLogs(t, logRepo, a, []bool{true}, 14)

	w := doRequest(router, "GET", "/api/v1/insights/performance", "user-1", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var metrics domain.PerformanceMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	assert.InDelta(t, 100.0, metrics.ConsistencyScore, 1e-9)
}

func TestInsightsHandler_HabitScore(t *testing.T) {
	router, habitRepo, logRepo := setupInsightsRouter()

	a := seedRouterHabit(t, habitRepo, "user-1", "Deep Work")
	seedRouterLogs(t, logRepo, a, []bool{true}, 10)

	t.Run("Success: 200 with streaks", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/habits/"+a.ID+"/score", "user-1", "")

		assert.Equal(t, http.StatusOK, w.Code)

		var score domain.HabitScore
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
		assert.Equal(t, 10, score.CurrentStreak)
	})

	t.Run("Fail: 404 for other user", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/habits/"+a.ID+"/score", "user-2", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInsightsHandler_WeeklyStats(t *testing.T) {
	router, habitRepo, logRepo := setupInsightsRouter()

	a := seedRouterHabit(t, habitRepo, "user-1", "Hydrate")
	seedRouterLogs(t, logRepo, a, []bool{true, true, false, true, false, true, false}, 7)

	t.Run("Success: 200 with explicit window", func(t *testing.T) {
		path := "/api/v1/stats/weekly?start_date=2024-03-01&end_date=2024-03-07"
		w := doRequest(router, "GET", path, "user-1", "")

		assert.Equal(t, http.StatusOK, w.Code)

		var stats domain.WeeklyStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		require.Len(t, stats.HabitStats, 1)
		assert.Equal(t, 4, stats.HabitStats[0].DaysCompleted)
	})

	t.Run("Fail: 400 on inverted range", func(t *testing.T) {
		path := "/api/v1/stats/weekly?start_date=2024-03-07&end_date=2024-03-01"
		w := doRequest(router, "GET", path, "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 on bad date format", func(t *testing.T) {
		path := "/api/v1/stats/weekly?start_date=01-03-2024"
		w := doRequest(router, "GET", path, "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
