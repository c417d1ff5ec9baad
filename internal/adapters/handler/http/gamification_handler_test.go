package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/services"
)

func TestGamificationHandler_GetProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	habitRepo := repository.NewInMemoryHabitRepository()
	logRepo := repository.NewInMemoryLogRepository()
	userRepo := repository.NewInMemoryUserRepository()
	engine := analytics.NewEngine(analytics.DefaultConfig())
	svc := services.NewGamificationService(habitRepo, logRepo, userRepo, engine)
	handler := adapterHTTP.NewGamificationHandler(svc)

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(testAuth())
	handler.RegisterRoutes(group)

	user, err := domain.NewUser("user-1", "profile@kanso.app")
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(context.Background(), user))

	habit := seedRouterHabit(t, habitRepo, "user-1", "Read")
	seedRouterLogs(t, logRepo, habit, []bool{true}, 3)

	require.NoError(t, svc.RecalculateHabit(context.Background(), habit.ID))
	require.NoError(t, svc.RecalculateUser(context.Background(), "user-1"))

	t.Run("Success: 200 with XP and streaks", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/v1/gamification/profile", "user-1", "")

		assert.Equal(t, http.StatusOK, w.Code)

		var profile domain.GamificationProfile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
		// 3 completions, 3 perfect days: 3*10 + 3*50.
		assert.Equal(t, 180, profile.TotalXP)
		assert.Equal(t, 1, profile.Level)
		assert.Equal(t, domain.XPPerLevel, profile.NextLevelXP)
		require.Len(t, profile.Habits, 1)
		assert.Equal(t, 3, profile.Habits[0].CurrentStreak)
	})

	t.Run("Fail: 404 for unknown user", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/v1/gamification/profile", "ghost", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
