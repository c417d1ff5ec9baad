package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/services"
	"github.com/gin-gonic/gin"
)

type InsightsHandler struct {
	svc *services.InsightService
}

func NewInsightsHandler(svc *services.InsightService) *InsightsHandler {
	return &InsightsHandler{svc: svc}
}

func (h *InsightsHandler) RegisterRoutes(router *gin.RouterGroup) {
	insights := router.Group("/insights")
	{
		insights.GET("/correlations", h.GetCorrelations)
		insights.GET("/predictions", h.GetPredictions)
		insights.GET("/performance", h.GetPerformance)
	}

	router.GET("/habits/:id/score", h.GetHabitScore)
	router.GET("/stats/weekly", h.GetWeeklyStats)
}

func parseFloatQuery(c *gin.Context, name string, fallback float64) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ", expected a number"})
		return 0, false
	}
	return v, true
}

func (h *InsightsHandler) GetCorrelations(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	filter := analytics.DefaultCorrelationFilter()

	var ok bool
	if filter.MinCorrelation, ok = parseFloatQuery(c, "min_correlation", filter.MinCorrelation); !ok {
		return
	}
	if filter.MaxCorrelation, ok = parseFloatQuery(c, "max_correlation", filter.MaxCorrelation); !ok {
		return
	}
	if filter.MinConfidence, ok = parseFloatQuery(c, "min_confidence", filter.MinConfidence); !ok {
		return
	}

	if raw := c.Query("min_data_points"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_data_points"})
			return
		}
		filter.MinDataPoints = v
	}

	switch c.Query("type") {
	case "":
	case "positive":
		filter.IncludeNegative = false
	case "negative":
		filter.IncludePositive = false
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type, expected positive or negative"})
		return
	}

	reports, err := h.svc.Correlations(c.Request.Context(), userID, filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLogData) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "at least two habits with logged data are needed for correlations",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute correlations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"correlations": reports,
		"generated_at": time.Now().UTC(),
	})
}

func (h *InsightsHandler) GetPredictions(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	timeframeDays := 7
	if raw := c.Query("timeframe_days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timeframe_days, expected 1-90"})
			return
		}
		timeframeDays = v
	}

	filter := analytics.PredictionFilter{
		HabitID: c.Query("habit_id"),
	}

	var ok bool
	if filter.MinConfidence, ok = parseFloatQuery(c, "min_confidence", 0); !ok {
		return
	}

	insights, err := h.svc.Predictions(c.Request.Context(), userID, timeframeDays, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute predictions"})
		return
	}

	c.JSON(http.StatusOK, insights)
}

func (h *InsightsHandler) GetPerformance(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	metrics, err := h.svc.Performance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute performance metrics"})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *InsightsHandler) GetHabitScore(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	score, err := h.svc.HabitScore(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute habit score"})
		return
	}

	c.JSON(http.StatusOK, score)
}

func (h *InsightsHandler) GetWeeklyStats(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	endDateStr := c.Query("end_date")
	startDateStr := c.Query("start_date")

	var endDate, startDate time.Time
	var err error

	if endDateStr == "" {
		endDate = time.Now().UTC()
	} else {
		endDate, err = time.Parse("2006-01-02", endDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return
		}
	}

	if startDateStr == "" {
		startDate = endDate.AddDate(0, 0, -6)
	} else {
		startDate, err = time.Parse("2006-01-02", startDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return
		}
	}

	if startDate.After(endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return
	}

	const maxDaysRange = 366
	daysDiff := endDate.Sub(startDate).Hours() / 24
	if daysDiff > maxDaysRange {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date range too large, max 1 year allowed"})
		return
	}

	input := services.WeeklyStatsInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	}

	stats, err := h.svc.WeeklyStats(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
