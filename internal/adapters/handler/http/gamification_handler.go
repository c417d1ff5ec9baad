package http

import (
	"errors"
	"net/http"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/services"
	"github.com/gin-gonic/gin"
)

type GamificationHandler struct {
	svc *services.GamificationService
}

func NewGamificationHandler(svc *services.GamificationService) *GamificationHandler {
	return &GamificationHandler{svc: svc}
}

func (h *GamificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/gamification/profile", h.GetProfile)
}

func (h *GamificationHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
