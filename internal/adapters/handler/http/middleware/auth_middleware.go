package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/services"
)

// ContextUserIDKey is where the authenticated user ID lands in the gin context.
const ContextUserIDKey = "userID"

const bearerPrefix = "Bearer "

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// AuthMiddleware validates the bearer token and stores the resulting user ID
// under ContextUserIDKey. Handlers read it back via GetUserID.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "authorization header required")
			return
		}

		token, found := strings.CutPrefix(header, bearerPrefix)
		if !found || token == "" {
			abortUnauthorized(c, "expected a bearer token")
			return
		}

		userID, err := tokenService.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}
