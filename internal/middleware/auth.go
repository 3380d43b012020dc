package middleware

import (
	"errors"
	"net/http"
	"strings"

	"todotracker/internal/monitoring"
	"todotracker/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const userIDContextKey = "user_id"

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// AuthMiddleware is a middleware that checks for a valid JWT token. Every
// failure produces the same 401; the reason only reaches the debug log.
func AuthMiddleware(verifier TokenVerifier, logger *log.Logger, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var userID int64
			userID, err = verifier.Verify(tokenString)
			if err == nil {
				c.Set(userIDContextKey, userID)
				c.Next()
				return
			}
		}

		logger.Debug("rejected bearer token",
			"request_id", RequestIDFromContext(c),
			"reason", tokenFailureReason(err),
			"path", c.Request.URL.Path,
		)
		metrics.RecordAuthEvent(monitoring.AuthTokenRejected)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}

// UserIDFromContext returns the authenticated user id set by AuthMiddleware.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	value, ok := c.Get(userIDContextKey)
	if !ok {
		return 0, false
	}
	userID, ok := value.(int64)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// SetUserID stores an authenticated user id; used by tests that bypass token parsing.
func SetUserID(c *gin.Context, userID int64) {
	c.Set(userIDContextKey, userID)
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", utils.ErrTokenMissing
	}

	// Check if the authorization header has the correct format
	tokenParts := strings.Fields(header)
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", utils.ErrTokenMalformed
	}
	return tokenParts[1], nil
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, utils.ErrTokenMissing):
		return "missing"
	case errors.Is(err, utils.ErrTokenExpired):
		return "expired"
	case errors.Is(err, utils.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, utils.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
