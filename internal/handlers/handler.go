package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"todotracker/internal/middleware"
	"todotracker/internal/monitoring"
	"todotracker/internal/store"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// TokenIssuer mints a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Handler carries the dependencies shared by every route.
type Handler struct {
	Users         *store.Users
	Todos         *store.Todos
	Tokens        TokenIssuer
	Metrics       *monitoring.Metrics
	Monitor       *monitoring.Service
	MonitoringKey string
	Log           *log.Logger
}

// currentUserID reads the id stored by the auth middleware.
func (h *Handler) currentUserID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// pathID parses a positive integer path parameter. Anything else cannot name
// a row and is answered like a missing one.
func pathID(c *gin.Context, name, notFoundMessage string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
		return 0, false
	}
	return id, true
}

// respondStoreError maps repository outcomes onto status codes. Unexpected
// errors are logged and answered with a generic 500.
func (h *Handler) respondStoreError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
	case errors.Is(err, store.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
	case errors.Is(err, store.ErrTitleTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is too long"})
	case errors.Is(err, store.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment message cannot be empty"})
	case errors.Is(err, store.ErrMessageTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment message is too long"})
	default:
		h.Log.Error("request failed",
			"request_id", middleware.RequestIDFromContext(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"err", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
}
