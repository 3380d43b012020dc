package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *Handler) checkMonitoringToken(c *gin.Context) bool {
	expected := strings.TrimSpace(h.MonitoringKey)
	if expected == "" || h.Monitor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Monitoring API is disabled"})
		return false
	}

	provided := strings.TrimSpace(c.GetHeader("X-Monitoring-Key"))
	if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid monitoring key"})
		return false
	}
	return true
}

// MonitorStatus returns one snapshot in structured and text form.
func (h *Handler) MonitorStatus(c *gin.Context) {
	if !h.checkMonitoringToken(c) {
		return
	}
	snap := h.Monitor.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"snapshot": snap,
		"text":     snap.Text(),
	})
}
