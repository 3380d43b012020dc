package middleware

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDContextKey = "request_id"
	requestIDHeaderName = "X-Request-ID"
)

// RequestIDFromContext returns a request ID or an empty string when unavailable.
func RequestIDFromContext(c *gin.Context) string {
	value, ok := c.Get(requestIDContextKey)
	if !ok {
		return ""
	}
	requestID, ok := value.(string)
	if !ok {
		return ""
	}
	return requestID
}

// RequestIDMiddleware injects request IDs into context/headers and logs every request with the ID.
func RequestIDMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()
		requestID := normalizeRequestID(c.GetHeader(requestIDHeaderName))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDContextKey, requestID)
		c.Writer.Header().Set(requestIDHeaderName, requestID)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", float64(time.Since(startedAt).Microseconds()) / 1000.0,
			"client_ip", c.ClientIP(),
		}
		if c.Writer.Status() >= 500 {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

func normalizeRequestID(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return ""
	}
	if len(candidate) > 128 {
		candidate = candidate[:128]
	}
	return candidate
}
