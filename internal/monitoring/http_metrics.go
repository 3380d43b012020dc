package monitoring

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var activeHTTPRequests atomic.Int64
var totalHTTPRequests atomic.Uint64

// RequestMetricsMiddleware tracks in-flight/total counters and, when metrics
// is non-nil, per-route Prometheus series.
func RequestMetricsMiddleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()
		activeHTTPRequests.Add(1)
		totalHTTPRequests.Add(1)
		defer activeHTTPRequests.Add(-1)

		c.Next()

		// Unmatched routes share one label.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(startedAt))
	}
}

func getHTTPStats() (active int64, total uint64) {
	return activeHTTPRequests.Load(), totalHTTPRequests.Load()
}
