package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/territory_assign/backend/internal/metrics"
)

// Metrics records per-route counters and latency. Unmatched routes share one
// label so the series stay bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequest(path, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
