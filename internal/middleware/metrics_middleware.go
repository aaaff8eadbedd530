package middleware

import (
	"time"

	"go-school/internal/metrics"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics records every request by route template, so ids in the path do not explode
// the label set.
func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start).Seconds())
	}
}
