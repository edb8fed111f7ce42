package middleware

import (
	"github.com/bizdesk/backend/internal/infrastructure/metrics"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics records request count, latency and in-flight requests by
// route pattern. The scrape endpoint itself is not counted.
func HTTPMetrics(m *metrics.Metrics, metricsPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == metricsPath {
			c.Next()
			return
		}
		done := m.RequestStarted()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
