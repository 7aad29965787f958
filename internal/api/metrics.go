package api

import (
	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/metrics"
)

// MetricsHandler serves the Prometheus metrics endpoint.
func MetricsHandler(c *gin.Context) {
	metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
