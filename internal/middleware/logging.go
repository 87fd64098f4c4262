package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"krankmeldung/internal/telemetry"
)

// Logging writes one line per request and feeds the request metrics. m may be
// nil.
func Logging(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if m != nil {
			m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			m.Duration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		}
		log.Printf("request method=%s path=%s status=%d duration_ms=%d ip=%s",
			c.Request.Method, c.Request.URL.Path, status, elapsed.Milliseconds(), c.ClientIP())
	}
}
