package middleware

import (
	"strings"
	"time"

	"github.com/dimitrije/internal-ops/internal/metrics"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// Metrics records the duration of every request. Id segments are collapsed
// so each route is one series.
func Metrics() drift.HandlerFunc {
	return func(c *drift.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequestDuration(c.Request.Method, routeOf(c.Request.URL.Path), time.Since(start))
	}
}

func routeOf(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := uuid.Parse(s); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
