package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// Profiling tags each request's CPU samples with its handler, route and
// method so Pyroscope can slice profiles per endpoint
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" || route == "/metrics" {
			c.Next()
			return
		}

		labels := telemetry.HTTPRequestLabels(handlerFromRoute(route), route, c.Request.Method)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// handlerFromRoute maps "/api/v1/orders/:id/pay" to "orders"
func handlerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
