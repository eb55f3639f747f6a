package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps otelgin. Span names follow "METHOD /route/:pattern"; health
// and metrics probes are not traced.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	)
}

// SpanEnricher must run after Tracing. It annotates the request span with
// request_id and user_id once the handler chain has finished, and marks 5xx
// responses as errors.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpan(c, span)
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if userID := c.GetString(JWTUserIDKey); userID != "" {
		span.SetAttributes(attribute.String("user_id", userID))
	}
}
