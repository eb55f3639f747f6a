package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics(t *testing.T) {
	m := NewHTTPMetrics()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/metrics", m.Handler())
	router.GET("/api/v1/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/products/1", "/api/v1/products/2", "/nope"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, MetricRequestsTotal))
	assert.True(t, strings.Contains(body, MetricRequestDurationSeconds))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
