package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		remaining, _, ok := rl.Allow("10.0.0.1")
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}

	_, retryAfter, ok := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, 20*time.Second)

	_, _, ok = rl.Allow("10.0.0.2")
	assert.True(t, ok, "buckets are per key")
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(2, 100*time.Millisecond)
	defer rl.Close()

	rl.Allow("k")
	rl.Allow("k")
	_, _, ok := rl.Allow("k")
	require.False(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, _, ok = rl.Allow("k")
	assert.True(t, ok)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()

	router := gin.New()
	router.Use(RequestID(), RateLimit(rl))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, decodeError(t, rec).Code)
}

func TestRateLimiter_CloseIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Close()
	assert.NotPanics(t, rl.Close)
}
