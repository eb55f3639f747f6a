package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func health(t *testing.T, checks map[string]Pinger) (int, HealthResponse) {
	t.Helper()
	engine := gin.New()
	engine.GET("/health", NewSystemHandler(checks).Health)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body struct {
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Code == http.StatusOK, body.Success)
	return w.Code, body.Data
}

func TestSystemHandler_Health(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all healthy", func(t *testing.T) {
		code, resp := health(t, map[string]Pinger{"database": ok, "redis": ok})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, map[string]string{"database": "healthy", "redis": "healthy"}, resp.Checks)
		assert.NotEmpty(t, resp.GoVersion)
	})

	t.Run("one dependency down", func(t *testing.T) {
		code, resp := health(t, map[string]Pinger{"database": ok, "redis": down})
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "unhealthy", resp.Checks["redis"])
	})

	t.Run("no checks", func(t *testing.T) {
		code, resp := health(t, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Empty(t, resp.Checks)
	})
}

func TestSystemHandler_HealthHonoursTimeout(t *testing.T) {
	h := NewSystemHandler(map[string]Pinger{
		"slow": PingFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	})
	h.timeout = 10 * time.Millisecond

	engine := gin.New()
	engine.GET("/health", h.Health)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
