package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-123")
		c.Next()
	})
	r.Use(Recovery(l), GinMiddleware(l))
	return r
}

func findEntry(t *testing.T, logs *observer.ObservedLogs, msg string) observer.LoggedEntry {
	t.Helper()
	entries := logs.FilterMessage(msg).All()
	require.NotEmpty(t, entries, "expected log entry %q", msg)
	return entries[0]
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"ok", http.StatusOK, zapcore.InfoLevel},
		{"client error", http.StatusForbidden, zapcore.WarnLevel},
		{"server error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			r := newTestRouter(zap.New(core))
			r.GET("/orders", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?page=2", nil))

			entry := findEntry(t, recorded, "HTTP Request")
			assert.Equal(t, tt.level, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, "req-123", fields["request_id"])
			assert.Equal(t, "/orders", fields["path"])
			assert.Equal(t, "page=2", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}

func TestGinMiddleware_PropagatesLoggerAndUser(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/profile", func(c *gin.Context) {
		c.Set(GinUserIDKey, "user-1")
		FromContext(c.Request.Context()).Info("inside handler")
		assert.Equal(t, "req-123", GetRequestID(c.Request.Context()))
		assert.NotNil(t, GetGinLogger(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

	inside := findEntry(t, recorded, "inside handler")
	assert.Equal(t, "req-123", inside.ContextMap()["request_id"])
	assert.Equal(t, "user-1", findEntry(t, recorded, "HTTP Request").ContextMap()["user_id"])
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
	assert.Contains(t, w.Body.String(), "req-123")
	findEntry(t, recorded, "Panic recovered")
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
