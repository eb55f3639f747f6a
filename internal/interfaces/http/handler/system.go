package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
}

// SystemHandler serves the health check
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checks    map[string]Pinger
	timeout   time.Duration
}

// NewSystemHandler creates a SystemHandler probing checks by name
func NewSystemHandler(checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		checks:    checks,
		timeout:   2 * time.Second,
	}
}

// Health godoc
// @Summary      Health check
// @Description  Pings the database and cache; 503 when any is down
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Checks:    make(map[string]string, len(h.checks)),
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "unhealthy"
			resp.Status = "unhealthy"
			continue
		}
		resp.Checks[name] = "healthy"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
