package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.ProfilingConfig{}, "storefront", zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(config.ProfilingConfig{Enabled: true}, "storefront", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")

	_, err = NewProfiler(config.ProfilingConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, "", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application name")
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Route":      "/api/v1/orders/:id",
		"handler":    "OrderHandler",
		"user_id":    "2b0f",
		"empty":      "",
		"Bad-Key!":   "x",
		"long_value": strings.Repeat("a", 200),
	})

	assert.Equal(t, []string{
		"bad_key", "x",
		"handler", "OrderHandler",
		"long_value", strings.Repeat("a", MaxLabelValueLength),
		"route", "/api/v1/orders/:id",
	}, pairs)
}

func TestWithProfilingLabels_RunsFn(t *testing.T) {
	called := 0
	WithProfilingLabels(context.Background(), HTTPRequestLabels("OrderHandler", "/api/v1/orders/:id", "GET"), func(context.Context) {
		called++
	})
	WithProfilingLabels(context.Background(), nil, func(context.Context) {
		called++
	})
	assert.Equal(t, 2, called)
}
