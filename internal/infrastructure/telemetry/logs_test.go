package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), Config{ServiceName: "storefront"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	core := lp.ZapCore(zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("component", "test"))

	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "test", entries[0].ContextMap()["component"])
	assert.False(t, core.Enabled(zapcore.InfoLevel))
}
