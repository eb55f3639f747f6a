package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMongoCommandMonitor(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	monitor := NewMongoCommandMonitor(zap.New(core), 100*time.Millisecond)
	ctx := context.Background()

	monitor.Succeeded(ctx, &event.CommandSucceededEvent{CommandFinishedEvent: event.CommandFinishedEvent{
		CommandName: "find", DatabaseName: "storefront", Duration: time.Millisecond,
	}})
	monitor.Succeeded(ctx, &event.CommandSucceededEvent{CommandFinishedEvent: event.CommandFinishedEvent{
		CommandName: "aggregate", DatabaseName: "storefront", Duration: time.Second,
	}})
	monitor.Failed(ctx, &event.CommandFailedEvent{
		CommandFinishedEvent: event.CommandFinishedEvent{CommandName: "insert", DatabaseName: "storefront"},
		Failure:              "E11000 duplicate key error",
	})

	entries := recorded.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "Slow Mongo command", entries[1].Message)
	assert.Equal(t, "aggregate", entries[1].ContextMap()["command"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "E11000 duplicate key error", entries[2].ContextMap()["failure"])
}
