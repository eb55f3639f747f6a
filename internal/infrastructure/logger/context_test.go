package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	l := zap.NewExample()
	ctx := WithContext(context.Background(), l)

	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithRequestIDAndUserID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, l := WithUserID(ctx, FromContext(ctx), "user-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-9", GetUserID(ctx))

	l.Info("msg")
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-9", fields["user_id"])
}

func TestGetters_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetTraceID(ctx))
}

func TestL_AddsTraceFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx = trace.ContextWithSpanContext(ctx, spanCtx)

	L(ctx).Info("traced")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
}

func TestL_WithoutSpan(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	L(ctx).Info("plain")

	_, hasTrace := recorded.All()[0].ContextMap()["trace_id"]
	assert.False(t, hasTrace)
}
