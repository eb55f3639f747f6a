package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), Config{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestInstruments(t *testing.T) {
	provider, reader := newTestMeterProvider()
	meter := provider.Meter("test")
	ctx := context.Background()

	counter, err := NewCounter(meter, "requests_total", "Requests", "{requests}")
	require.NoError(t, err)
	counter.Inc(ctx, AttrHTTPMethod.String("GET"))
	counter.Add(ctx, 2, AttrHTTPMethod.String("POST"))

	revenue, err := NewFloatCounter(meter, "revenue_total", "Revenue", "{USD}")
	require.NoError(t, err)
	revenue.Add(ctx, 12.5)
	revenue.Add(ctx, 7.5)

	latency, err := NewHistogram(meter, "latency", "Latency", "s", HTTPDurationBuckets)
	require.NoError(t, err)
	latency.RecordDuration(ctx, 150*time.Millisecond)

	rm := collect(t, reader)
	assert.Equal(t, int64(3), intSum(t, findMetric(t, rm, "requests_total")))

	floatSum := findMetric(t, rm, "revenue_total").Data.(metricdata.Sum[float64])
	require.Len(t, floatSum.DataPoints, 1)
	assert.InDelta(t, 20.0, floatSum.DataPoints[0].Value, 0.0001)

	hist := findMetric(t, rm, "latency").Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, HTTPDurationBuckets, hist.DataPoints[0].Bounds)
}
