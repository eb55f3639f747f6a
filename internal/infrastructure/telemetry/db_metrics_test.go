package telemetry

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRegisterDBPoolMetrics(t *testing.T) {
	provider, reader := newTestMeterProvider()

	reg, err := RegisterDBPoolMetrics(provider.Meter("db"), func() sql.DBStats {
		return sql.DBStats{MaxOpenConnections: 25, InUse: 3, Idle: 2, WaitCount: 7}
	})
	require.NoError(t, err)
	defer reg.Unregister()

	rm := collect(t, reader)

	gauge := findMetric(t, rm, "storefront_db_pool_connections").Data.(metricdata.Gauge[int64])
	byState := map[string]int64{}
	for _, dp := range gauge.DataPoints {
		state, _ := dp.Attributes.Value(AttrDBPoolState)
		byState[state.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"in_use": 3, "idle": 2, "max": 25}, byState)
	assert.Equal(t, int64(7), intSum(t, findMetric(t, rm, "storefront_db_pool_wait_total")))
}
