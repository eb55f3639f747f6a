package telemetry

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/metric"
)

// RegisterDBPoolMetrics exports SQL connection pool statistics as
// observable gauges read from stats on every collection
func RegisterDBPoolMetrics(meter metric.Meter, stats func() sql.DBStats) (metric.Registration, error) {
	connections, err := meter.Int64ObservableGauge("storefront_db_pool_connections",
		metric.WithDescription("SQL connections by state"),
		metric.WithUnit("{connections}"),
	)
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("storefront_db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{waits}"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(connections, int64(s.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(s.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(connections, int64(s.MaxOpenConnections), metric.WithAttributes(AttrDBPoolState.String("max")))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, connections, waits)
}
