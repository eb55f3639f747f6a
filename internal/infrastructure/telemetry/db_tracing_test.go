package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint
	Name string
}

func TestGormTracingPlugins_Disabled(t *testing.T) {
	assert.Nil(t, GormTracingPlugins(DBTracingConfig{}))
}

func openTracedDB(t *testing.T, plugins ...gorm.Plugin) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	for _, p := range plugins {
		require.NoError(t, db.Use(p))
	}
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestGormTracingPlugins_RecordsSpans(t *testing.T) {
	recorder := useSpanRecorder(t)
	plugins := GormTracingPlugins(DBTracingConfig{Enabled: true, DBName: "storefront"})
	require.Len(t, plugins, 2)
	db := openTracedDB(t, plugins...)

	ctx, span := otel.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "Airpods"}).Error)
	span.End()

	var children int
	for _, s := range recorder.Ended() {
		if s.Parent().SpanID() == span.SpanContext().SpanID() {
			children++
		}
	}
	assert.GreaterOrEqual(t, children, 1)
}

func TestSlowQueryPlugin_TagsActiveSpan(t *testing.T) {
	recorder := useSpanRecorder(t)
	db := openTracedDB(t, &slowQueryPlugin{threshold: time.Nanosecond})

	ctx, span := otel.Tracer("test").Start(context.Background(), "request")
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := map[string]any{}
	for _, attr := range ended[0].Attributes() {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, true, attrs["db.slow_query"])
	assert.Equal(t, "traced_rows", attrs["db.sql.table"])
}
