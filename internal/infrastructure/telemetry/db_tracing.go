package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// DBTracingConfig holds GORM tracing settings
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bind variables in db.statement
	SlowQueryThresh time.Duration
	DBName          string
}

// GormTracingPlugins returns the plugins that trace GORM statements: the
// otelgorm plugin plus one that tags slow statements on the active span.
// Nil when tracing is disabled.
func GormTracingPlugins(cfg DBTracingConfig) []gorm.Plugin {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	threshold := cfg.SlowQueryThresh
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}
	return []gorm.Plugin{
		otelgorm.NewPlugin(opts...),
		&slowQueryPlugin{threshold: threshold},
	}
}

type queryStartKey struct{}

// slowQueryPlugin marks spans of statements slower than threshold
type slowQueryPlugin struct {
	threshold time.Duration
}

func (p *slowQueryPlugin) Name() string { return "storefront:slow_query" }

func (p *slowQueryPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	name := p.Name()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register(name+":before_create", p.before) },
		func() error { return cb.Query().Before("gorm:query").Register(name+":before_query", p.before) },
		func() error { return cb.Update().Before("gorm:update").Register(name+":before_update", p.before) },
		func() error { return cb.Delete().Before("gorm:delete").Register(name+":before_delete", p.before) },
		func() error { return cb.Row().Before("gorm:row").Register(name+":before_row", p.before) },
		func() error { return cb.Raw().Before("gorm:raw").Register(name+":before_raw", p.before) },
		func() error { return cb.Create().After("gorm:create").Register(name+":after_create", p.after) },
		func() error { return cb.Query().After("gorm:query").Register(name+":after_query", p.after) },
		func() error { return cb.Update().After("gorm:update").Register(name+":after_update", p.after) },
		func() error { return cb.Delete().After("gorm:delete").Register(name+":after_delete", p.after) },
		func() error { return cb.Row().After("gorm:row").Register(name+":after_row", p.after) },
		func() error { return cb.Raw().After("gorm:raw").Register(name+":after_raw", p.after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (p *slowQueryPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *slowQueryPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
