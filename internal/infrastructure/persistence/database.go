package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the SQL connection used by the GORM repositories
type Database struct {
	DB     *gorm.DB
	driver string
}

type databaseOptions struct {
	logger  gormlogger.Interface
	plugins []gorm.Plugin
}

// DatabaseOption configures NewDatabase
type DatabaseOption func(*databaseOptions)

// WithGormLogger sets the GORM logger. The default is silent.
func WithGormLogger(l gormlogger.Interface) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = l
	}
}

// WithPlugins registers GORM plugins such as tracing on the connection
func WithPlugins(plugins ...gorm.Plugin) DatabaseOption {
	return func(o *databaseOptions) {
		o.plugins = append(o.plugins, plugins...)
	}
}

// NewDatabase opens a postgres or sqlite connection according to cfg.Driver,
// applies pool settings and pings it.
func NewDatabase(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	o := &databaseOptions{logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	for _, opt := range opts {
		opt(o)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		PrepareStmt:            cfg.Driver == config.DriverPostgres,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, p := range o.plugins {
		if err := db.Use(p); err != nil {
			return nil, fmt.Errorf("failed to register gorm plugin %s: %w", p.Name(), err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, driver: cfg.Driver}, nil
}

// Driver returns the configured SQL driver name
func (d *Database) Driver() string {
	return d.driver
}

// AutoMigrate creates or updates the storefront tables from the GORM models.
// Postgres deployments use the SQL migrations instead; this is for sqlite
// and tests.
func (d *Database) AutoMigrate() error {
	return AutoMigrate(d.DB)
}

// AutoMigrate creates the storefront tables on db
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ProductModel{},
		&models.UserModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
	)
}

// Purge deletes every order, product and user in dependency order
func (d *Database) Purge(ctx context.Context) error {
	return d.Transaction(ctx, func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.OrderItemModel{}, &models.OrderModel{}, &models.ProductModel{}, &models.UserModel{}} {
			if err := all.Unscoped().Delete(model).Error; err != nil {
				return fmt.Errorf("failed to purge %T: %w", model, err)
			}
		}
		return nil
	})
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
