package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// MigrationsTable is the bookkeeping table golang-migrate writes the applied version to
const MigrationsTable = "storefront_schema_migrations"

// Migrator applies the storefront schema to a postgres database
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// Status describes where the database stands relative to the available migrations
type Status struct {
	Version uint
	Dirty   bool
	Latest  uint
	Pending int
}

// UpToDate reports whether every available migration has been applied
func (s Status) UpToDate() bool {
	return !s.Dirty && s.Pending == 0
}

// New creates a Migrator over an open postgres connection, reading migrations
// from source. Pass migrations.FS for the embedded schema.
func New(db *sql.DB, source fs.FS, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	src, err := iofs.New(source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return newMigrator(m, logger), nil
}

// NewFromPath creates a Migrator from a database URL and a directory of
// migration files, for working on migrations that are not embedded yet.
func NewFromPath(databaseURL, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	m, err := migrate.New("file://"+migrationsPath, withMigrationsTable(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return newMigrator(m, logger), nil
}

func newMigrator(m *migrate.Migrate, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := logger.Named("migration")
	m.Log = &migrateLogger{logger: l}
	return &Migrator{migrate: m, logger: l}
}

func withMigrationsTable(databaseURL string) string {
	sep := "?"
	if strings.Contains(databaseURL, "?") {
		sep = "&"
	}
	return databaseURL + sep + "x-migrations-table=" + MigrationsTable
}

// Up applies all pending migrations. An already current schema is not an error.
func (m *Migrator) Up() error {
	m.logger.Info("Applying pending migrations")
	if err := m.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return m.logVersion("Schema is up to date")
}

// Down rolls back every applied migration
func (m *Migrator) Down() error {
	m.logger.Warn("Rolling back all migrations")
	if err := m.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	m.logger.Info("All migrations rolled back")
	return nil
}

// Steps moves n migrations forward, or backward when n is negative
func (m *Migrator) Steps(n int) error {
	m.logger.Info("Stepping migrations", zap.Int("steps", n))
	if err := m.migrate.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration steps failed: %w", err)
	}
	return m.logVersion("Migration step complete")
}

// GoTo migrates up or down to the given version
func (m *Migrator) GoTo(version uint) error {
	m.logger.Info("Migrating to version", zap.Uint("target", version))
	if err := m.migrate.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return m.logVersion("Migration complete")
}

// Version returns the applied version. A fresh database reports version 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running anything. Used to clear a
// dirty state after fixing a failed migration by hand.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Status compares the applied version against the migration source
func (m *Migrator) Status(available []uint) (Status, error) {
	version, dirty, err := m.Version()
	if err != nil {
		return Status{}, err
	}
	st := Status{Version: version, Dirty: dirty}
	for _, v := range available {
		if v > st.Latest {
			st.Latest = v
		}
		if v > version {
			st.Pending++
		}
	}
	return st, nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

func (m *Migrator) logVersion(msg string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// migrateLogger routes golang-migrate's verbose output through zap
type migrateLogger struct {
	logger *zap.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Sugar().Debugf(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.Core().Enabled(zap.DebugLevel)
}
