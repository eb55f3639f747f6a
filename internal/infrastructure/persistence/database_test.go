package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database backed by sqlmock speaking the postgres dialect
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	return &Database{DB: gormDB, driver: config.DriverPostgres}, mock, mockDB
}

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "shop.db"),
		ConnMaxLifetime: 1,
	}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, config.DriverSQLite, db.Driver())
	require.NoError(t, db.AutoMigrate())
	assert.True(t, db.DB.Migrator().HasTable("orders"))
	assert.True(t, db.DB.Migrator().HasTable("order_items"))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestDatabase_Purge(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.AutoMigrate())

	ctx := context.Background()
	repo := NewGormProductRepository(db.DB)
	seedProduct(t, repo, "Airpods Wireless Bluetooth Headphones", "89.99", 10)
	seedProduct(t, repo, "Logitech G-Series Gaming Mouse", "49.99", 7)

	require.NoError(t, db.Purge(ctx))

	count, err := repo.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverMongoDB})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported sql driver")
}

func TestDatabase_Ping(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectPing()
	assert.NoError(t, db.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(sql.ErrConnDone)
	assert.ErrorIs(t, db.Ping(context.Background()), sql.ErrConnDone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	type testModel struct {
		ID   uint
		Name string
	}

	t.Run("commits on success", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "test_models"`).
			WithArgs("test").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
			return tx.Create(&testModel{Name: "test"}).Error
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}
