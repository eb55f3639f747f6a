//go:build integration

package migration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestPostgres(t *testing.T) (*sql.DB, string) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))
	return db, dsn
}

func TestMigrator_UpDown(t *testing.T) {
	db, dsn := newTestPostgres(t)

	m, err := New(db, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	available, err := AvailableVersions(migrations.FS)
	require.NoError(t, err)

	st, err := m.Status(available)
	require.NoError(t, err)
	assert.Equal(t, uint(0), st.Version)
	assert.Equal(t, len(available), st.Pending)

	require.NoError(t, m.Up())
	// a second Up on a current schema is a no-op
	require.NoError(t, m.Up())

	st, err = m.Status(available)
	require.NoError(t, err)
	assert.True(t, st.UpToDate())
	assert.Equal(t, st.Latest, st.Version)

	for _, table := range []string{"products", "users", "orders", "order_items"} {
		var exists bool
		err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s", table)
	}

	var indexDef string
	require.NoError(t, db.QueryRow(`SELECT indexdef FROM pg_indexes WHERE indexname = 'uniq_orders_payment_id'`).Scan(&indexDef))
	assert.Contains(t, indexDef, "UNIQUE")

	// the migrated schema must accept what the gorm repositories write
	gdb, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	repo := persistence.NewGormProductRepository(gdb)

	product, err := catalog.NewProduct("Airpods Wireless Bluetooth Headphones", decimal.RequireFromString("89.99"))
	require.NoError(t, err)
	require.NoError(t, product.SetStock(10))
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, product))

	loaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, product.Price.Equal(loaded.Price))
	require.NoError(t, repo.AdjustStock(ctx, product.ID, -4))

	loaded, err = repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.CountInStock)

	require.NoError(t, m.Down())
	version, _, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}

func TestMigrator_Steps(t *testing.T) {
	db, _ := newTestPostgres(t)

	m, err := New(db, migrations.FS, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Steps(2))
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// orders references users, so it can only exist after step 3
	var exists bool
	require.NoError(t, db.QueryRow(`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'orders')`).Scan(&exists))
	assert.False(t, exists)

	require.NoError(t, m.GoTo(1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
