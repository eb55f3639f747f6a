package main

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSampleData_IsValid(t *testing.T) {
	users, err := buildUsers()
	require.NoError(t, err)
	require.Len(t, users, len(sampleUsers))
	assert.True(t, users[0].IsAdmin)
	assert.False(t, users[1].IsAdmin)
	assert.Empty(t, users[0].GetDomainEvents())

	for _, s := range sampleProducts {
		p, err := buildProduct(s)
		require.NoError(t, err, s.details.Name)
		assert.Equal(t, s.stock, p.CountInStock)
		assert.Equal(t, s.details.Brand, p.Brand)
	}
}

func TestFakeProducts(t *testing.T) {
	a := fakeProducts(5, 42)
	b := fakeProducts(5, 42)
	require.Len(t, a, 5)
	assert.Equal(t, a, b)

	for _, s := range a {
		p, err := buildProduct(s)
		require.NoError(t, err, s.details.Name)
		assert.True(t, p.Price.IsPositive())
		assert.GreaterOrEqual(t, p.CountInStock, 0)
	}
}

func TestImportAndDestroy_SQLite(t *testing.T) {
	c := &cli{log: zap.NewNop(), extra: 3, seed: 7}
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}}

	ctx := context.Background()
	target, err := c.open(ctx, cfg)
	require.NoError(t, err)
	defer target.close(ctx)

	require.NoError(t, c.runImport(ctx, target))

	total, err := target.products.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleProducts)+3), total)

	admin, err := target.users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	// a second import replaces rather than duplicates
	require.NoError(t, c.runImport(ctx, target))
	total, err = target.products.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleProducts)+3), total)

	require.NoError(t, target.purge(ctx))
	total, err = target.products.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
