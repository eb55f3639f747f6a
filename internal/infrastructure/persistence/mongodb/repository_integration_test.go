//go:build integration

package mongodb

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// newTestClient starts a throwaway MongoDB container and connects to a fresh database
func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start MongoDB container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	uri, err := container.Endpoint(ctx, "mongodb")
	require.NoError(t, err)

	client, err := Connect(ctx, &config.DatabaseConfig{
		URI:            uri,
		Name:           "storefront_test",
		ConnectTimeout: 20 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	require.NoError(t, client.EnsureIndexes(ctx))
	return client
}

func TestMongoRepositories(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	db := client.Database()

	products := NewProductRepository(db)
	users := NewUserRepository(db)
	orders := NewOrderRepository(db)

	t.Run("product keyword search is case-insensitive", func(t *testing.T) {
		for _, name := range []string{"Airpods Wireless Bluetooth Headphones", "iPhone 13 Pro 256GB", "Cannon EOS 80D DSLR Camera"} {
			p, err := catalog.NewProduct(name, decimal.NewFromInt(100))
			require.NoError(t, err)
			require.NoError(t, products.Save(ctx, p))
		}

		filter := shared.DefaultFilter()
		filter.Search = "IPHONE"
		found, err := products.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "iPhone 13 Pro 256GB", found[0].Name)

		filter.Search = "("
		count, err := products.Count(ctx, filter)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("concurrent stock decrements never go negative", func(t *testing.T) {
		p, err := catalog.NewProduct("Logitech G-Series Gaming Mouse", decimal.RequireFromString("49.99"))
		require.NoError(t, err)
		require.NoError(t, p.SetStock(5))
		require.NoError(t, products.Save(ctx, p))

		var ok, insufficient int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				switch err := products.AdjustStock(ctx, p.ID, -1); {
				case err == nil:
					atomic.AddInt32(&ok, 1)
				case err == shared.ErrInsufficientStock:
					atomic.AddInt32(&insufficient, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(5), ok)
		assert.Equal(t, int32(3), insufficient)
		got, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Zero(t, got.CountInStock)

		assert.ErrorIs(t, products.AdjustStock(ctx, uuid.New(), -1), shared.ErrNotFound)
	})

	t.Run("product edit from a stale read does not restore sold stock", func(t *testing.T) {
		p, err := catalog.NewProduct("Amazon Echo Dot 3rd Generation", decimal.RequireFromString("29.99"))
		require.NoError(t, err)
		require.NoError(t, p.SetStock(10))
		require.NoError(t, products.Save(ctx, p))

		stale, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		loaded := stale.Version
		require.NoError(t, products.AdjustStock(ctx, p.ID, -3))

		require.NoError(t, stale.SetPrice(decimal.RequireFromString("24.99")))
		assert.ErrorIs(t, products.SaveWithLock(ctx, stale, loaded), shared.ErrConcurrencyConflict)

		got, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, got.CountInStock)

		loaded = got.Version
		require.NoError(t, got.SetPrice(decimal.RequireFromString("24.99")))
		require.NoError(t, products.SaveWithLock(ctx, got, loaded))
		assert.Equal(t, loaded+1, got.Version)
	})

	t.Run("duplicate email is rejected by the unique index", func(t *testing.T) {
		u, err := identity.NewUser("jane", "jane@example.com", "password123")
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, u))

		dup, err := identity.NewUser("jane2", "JANE@example.com", "password123")
		require.NoError(t, err)
		assert.ErrorIs(t, users.Create(ctx, dup), shared.ErrAlreadyExists)

		found, err := users.FindByEmail(ctx, "Jane@Example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)
	})

	t.Run("order payment uses optimistic locking", func(t *testing.T) {
		item, err := trade.NewOrderItem(uuid.New(), "Airpods", "/images/airpods.jpg", 1, decimal.RequireFromString("89.99"))
		require.NoError(t, err)
		order, err := trade.NewOrder(uuid.New(), []trade.OrderItem{item},
			valueobject.MustNewShippingAddress("1 Main St", "Boston", "02101", "USA"), "PayPal", trade.DefaultPricingPolicy())
		require.NoError(t, err)
		require.NoError(t, orders.Save(ctx, order))

		stale, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)

		require.NoError(t, order.MarkPaid(trade.PaymentResult{ID: "CAP-1", Status: "COMPLETED"}, time.Now()))
		require.NoError(t, orders.SaveWithLock(ctx, order))

		require.NoError(t, stale.MarkPaid(trade.PaymentResult{ID: "CAP-2"}, time.Now()))
		assert.ErrorIs(t, orders.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

		got, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPaid)
		assert.Equal(t, "CAP-1", got.PaymentResult.ID)
		assert.Equal(t, "113.49", got.TotalPrice.StringFixed(2))

		mine, err := orders.FindByUser(ctx, order.UserID)
		require.NoError(t, err)
		assert.Len(t, mine, 1)
	})

	t.Run("a capture id settles one order only", func(t *testing.T) {
		place := func() *trade.Order {
			item, err := trade.NewOrderItem(uuid.New(), "Mouse", "/images/mouse.jpg", 1, decimal.RequireFromString("49.99"))
			require.NoError(t, err)
			o, err := trade.NewOrder(uuid.New(), []trade.OrderItem{item},
				valueobject.MustNewShippingAddress("1 Main St", "Boston", "02101", "USA"), "PayPal", trade.DefaultPricingPolicy())
			require.NoError(t, err)
			require.NoError(t, orders.Save(ctx, o))
			return o
		}
		first, second := place(), place()

		require.NoError(t, first.MarkPaid(trade.PaymentResult{ID: "CAP-SHARED", Status: "COMPLETED"}, time.Now()))
		require.NoError(t, orders.SaveWithLock(ctx, first))

		require.NoError(t, second.MarkPaid(trade.PaymentResult{ID: "CAP-SHARED", Status: "COMPLETED"}, time.Now()))
		assert.ErrorIs(t, orders.SaveWithLock(ctx, second), shared.ErrAlreadyExists)

		got, err := orders.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.False(t, got.IsPaid)
	})
}
