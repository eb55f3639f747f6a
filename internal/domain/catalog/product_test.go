package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("Airpods Wireless Bluetooth Headphones", decimal.RequireFromString("89.99"))
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.NotEmpty(t, product.ID)
		assert.Equal(t, "Airpods Wireless Bluetooth Headphones", product.Name)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("89.99")))
		assert.Equal(t, 0, product.CountInStock)
		assert.False(t, product.InStock())
		assert.Equal(t, 1, product.GetVersion())
	})

	t.Run("rounds price to cents", func(t *testing.T) {
		product, err := NewProduct("Cable", decimal.RequireFromString("9.999"))
		require.NoError(t, err)
		assert.Equal(t, "10", product.Price.String())
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct("Camera", decimal.NewFromInt(929))
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())

		event, ok := events[0].(*ProductCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, product.ID, event.ProductID)
		assert.Equal(t, product.Name, event.Name)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("   ", decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with long name", func(t *testing.T) {
		_, err := NewProduct(strings.Repeat("x", 201), decimal.NewFromInt(1))
		require.Error(t, err)
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("Mouse", decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Price cannot be negative")
	})
}

func TestProduct_UpdateDetails(t *testing.T) {
	product, err := NewProduct("Phone", decimal.NewFromInt(599))
	require.NoError(t, err)
	product.ClearDomainEvents()

	err = product.UpdateDetails(ProductDetails{
		Name:        " iPhone 13 Pro 256GB ",
		Image:       "/images/phone.jpg",
		Brand:       "Apple",
		Category:    "Electronics",
		Description: "Introducing the iPhone 13 Pro",
	})
	require.NoError(t, err)

	assert.Equal(t, "iPhone 13 Pro 256GB", product.Name)
	assert.Equal(t, "/images/phone.jpg", product.Image)
	assert.Equal(t, "Apple", product.Brand)
	assert.Equal(t, "Electronics", product.Category)
	assert.Equal(t, 2, product.GetVersion())
	require.Len(t, product.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductUpdated, product.GetDomainEvents()[0].EventType())

	err = product.UpdateDetails(ProductDetails{Name: ""})
	require.Error(t, err)
}

func TestProduct_SetPrice(t *testing.T) {
	product, err := NewProduct("Speaker", decimal.RequireFromString("49.99"))
	require.NoError(t, err)
	product.ClearDomainEvents()

	t.Run("same price is a no-op", func(t *testing.T) {
		require.NoError(t, product.SetPrice(decimal.RequireFromString("49.99")))
		assert.Empty(t, product.GetDomainEvents())
	})

	t.Run("new price publishes event", func(t *testing.T) {
		require.NoError(t, product.SetPrice(decimal.RequireFromString("39.99")))
		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		event := events[0].(*ProductPriceChangedEvent)
		assert.Equal(t, "49.99", event.OldPrice.StringFixed(2))
		assert.Equal(t, "39.99", event.NewPrice.StringFixed(2))
	})

	t.Run("negative price rejected", func(t *testing.T) {
		require.Error(t, product.SetPrice(decimal.NewFromInt(-5)))
	})
}

func TestProduct_Stock(t *testing.T) {
	product, err := NewProduct("Keyboard", decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, product.SetStock(5))

	assert.True(t, product.InStock())
	assert.True(t, product.HasStock(5))
	assert.False(t, product.HasStock(6))
	assert.False(t, product.HasStock(0))

	require.NoError(t, product.DecreaseStock(3))
	assert.Equal(t, 2, product.CountInStock)

	err = product.DecreaseStock(3)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 2, product.CountInStock)

	require.NoError(t, product.IncreaseStock(10))
	assert.Equal(t, 12, product.CountInStock)

	require.Error(t, product.IncreaseStock(0))
	require.Error(t, product.DecreaseStock(-1))
	require.Error(t, product.SetStock(-1))
}
