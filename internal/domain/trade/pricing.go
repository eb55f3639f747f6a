package trade

import (
	"github.com/shopspring/decimal"
)

// PricingPolicy holds the rules used to price an order
type PricingPolicy struct {
	// FreeShippingThreshold: orders whose items price is strictly above it ship free
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPricingPolicy ships free above 100, charges 10 otherwise, and applies 15% tax
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.15"),
	}
}

// Prices are the computed amounts of an order, rounded to cents
type Prices struct {
	Items    decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Calculate prices the given items
func (p PricingPolicy) Calculate(items []OrderItem) Prices {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.LineTotal())
	}
	itemsPrice = itemsPrice.Round(2)

	shipping := p.ShippingFee
	if itemsPrice.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	if len(items) == 0 {
		shipping = decimal.Zero
	}
	shipping = shipping.Round(2)

	tax := itemsPrice.Mul(p.TaxRate).Round(2)

	return Prices{
		Items:    itemsPrice,
		Shipping: shipping,
		Tax:      tax,
		Total:    itemsPrice.Add(shipping).Add(tax).Round(2),
	}
}
