package trade

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// DisplayConverter converts order amounts into the currency shown to shoppers.
// Amounts are stored in the base (payment) currency.
type DisplayConverter struct {
	Currency string
	Rate     decimal.Decimal
}

// NewDisplayConverter validates the currency code and rate
func NewDisplayConverter(currency string, rate decimal.Decimal) (DisplayConverter, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return DisplayConverter{}, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if !rate.IsPositive() {
		return DisplayConverter{}, shared.NewDomainError("INVALID_RATE", "Conversion rate must be positive")
	}
	return DisplayConverter{Currency: currency, Rate: rate}, nil
}

// DisplayLine is one order item in display currency
type DisplayLine struct {
	ProductName string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// DisplayPrices are the order amounts in display currency, rounded to whole units
type DisplayPrices struct {
	Currency string
	Rate     decimal.Decimal
	Lines    []DisplayLine
	Items    decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Amount converts one base-currency amount, rounded to whole units
func (c DisplayConverter) Amount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.Rate).Round(0)
}

// Convert produces display prices for an order.
// Each value is converted from the unrounded base amount and rounded once,
// so the items total equals the sum of qty × price × rate before rounding.
func (c DisplayConverter) Convert(order *Order) DisplayPrices {
	lines := make([]DisplayLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, DisplayLine{
			ProductName: item.Name,
			UnitPrice:   c.Amount(item.Price),
			LineTotal:   c.Amount(item.LineTotal()),
		})
	}

	return DisplayPrices{
		Currency: c.Currency,
		Rate:     c.Rate,
		Lines:    lines,
		Items:    c.Amount(order.ItemsPrice),
		Shipping: c.Amount(order.ShippingPrice),
		Tax:      c.Amount(order.TaxPrice),
		Total:    c.Amount(order.TotalPrice),
	}
}
