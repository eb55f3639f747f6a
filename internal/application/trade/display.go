package trade

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/trade"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayPricer renders orders in the display currency, e.g. "₹ 8,300"
type DisplayPricer struct {
	converter trade.DisplayConverter
	printer   *message.Printer
	symbol    string
}

// NewDisplayPricer builds a pricer for an ISO currency code and a rate from
// the payment currency. Numbers are grouped per the given locale.
func NewDisplayPricer(code string, rate decimal.Decimal, locale language.Tag) (*DisplayPricer, error) {
	converter, err := trade.NewDisplayConverter(code, rate)
	if err != nil {
		return nil, err
	}
	unit, err := currency.ParseISO(converter.Currency)
	if err != nil {
		return nil, fmt.Errorf("unknown display currency %q: %w", converter.Currency, err)
	}
	printer := message.NewPrinter(locale)
	return &DisplayPricer{
		converter: converter,
		printer:   printer,
		symbol:    strings.TrimSpace(printer.Sprint(currency.Symbol(unit))),
	}, nil
}

// Currency returns the display currency code
func (p *DisplayPricer) Currency() string {
	return p.converter.Currency
}

// Format renders a display amount in whole units with the currency symbol
func (p *DisplayPricer) Format(amount decimal.Decimal) string {
	return p.symbol + " " + p.printer.Sprintf("%d", amount.Round(0).IntPart())
}

func (p *DisplayPricer) amount(v decimal.Decimal) DisplayAmount {
	return DisplayAmount{Amount: v, Formatted: p.Format(v)}
}

// Price converts an order into its display block
func (p *DisplayPricer) Price(order *trade.Order) *DisplayResponse {
	prices := p.converter.Convert(order)
	lines := make([]DisplayLineResponse, len(prices.Lines))
	for i, line := range prices.Lines {
		lines[i] = DisplayLineResponse{
			Name:      line.ProductName,
			UnitPrice: p.amount(line.UnitPrice),
			LineTotal: p.amount(line.LineTotal),
		}
	}
	return &DisplayResponse{
		Currency:      prices.Currency,
		Rate:          prices.Rate,
		Lines:         lines,
		ItemsPrice:    p.amount(prices.Items),
		ShippingPrice: p.amount(prices.Shipping),
		TaxPrice:      p.amount(prices.Tax),
		TotalPrice:    p.amount(prices.Total),
	}
}
