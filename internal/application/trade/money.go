package trade

import "github.com/shopspring/decimal"

// Money is a base-currency amount that always serializes with cents,
// so 91 goes out as "91.00". Decoding accepts any decimal string or number.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d rounded to cents
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MarshalJSON renders the amount as a quoted string with two decimals
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
