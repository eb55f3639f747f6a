package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayPal order statuses relevant to capture verification
const (
	PayPalStatusCompleted = "COMPLETED"
	PayPalStatusApproved  = "APPROVED"
)

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type paypalErrorResponse struct {
	Name             string `json:"name"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type paypalMoney struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalCapture struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Amount     paypalMoney `json:"amount"`
	UpdateTime string      `json:"update_time"`
}

type paypalPurchaseUnit struct {
	ReferenceID string      `json:"reference_id"`
	Amount      paypalMoney `json:"amount"`
	Payments    struct {
		Captures []paypalCapture `json:"captures"`
	} `json:"payments"`
}

type paypalOrderResponse struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	UpdateTime    string               `json:"update_time"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
	Payer         struct {
		EmailAddress string `json:"email_address"`
		PayerID      string `json:"payer_id"`
	} `json:"payer"`
}

// CaptureVerification is what PayPal reports for a checkout order
type CaptureVerification struct {
	OrderID      string
	Status       string
	Amount       decimal.Decimal
	Currency     string
	CaptureIDs   []string
	PayerEmail   string
	UpdateTime   string
	VerifiedAt   time.Time
}
