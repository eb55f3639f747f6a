package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePayPal serves the two endpoints the adapter uses
type fakePayPal struct {
	tokenCalls atomic.Int32
	orders     map[string]paypalOrderResponse
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(paypalErrorResponse{Error: "invalid_client", ErrorDescription: "Client Authentication failed"})
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		f.tokenCalls.Add(1)
		_ = json.NewEncoder(w).Encode(paypalTokenResponse{AccessToken: "token-abc", TokenType: "Bearer", ExpiresIn: 3600})
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := r.URL.Path[len("/v2/checkout/orders/"):]
		order, ok := f.orders[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(paypalErrorResponse{Name: "RESOURCE_NOT_FOUND", Message: "not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(order)
	})
	return mux
}

func completedOrder(id, value, currency string) paypalOrderResponse {
	order := paypalOrderResponse{ID: id, Status: PayPalStatusCompleted, UpdateTime: "2024-01-01T10:00:00Z"}
	order.Payer.EmailAddress = "buyer@example.com"
	unit := paypalPurchaseUnit{Amount: paypalMoney{CurrencyCode: currency, Value: value}}
	unit.Payments.Captures = []paypalCapture{{ID: "CAP-" + id, Status: PayPalStatusCompleted, Amount: paypalMoney{CurrencyCode: currency, Value: value}}}
	order.PurchaseUnits = []paypalPurchaseUnit{unit}
	return order
}

func newTestAdapter(t *testing.T, fake *fakePayPal) *PayPalAdapter {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	adapter, err := NewPayPalAdapter(&PayPalConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      server.URL,
		Currency:     "USD",
	}, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return adapter
}

func TestPayPalConfig_Validate(t *testing.T) {
	valid := PayPalConfig{ClientID: "id", ClientSecret: "secret", BaseURL: "https://api-m.sandbox.paypal.com", Currency: "USD"}

	tests := []struct {
		name    string
		mutate  func(c *PayPalConfig)
		wantErr error
	}{
		{"valid", func(c *PayPalConfig) {}, nil},
		{"missing client id", func(c *PayPalConfig) { c.ClientID = "" }, ErrPayPalMissingClientID},
		{"missing secret", func(c *PayPalConfig) { c.ClientSecret = "" }, ErrPayPalMissingSecret},
		{"relative base url", func(c *PayPalConfig) { c.BaseURL = "/paypal" }, ErrPayPalInvalidBaseURL},
		{"bad currency", func(c *PayPalConfig) { c.Currency = "US" }, ErrPayPalInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPayPalAdapter_VerifyCapture(t *testing.T) {
	pending := completedOrder("ORDER-PENDING", "113.49", "USD")
	pending.Status = PayPalStatusApproved

	fake := &fakePayPal{orders: map[string]paypalOrderResponse{
		"ORDER-OK":      completedOrder("ORDER-OK", "113.49", "USD"),
		"ORDER-SHORT":   completedOrder("ORDER-SHORT", "1.00", "USD"),
		"ORDER-EUR":     completedOrder("ORDER-EUR", "113.49", "EUR"),
		"ORDER-PENDING": pending,
	}}
	adapter := newTestAdapter(t, fake)
	ctx := context.Background()
	expected := decimal.RequireFromString("113.49")

	t.Run("completed capture with matching amount", func(t *testing.T) {
		v, err := adapter.VerifyCapture(ctx, "ORDER-OK", expected)
		require.NoError(t, err)
		assert.Equal(t, "ORDER-OK", v.OrderID)
		assert.Equal(t, []string{"CAP-ORDER-OK"}, v.CaptureIDs)
		assert.Equal(t, "buyer@example.com", v.PayerEmail)
		assert.True(t, v.Amount.Equal(expected))
	})

	t.Run("amount mismatch", func(t *testing.T) {
		_, err := adapter.VerifyCapture(ctx, "ORDER-SHORT", expected)
		assert.ErrorIs(t, err, ErrAmountMismatch)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := adapter.VerifyCapture(ctx, "ORDER-EUR", expected)
		assert.ErrorIs(t, err, ErrAmountMismatch)
	})

	t.Run("not completed", func(t *testing.T) {
		_, err := adapter.VerifyCapture(ctx, "ORDER-PENDING", expected)
		assert.ErrorIs(t, err, ErrCaptureNotCompleted)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := adapter.VerifyCapture(ctx, "ORDER-MISSING", expected)
		assert.ErrorIs(t, err, ErrPayPalOrderNotFound)
	})

	assert.Equal(t, int32(1), fake.tokenCalls.Load(), "token is cached across calls")
}

func TestPayPalAdapter_BadCredentials(t *testing.T) {
	fake := &fakePayPal{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	adapter, err := NewPayPalAdapter(&PayPalConfig{
		ClientID:     "client-id",
		ClientSecret: "wrong",
		BaseURL:      server.URL,
		Currency:     "USD",
	}, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = adapter.VerifyCapture(context.Background(), "ORDER-OK", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrGatewayRequestFailed)
	assert.Contains(t, err.Error(), "invalid_client")
}

func TestPayPalAdapter_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	adapter, err := NewPayPalAdapter(&PayPalConfig{ClientID: "id", ClientSecret: "secret", BaseURL: url, Currency: "USD"})
	require.NoError(t, err)

	_, err = adapter.VerifyCapture(context.Background(), "X", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
