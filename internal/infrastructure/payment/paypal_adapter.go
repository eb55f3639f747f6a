package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Gateway errors
var (
	ErrGatewayUnavailable   = errors.New("paypal: gateway unavailable")
	ErrGatewayRequestFailed = errors.New("paypal: request failed")
	ErrPayPalOrderNotFound  = errors.New("paypal: order not found")
	ErrCaptureNotCompleted  = errors.New("paypal: capture not completed")
	ErrAmountMismatch       = errors.New("paypal: captured amount does not match order total")
)

// tokenRefreshSkew renews the OAuth token a little before PayPal expires it
const tokenRefreshSkew = time.Minute

// PayPalAdapter verifies checkout captures against the PayPal Orders API
type PayPalAdapter struct {
	config     *PayPalConfig
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// PayPalAdapterOption configures a PayPalAdapter
type PayPalAdapterOption func(*PayPalAdapter)

// WithHTTPClient replaces the HTTP client, mainly for tests
func WithHTTPClient(client *http.Client) PayPalAdapterOption {
	return func(a *PayPalAdapter) {
		a.httpClient = client
	}
}

// NewPayPalAdapter creates a new PayPal adapter
func NewPayPalAdapter(config *PayPalConfig, opts ...PayPalAdapterOption) (*PayPalAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	a := &PayPalAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Currency returns the capture currency
func (a *PayPalAdapter) Currency() string {
	return a.config.Currency
}

// VerifyCapture loads the PayPal order and checks that it is COMPLETED and
// that its captured amount equals expected in the configured currency.
func (a *PayPalAdapter) VerifyCapture(ctx context.Context, paypalOrderID string, expected decimal.Decimal) (*CaptureVerification, error) {
	order, err := a.getOrder(ctx, paypalOrderID)
	if err != nil {
		return nil, err
	}

	v := &CaptureVerification{
		OrderID:    order.ID,
		Status:     order.Status,
		PayerEmail: order.Payer.EmailAddress,
		UpdateTime: order.UpdateTime,
		VerifiedAt: time.Now(),
	}

	if order.Status != PayPalStatusCompleted {
		return v, fmt.Errorf("%w: status %s", ErrCaptureNotCompleted, order.Status)
	}

	total := decimal.Zero
	for _, unit := range order.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			if capture.Status != PayPalStatusCompleted {
				continue
			}
			if !strings.EqualFold(capture.Amount.CurrencyCode, a.config.Currency) {
				return v, fmt.Errorf("%w: currency %s", ErrAmountMismatch, capture.Amount.CurrencyCode)
			}
			amount, err := decimal.NewFromString(capture.Amount.Value)
			if err != nil {
				return v, fmt.Errorf("paypal: invalid capture amount %q: %w", capture.Amount.Value, err)
			}
			total = total.Add(amount)
			v.CaptureIDs = append(v.CaptureIDs, capture.ID)
		}
	}
	v.Amount = total
	v.Currency = a.config.Currency

	if len(v.CaptureIDs) == 0 {
		return v, ErrCaptureNotCompleted
	}
	if !total.Equal(expected.Round(2)) {
		return v, fmt.Errorf("%w: captured %s, expected %s", ErrAmountMismatch, total.StringFixed(2), expected.StringFixed(2))
	}
	return v, nil
}

func (a *PayPalAdapter) getOrder(ctx context.Context, paypalOrderID string) (*paypalOrderResponse, error) {
	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := a.config.BaseURL + "/v2/checkout/orders/" + url.PathEscape(paypalOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("paypal: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	status, body, err := a.do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, ErrPayPalOrderNotFound
	case status == http.StatusUnauthorized:
		a.resetToken()
		return nil, fmt.Errorf("%w: HTTP 401", ErrGatewayRequestFailed)
	case status >= 400:
		return nil, gatewayError(status, body)
	}

	var order paypalOrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("paypal: failed to parse order: %w", err)
	}
	return &order, nil
}

// accessToken returns a cached client-credentials token, fetching a new one when needed
func (a *PayPalAdapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry) {
		return a.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("paypal: failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.config.ClientID, a.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := a.do(req)
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", gatewayError(status, body)
	}

	var tok paypalTokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("paypal: failed to parse token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrGatewayRequestFailed)
	}

	a.token = tok.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenRefreshSkew)
	return a.token, nil
}

func (a *PayPalAdapter) resetToken() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

func (a *PayPalAdapter) do(req *http.Request) (int, []byte, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("paypal: failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func gatewayError(status int, body []byte) error {
	var e paypalErrorResponse
	if json.Unmarshal(body, &e) == nil {
		msg := e.Message
		if msg == "" {
			msg = e.ErrorDescription
		}
		name := e.Name
		if name == "" {
			name = e.Error
		}
		if name != "" || msg != "" {
			return fmt.Errorf("%w: HTTP %d %s - %s", ErrGatewayRequestFailed, status, name, msg)
		}
	}
	return fmt.Errorf("%w: HTTP %d", ErrGatewayRequestFailed, status)
}
