package payment

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// Errors for configuration validation
var (
	ErrPayPalMissingClientID = errors.New("paypal: missing client ID")
	ErrPayPalMissingSecret   = errors.New("paypal: missing client secret")
	ErrPayPalInvalidBaseURL  = errors.New("paypal: invalid API base URL")
	ErrPayPalInvalidCurrency = errors.New("paypal: currency must be a 3-letter code")
)

// PayPalConfig contains what the server needs to talk to the PayPal REST API
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	// BaseURL is the REST host, sandbox or live
	BaseURL string
	// Currency is the capture currency, also handed to the checkout widget
	Currency string
	Timeout  time.Duration
}

// PayPalConfigFromApp maps the application configuration section
func PayPalConfigFromApp(cfg config.PayPalConfig) *PayPalConfig {
	return &PayPalConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      cfg.PayPalBaseURL(),
		Currency:     strings.ToUpper(cfg.Currency),
		Timeout:      cfg.Timeout,
	}
}

// Validate checks the settings required for server-side verification
func (c *PayPalConfig) Validate() error {
	if c.ClientID == "" {
		return ErrPayPalMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrPayPalMissingSecret
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrPayPalInvalidBaseURL
	}
	if len(c.Currency) != 3 {
		return ErrPayPalInvalidCurrency
	}
	return nil
}
