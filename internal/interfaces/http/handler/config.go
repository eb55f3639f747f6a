package handler

import (
	"github.com/gin-gonic/gin"
)

// PayPalConfigResponse is what the PayPal JS SDK needs to render its buttons
type PayPalConfigResponse struct {
	ClientID string `json:"clientId"`
	Currency string `json:"currency"`
}

// ConfigHandler exposes public client configuration
type ConfigHandler struct {
	BaseHandler
	paypal PayPalConfigResponse
}

// NewConfigHandler creates a new ConfigHandler. An empty currency means USD.
func NewConfigHandler(paypalClientID, paypalCurrency string) *ConfigHandler {
	if paypalCurrency == "" {
		paypalCurrency = "USD"
	}
	return &ConfigHandler{paypal: PayPalConfigResponse{ClientID: paypalClientID, Currency: paypalCurrency}}
}

// PayPal godoc
// @Summary      PayPal client configuration
// @Tags         config
// @Produce      json
// @Success      200 {object} dto.Response{data=PayPalConfigResponse}
// @Router       /config/paypal [get]
func (h *ConfigHandler) PayPal(c *gin.Context) {
	h.Success(c, h.paypal)
}
