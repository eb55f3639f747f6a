package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// SwaggerConfig guards the API documentation routes
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string // single IPs or CIDR ranges; empty allows all
}

// SwaggerProtection answers 404 while the docs are disabled, then applies the
// IP allow list and, when RequireAuth is set, the given auth middleware.
func SwaggerProtection(cfg SwaggerConfig, auth gin.HandlerFunc) gin.HandlerFunc {
	ips, nets := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "API documentation is not available", GetRequestID(c)))
			return
		}

		if len(cfg.AllowedIPs) > 0 && !ipAllowed(net.ParseIP(c.ClientIP()), ips, nets) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access to API documentation is restricted", GetRequestID(c)))
			return
		}

		if cfg.RequireAuth && auth != nil {
			auth(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

// parseAllowList splits entries into exact IPs and CIDR networks. Entries
// that parse as neither are ignored.
func parseAllowList(entries []string) ([]net.IP, []*net.IPNet) {
	var ips []net.IP
	var nets []*net.IPNet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				nets = append(nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ips = append(ips, ip)
		}
	}
	return ips, nets
}

func ipAllowed(ip net.IP, ips []net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
