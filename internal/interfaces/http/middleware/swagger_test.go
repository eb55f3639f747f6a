package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	denyAll := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
	}

	tests := []struct {
		name       string
		cfg        SwaggerConfig
		auth       gin.HandlerFunc
		remoteAddr string
		wantStatus int
	}{
		{"disabled", SwaggerConfig{}, nil, "127.0.0.1:1234", http.StatusNotFound},
		{"enabled without restrictions", SwaggerConfig{Enabled: true}, nil, "192.0.2.1:1234", http.StatusOK},
		{"exact ip allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}}, nil, "127.0.0.1:1234", http.StatusOK},
		{"ip not listed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, nil, "192.168.1.1:1234", http.StatusForbidden},
		{"cidr allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, nil, "10.50.100.200:1234", http.StatusOK},
		{"cidr denied", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, nil, "11.0.0.1:1234", http.StatusForbidden},
		{"auth required", SwaggerConfig{Enabled: true, RequireAuth: true}, denyAll, "127.0.0.1:1234", http.StatusUnauthorized},
		{"auth passes", SwaggerConfig{Enabled: true, RequireAuth: true}, func(*gin.Context) {}, "127.0.0.1:1234", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/swagger/*any", SwaggerProtection(tt.cfg, tt.auth), func(c *gin.Context) {
				c.String(http.StatusOK, "docs")
			})

			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
