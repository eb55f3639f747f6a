package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, fn gin.HandlerFunc) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/items/:id", fn)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/"+uuid.NewString(), nil)
	req.Header.Set("X-Request-ID", "req-1")
	engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"field validation", shared.NewDomainError("INVALID_PRICE", "Price must be positive"), http.StatusBadRequest, dto.ErrCodeValidation},
		{"already paid", shared.NewDomainError("ORDER_ALREADY_PAID", "Order is already paid"), http.StatusConflict, dto.ErrCodeOrderAlreadyPaid},
		{"insufficient stock", shared.NewDomainError("INSUFFICIENT_STOCK", "Only 1 left"), http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"forbidden", shared.NewDomainError("FORBIDDEN", "No access"), http.StatusForbidden, dto.ErrCodeForbidden},
		{"storage disabled", shared.NewDomainError("STORAGE_DISABLED", "Off"), http.StatusServiceUnavailable, dto.ErrCodeStorageDisabled},
		{"unknown domain code", shared.NewDomainError("SOMETHING_ODD", "odd"), http.StatusInternalServerError, dto.ErrCodeInternal},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w, resp := serve(t, func(c *gin.Context) { h.HandleError(c, tt.err) })

			assert.Equal(t, tt.wantStatus, w.Code)
			require.NotNil(t, resp.Error)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestHandleError_HidesInternalMessages(t *testing.T) {
	h := &BaseHandler{}
	_, resp := serve(t, func(c *gin.Context) { h.HandleError(c, errors.New("pq: password authentication failed")) })

	require.NotNil(t, resp.Error)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
}

func TestPathID(t *testing.T) {
	h := &BaseHandler{}

	w, _ := serve(t, func(c *gin.Context) {
		id, ok := h.pathID(c)
		if assert.True(t, ok) {
			assert.NotEqual(t, uuid.Nil, id)
			c.Status(http.StatusOK)
		}
	})
	assert.Equal(t, http.StatusOK, w.Code)

	engine := gin.New()
	engine.GET("/items/:id", func(c *gin.Context) { _, _ = h.pathID(c) })
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentUserID_WithoutToken(t *testing.T) {
	h := &BaseHandler{}
	w, resp := serve(t, func(c *gin.Context) { _, _ = h.currentUserID(c) })

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Not authorized, no token", resp.Error.Message)
}

func TestCaller(t *testing.T) {
	h := &BaseHandler{}
	userID := uuid.New()

	_, _ = serve(t, func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Set(middleware.JWTIsAdminKey, true)

		caller, ok := h.caller(c)
		assert.True(t, ok)
		assert.Equal(t, userID, caller.UserID)
		assert.True(t, caller.IsAdmin)
		c.Status(http.StatusOK)
	})
}
