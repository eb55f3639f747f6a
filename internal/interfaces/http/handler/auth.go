package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and token endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @Summary      Register a customer account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RegisterRequest true "Account"
// @Success      201 {object} dto.Response{data=identityapp.AuthResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /users [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login godoc
// @Summary      Sign in with email and password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=identityapp.AuthResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /users/auth [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh godoc
// @Summary      Exchange a refresh token
// @Description  The presented refresh token is revoked
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identityapp.AuthResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /users/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Sign out
// @Description  Revokes the access token, and the refresh token when supplied
// @Tags         users
// @Accept       json
// @Param        request body identityapp.LogoutRequest false "Refresh token"
// @Success      204
// @Security     BearerAuth
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	userID, ok := h.currentUserID(c)
	if !ok || claims == nil {
		return
	}

	var req identityapp.LogoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	err := h.authService.Logout(c.Request.Context(), identityapp.LogoutInput{
		UserID:       userID,
		TokenJTI:     claims.ID,
		TokenTTL:     claims.RemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
