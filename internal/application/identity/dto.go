package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// RegisterRequest creates a customer account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest authenticates by email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest optionally carries the refresh token so it is revoked too
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutInput identifies the access token being revoked
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	TokenTTL     time.Duration
	RefreshToken string
}

// UpdateProfileRequest changes any of the caller's own fields
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// ListUsersQuery pages through accounts
type ListUsersQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SetAdminRequest grants or revokes admin rights
type SetAdminRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}

// UserResponse is a user account in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	IsAdmin     bool       `json:"isAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TokenResponse is an issued access and refresh token pair
type TokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// UserListResponse is one page of users
type UserListResponse struct {
	Users    []UserResponse `json:"users"`
	Page     int            `json:"page"`
	Pages    int            `json:"pages"`
	PageSize int            `json:"pageSize"`
	Total    int64          `json:"total"`
}

// ToUserResponse converts a domain User
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toTokenResponse(p *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}
