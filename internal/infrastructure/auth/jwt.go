package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims is the payload of both token kinds. Refresh tokens leave Username
// and IsAdmin empty.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// UserUUID parses the user id claim.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// IssuedAtTime returns the iat claim, or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// RemainingTTL is how long the token stays valid. Never negative.
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// TokenPair is what login, register and refresh hand back to the client
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// GenerateTokenInput identifies the user a pair is issued to
type GenerateTokenInput struct {
	UserID   uuid.UUID
	Username string
	IsAdmin  bool
}

type signer struct {
	secret []byte
	ttl    time.Duration
}

// JWTService issues and verifies HS256 tokens. Access and refresh tokens are
// signed with separate secrets so one can never be replayed as the other.
type JWTService struct {
	keys   map[TokenType]signer
	issuer string
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		keys: map[TokenType]signer{
			TokenTypeAccess:  {secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
			TokenTypeRefresh: {secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		},
		issuer: cfg.Issuer,
	}
}

// AccessTTL is the lifetime of newly issued access tokens.
func (s *JWTService) AccessTTL() time.Duration { return s.keys[TokenTypeAccess].ttl }

// RefreshTTL is the lifetime of newly issued refresh tokens.
func (s *JWTService) RefreshTTL() time.Duration { return s.keys[TokenTypeRefresh].ttl }

// GenerateTokenPair issues a fresh access and refresh token.
// The refresh token carries only the user ID; the admin flag is re-read
// from the user record when it is exchanged.
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	now := time.Now()

	access, err := s.sign(now, &Claims{
		UserID:    input.UserID.String(),
		Username:  input.Username,
		IsAdmin:   input.IsAdmin,
		TokenType: TokenTypeAccess,
	})
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(now, &Claims{
		UserID:    input.UserID.String(),
		TokenType: TokenTypeRefresh,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  now.Add(s.AccessTTL()),
		RefreshTokenExpiresAt: now.Add(s.RefreshTTL()),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) sign(now time.Time, claims *Claims) (string, error) {
	key := s.keys[claims.TokenType]
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(key.ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
}

// ValidateAccessToken verifies an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken verifies a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, TokenTypeRefresh)
}

func (s *JWTService) parse(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.keys[want].secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	case !token.Valid:
		return nil, ErrInvalidClaims
	}

	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}
