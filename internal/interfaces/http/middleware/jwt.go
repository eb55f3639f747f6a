package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTIsAdminKey  = "jwt_is_admin"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional; when set, revoked tokens are rejected
	TokenBlacklist auth.TokenBlacklist
	Logger         *zap.Logger
}

// JWTAuth requires a valid, unrevoked access token and stores its claims
// in the gin context
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, cfg.Logger, auth.ErrInvalidToken, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil {
			ctx := c.Request.Context()

			// a blacklist outage does not lock every user out
			blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
			if err != nil {
				cfg.Logger.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
			} else if blacklisted {
				abortUnauthorized(c, cfg.Logger, auth.ErrTokenBlacklisted, "Token has been revoked")
				return
			}

			invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
			if err != nil {
				cfg.Logger.Error("Failed to check user token invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
			} else if invalidated {
				abortUnauthorized(c, cfg.Logger, auth.ErrTokenBlacklisted, "User session has been invalidated")
				return
			}
		}

		setClaims(c, claims)

		ctx, reqLogger := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(logger.GinLoggerKey, reqLogger)

		c.Next()
	}
}

// RequireAdmin rejects callers whose token does not carry the admin flag.
// It must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !claims.IsAdmin {
			logger.GetGinLogger(c).Warn("Admin route denied", zap.String("user_id", claims.UserID))
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Not authorized as an admin", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTIsAdminKey, claims.IsAdmin)
	c.Set(logger.GinUserIDKey, claims.UserID)
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := dto.ErrCodeUnauthorized, "Not authorized, token failed"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid), errors.Is(err, auth.ErrInvalidClaims):
		code = dto.ErrCodeTokenInvalid
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the authenticated user's ID
func GetJWTUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(JWTUserIDKey))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// IsAdmin reports whether the authenticated caller is an admin
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(JWTIsAdminKey)
}
