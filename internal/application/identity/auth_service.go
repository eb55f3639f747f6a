package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrUsernameTaken      = shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	ErrEmailTaken         = shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
// publisher may be nil.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		publisher:  publisher,
		logger:     logger.Named("auth_service"),
	}
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := checkAvailable(ctx, s.userRepo, req.Username, req.Email); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	publishUserEvents(ctx, s.publisher, s.logger, user)

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return s.issue(user)
}

// Login authenticates by email and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// login still succeeds
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair. The old refresh token
// is revoked, and the admin flag is re-read from the user record.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if err := s.checkNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return nil, err
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return s.issue(user)
}

// Logout revokes the access token until it expires, and the refresh token
// when one is supplied
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		return err
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		switch {
		case err != nil:
			s.logger.Debug("Ignoring unusable refresh token on logout", zap.Error(err))
		case claims.UserID != input.UserID.String():
			s.logger.Warn("Refresh token on logout belongs to another user", zap.String("user_id", input.UserID.String()))
		default:
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
				return err
			}
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

func (s *AuthService) checkNotRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return err
	}
	if invalidated {
		return ErrTokenRevoked
	}
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}
	return &AuthResponse{
		User:   ToUserResponse(user),
		Tokens: toTokenResponse(pair),
	}, nil
}

// checkAvailable rejects a username or email held by another account
func checkAvailable(ctx context.Context, repo identity.UserRepository, username, email string) error {
	if username != "" {
		exists, err := repo.ExistsByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameTaken
		}
	}
	if email != "" {
		exists, err := repo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}
	}
	return nil
}

func publishUserEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, user *identity.User) {
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("Failed to publish user events", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
