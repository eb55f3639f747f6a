package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	ErrCannotDeleteAdmin    = shared.NewDomainError("CANNOT_DELETE_ADMIN", "Cannot delete an admin user")
	ErrCannotChangeOwnAdmin = shared.NewDomainError("CANNOT_CHANGE_OWN_ADMIN", "You cannot change your own admin rights")
)

// UserService handles profiles and admin user management
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	publisher shared.EventPublisher
	revokeTTL time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new user service. Tokens of deleted users and
// users whose admin flag changes are revoked for revokeTTL, which should
// be the refresh token lifetime.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	publisher shared.EventPublisher,
	revokeTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		publisher: publisher,
		revokeTTL: revokeTTL,
		logger:    logger.Named("user_service"),
	}
}

// GetProfile returns the caller's account
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes the caller's username, email or password
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var username, email string
	if req.Username != nil && *req.Username != user.Username {
		username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		email = *req.Email
	}
	if err := checkAvailable(ctx, s.userRepo, username, email); err != nil {
		return nil, err
	}

	if username != "" {
		if err := user.SetUsername(username); err != nil {
			return nil, err
		}
	}
	if email != "" {
		if err := user.SetEmail(email); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := user.ChangePassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	publishUserEvents(ctx, s.publisher, s.logger, user)

	s.logger.Info("Profile updated", zap.String("user_id", userID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListUsers returns one page of accounts
func (s *UserService) ListUsers(ctx context.Context, query ListUsersQuery) (*UserListResponse, error) {
	filter := shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Search:   query.Search,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize(100)

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &UserListResponse{
		Users:    page.Items,
		Page:     page.Page,
		Pages:    page.TotalPages,
		PageSize: page.PageSize,
		Total:    page.Total,
	}, nil
}

// DeleteUser removes a customer account. Admin accounts cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return ErrCannotDeleteAdmin
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.revokeTokens(ctx, id)

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// SetAdmin grants or revokes admin rights. The target's existing tokens
// are revoked so the new flag takes effect on their next login.
func (s *UserService) SetAdmin(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) (*UserResponse, error) {
	if actorID == id {
		return nil, ErrCannotChangeOwnAdmin
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin != isAdmin {
		user.SetAdmin(isAdmin)
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		publishUserEvents(ctx, s.publisher, s.logger, user)
		s.revokeTokens(ctx, id)

		s.logger.Info("Admin rights changed",
			zap.String("user_id", id.String()),
			zap.String("actor_id", actorID.String()),
			zap.Bool("is_admin", isAdmin))
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) revokeTokens(ctx context.Context, id uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, id.String(), s.revokeTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", id.String()), zap.Error(err))
	}
}
