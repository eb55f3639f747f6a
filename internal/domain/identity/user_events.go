package identity

import (
	"github.com/storefront/backend/internal/domain/shared"
)

const AggregateTypeUser = "User"

const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserPasswordChanged = "UserPasswordChanged"
	EventTypeUserAdminChanged    = "UserAdminChanged"
)

// UserCreatedEvent is published when a user registers
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID),
		Username:        user.Username,
		Email:           user.Email,
	}
}

// UserPasswordChangedEvent is published when a user changes password
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
}

func NewUserPasswordChangedEvent(user *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, AggregateTypeUser, user.ID),
	}
}

// UserAdminChangedEvent is published when admin rights are granted or revoked
type UserAdminChangedEvent struct {
	shared.BaseDomainEvent
	IsAdmin bool `json:"is_admin"`
}

func NewUserAdminChangedEvent(user *User) *UserAdminChangedEvent {
	return &UserAdminChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserAdminChanged, AggregateTypeUser, user.ID),
		IsAdmin:         user.IsAdmin,
	}
}
