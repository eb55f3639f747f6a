package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	IsAdmin      bool       `gorm:"not null;default:false"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		IsAdmin:           m.IsAdmin,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.IsAdmin = u.IsAdmin
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
