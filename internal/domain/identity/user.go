package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a variable so tests can lower it
var bcryptCost = bcrypt.DefaultCost

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// User is a storefront customer or administrator.
// It is the aggregate root for user-related operations.
type User struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	LastLoginAt  *time.Time
}

// NewUser creates a new customer account
func NewUser(username, email, password string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// NewAdminUser creates a new account with admin rights
func NewAdminUser(username, email, password string) (*User, error) {
	user, err := NewUser(username, email, password)
	if err != nil {
		return nil, err
	}
	user.IsAdmin = true
	return user, nil
}

// SetUsername changes the username
func (u *User) SetUsername(username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return err
	}
	u.Username = username
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// SetEmail changes the email
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// ChangePassword validates and stores a new password hash
func (u *User) ChangePassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// SetAdmin grants or revokes admin rights
func (u *User) SetAdmin(isAdmin bool) {
	if u.IsAdmin == isAdmin {
		return
	}
	u.IsAdmin = isAdmin
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserAdminChangedEvent(u))
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores bytes past 72
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
