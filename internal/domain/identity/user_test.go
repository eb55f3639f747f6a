package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func TestNewUser(t *testing.T) {
	t.Run("creates user with valid inputs", func(t *testing.T) {
		user, err := NewUser(" JohnDoe ", "John@Example.com", "password123")
		require.NoError(t, err)

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "johndoe", user.Username)
		assert.Equal(t, "john@example.com", user.Email)
		assert.False(t, user.IsAdmin)
		assert.NotEqual(t, "password123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("password123"))
		assert.False(t, user.VerifyPassword("wrong-pass1"))

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUserCreated, events[0].EventType())
	})

	t.Run("creates admin", func(t *testing.T) {
		user, err := NewAdminUser("admin", "admin@example.com", "admin1234")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	tests := []struct {
		name        string
		username    string
		email       string
		password    string
		errContains string
	}{
		{"short username", "ab", "a@b.co", "password1", "at least 3"},
		{"bad username chars", "john doe", "a@b.co", "password1", "can only contain"},
		{"long username", strings.Repeat("a", 101), "a@b.co", "password1", "cannot exceed 100"},
		{"missing email", "john", "", "password1", "Email cannot be empty"},
		{"bad email", "john", "not-an-email", "password1", "Invalid email"},
		{"short password", "john", "a@b.co", "pass1", "at least 8"},
		{"password without digit", "john", "a@b.co", "password", "one letter and one number"},
		{"password too long", "john", "a@b.co", strings.Repeat("a1", 40), "cannot exceed 72"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestUser_ProfileChanges(t *testing.T) {
	user, err := NewUser("jane", "jane@example.com", "password123")
	require.NoError(t, err)
	user.ClearDomainEvents()

	require.NoError(t, user.SetUsername("Jane.D"))
	assert.Equal(t, "jane.d", user.Username)

	require.NoError(t, user.SetEmail("JANE@shop.io"))
	assert.Equal(t, "jane@shop.io", user.Email)
	require.Error(t, user.SetEmail("broken"))

	require.NoError(t, user.ChangePassword("newpass456"))
	assert.True(t, user.VerifyPassword("newpass456"))
	assert.False(t, user.VerifyPassword("password123"))
	require.Len(t, user.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeUserPasswordChanged, user.GetDomainEvents()[0].EventType())

	assert.Equal(t, 4, user.GetVersion())
}

func TestUser_SetAdmin(t *testing.T) {
	user, err := NewUser("jane", "jane@example.com", "password123")
	require.NoError(t, err)
	user.ClearDomainEvents()

	user.SetAdmin(false)
	assert.Empty(t, user.GetDomainEvents())

	user.SetAdmin(true)
	assert.True(t, user.IsAdmin)
	require.Len(t, user.GetDomainEvents(), 1)
	event := user.GetDomainEvents()[0].(*UserAdminChangedEvent)
	assert.True(t, event.IsAdmin)
}

func TestUser_RecordLogin(t *testing.T) {
	user, err := NewUser("jane", "jane@example.com", "password123")
	require.NoError(t, err)
	assert.Nil(t, user.LastLoginAt)
	user.RecordLogin()
	require.NotNil(t, user.LastLoginAt)
}
