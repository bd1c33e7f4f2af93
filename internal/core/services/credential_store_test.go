package services

import (
	"context"
	"testing"

	"storefront/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialStore_CreateStoresHashAndRole(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user, err := env.store.Create(ctx, CreateUserInput{
		FullName:    "  Jane Doe ",
		Email:       "Jane@Example.com",
		PhoneNumber: "555",
	}, goodPassword, domain.RoleStaff)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", user.FullName)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NotEqual(t, goodPassword, user.PasswordHash)
	assert.True(t, env.store.VerifyPassword(user, goodPassword))
	assert.False(t, env.store.VerifyPassword(user, "nope"))

	roles, err := env.store.RolesForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Staff"}, roles)
}

func TestCredentialStore_FindTranslatesNotFound(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.store.FindByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = env.store.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.ErrorIs(t, env.store.SetActive(ctx, 1, false), domain.ErrUserNotFound)
}

func TestCredentialStore_LoginWithoutAccountRunsBcrypt(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	inactive := env.createUser(t, "inactive@example.com", goodPassword, domain.RoleCustomer)
	require.NoError(t, env.store.SetActive(ctx, inactive.ID, false))

	assert.Empty(t, env.store.dummyHash)

	_, err := env.sessions.Login(ctx, &LoginInput{Email: "ghost@example.com", Password: goodPassword}, meta)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NotEmpty(t, env.store.dummyHash)
	cost, err := bcrypt.Cost([]byte(env.store.dummyHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	first := env.store.dummyHash
	_, err = env.sessions.Login(ctx, &LoginInput{Email: "inactive@example.com", Password: goodPassword}, meta)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, first, env.store.dummyHash)
}

func TestCredentialStore_EffectiveRole(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "roles@example.com", goodPassword, domain.RoleAdmin)

	role, err := env.store.EffectiveRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	require.NoError(t, env.store.SetRoles(ctx, user.ID, []domain.Role{domain.RoleCustomer, domain.RoleAdmin}))
	role, err = env.store.EffectiveRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, role)

	require.NoError(t, env.store.SetRoles(ctx, user.ID, nil))
	role, err = env.store.EffectiveRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, role)
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"admin@x.com", true},
		{"first.last+tag@shop.example.co", true},
		{"", false},
		{"plain", false},
		{"no-domain@", false},
		{"no-tld@localhost", false},
		{"Jane <jane@example.com>", false},
		{"two@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, validEmail(tt.email))
		})
	}
}
