package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"storefront/internal/adapters/persistence/models"
	"storefront/internal/adapters/persistence/repositories"
	"storefront/internal/core/domain"
	"storefront/internal/pkg/jwt"
	"storefront/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-with-enough-length-0123456789"

type testEnv struct {
	db       *gorm.DB
	store    *CredentialStore
	signer   *jwt.Signer
	tokens   repositories.RefreshTokenRepository
	sessions *SessionService
	users    *UserService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"),
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))

	roleRepo := repositories.NewRoleRepository(db)
	require.NoError(t, roleRepo.EnsureRoles(context.Background(), []string{"Admin", "Staff", "Customer"}))

	store := NewCredentialStore(
		repositories.NewUserRepository(db),
		roleRepo,
		password.DefaultPolicy(),
		bcrypt.MinCost,
	)
	signer := jwt.NewSigner(jwt.SignerConfig{
		Secret:    testSecret,
		Issuer:    "storefront-test",
		Audience:  "storefront-test",
		AccessTTL: time.Hour,
	})
	tokens := repositories.NewRefreshTokenRepository(db)

	return &testEnv{
		db:       db,
		store:    store,
		signer:   signer,
		tokens:   tokens,
		sessions: NewSessionService(store, signer, tokens, 7*24*time.Hour),
		users:    NewUserService(store),
	}
}

func (e *testEnv) createUser(t *testing.T, email, pass string, role domain.Role) *models.User {
	t.Helper()
	user, err := e.store.Create(context.Background(), CreateUserInput{
		FullName: "Test " + string(role),
		Email:    email,
	}, pass, role)
	require.NoError(t, err)
	return user
}

func (e *testEnv) countTokens(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.RefreshToken{}).Count(&n).Error)
	return n
}

func (e *testEnv) countUsers(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&n).Error)
	return n
}
