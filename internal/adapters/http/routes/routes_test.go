package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/persistence/models"
	"storefront/internal/config"
	"storefront/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminEmail    = "admin@x.com"
	adminPassword = "C0rrect!"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "routes-test-secret-0123456789abcdef",
			Issuer:           "storefront-test",
			Audience:         "storefront-test",
			AccessTokenMins:  60,
			RefreshTokenDays: 7,
		},
		Password: config.PasswordConfig{
			MinLength:     6,
			RequireDigit:  true,
			RequireLower:  true,
			RequireUpper:  true,
			RequireSymbol: true,
			BcryptCost:    bcrypt.MinCost,
		},
		Seed: config.SeedConfig{
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
			AdminName:     "Admin",
		},
	}
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

	cfg := testConfig()
	require.NoError(t, config.NewSeeder(db, cfg).Run(context.Background()))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, db, cfg)
	return app
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func (c client) do(method, path, token string, body interface{}) (*http.Response, response.Response) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var env response.Response
	require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	return resp, env
}

func field(env response.Response, key string) interface{} {
	data, _ := env.Data.(map[string]interface{})
	return data[key]
}

func TestAuthFlow(t *testing.T) {
	c := client{t: t, app: setupApp(t)}

	resp, env := c.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    adminEmail,
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, "Admin", field(env, "role"))
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")

	access := field(env, "accessToken").(string)
	refresh := field(env, "refreshToken").(string)

	resp, env = c.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, adminEmail, field(env, "email"))

	resp, env = c.do(http.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := field(env, "refreshToken").(string)
	assert.NotEqual(t, refresh, rotated)

	resp, env = c.do(http.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{"refreshToken": refresh})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or expired refresh token.", env.Message)

	resp, env = c.do(http.MethodGet, "/api/v1/auth/sessions", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, env.Data, 1)

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/revoke", access, fiber.Map{"refreshToken": rotated})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/revoke", access, fiber.Map{"refreshToken": rotated})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = c.do(http.MethodPost, "/api/v1/auth/revoke", access, fiber.Map{"refreshToken": "never-issued"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Token not found.", env.Message)

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{"refreshToken": rotated})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterAndAdministration(t *testing.T) {
	c := client{t: t, app: setupApp(t)}

	resp, env := c.do(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"fullName":        "Jane Doe",
		"email":           "jane@example.com",
		"password":        "Passw0rd!",
		"confirmPassword": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.Equal(t, "Customer", field(env, "role"))
	customerToken := field(env, "accessToken").(string)
	customerID := int(field(env, "userId").(float64))

	resp, env = c.do(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"fullName":        "Jane Again",
		"email":           "JANE@example.com",
		"password":        "Passw0rd!",
		"confirmPassword": "Passw0rd!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email is already in use.", env.Message)

	resp, _ = c.do(http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = c.do(http.MethodGet, "/api/v1/users", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, env = c.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    adminEmail,
		"password": adminPassword,
	})
	adminToken := field(env, "accessToken").(string)

	resp, env = c.do(http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, field(env, "items"), 2)

	resp, _ = c.do(http.MethodGet, "/api/v1/users/999", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	path := fmt.Sprintf("/api/v1/users/%d/role", customerID)
	resp, env = c.do(http.MethodPut, path, adminToken, fiber.Map{"role": "Staff"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, "Staff", field(env, "role"))

	// The old access token still carries Customer until the next sign-in.
	resp, _ = c.do(http.MethodGet, "/api/v1/users/1", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, env = c.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    "jane@example.com",
		"password": "Passw0rd!",
	})
	assert.Equal(t, "Staff", field(env, "role"))
	staffToken := field(env, "accessToken").(string)

	resp, _ = c.do(http.MethodGet, "/api/v1/users/1", staffToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	path = fmt.Sprintf("/api/v1/users/%d/active", customerID)
	resp, _ = c.do(http.MethodPut, path, adminToken, fiber.Map{"isActive": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = c.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    "jane@example.com",
		"password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid email or password.", env.Message)
}

func TestChangePasswordOverHTTP(t *testing.T) {
	c := client{t: t, app: setupApp(t)}

	_, env := c.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    adminEmail,
		"password": adminPassword,
	})
	token := field(env, "accessToken").(string)

	resp, env := c.do(http.MethodPost, "/api/v1/auth/change-password", token, fiber.Map{
		"currentPassword":    "wrong",
		"newPassword":        "N3wPass!",
		"confirmNewPassword": "N3wPass!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"Incorrect password."}, env.Errors)

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/change-password", token, fiber.Map{
		"currentPassword":    adminPassword,
		"newPassword":        "N3wPass!",
		"confirmNewPassword": "N3wPass!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    adminEmail,
		"password": "N3wPass!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPublicEndpoints(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/", "/health", "/api/v1/"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
