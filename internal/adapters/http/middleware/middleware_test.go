package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/config"
	"storefront/internal/core/domain"
	"storefront/internal/pkg/jwt"
	"storefront/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	identities map[string]*domain.Identity
	err        error
}

func (f *fakeValidator) ValidateAccessToken(token string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id, ok := f.identities[token]; ok {
		return id, nil
	}
	return nil, jwt.ErrTokenInvalid
}

func newProtectedApp(v *fakeValidator, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})

	handlers := append([]fiber.Handler{AuthMiddleware(v)}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		return c.JSON(fiber.Map{
			"userID": id,
			"email":  c.Locals(LocalEmail),
			"role":   c.Locals(LocalRole),
		})
	})
	app.Get("/protected", handlers...)
	return app
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v))
}

func TestAuthMiddleware(t *testing.T) {
	v := &fakeValidator{identities: map[string]*domain.Identity{
		"good": {UserID: 7, Email: "a@b.co", Role: domain.RoleStaff},
	}}
	app := newProtectedApp(v)

	t.Run("valid bearer sets locals", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		decode(t, resp, &body)
		assert.Equal(t, float64(7), body["userID"])
		assert.Equal(t, "a@b.co", body["email"])
		assert.Equal(t, "Staff", body["role"])
	})

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Access token required"},
		{"wrong scheme", "Basic good", "Access token required"},
		{"invalid token", "Bearer bad", "Invalid access token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			var body response.Response
			decode(t, resp, &body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		expired := newProtectedApp(&fakeValidator{err: jwt.ErrTokenExpired})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "bearer anything")

		resp, err := expired.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body response.Response
		decode(t, resp, &body)
		assert.Equal(t, "Access token expired", body.Message)
	})
}

func TestRoleMiddleware(t *testing.T) {
	v := &fakeValidator{identities: map[string]*domain.Identity{
		"admin":    {UserID: 1, Role: domain.RoleAdmin},
		"staff":    {UserID: 2, Role: domain.RoleStaff},
		"customer": {UserID: 3, Role: domain.RoleCustomer},
	}}
	adminApp := newProtectedApp(v, AdminOnly())
	staffApp := newProtectedApp(v, StaffOrAdmin())

	tests := []struct {
		app   *fiber.App
		token string
		want  int
	}{
		{adminApp, "admin", http.StatusOK},
		{adminApp, "staff", http.StatusForbidden},
		{adminApp, "customer", http.StatusForbidden},
		{staffApp, "admin", http.StatusOK},
		{staffApp, "staff", http.StatusOK},
		{staffApp, "customer", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)

		resp, err := tt.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, tt.token)
	}
}

func TestRoleMiddleware_WithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", AdminOnly(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNoCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
}

func TestRateLimiters(t *testing.T) {
	app := fiber.New()
	app.Post("/login", AuthRateLimiter(2), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Post("/open", AuthRateLimiter(0), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var body response.Response
	decode(t, resp, &body)
	assert.False(t, body.Success)

	for i := 0; i < 10; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/open", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(http.StatusTeapot, "short and stout") })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	var body response.Response
	decode(t, resp, &body)
	assert.Equal(t, "short and stout", body.Message)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetup_RegistersMiddleware(t *testing.T) {
	app := fiber.New()
	Setup(app, &config.Config{AppMode: "dev", RateLimit: config.RateLimitConfig{General: 0}})
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
