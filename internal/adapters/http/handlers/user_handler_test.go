package handlers

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/core/domain"
	"storefront/internal/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeUsers struct {
	err      error
	params   *pagination.Params
	actorID  uint
	targetID uint
	role     string
	active   *bool
	profiles []*domain.UserProfile
}

func (f *fakeUsers) ListUsers(_ context.Context, params *pagination.Params) (*pagination.Page[*domain.UserProfile], error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return pagination.NewPage(f.profiles, params, int64(len(f.profiles))), nil
}

func (f *fakeUsers) GetUser(_ context.Context, id uint) (*domain.UserProfile, error) {
	f.targetID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UserProfile{ID: id, Role: domain.RoleCustomer}, nil
}

func (f *fakeUsers) SetActive(_ context.Context, actorID, id uint, active bool) (*domain.UserProfile, error) {
	f.actorID, f.targetID, f.active = actorID, id, &active
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UserProfile{ID: id, IsActive: active}, nil
}

func (f *fakeUsers) SetRole(_ context.Context, actorID, id uint, roleName string) (*domain.UserProfile, error) {
	f.actorID, f.targetID, f.role = actorID, id, roleName
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UserProfile{ID: id, Role: domain.Role(roleName)}, nil
}

func newUserApp(f *fakeUsers) *fiber.App {
	h := NewUserHandler(f)
	app := fiber.New()

	asAdmin := func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, uint(1))
		return c.Next()
	}

	app.Get("/users", h.ListUsers)
	app.Get("/users/:id", h.GetUser)
	app.Put("/users/:id/role", asAdmin, h.SetRole)
	app.Put("/users/:id/active", asAdmin, h.SetActive)
	return app
}

func TestUserHandler_ListUsersPagination(t *testing.T) {
	f := &fakeUsers{profiles: []*domain.UserProfile{{ID: 1}, {ID: 2}}}
	app := newUserApp(f)

	resp, env := doJSON(t, app, http.MethodGet, "/users?page=2&limit=500", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, f.params.Page)
	assert.Equal(t, pagination.MaxLimit, f.params.Limit)

	data := env.Data.(map[string]interface{})
	assert.Len(t, data["items"], 2)
	assert.Equal(t, float64(2), data["meta"].(map[string]interface{})["total"])
}

func TestUserHandler_GetUser(t *testing.T) {
	f := &fakeUsers{}
	app := newUserApp(f)

	resp, _ := doJSON(t, app, http.MethodGet, "/users/5", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint(5), f.targetID)

	resp, env := doJSON(t, app, http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid user ID", env.Message)

	f.err = domain.ErrUserNotFound
	resp, _ = doJSON(t, app, http.MethodGet, "/users/5", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserHandler_SetRole(t *testing.T) {
	f := &fakeUsers{}
	app := newUserApp(f)

	resp, env := doJSON(t, app, http.MethodPut, "/users/3/role", `{"role":"Staff"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint(1), f.actorID)
	assert.Equal(t, uint(3), f.targetID)
	assert.Equal(t, "Staff", f.role)
	assert.Equal(t, "Staff", env.Data.(map[string]interface{})["role"])

	f.err = domain.ErrInvalidRole
	resp, env = doJSON(t, app, http.MethodPut, "/users/3/role", `{"role":"Owner"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Role must be one of Admin, Staff, Customer.", env.Message)

	f.err = domain.ErrCannotModifySelf
	resp, _ = doJSON(t, app, http.MethodPut, "/users/1/role", `{"role":"Customer"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserHandler_SetActive(t *testing.T) {
	f := &fakeUsers{}
	app := newUserApp(f)

	resp, _ := doJSON(t, app, http.MethodPut, "/users/4/active", `{"isActive":false}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	if assert.NotNil(t, f.active) {
		assert.False(t, *f.active)
	}

	resp, env := doJSON(t, app, http.MethodPut, "/users/4/active", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "isActive is required", env.Message)
}
