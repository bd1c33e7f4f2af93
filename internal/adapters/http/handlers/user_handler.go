package handlers

import (
	"storefront/internal/adapters/http/middleware"
	"storefront/internal/core/services"
	"storefront/internal/pkg/pagination"
	"storefront/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	users services.UserAdministrator
}

// NewUserHandler creates a new user handler
func NewUserHandler(users services.UserAdministrator) *UserHandler {
	return &UserHandler{users: users}
}

// SetRoleRequest represents set role request body
type SetRoleRequest struct {
	Role string `json:"role"`
}

// SetActiveRequest represents set active request body
type SetActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

// ListUsers lists all users (admin only)
// @Summary List users
// @Description List users with their effective role (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response{data=pagination.Page[domain.UserProfile]}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page, err := h.users.ListUsers(c.Context(), pagination.GetParams(c))
	if err != nil {
		return handleServiceError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", page)
}

// GetUser gets a user by ID (staff or admin)
// @Summary Get user by ID
// @Description Get a user's profile (staff or admin)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=domain.UserProfile}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	profile, err := h.users.GetUser(c.Context(), uint(id))
	if err != nil {
		return handleServiceError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", profile)
}

// SetRole replaces a user's role (admin only)
// @Summary Set user role
// @Description Set a user's role to Admin, Staff or Customer; applies from the user's next token refresh
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "Role"
// @Success 200 {object} response.Response{data=domain.UserProfile}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/role [put]
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	actorID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.users.SetRole(c.Context(), actorID, uint(id), req.Role)
	if err != nil {
		return handleServiceError(c, err, "Failed to set role")
	}

	return response.Success(c, "Role updated successfully", profile)
}

// SetActive enables or disables a user (admin only)
// @Summary Set user active flag
// @Description Enable or disable sign-in for a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} response.Response{data=domain.UserProfile}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/active [put]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	actorID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return response.BadRequest(c, "isActive is required")
	}

	profile, err := h.users.SetActive(c.Context(), actorID, uint(id), *req.IsActive)
	if err != nil {
		return handleServiceError(c, err, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", profile)
}
