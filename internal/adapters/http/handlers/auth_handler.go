package handlers

import (
	"strings"
	"time"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/config"
	"storefront/internal/core/domain"
	"storefront/internal/core/services"
	"storefront/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const refreshCookieName = "refresh_token"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	sessions services.Authenticator
	cfg      *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions services.Authenticator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cfg:      cfg,
	}
}

// RefreshTokenRequest carries a refresh token in the body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RevokeAllResult reports how many refresh tokens were revoked
type RevokeAllResult struct {
	Revoked int64 `json:"revoked"`
}

// Register handles user registration
// @Summary Register new customer
// @Description Create a Customer account and sign it in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response{data=domain.AuthResult}
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var missing []string
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "Email is required.")
	}
	if req.Password == "" {
		missing = append(missing, "Password is required.")
	}
	if len(missing) > 0 {
		return response.BadRequest(c, "Registration failed.", missing...)
	}
	req.Email = strings.TrimSpace(req.Email)

	result, err := h.sessions.Register(c.Context(), &req, requestMeta(c))
	if err != nil {
		return handleServiceError(c, err, "Failed to register user")
	}

	h.setRefreshCookie(c, result.RefreshToken)
	return response.Created(c, "User registered successfully", result)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password and return an access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response{data=domain.AuthResult}
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var missing []string
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "Email is required.")
	}
	if req.Password == "" {
		missing = append(missing, "Password is required.")
	}
	if len(missing) > 0 {
		return response.BadRequest(c, "Invalid email or password.", missing...)
	}
	req.Email = strings.TrimSpace(req.Email)

	result, err := h.sessions.Login(c.Context(), &req, requestMeta(c))
	if err != nil {
		return handleServiceError(c, err, "Failed to login")
	}

	h.setRefreshCookie(c, result.RefreshToken)
	return response.Success(c, "Login successful", result)
}

// RefreshToken handles token refresh
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new access/refresh pair; the presented token is retired
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Response{data=domain.AuthResult}
// @Failure 400 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	token, err := h.presentedRefreshToken(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if token == "" {
		return response.BadRequest(c, "Refresh token is required.")
	}

	result, err := h.sessions.RefreshToken(c.Context(), token, requestMeta(c))
	if err != nil {
		h.clearRefreshCookie(c)
		return handleServiceError(c, err, "Failed to refresh token")
	}

	h.setRefreshCookie(c, result.RefreshToken)
	return response.Success(c, "Token refreshed successfully", result)
}

// Revoke handles refresh token revocation
// @Summary Revoke refresh token
// @Description Revoke a refresh token; repeating the call is harmless
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/revoke [post]
func (h *AuthHandler) Revoke(c *fiber.Ctx) error {
	token, err := h.presentedRefreshToken(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if token == "" {
		return response.BadRequest(c, "Refresh token is required.")
	}

	if err := h.sessions.RevokeToken(c.Context(), token, requestMeta(c)); err != nil {
		return handleServiceError(c, err, "Failed to revoke token")
	}

	h.clearRefreshCookie(c)
	return response.Success(c, "Token revoked", nil)
}

// RevokeAll handles sign-out from every device
// @Summary Revoke all refresh tokens
// @Description Revoke every refresh token of the current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=RevokeAllResult}
// @Failure 401 {object} response.Response
// @Router /auth/revoke-all [post]
func (h *AuthHandler) RevokeAll(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	n, err := h.sessions.RevokeAllForUser(c.Context(), userID, requestMeta(c))
	if err != nil {
		return handleServiceError(c, err, "Failed to revoke sessions")
	}

	h.clearRefreshCookie(c)
	return response.Success(c, "All sessions revoked", RevokeAllResult{Revoked: n})
}

// ChangePassword handles password change
// @Summary Change password
// @Description Change the current user's password; existing sessions stay signed in
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Passwords"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.sessions.ChangePassword(c.Context(), userID, &req); err != nil {
		return handleServiceError(c, err, "Failed to change password")
	}

	return response.Success(c, "Password changed successfully", nil)
}

// Me returns the current user info
// @Summary Get current user
// @Description Get the currently authenticated user's profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.UserProfile}
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	profile, err := h.sessions.GetCurrentUser(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", profile)
}

// Sessions lists the current user's active sessions
// @Summary List active sessions
// @Description List the current user's unexpired, unrevoked refresh tokens without their values
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.SessionInfo}
// @Failure 401 {object} response.Response
// @Router /auth/sessions [get]
func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	sessions, err := h.sessions.ListSessions(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to list sessions")
	}

	return response.Success(c, "Sessions retrieved successfully", sessions)
}

// presentedRefreshToken reads the token from the JSON body, falling back to the cookie when enabled.
// An empty token with a nil error means none was presented.
func (h *AuthHandler) presentedRefreshToken(c *fiber.Ctx) (string, error) {
	var req RefreshTokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return "", err
		}
	}

	token := strings.TrimSpace(req.RefreshToken)
	if token == "" && h.cfg.Cookie.Enabled {
		token = c.Cookies(refreshCookieName)
	}
	return token, nil
}

// setRefreshCookie sets the refresh token cookie when cookies are enabled
func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, refreshToken string) {
	if !h.cfg.Cookie.Enabled {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/api/v1/auth",
		MaxAge:   int(h.cfg.RefreshTTL().Seconds()),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearRefreshCookie clears the refresh token cookie
func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	if !h.cfg.Cookie.Enabled {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

func requestMeta(c *fiber.Ctx) domain.RequestMeta {
	return domain.RequestMeta{IP: c.IP()}
}
