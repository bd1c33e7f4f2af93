package handlers

import (
	"errors"
	"log"

	"storefront/internal/core/domain"
	"storefront/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// handleServiceError maps service errors onto the response envelope.
// Anything unrecognised is logged and reported as a 500 with fallback as message.
func handleServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrRegistrationRejected):
		return response.BadRequest(c, "Registration failed.", domain.ValidationMessages(err)...)
	case errors.Is(err, domain.ErrPasswordChangeRejected):
		return response.BadRequest(c, "Password change failed.", domain.ValidationMessages(err)...)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.BadRequest(c, "Invalid email or password.")
	case errors.Is(err, domain.ErrEmailAlreadyInUse):
		return response.BadRequest(c, "Email is already in use.")
	case errors.Is(err, domain.ErrInvalidOrExpiredRefreshToken):
		return response.BadRequest(c, "Invalid or expired refresh token.")
	case errors.Is(err, domain.ErrInvalidRole):
		return response.BadRequest(c, "Role must be one of Admin, Staff, Customer.")
	case errors.Is(err, domain.ErrCannotModifySelf):
		return response.BadRequest(c, "You cannot change your own role or deactivate yourself.")
	case errors.Is(err, domain.ErrTokenNotFound):
		return response.NotFound(c, "Token not found.")
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound(c, "User not found.")
	}

	log.Printf("❌ %s: %v", fallback, err)
	return response.InternalServerError(c, fallback)
}
