package domain

import (
	"errors"
	"strings"
)

// Session errors
var (
	ErrInvalidCredentials           = errors.New("invalid email or password")
	ErrEmailAlreadyInUse            = errors.New("email is already in use")
	ErrRegistrationRejected         = errors.New("registration rejected")
	ErrInvalidOrExpiredRefreshToken = errors.New("invalid or expired refresh token")
	ErrTokenNotFound                = errors.New("token not found")
	ErrPasswordChangeRejected       = errors.New("password change rejected")
	ErrUserNotFound                 = errors.New("user not found")
)

// User administration errors
var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrCannotModifySelf = errors.New("cannot change your own role or status")
)

// ValidationError carries every message produced while validating a request.
// Kind is the sentinel callers match with errors.Is.
type ValidationError struct {
	Kind     error
	Messages []string
}

// NewValidationError builds a ValidationError of the given kind
func NewValidationError(kind error, messages ...string) *ValidationError {
	return &ValidationError{Kind: kind, Messages: messages}
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// ValidationMessages returns the messages of a ValidationError anywhere in err's chain
func ValidationMessages(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Messages
	}
	return nil
}
