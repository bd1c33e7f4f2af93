package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"storefront/internal/adapters/persistence/models"
	"storefront/internal/adapters/persistence/repositories"
	"storefront/internal/core/domain"
	"storefront/internal/pkg/jwt"
	"storefront/internal/pkg/password"

	"gorm.io/gorm"
)

// Validation messages produced by the session service
const (
	msgPasswordsDoNotMatch = "Passwords do not match."
)

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput represents registration input
type RegisterInput struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// SessionService handles sign-in, token refresh and revocation
type SessionService struct {
	store      *CredentialStore
	signer     *jwt.Signer
	tokens     repositories.RefreshTokenRepository
	refreshTTL time.Duration
	now        func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	store *CredentialStore,
	signer *jwt.Signer,
	tokens repositories.RefreshTokenRepository,
	refreshTTL time.Duration,
) *SessionService {
	return &SessionService{
		store:      store,
		signer:     signer,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates a user.
// Unknown email, inactive account and wrong password all yield ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, input *LoginInput, meta domain.RequestMeta) (*domain.AuthResult, error) {
	user, err := s.store.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.store.VerifyDummy(input.Password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		s.store.VerifyDummy(input.Password)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.store.VerifyPassword(user, input.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	result, record, err := s.issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	log.Printf("✅ User logged in: %d", user.ID)
	return result, nil
}

// Register creates a Customer account and signs it in
func (s *SessionService) Register(ctx context.Context, input *RegisterInput, meta domain.RequestMeta) (*domain.AuthResult, error) {
	if input.Password != input.ConfirmPassword {
		return nil, domain.NewValidationError(domain.ErrRegistrationRejected, msgPasswordsDoNotMatch)
	}

	exists, err := s.store.EmailInUse(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyInUse
	}

	user, err := s.store.Create(ctx, CreateUserInput{
		FullName:    input.FullName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
	}, input.Password, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}

	result, record, err := s.issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	log.Printf("✅ User registered: %d", user.ID)
	return result, nil
}

// RefreshToken exchanges an active refresh token for a new pair and retires it.
// Of several concurrent calls presenting the same token, only one succeeds.
func (s *SessionService) RefreshToken(ctx context.Context, presented string, meta domain.RequestMeta) (*domain.AuthResult, error) {
	if presented == "" {
		return nil, domain.ErrInvalidOrExpiredRefreshToken
	}

	current, err := s.tokens.GetByTokenHash(ctx, password.HashToken(presented))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOrExpiredRefreshToken
		}
		return nil, err
	}

	now := s.now()
	if !current.IsActiveAt(now) {
		return nil, domain.ErrInvalidOrExpiredRefreshToken
	}

	user, err := s.store.FindByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidOrExpiredRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidOrExpiredRefreshToken
	}

	result, successor, err := s.issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Rotate(ctx, current, successor, now, meta.IP); err != nil {
		if errors.Is(err, repositories.ErrRotationConflict) {
			log.Printf("⚠️ Refresh token %d already rotated or revoked (user %d)", current.ID, user.ID)
			return nil, domain.ErrInvalidOrExpiredRefreshToken
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	log.Printf("✅ Token refreshed for user: %d", user.ID)
	return result, nil
}

// RevokeToken marks a refresh token revoked; repeating the call is a no-op
func (s *SessionService) RevokeToken(ctx context.Context, presented string, meta domain.RequestMeta) error {
	if presented == "" {
		return domain.ErrTokenNotFound
	}

	record, err := s.tokens.GetByTokenHash(ctx, password.HashToken(presented))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrTokenNotFound
		}
		return err
	}

	changed, err := s.tokens.Revoke(ctx, record.ID, s.now(), domain.ReasonRevokedByUser, meta.IP)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	if changed {
		log.Printf("✅ Refresh token revoked for user: %d", record.UserID)
	}
	return nil
}

// RevokeAllForUser revokes every outstanding refresh token of a user
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID uint, meta domain.RequestMeta) (int64, error) {
	n, err := s.tokens.RevokeAllByUserID(ctx, userID, s.now(), domain.ReasonRevokedAll, meta.IP)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	log.Printf("✅ All sessions revoked for user: %d (%d tokens)", userID, n)
	return n, nil
}

// ChangePassword replaces the password of userID.
// Outstanding refresh tokens stay valid.
func (s *SessionService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmNewPassword {
		return domain.NewValidationError(domain.ErrPasswordChangeRejected, msgPasswordsDoNotMatch)
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.store.ChangePassword(ctx, user, input.CurrentPassword, input.NewPassword); err != nil {
		return err
	}

	log.Printf("✅ Password changed for user: %d", userID)
	return nil
}

// GetCurrentUser returns the profile of userID with its effective role
func (s *SessionService) GetCurrentUser(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	role, err := s.store.EffectiveRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return user.ToProfile(role), nil
}

// ListSessions lists the active refresh tokens of userID without their values
func (s *SessionService) ListSessions(ctx context.Context, userID uint) ([]domain.SessionInfo, error) {
	records, err := s.tokens.ListActiveByUserID(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.SessionInfo, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, r.ToSessionInfo())
	}
	return sessions, nil
}

// ValidateAccessToken decodes a bearer access token into the caller's identity
func (s *SessionService) ValidateAccessToken(token string) (*domain.Identity, error) {
	claims, err := s.signer.Validate(token)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseUint(jwt.Subject(claims), 10, 64)
	if err != nil || id == 0 {
		return nil, jwt.ErrTokenInvalid
	}

	role, ok := domain.ParseRole(jwt.RoleOrDefault(claims, domain.RoleCustomer.String()))
	if !ok {
		role = domain.RoleCustomer
	}

	return &domain.Identity{
		UserID: uint(id),
		Email:  jwt.StringClaim(claims, "email"),
		Name:   jwt.StringClaim(claims, "name"),
		Role:   role,
	}, nil
}

// issue mints an access token and an unsaved refresh record for user.
// The role is re-read on every call.
func (s *SessionService) issue(ctx context.Context, user *models.User, meta domain.RequestMeta) (*domain.AuthResult, *models.RefreshToken, error) {
	role, err := s.store.EffectiveRole(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	accessToken, expiresAt, err := s.signer.Issue(jwt.AccessClaims{
		Subject: strconv.FormatUint(uint64(user.ID), 10),
		Email:   user.Email,
		Name:    user.FullName,
		Role:    role.String(),
	}, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("issue access token: %w", err)
	}

	secret, err := s.signer.GenerateRefreshSecret()
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	record := &models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   password.HashToken(secret),
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.refreshTTL),
		CreatedByIP: meta.IP,
	}

	return &domain.AuthResult{
		UserID:             user.ID,
		Email:              user.Email,
		FullName:           user.FullName,
		Role:               role,
		AccessToken:        accessToken,
		RefreshToken:       secret,
		AccessTokenExpires: expiresAt,
	}, record, nil
}
