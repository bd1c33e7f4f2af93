package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"

	"storefront/internal/adapters/persistence/models"
	"storefront/internal/adapters/persistence/repositories"
	"storefront/internal/core/domain"
	"storefront/internal/pkg/password"

	"gorm.io/gorm"
)

// Validation messages produced by the credential store
const (
	msgFullNameRequired = "Full name is required."
	msgIncorrectPass    = "Incorrect password."
	msgPhoneTooLong     = "Phone number must be at most 32 characters."
)

// CreateUserInput is the descriptive part of a new user
type CreateUserInput struct {
	FullName    string
	Email       string
	PhoneNumber string
}

// CredentialStore owns users, password hashes and role grants
type CredentialStore struct {
	userRepo   repositories.UserRepository
	roleRepo   repositories.RoleRepository
	policy     password.Policy
	bcryptCost int

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialStore creates a new credential store
func NewCredentialStore(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	policy password.Policy,
	bcryptCost int,
) *CredentialStore {
	return &CredentialStore{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		policy:     policy,
		bcryptCost: bcryptCost,
	}
}

// FindByID returns ErrUserNotFound for unknown ids
func (s *CredentialStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail looks a user up ignoring case
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// EmailInUse reports whether an account already uses email
func (s *CredentialStore) EmailInUse(ctx context.Context, email string) (bool, error) {
	return s.userRepo.ExistsByEmail(ctx, email)
}

// Create validates input and the password policy, then stores the user with role.
// Every rejected rule is returned in a ValidationError of kind ErrRegistrationRejected.
func (s *CredentialStore) Create(ctx context.Context, input CreateUserInput, plain string, role domain.Role) (*models.User, error) {
	msgs := validateUserInput(input)
	msgs = append(msgs, s.policy.Validate(plain)...)
	if len(msgs) > 0 {
		return nil, domain.NewValidationError(domain.ErrRegistrationRejected, msgs...)
	}

	hash, err := password.HashWithCost(plain, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		IsActive:     true,
	}

	if err := s.userRepo.CreateWithRole(ctx, user, role.String()); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// VerifyPassword checks plain against the user's stored hash
func (s *CredentialStore) VerifyPassword(user *models.User, plain string) bool {
	return password.Verify(plain, user.PasswordHash)
}

// VerifyDummy runs a bcrypt comparison against a throwaway hash at the configured cost.
// Login calls it when there is no usable account so every failure costs one bcrypt check.
func (s *CredentialStore) VerifyDummy(plain string) {
	s.dummyOnce.Do(func() {
		hash, err := password.HashWithCost("storefront-unusable-password", s.bcryptCost)
		if err != nil {
			log.Printf("⚠️ Failed to prepare dummy password hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		password.Verify(plain, s.dummyHash)
	}
}

// ChangePassword replaces the stored hash once current verifies and next passes policy
func (s *CredentialStore) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if !s.VerifyPassword(user, current) {
		return domain.NewValidationError(domain.ErrPasswordChangeRejected, msgIncorrectPass)
	}

	if msgs := s.policy.Validate(next); len(msgs) > 0 {
		return domain.NewValidationError(domain.ErrPasswordChangeRejected, msgs...)
	}

	hash, err := password.HashWithCost(next, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	user.PasswordHash = hash
	return nil
}

// RolesForUser lists role names in grant order
func (s *CredentialStore) RolesForUser(ctx context.Context, userID uint) ([]string, error) {
	return s.roleRepo.RolesForUser(ctx, userID)
}

// EffectiveRole is the first granted role, or Customer when none is granted
func (s *CredentialStore) EffectiveRole(ctx context.Context, userID uint) (domain.Role, error) {
	names, err := s.roleRepo.RolesForUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load roles: %w", err)
	}
	if len(names) > 0 {
		if role, ok := domain.ParseRole(names[0]); ok {
			return role, nil
		}
	}
	return domain.RoleCustomer, nil
}

// SetRoles replaces a user's grants, keeping the given order
func (s *CredentialStore) SetRoles(ctx context.Context, userID uint, roles []domain.Role) error {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return s.roleRepo.ReplaceForUser(ctx, userID, names)
}

// SetActive enables or disables sign-in
func (s *CredentialStore) SetActive(ctx context.Context, userID uint, active bool) error {
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return nil
}

// List pages through users in id order
func (s *CredentialStore) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

func validateUserInput(input CreateUserInput) []string {
	var msgs []string

	if strings.TrimSpace(input.FullName) == "" {
		msgs = append(msgs, msgFullNameRequired)
	}

	if !validEmail(input.Email) {
		msgs = append(msgs, fmt.Sprintf("Email '%s' is invalid.", input.Email))
	}

	if len(strings.TrimSpace(input.PhoneNumber)) > 32 {
		msgs = append(msgs, msgPhoneTooLong)
	}

	return msgs
}

// validEmail accepts a bare address such as jane@example.com, without a display name
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}
