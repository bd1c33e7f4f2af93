package services

import (
	"context"
	"log"

	"storefront/internal/core/domain"
	"storefront/internal/pkg/pagination"
)

// UserService handles user administration
type UserService struct {
	store *CredentialStore
}

// NewUserService creates a new user service
func NewUserService(store *CredentialStore) *UserService {
	return &UserService{store: store}
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, params *pagination.Params) (*pagination.Page[*domain.UserProfile], error) {
	users, total, err := s.store.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	profiles := make([]*domain.UserProfile, 0, len(users))
	for _, u := range users {
		role, err := s.store.EffectiveRole(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, u.ToProfile(role))
	}

	return pagination.NewPage(profiles, params, total), nil
}

// GetUser gets a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*domain.UserProfile, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := s.store.EffectiveRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return user.ToProfile(role), nil
}

// SetActive enables or disables a user. Admins cannot disable themselves.
func (s *UserService) SetActive(ctx context.Context, actorID, id uint, active bool) (*domain.UserProfile, error) {
	if actorID == id && !active {
		return nil, domain.ErrCannotModifySelf
	}

	if err := s.store.SetActive(ctx, id, active); err != nil {
		return nil, err
	}

	log.Printf("✅ User %d active=%t (by %d)", id, active, actorID)
	return s.GetUser(ctx, id)
}

// SetRole replaces a user's role grants with a single role.
// The new role shows up in access tokens from the next refresh on.
func (s *UserService) SetRole(ctx context.Context, actorID, id uint, roleName string) (*domain.UserProfile, error) {
	role, ok := domain.ParseRole(roleName)
	if !ok {
		return nil, domain.ErrInvalidRole
	}

	if actorID == id {
		return nil, domain.ErrCannotModifySelf
	}

	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.store.SetRoles(ctx, id, []domain.Role{role}); err != nil {
		return nil, err
	}

	log.Printf("✅ User %d role set to %s (by %d)", id, role, actorID)
	return s.GetUser(ctx, id)
}
