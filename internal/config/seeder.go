package config

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront/internal/adapters/persistence/models"
	"storefront/internal/adapters/persistence/repositories"
	"storefront/internal/core/domain"
	"storefront/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	users repositories.UserRepository
	roles repositories.RoleRepository
	cfg   *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{
		users: repositories.NewUserRepository(db),
		roles: repositories.NewRoleRepository(db),
		cfg:   cfg,
	}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("🌱 Running database seeders...")

	names := make([]string, 0, len(domain.AllRoles))
	for _, r := range domain.AllRoles {
		names = append(names, r.String())
	}
	if err := s.roles.EnsureRoles(ctx, names); err != nil {
		return err
	}

	if err := s.seedAdminUser(ctx); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the bootstrap admin when SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are set
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	seed := s.cfg.Seed
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil
	}

	_, err := s.users.GetByEmail(ctx, seed.AdminEmail)
	if err == nil {
		return nil // Admin already exists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if msgs := s.cfg.PasswordPolicy().Validate(seed.AdminPassword); len(msgs) > 0 {
		return fmt.Errorf("SEED_ADMIN_PASSWORD rejected: %v", msgs)
	}

	hash, err := password.HashWithCost(seed.AdminPassword, s.cfg.Password.BcryptCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        seed.AdminEmail,
		PasswordHash: hash,
		FullName:     seed.AdminName,
		IsActive:     true,
	}
	if err := s.users.CreateWithRole(ctx, admin, domain.RoleAdmin.String()); err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}
