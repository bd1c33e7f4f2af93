package repositories

import (
	"context"
	"fmt"

	"storefront/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// roleRepository implements RoleRepository interface
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// EnsureRoles creates any missing roles
func (r *roleRepository) EnsureRoles(ctx context.Context, names []string) error {
	for _, name := range names {
		role := models.Role{Name: name}
		if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("ensure role %q: %w", name, err)
		}
	}
	return nil
}

// RolesForUser lists role names in the order they were granted
func (r *roleRepository) RolesForUser(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Select("roles.name").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("user_roles.id").
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ReplaceForUser drops every grant and re-grants names in order
func (r *roleRepository) ReplaceForUser(ctx context.Context, userID uint, names []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		for _, name := range names {
			var role models.Role
			if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
				return fmt.Errorf("role %q: %w", name, err)
			}
			if err := tx.Create(&models.UserRole{UserID: userID, RoleID: role.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
