package models

import (
	"time"

	"storefront/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Credential store tables
// ============================================================

// User represents users table
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;size:256;not null" json:"email"`
	PasswordHash     string         `gorm:"size:255;not null" json:"-"`
	FullName         string         `gorm:"size:200;not null" json:"fullName"`
	PhoneNumber      string         `gorm:"size:32" json:"phoneNumber"`
	ProfileImagePath string         `gorm:"size:500" json:"profileImagePath"`
	IsActive         bool           `gorm:"default:true" json:"isActive"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ToProfile builds the current-user view with the resolved role
func (u *User) ToProfile(role domain.Role) *domain.UserProfile {
	return &domain.UserProfile{
		ID:               u.ID,
		FullName:         u.FullName,
		Email:            u.Email,
		PhoneNumber:      u.PhoneNumber,
		ProfileImagePath: u.ProfileImagePath,
		Role:             role,
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
	}
}

// Role represents roles table
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

// UserRole represents user_roles table; the lowest ID is the first assigned grant
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_role;not null" json:"userId"`
	RoleID    uint      `gorm:"uniqueIndex:idx_user_role;not null" json:"roleId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	Role      Role      `gorm:"foreignKey:RoleID" json:"-"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// ============================================================
// Refresh token ledger
// ============================================================

// RefreshToken represents refresh_tokens table.
// TokenHash is the SHA-256 digest of the bearer value; rows are never deleted.
type RefreshToken struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserID              uint       `gorm:"index;not null" json:"userId"`
	TokenHash           string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	IssuedAt            time.Time  `gorm:"not null" json:"issuedAt"`
	ExpiresAt           time.Time  `gorm:"index;not null" json:"expiresAt"`
	RevokedAt           *time.Time `gorm:"index" json:"revokedAt"`
	ReplacedByTokenHash *string    `gorm:"size:64" json:"-"` // successor's digest, not its bearer value
	ReasonRevoked       string     `gorm:"size:100" json:"reasonRevoked,omitempty"`
	CreatedByIP         string     `gorm:"size:64" json:"createdByIp,omitempty"`
	RevokedByIP         string     `gorm:"size:64" json:"revokedByIp,omitempty"`
	User                User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// IsExpiredAt reports whether the token is unusable at now
func (rt *RefreshToken) IsExpiredAt(now time.Time) bool {
	return !now.Before(rt.ExpiresAt)
}

// IsActiveAt reports whether the token can still be exchanged at now
func (rt *RefreshToken) IsActiveAt(now time.Time) bool {
	return !rt.IsRevoked() && !rt.IsExpiredAt(now)
}

func (rt *RefreshToken) IsExpired() bool {
	return rt.IsExpiredAt(time.Now())
}

func (rt *RefreshToken) IsActive() bool {
	return rt.IsActiveAt(time.Now())
}

// ToSessionInfo hides the token digest
func (rt *RefreshToken) ToSessionInfo() domain.SessionInfo {
	return domain.SessionInfo{
		ID:          rt.ID,
		IssuedAt:    rt.IssuedAt,
		ExpiresAt:   rt.ExpiresAt,
		CreatedByIP: rt.CreatedByIP,
	}
}

// AutoMigrate creates or updates every table owned by the service
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Role{},
		&UserRole{},
		&RefreshToken{},
	)
}
