package domain

import (
	"strings"
	"time"
)

// Role represents user role in the system
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleStaff    Role = "Staff"
	RoleCustomer Role = "Customer"
)

// AllRoles lists the fixed role set in seeding order
var AllRoles = []Role{RoleAdmin, RoleStaff, RoleCustomer}

// ParseRole matches a role name case-insensitively
func ParseRole(name string) (Role, bool) {
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), strings.TrimSpace(name)) {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}

// Revocation reasons recorded on refresh token records
const (
	ReasonReplaced      = "Replaced by new token"
	ReasonRevokedByUser = "Revoked by user"
	ReasonRevokedAll    = "Revoked by user (all sessions)"
)

// Identity is what authenticated requests know about the caller
type Identity struct {
	UserID uint
	Email  string
	Name   string
	Role   Role
}

// RequestMeta is provenance recorded with ledger changes
type RequestMeta struct {
	IP string
}

// AuthResult is returned by Login, Register and RefreshToken
type AuthResult struct {
	UserID             uint      `json:"userId"`
	Email              string    `json:"email"`
	FullName           string    `json:"fullName"`
	Role               Role      `json:"role"`
	AccessToken        string    `json:"accessToken"`
	RefreshToken       string    `json:"refreshToken"`
	AccessTokenExpires time.Time `json:"accessTokenExpires"`
}

// UserProfile is the current-user view
type UserProfile struct {
	ID               uint      `json:"id"`
	FullName         string    `json:"fullName"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phoneNumber"`
	ProfileImagePath string    `json:"profileImagePath"`
	Role             Role      `json:"role"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SessionInfo describes an active refresh token without exposing it
type SessionInfo struct {
	ID          uint      `json:"id"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedByIP string    `json:"createdByIp,omitempty"`
}

// LedgerStats counts refresh token records by derived state
type LedgerStats struct {
	Active  int64 `json:"active"`
	Expired int64 `json:"expired"`
	Revoked int64 `json:"revoked"`
}
