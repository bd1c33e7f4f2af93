package jwt

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// LegacyRoleClaim is the long-form role claim emitted by older token producers
const LegacyRoleClaim = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"

// roleClaimKeys is tried in order; producers disagree on naming, so every variant stays
var roleClaimKeys = []string{
	"role",
	"roles",
	LegacyRoleClaim,
}

// ExtractRole returns the first non-empty role found under the known claim keys.
// List values yield their first element. ok is false when no key carries a role.
func ExtractRole(claims jwt.MapClaims) (string, bool) {
	for _, key := range roleClaimKeys {
		value, present := claims[key]
		if !present {
			continue
		}
		if role, ok := roleValue(value); ok {
			return role, true
		}
	}
	return "", false
}

// RoleOrDefault is ExtractRole with a fallback role
func RoleOrDefault(claims jwt.MapClaims, fallback string) string {
	if role, ok := ExtractRole(claims); ok {
		return role
	}
	return fallback
}

func roleValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return roleValue(v[0])
	case []any:
		if len(v) == 0 {
			return "", false
		}
		return roleValue(v[0])
	default:
		return "", false
	}
}
