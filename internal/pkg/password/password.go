package password

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MaxBytes is the longest password bcrypt accepts
	MaxBytes = 72
)

// HashWithCost hashes a password using bcrypt at the given cost.
// Costs outside bcrypt's range fall back to DefaultCost.
func HashWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HashToken hashes a token using SHA256 (for refresh tokens)
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Policy describes the rules a new password must satisfy
type Policy struct {
	MinLength     int
	RequireDigit  bool
	RequireLower  bool
	RequireUpper  bool
	RequireSymbol bool
}

// DefaultPolicy mirrors the storefront's account rules
func DefaultPolicy() Policy {
	return Policy{
		MinLength:     6,
		RequireDigit:  true,
		RequireLower:  true,
		RequireUpper:  true,
		RequireSymbol: true,
	}
}

// Validate returns one message per violated rule; an empty slice means the password is acceptable
func (p Policy) Validate(password string) []string {
	var messages []string

	if len([]rune(password)) < p.MinLength {
		messages = append(messages, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if len(password) > MaxBytes {
		messages = append(messages, fmt.Sprintf("Passwords must be at most %d bytes.", MaxBytes))
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			hasSymbol = true
		}
	}

	if p.RequireSymbol && !hasSymbol {
		messages = append(messages, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !hasDigit {
		messages = append(messages, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLower && !hasLower {
		messages = append(messages, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUpper && !hasUpper {
		messages = append(messages, "Passwords must have at least one uppercase ('A'-'Z').")
	}

	return messages
}
