package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrMissingKey   = errors.New("signing secret is not configured")
)

// RefreshSecretBytes is the amount of randomness behind every refresh token
const RefreshSecretBytes = 64

// SignerConfig carries the signing secret and token lifetimes.
// It is passed in at construction so the secret can be rotated without code changes.
type SignerConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessTTL time.Duration
}

// AccessClaims is the identity embedded in an access token
type AccessClaims struct {
	Subject string
	Email   string
	Name    string
	Role    string
}

// Claims represents the JWT claims written into access tokens
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Signer issues and validates HS256 access tokens
type Signer struct {
	cfg SignerConfig
	now func() time.Time
}

// NewSigner creates a new token signer
func NewSigner(cfg SignerConfig) *Signer {
	return &Signer{
		cfg: cfg,
		now: time.Now,
	}
}

// Issue signs a new access token for the given identity.
// A non-positive ttl falls back to the configured AccessTTL.
func (s *Signer) Issue(claims AccessClaims, ttl time.Duration) (string, time.Time, error) {
	if s.cfg.Secret == "" {
		return "", time.Time{}, ErrMissingKey
	}
	if ttl <= 0 {
		ttl = s.cfg.AccessTTL
	}

	now := s.now().UTC()
	expiresAt := now.Add(ttl)

	registered := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   claims.Subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	if s.cfg.Audience != "" {
		registered.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:            claims.Email,
		Name:             claims.Name,
		Role:             claims.Role,
		RegisteredClaims: registered,
	})

	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate checks signature, algorithm, issuer, audience and expiry and returns the raw claim map.
// The map is returned as-is so role lookups can tolerate differing claim names.
func (s *Signer) Validate(tokenString string) (jwt.MapClaims, error) {
	if s.cfg.Secret == "" {
		return nil, ErrMissingKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	// exp is optional in the parser; access tokens must always carry it
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// GenerateRefreshSecret returns a new opaque refresh token value
func (s *Signer) GenerateRefreshSecret() (string, error) {
	return RandomSecret(RefreshSecretBytes)
}

// RandomSecret returns n bytes from crypto/rand, base64 encoded
func RandomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Subject returns the sub claim of a validated token
func Subject(claims jwt.MapClaims) string {
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// StringClaim returns a string claim or an empty string
func StringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
