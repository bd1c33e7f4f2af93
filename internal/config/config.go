package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/internal/pkg/jwt"
	"storefront/internal/pkg/password"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default_secret"

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	Database  DatabaseConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Cookie    CookieConfig
	Seed      SeedConfig
	Jobs      JobsConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds access and refresh token configuration
type JWTConfig struct {
	Secret           string
	Issuer           string
	Audience         string
	AccessTokenMins  int
	RefreshTokenDays int
}

// PasswordConfig holds the password policy and hashing cost
type PasswordConfig struct {
	MinLength     int
	RequireDigit  bool
	RequireLower  bool
	RequireUpper  bool
	RequireSymbol bool
	BcryptCost    int
}

// CookieConfig holds refresh cookie configuration
type CookieConfig struct {
	Enabled  bool
	Secure   bool
	SameSite string
	Domain   string
}

// SeedConfig holds the optional bootstrap admin account
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// RateLimitConfig holds per-IP request limits per minute; 0 disables a limit
type RateLimitConfig struct {
	General int
	Auth    int
	Strict  int
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	LedgerAuditCron string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using environment variables")
	}

	// Trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Password: loadPasswordConfig(),
		Cookie:   loadCookieConfig(appMode),
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
			AdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
		},
		Jobs: JobsConfig{
			LedgerAuditCron: getEnv("LEDGER_AUDIT_CRON", "@daily"),
		},
		RateLimit: RateLimitConfig{
			General: getEnvInt("RATE_LIMIT_GENERAL", 100),
			Auth:    getEnvInt("RATE_LIMIT_AUTH", 5),
			Strict:  getEnvInt("RATE_LIMIT_STRICT", 3),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Driver != "mysql" && c.Database.Driver != "postgres" {
		errs = append(errs, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'postgres')", c.Database.Driver))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT secret is required"))
	}
	if c.IsProd() && c.JWT.Secret == defaultJWTSecret {
		errs = append(errs, errors.New("PROD_JWT_SECRET must be set in prod mode"))
	}
	if c.JWT.AccessTokenMins <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_MINUTES must be positive"))
	}
	if c.JWT.RefreshTokenDays <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_DAYS must be positive"))
	}
	if c.Password.MinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be at least 1"))
	}

	return errors.Join(errs...)
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))

	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "storefront"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		Issuer:           getEnv("JWT_ISSUER", "storefront"),
		Audience:         getEnv("JWT_AUDIENCE", "storefront"),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 60),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

func loadPasswordConfig() PasswordConfig {
	return PasswordConfig{
		MinLength:     getEnvInt("PASSWORD_MIN_LENGTH", 6),
		RequireDigit:  getEnvBool("PASSWORD_REQUIRE_DIGIT", true),
		RequireLower:  getEnvBool("PASSWORD_REQUIRE_LOWER", true),
		RequireUpper:  getEnvBool("PASSWORD_REQUIRE_UPPER", true),
		RequireSymbol: getEnvBool("PASSWORD_REQUIRE_SYMBOL", true),
		BcryptCost:    getEnvInt("BCRYPT_COST", password.DefaultCost),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	return CookieConfig{
		Enabled:  getEnvBool("COOKIE_ENABLED", false),
		Secure:   getEnvBool(prefix+"COOKIE_SECURE", false),
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://shop.example.com"
	}
	return origins
}

// SignerConfig is the explicit token signer configuration
func (c *Config) SignerConfig() jwt.SignerConfig {
	return jwt.SignerConfig{
		Secret:    c.JWT.Secret,
		Issuer:    c.JWT.Issuer,
		Audience:  c.JWT.Audience,
		AccessTTL: time.Duration(c.JWT.AccessTokenMins) * time.Minute,
	}
}

// RefreshTTL is the lifetime of a refresh token
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTokenDays) * 24 * time.Hour
}

// PasswordPolicy builds the password policy
func (c *Config) PasswordPolicy() password.Policy {
	return password.Policy{
		MinLength:     c.Password.MinLength,
		RequireDigit:  c.Password.RequireDigit,
		RequireLower:  c.Password.RequireLower,
		RequireUpper:  c.Password.RequireUpper,
		RequireSymbol: c.Password.RequireSymbol,
	}
}
