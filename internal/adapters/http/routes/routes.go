package routes

import (
	"storefront/internal/adapters/http/handlers"
	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/persistence/repositories"
	"storefront/internal/config"
	"storefront/internal/core/services"
	"storefront/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Initialize services
	store := services.NewCredentialStore(userRepo, roleRepo, cfg.PasswordPolicy(), cfg.Password.BcryptCost)
	signer := jwt.NewSigner(cfg.SignerConfig())
	sessionService := services.NewSessionService(store, signer, refreshTokenRepo, cfg.RefreshTTL())
	userService := services.NewUserService(store)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(sessionService, cfg)
	userHandler := handlers.NewUserHandler(userService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	requireAuth := middleware.AuthMiddleware(sessionService)

	authRoutes := apiV1.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, requireAuth, cfg)

	userRoutes := apiV1.Group("/users", middleware.NoCacheHeaders(), requireAuth)
	setupUserRoutes(userRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, requireAuth fiber.Handler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(cfg.RateLimit.Auth), h.Login)
	router.Post("/register", middleware.StrictRateLimiter(cfg.RateLimit.Strict), h.Register)
	router.Post("/refresh", h.RefreshToken)

	// Protected routes
	router.Post("/revoke", requireAuth, h.Revoke)
	router.Post("/revoke-all", requireAuth, h.RevokeAll)
	router.Post("/change-password", requireAuth, h.ChangePassword)
	router.Get("/me", requireAuth, h.Me)
	router.Get("/sessions", requireAuth, h.Sessions)
}

// setupUserRoutes configures user administration routes
func setupUserRoutes(router fiber.Router, h *handlers.UserHandler) {
	router.Get("/", middleware.AdminOnly(), h.ListUsers)
	router.Get("/:id", middleware.StaffOrAdmin(), h.GetUser)
	router.Put("/:id/role", middleware.AdminOnly(), h.SetRole)
	router.Put("/:id/active", middleware.AdminOnly(), h.SetActive)
}
