package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/http/routes"
	"storefront/internal/adapters/persistence/models"
	"storefront/internal/adapters/persistence/repositories"
	"storefront/internal/config"
	"storefront/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "storefront/docs" // Swagger docs
)

// @title Storefront API
// @version 1.0
// @description Identity and session API for the storefront: sign-in, registration, refresh token rotation and user administration.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@shop.example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.shop.example.com
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			log.Printf("❌ Error closing database: %v", err)
		}
	}()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed roles and the bootstrap admin
	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.NewSeeder(db, cfg).Run(seedCtx); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}
	cancel()

	// Refresh token ledger audit
	audit := services.NewLedgerAuditService(repositories.NewRefreshTokenRepository(db), cfg.Jobs.LedgerAuditCron)
	if err := audit.Start(); err != nil {
		log.Fatalf("❌ Failed to start ledger audit: %v", err)
	}
	defer audit.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Storefront API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
