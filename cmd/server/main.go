package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"masonko-stokvel/internal/adapters/http/middleware"
	"masonko-stokvel/internal/adapters/http/routes"
	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/config"
	"masonko-stokvel/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "masonko-stokvel/docs" // Swagger docs
)

// @title Masonko Stokvel API
// @version 1.0
// @description Membership and finance ledger backend for the Masonko stokvel.

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}
	log.Println("Database migration completed")

	// Seed default accounts and settings on first run
	if err := config.SeedDefaults(db); err != nil {
		log.Printf("Warning: failed to seed defaults: %v", err)
	}

	// Make sure the uploads directory exists
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}

	// Start the daily payment-due reminder job
	memberRepo := repositories.NewMemberRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	notifyService := services.NewNotificationService(repositories.NewNotificationRepository(db))
	reminderService := services.NewReminderService(memberRepo, settingRepo, notifyService)
	if err := reminderService.Start(); err != nil {
		log.Fatalf("Failed to start reminder service: %v", err)
	}
	defer reminderService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Masonko Stokvel API v1.0",
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}
