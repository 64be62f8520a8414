package routes

import (
	"masonko-stokvel/internal/adapters/http/handlers"
	"masonko-stokvel/internal/adapters/http/middleware"
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/config"
	"masonko-stokvel/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and registers all routes
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	memberRepo := repositories.NewMemberRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// Services
	notifyService := services.NewNotificationService(notificationRepo)
	authService := services.NewAuthService(memberRepo, cfg)
	memberService := services.NewMemberService(memberRepo, notifyService)
	paymentService := services.NewPaymentService(paymentRepo, memberRepo, notifyService)
	loanService := services.NewLoanService(loanRepo, memberRepo, settingRepo, notifyService)
	chatService := services.NewChatService(chatRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	memberHandler := handlers.NewMemberHandler(memberService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg)
	loanHandler := handlers.NewLoanHandler(loanService)
	notificationHandler := handlers.NewNotificationHandler(notifyService)
	chatHandler := handlers.NewChatHandler(chatService)
	settingHandler := handlers.NewSettingHandler(settingRepo)

	// Root, health & docs
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Proof-of-payment artifacts
	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// Public
	api.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	api.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	api.Get("/health", healthHandler.HealthCheck)

	// Authenticated
	auth := api.Group("", middleware.AuthMiddleware(cfg))

	// Membership
	auth.Get("/members", memberHandler.List)
	auth.Get("/profile", memberHandler.Profile)
	auth.Get("/pending-members", middleware.ApproverOnly(), memberHandler.ListPending)
	auth.Post("/approve-member/:id", middleware.ApproverOnly(), memberHandler.Approve)

	// Payment workflow
	auth.Post("/submit-payment", paymentHandler.Submit)
	auth.Get("/my-payments", paymentHandler.ListMine)
	auth.Get("/contributions", paymentHandler.Contributions)
	auth.Get("/pending-payments", middleware.ApproverOnly(), paymentHandler.ListPending)
	auth.Post("/approve-payment/:id", middleware.ApproverOnly(), paymentHandler.Approve)
	auth.Post("/reject-payment/:id", middleware.ApproverOnly(), paymentHandler.Reject)

	// Loans
	auth.Post("/loans", loanHandler.Apply)
	auth.Get("/loans", loanHandler.List)
	auth.Get("/loans/:id", loanHandler.Get)
	auth.Post("/loans/:id/approve", middleware.LoanReviewerOnly(), loanHandler.Approve)
	auth.Post("/loans/:id/reject", middleware.LoanReviewerOnly(), loanHandler.Reject)
	auth.Post("/loans/:id/repayments", middleware.LoanReviewerOnly(), loanHandler.RecordRepayment)
	auth.Get("/loans/:id/repayments", loanHandler.ListRepayments)

	// Notifications & chat
	auth.Get("/notifications", notificationHandler.List)
	auth.Post("/notifications/:id/read", notificationHandler.MarkRead)
	auth.Get("/chat", chatHandler.List)
	auth.Post("/chat", chatHandler.Post)

	// Settings
	auth.Get("/settings", settingHandler.List)
	auth.Put("/settings/:key", middleware.AdminOnly(), settingHandler.Update)
}
