// Package routes wires repositories, services and handlers together and
// registers every HTTP route with its authentication middleware.
package routes

import (
	"resguard/internal/config"
	"resguard/internal/handlers"
	"resguard/internal/middleware"
	"resguard/internal/queue"
	"resguard/internal/repositories"
	"resguard/internal/repositories/cache"
	"resguard/internal/services/guarantee"
	"resguard/internal/services/handoff"
	"resguard/internal/services/notification"
	"resguard/internal/services/stripeaccount"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRoutes builds the dependency graph and registers all routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.Service, log *logrus.Logger) {
	// Repositories
	merchantRepo := repositories.NewMerchantRepository(db)
	configRepo := repositories.NewGuaranteeConfigRepository(db)
	sessionRepo := repositories.NewGuaranteeSessionRepository(db)
	chargeRepo := repositories.NewNoshowChargeRepository(db)

	// Payment processor and account manager
	baseURL := config.GetEnv("GUARANTEE_BASE_URL", "http://localhost:3000")
	processor := stripeaccount.NewStripeProcessor(config.GetEnv("STRIPE_SECRET_KEY", ""))
	accountService := stripeaccount.NewService(
		processor,
		configRepo,
		config.GetEnv("STRIPE_REFRESH_URL", baseURL+"/settings/payments?refresh=1"),
		config.GetEnv("STRIPE_RETURN_URL", baseURL+"/settings/payments?connected=1"),
		log,
	)

	// Best-effort side channels
	notifier := notification.NewService(
		notification.NewSMTPSender(notification.SMTPConfig{
			Host:     config.GetEnv("SMTP_HOST", ""),
			Port:     config.GetEnv("SMTP_PORT", "587"),
			Username: config.GetEnv("SMTP_USERNAME", ""),
			Password: config.GetEnv("SMTP_PASSWORD", ""),
			From:     config.GetEnv("SMTP_FROM", ""),
		}),
		notification.NewHTTPSMSSender(notification.SMSConfig{
			URL:    config.GetEnv("SMS_GATEWAY_URL", ""),
			APIKey: config.GetEnv("SMS_API_KEY", ""),
			Sender: config.GetEnv("SMS_SENDER", ""),
		}),
		log,
	)
	trigger := handoff.NewTrigger(config.GetEnv("BOOKING_WORKFLOW_URL", ""), log)
	publisher := queue.NewPublisher(config.GetEnv("AMQP_URL", ""), log)

	// Lifecycle engine
	guaranteeService := guarantee.NewService(
		sessionRepo, chargeRepo, configRepo, merchantRepo,
		processor, notifier, trigger, publisher,
		baseURL, log,
	)

	// Middleware
	authMw := middleware.NewAuthMiddleware(merchantRepo)
	apiKeyMw := middleware.NewAPIKeyMiddleware(merchantRepo)
	masterKey := middleware.MasterKey(config.GetEnv("MASTER_API_KEY", ""))
	webhookSecret := middleware.WebhookSecret(config.GetEnv("WEBHOOK_SECRET", ""))

	// Handlers
	authHandler := handlers.NewAuthHandler(merchantRepo)
	configHandler := handlers.NewConfigHandler(configRepo, accountService, guaranteeService, cacheSvc, log)
	sessionHandler := handlers.NewSessionHandler(guaranteeService)
	publicHandler := handlers.NewPublicHandler(guaranteeService)
	webhookHandler := handlers.NewWebhookHandler(guaranteeService)
	healthHandler := handlers.NewHealthHandler(db, cacheSvc)

	api := app.Group("/api")

	api.Get("/health", healthHandler.Check)
	api.Post("/auth/login", authHandler.Login)

	g := api.Group("/guarantee")

	// Public (widget and customer-facing)
	g.Get("/status/:agentId", configHandler.PublicStatus)
	g.Get("/public/session/:sessionId", publicHandler.Session)
	g.Post("/public/checkout/:sessionId", publicHandler.Checkout)

	// Payment webhook (shared secret)
	g.Post("/webhook/checkout-complete", webhookSecret, webhookHandler.CheckoutComplete)

	// Booking workflow (master key)
	g.Get("/session-details/:sessionId", masterKey, webhookHandler.SessionDetails)
	g.Post("/confirm-booking", masterKey, webhookHandler.ConfirmBooking)

	// Automation callers (merchant API key)
	g.Get("/check-status", apiKeyMw.Handler, sessionHandler.CheckStatus)
	g.Post("/create-session", apiKeyMw.Handler, sessionHandler.CreateSession)

	// Merchant dashboard (JWT)
	g.Get("/config", authMw.Handler, configHandler.GetConfig)
	g.Put("/config", authMw.Handler, configHandler.UpdateConfig)
	g.Post("/connect-stripe", authMw.Handler, configHandler.ConnectStripe)
	g.Get("/stripe-status", authMw.Handler, configHandler.StripeStatus)
	g.Post("/disconnect-stripe", authMw.Handler, configHandler.DisconnectStripe)
	g.Get("/reservations", authMw.Handler, sessionHandler.Reservations)
	g.Post("/reservations/:id/status", authMw.Handler, sessionHandler.UpdateReservationStatus)
	g.Post("/resend/:id", authMw.Handler, sessionHandler.Resend)
	g.Post("/cancel/:id", authMw.Handler, sessionHandler.Cancel)
}
