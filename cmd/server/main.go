package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/content"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Flag policy: env defaults layered under the optional settings file
	flagSettings, err := cfg.FlagSettings()
	if err != nil {
		slog.Error("failed to load flag settings", "error", err)
		os.Exit(1)
	}
	slog.Info("flag settings loaded", "models", len(flagSettings.ConfiguredModels()))

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Content registry: one source per configured model, built from the
	// per-type URL patterns
	registry := content.NewRegistry()
	for _, tag := range flagSettings.ConfiguredModels() {
		conf := flagSettings.For(tag)
		if err := registry.Register(tag, content.URLSource(conf.PublicURLPattern, conf.AdminURLPattern)); err != nil {
			slog.Error("invalid content type tag in settings", "model", tag, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("content registry ready", "sources", registry.Count())

	userURLs := content.UserURLBuilder{}
	if cfg.PublicBaseURL != "" {
		userURLs.PublicPattern = cfg.PublicBaseURL + "/users/%s"
	}
	if cfg.AdminBaseURL != "" {
		userURLs.AdminPattern = cfg.AdminBaseURL + "/users/%s"
	}

	// Event bus with a logging subscriber for flag events
	bus := events.NewInProcBus()
	bus.Subscribe(events.ContentFlagged, func(name string, payload any) {
		if p, ok := payload.(events.ContentFlaggedPayload); ok {
			slog.Info("content flagged",
				"model", p.FlaggedContent.ContentType,
				"object_id", p.FlaggedContent.ObjectID,
				"user_id", p.FlagInstance.UserID.String(),
				"count", p.FlaggedContent.Count)
		}
	})

	// Mail relay
	var mailSender mailer.Mailer = mailer.Noop{}
	if cfg.MailEndpoint != "" {
		mailSender = mailer.NewHTTPMailer(cfg.MailEndpoint, cfg.MailAccessKey)
	}
	templates := mailer.DefaultTemplates()
	if cfg.MailTemplateDir != "" {
		if err := templates.LoadDir(cfg.MailTemplateDir); err != nil {
			slog.Error("failed to load mail templates", "dir", cfg.MailTemplateDir, "error", err)
			os.Exit(1)
		}
	}

	// Services
	notifier := services.NewNotifier(database.DB, flagSettings, registry, userURLs, templates, mailSender, cfg.SiteName)
	contentService := services.NewFlaggedContentService(database.DB, flagSettings, registry, userURLs, bus, notifier)
	flagService := services.NewFlagService(database.DB, contentService, flagSettings, registry)
	authService := services.NewAuthService(database.DB, cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(registry)
	flagHandler := handlers.NewFlagHandler(flagService, contentService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, flagHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
