package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lanceraa/api/internal/auth"
	"github.com/lanceraa/api/internal/background"
	"github.com/lanceraa/api/internal/config"
	"github.com/lanceraa/api/internal/database"
	"github.com/lanceraa/api/internal/handlers"
	"github.com/lanceraa/api/internal/repositories"
	"github.com/lanceraa/api/internal/routes"
	"github.com/lanceraa/api/internal/services"
	"github.com/lanceraa/api/migrations"
	pkghttp "github.com/lanceraa/api/pkg/http"
	pkglogger "github.com/lanceraa/api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := pkglogger.New(os.Stdout, cfg.Server.LogLevel, cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := runMigrations(db, logger); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	store := repositories.NewStore(db)

	// Initialize token manager
	tokenManager, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.AccessTokenExpiry)
	if err != nil {
		logger.Error("failed to initialize token manager", slog.Any("error", err))
		os.Exit(1)
	}

	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay:   cfg.Auth.LoginFailureDelay,
		RandomDelay: cfg.Auth.LoginFailureJitter,
	})

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	accountService := services.NewAccountService(
		store.Accounts(),
		store.Profiles(),
		store,
		services.NewCodeIssuer(cfg.App.Name, cfg.Auth.VerificationCodeTTL),
		notifier,
		tokenManager,
		timingDelay,
		pkglogger.NewAuditLogger(logger),
		logger,
		services.AccountServiceConfig{
			ResetTokenTTL: cfg.Auth.ResetTokenTTL,
			ResetURLBase:  cfg.App.BaseURL + "/reset-password",
		},
	)

	// The chatbot answers 503 until a provider key is configured
	var chatResponder handlers.ChatResponder
	if cfg.Chat.Enabled() {
		chatClient := services.NewChatClient(services.ChatClientConfig{
			BaseURL: cfg.Chat.BaseURL,
			APIKey:  cfg.Chat.APIKey,
			Timeout: cfg.Chat.Timeout,
		})
		chatResponder = services.NewChatService(chatClient, services.ChatServiceConfig{
			Model:          cfg.Chat.Model,
			MaxTokens:      cfg.Chat.MaxTokens,
			Temperature:    cfg.Chat.Temperature,
			MaxAttempts:    cfg.Chat.MaxAttempts,
			InitialBackoff: cfg.Chat.InitialBackoff,
		}, logger)
	} else {
		logger.Warn("GROQ_API_KEY not set, chatbot disabled")
	}

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg.App.Name, cfg.App.Version, logger)
	authHandler := handlers.NewAuthHandler(accountService)
	chatbotHandler := handlers.NewChatbotHandler(chatResponder)

	// Setup router
	router := routes.NewRouter(routes.RouterConfig{
		Env:            cfg.Server.Env,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IPConfig:       ipConfig,
		Logger:         logger,
	})

	routes.RegisterRoutes(router, healthHandler, authHandler, chatbotHandler, tokenManager, ipConfig, routes.RateLimits{
		Auth: cfg.Server.AuthRateLimit,
		Chat: cfg.Server.ChatRateLimit,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupManager := background.NewCleanupManager(store.Accounts(), logger, cfg.Auth.CleanupInterval)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// runMigrations applies the embedded goose migrations through a database/sql
// handle opened on the pool's connection config
func runMigrations(db *database.DB, logger *slog.Logger) error {
	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := migrations.Migrate(ctx, sqlDB); err != nil {
		return err
	}

	logger.Info("database migrations applied")
	return nil
}

func newNotifier(cfg *config.Config, logger *slog.Logger) (services.Notifier, error) {
	if cfg.Email.Provider != "ses" {
		logger.Info("EMAIL_PROVIDER is log, codes and reset links are written to the log")
		return services.NewLogNotifier(logger, cfg.Server.Env), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return services.NewSESNotifier(ctx, cfg.Email.AWSRegion, cfg.Email.From, cfg.App.Name, logger)
}
