package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/atea-seattle/memberd/internal/activation"
	"github.com/atea-seattle/memberd/internal/auth"
	"github.com/atea-seattle/memberd/internal/config"
	"github.com/atea-seattle/memberd/internal/gmail"
	httpserver "github.com/atea-seattle/memberd/internal/http"
	"github.com/atea-seattle/memberd/internal/membership"
	"github.com/atea-seattle/memberd/internal/notification"
	"github.com/atea-seattle/memberd/internal/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	linksRepo := repository.NewActivationLinksRepository(db)
	profilesRepo := repository.NewMemberProfilesRepository(db)

	// Initialize services
	sessionService := auth.NewSessionService(auth.SessionConfig{
		JWTSecret:      []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}, usersRepo)

	activationService := activation.NewService(activation.Config{
		LinkTTL:      cfg.LinkTTL,
		ResendWindow: cfg.ResendWindow,
	}, linksRepo, usersRepo, logger)

	// Gmail OAuth delivery if configured; otherwise everything goes to the
	// fallback mail log.
	gmailConfig := gmail.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RefreshToken: cfg.GoogleRefreshToken,
		RedirectURI:  cfg.GoogleRedirectURI,
		FromEmail:    cfg.GmailFromEmail,
		FromName:     cfg.GmailFromName,
	}
	tokenManager := gmail.NewTokenManager(gmailConfig)

	var primary notification.Channel
	if cfg.HasGmail() {
		primary = notification.NewGmailChannel(gmail.NewClient(gmailConfig, tokenManager, logger))
		logger.Info("gmail delivery enabled", "from", cfg.GmailFromEmail)
	} else {
		logger.Warn("gmail delivery not configured; emails go to the mail log only")
	}

	mailLog, err := os.OpenFile(cfg.MailLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("failed to open mail log", "path", cfg.MailLogPath, "error", err)
		os.Exit(1)
	}
	defer mailLog.Close()

	mailer := notification.NewMailer(primary, notification.NewLogChannel(mailLog), logger)

	membershipService := membership.NewService(membership.Config{
		FrontendURL: cfg.FrontendURL,
	}, profilesRepo, usersRepo, activationService, mailer, logger)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		SessionService:     sessionService,
		ActivationService:  activationService,
		MembershipService:  membershipService,
		GmailConfig:        gmailConfig,
		TokenManager:       tokenManager,
		RateLimitConfig:    cfg.RateLimit,
		SecurityHeaders:    cfg.SecurityHeaders,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
