// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services and routes into the
// running HTTP process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"codeberg.org/oliverandrich/atelier-api/internal/config"
	"codeberg.org/oliverandrich/atelier-api/internal/cookies"
	"codeberg.org/oliverandrich/atelier-api/internal/database"
	"codeberg.org/oliverandrich/atelier-api/internal/handlers"
	"codeberg.org/oliverandrich/atelier-api/internal/metrics"
	appmiddleware "codeberg.org/oliverandrich/atelier-api/internal/middleware"
	"codeberg.org/oliverandrich/atelier-api/internal/repository"
	"codeberg.org/oliverandrich/atelier-api/internal/services/auth"
	"codeberg.org/oliverandrich/atelier-api/internal/services/email"
	"codeberg.org/oliverandrich/atelier-api/internal/services/verification"
	"codeberg.org/oliverandrich/atelier-api/internal/token"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// Repository
	repo := repository.New(db)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Tokens
	tokens, err := token.NewManager(token.Config{
		AccessSecret:       []byte(cfg.Auth.AccessTokenSecret),
		RefreshSecret:      []byte(cfg.Auth.RefreshTokenSecret),
		AccessTTL:          cfg.Auth.AccessTokenTTL,
		RefreshTTL:         cfg.Auth.RefreshTokenTTL,
		RememberRefreshTTL: cfg.Auth.RememberRefreshTTL,
		Issuer:             "atelier-api",
	})
	if err != nil {
		return fmt.Errorf("failed to init token manager: %w", err)
	}

	// Refresh cookie
	cookieManager, err := cookies.NewManager(
		cfg.Auth.CookieHashKey, cfg.Auth.CookieSecure,
		cfg.Auth.RefreshTokenTTL, cfg.Auth.RememberRefreshTTL)
	if err != nil {
		return fmt.Errorf("failed to init cookie manager: %w", err)
	}

	// Email
	sender, err := email.NewService(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to init email service: %w", err)
	}

	// Services
	verificationSvc := verification.NewService(repo)
	authSvc := auth.NewService(repo, verificationSvc, sender, tokens, collector, cfg.Server.BaseURL)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler

	// Middleware
	setupMiddleware(e, cfg)

	// Routes
	setupRoutes(e, repo, authSvc, cookieManager, tokens, registry)

	// Start server
	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(
	e *echo.Echo,
	repo *repository.Repository,
	authSvc *auth.Service,
	cookieManager *cookies.Manager,
	tokens *token.Manager,
	registry *prometheus.Registry,
) {
	h := handlers.New(repo)
	ah := handlers.NewAuth(authSvc, cookieManager)
	requireAuth := appmiddleware.RequireAuth(tokens, repo)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))

	// Session lifecycle
	e.POST("/auth/register", ah.Register)
	e.GET("/auth/email/verify/:verificationId", ah.FirstStepVerify)
	e.POST("/auth/email/verify", ah.SecondStepVerify)
	e.POST("/auth/email/resend", ah.ResendVerification)
	e.POST("/auth/login", ah.Login)
	e.GET("/auth/refresh", ah.Refresh)
	e.POST("/auth/logout", ah.Logout)
	e.POST("/auth/forget/password", ah.ForgetPassword)
	e.POST("/auth/reset/forgotten/password", ah.ResetForgottenPassword)

	e.GET("/auth/me", ah.Me, requireAuth)
	e.POST("/auth/password/reset", ah.ResetPassword, requireAuth)

	// Admin data
	e.GET("/users", h.ListUsers, requireAuth)
	e.GET("/requests", h.ListRequests, requireAuth)
	e.GET("/notifications", h.ListNotifications, requireAuth)
	e.POST("/notifications/:id/read", h.MarkNotificationRead, requireAuth)

	// Public inquiry intake
	e.POST("/requests", h.CreateRequest)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
