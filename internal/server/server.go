// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services and routes
// into the running HTTP API.
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
	"github.com/urfave/cli/v3"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/config"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/database"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/handlers"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/middleware"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/email"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/inference"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/token"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

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

	// Repository and services; all constructed here and passed by
	// reference, no ambient globals.
	repo := repository.New(db)
	mailer := email.NewService(&cfg.SMTP, cfg.Server.FrontendURL)
	accounts := account.NewService(repo, mailer)
	tokens := token.NewService(cfg.Auth.TokenSecret, "iiot-fdi-detection",
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	engine := inference.NewModel(cfg.Model.WeightsPath)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Validator = NewValidator()

	setupMiddleware(e, cfg)
	setupRoutes(e, repo, accounts, tokens, engine)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(
	e *echo.Echo,
	repo *repository.Repository,
	accounts *account.Service,
	tokens *token.Service,
	engine inference.Engine,
) {
	h := handlers.New(repo)
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	// Public account lifecycle endpoints
	authHandler := handlers.NewAuth(accounts, tokens)
	authGroup := e.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/verify-email", authHandler.VerifyEmail)
	authGroup.POST("/resend-verification", authHandler.ResendVerification)
	authGroup.POST("/login", authHandler.Login)

	// Admin endpoints, bearer token with admin role required
	adminHandler := handlers.NewAdmin(accounts, repo)
	adminGroup := e.Group("/admin",
		middleware.Authenticate(tokens, repo),
		middleware.RequireRole(models.RoleAdmin),
	)
	adminGroup.GET("/pending-users", adminHandler.PendingUsers)
	adminGroup.POST("/approve-user", adminHandler.ApproveUser)
	adminGroup.GET("/analytics", adminHandler.Analytics)

	// Model endpoints, any authenticated account
	modelHandler := handlers.NewModel(engine, repo)
	modelGroup := e.Group("/model", middleware.Authenticate(tokens, repo))
	modelGroup.POST("/predict", modelHandler.Predict)
	modelGroup.GET("/anomalies", modelHandler.Anomalies)
	modelGroup.POST("/anomalies/:id/resolve", modelHandler.ResolveAnomaly)
	modelGroup.GET("/topology", modelHandler.Topology)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
