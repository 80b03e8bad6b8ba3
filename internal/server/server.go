// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/localeswitch/internal/config"
	"codeberg.org/oliverandrich/localeswitch/internal/handlers"
	"codeberg.org/oliverandrich/localeswitch/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
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

	e, err := New(cfg, slog.Default())
	if err != nil {
		return err
	}

	// Start server
	return startWithGracefulShutdown(ctx, e, cfg)
}

// New builds the Echo instance with middleware and routes.
func New(cfg *config.Config, logger *slog.Logger) (*echo.Echo, error) {
	// Locale
	resolver, err := middleware.NewLocaleResolver(&cfg.Locale, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init locale resolver: %w", err)
	}

	logger.Info("locale config",
		"param", cfg.Locale.ParamName,
		"cookie", cfg.Locale.CookieName,
		"default", resolver.Default().String(),
		"allowed", cfg.Locale.Allowed,
	)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	// Middleware
	setupMiddleware(e, cfg, resolver)

	// Routes
	setupRoutes(e, handlers.New(resolver.Default()))

	return e, nil
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers) {
	e.GET("/health", h.Health)
	e.GET("/locale", h.Locale)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	// Channel for server errors
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
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
