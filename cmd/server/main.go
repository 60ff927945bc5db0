package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/capsule-social/backend/internal/metrics"
	"github.com/anonto42/capsule-social/backend/internal/router"
	"github.com/anonto42/capsule-social/backend/pkg/config"
	"github.com/anonto42/capsule-social/backend/pkg/firebase"
	"github.com/anonto42/capsule-social/backend/pkg/logger"
	"github.com/anonto42/capsule-social/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	// Initialize database connections
	db, err := config.InitDB(cfg, zl)
	if err != nil {
		return err
	}
	defer db.CloseDB() // Ensure database connections are closed when run returns

	deps := router.Dependencies{
		Config:   cfg,
		Postgres: db.Postgres,
		Redis:    db.Redis,
		Metrics:  metrics.New(),
		Logger:   zl,
	}

	// Firebase ID tokens are accepted only when credentials are configured
	if cfg.FirebaseCredentialsPath != "" {
		authClient, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath, zl)
		if err != nil {
			return err
		}
		deps.Firebase = authClient
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e, zl, deps.Metrics)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, deps); err != nil {
		return err
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           deps.Metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		zl.Info("starting http server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		zl.Info("starting metrics server", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		zl.Info("shutdown signal received")
	case serveErr = <-errCh:
		zl.Error("server failed", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("http server shutdown", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("metrics server shutdown", zap.Error(err))
	}
	zl.Info("server shutdown complete")
	return serveErr
}
