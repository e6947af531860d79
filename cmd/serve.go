package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/adapters"
	"github.com/satriahrh/isyarat/adapters/mongo"
	"github.com/satriahrh/isyarat/domain/repositories"
	"github.com/satriahrh/isyarat/internal/api"
	"github.com/satriahrh/isyarat/internal/auth"
	"github.com/satriahrh/isyarat/internal/config"
	"github.com/satriahrh/isyarat/internal/metrics"
	"github.com/satriahrh/isyarat/internal/websocket"
	"github.com/satriahrh/isyarat/usecase"
)

const (
	shutdownTimeout = 10 * time.Second
	maxRequestBody  = "1M"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root)
		},
	}
}

func runServe(ctx context.Context, root *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx, root)
	if err != nil {
		return err
	}
	logger := a.logger
	defer logger.Sync()

	secret, err := jwtSecret(a.config, logger)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer(secret)
	if err != nil {
		return err
	}

	sessionRepo, closeStore, err := newSessionRepository(ctx, a)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize usecase services
	clk := clock.New()
	sessions := usecase.NewSessionService(
		sessionRepo,
		a.conversion,
		a.catalog,
		clk,
		a.config.SessionTTL,
		logger,
	)

	// Initialize WebSocket hub with the session service
	hub := websocket.NewHub(sessions, logger)
	sessions.SetPublisher(hub)
	go hub.Run(ctx)

	cleanup := websocket.NewSessionCleanupService(sessions, clk, a.config.SessionCleanupInterval, logger)
	cleanup.Start()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(maxRequestBody))
	e.Use(metrics.Middleware())

	// Initialize API routes
	api.InitRoutes(e, api.Dependencies{
		Translation:       a.translation,
		Conversion:        a.conversion,
		Sessions:          sessions,
		Catalog:           a.catalog,
		Tokens:            tokens,
		Hub:               hub,
		Logger:            logger,
		DefaultIntervalMs: a.config.PlaybackIntervalMs,
	})

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + a.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	logger.Info("Server started",
		zap.String("port", a.config.Port),
		zap.Strings("providers", a.translation.Providers()),
		zap.Int("gestures", a.catalog.Len()))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Error("Server failed", zap.Error(err))
		cleanup.Stop()
		sessions.Shutdown()
		return err
	}

	logger.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	cleanup.Stop()
	sessions.Shutdown()
	cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}

// newSessionRepository selects the session store. The returned func
// releases the store's connection.
func newSessionRepository(ctx context.Context, a *app) (repositories.SessionRepository, func(), error) {
	if a.config.SessionStore != config.SessionStoreMongo {
		return adapters.NewMemorySessionRepository(), func() {}, nil
	}

	client, err := mongo.NewClient(ctx, mongo.Config{
		URI:      a.config.MongoURI,
		Database: a.config.MongoDatabase,
	}, a.logger)
	if err != nil {
		return nil, nil, err
	}

	repo := mongo.NewSessionRepository(client.Database, a.logger)
	if err := repo.EnsureIndexes(ctx); err != nil {
		a.logger.Warn("Failed to ensure session indexes", zap.Error(err))
	}

	return repo, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Close(closeCtx)
	}, nil
}
