package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adastrum/photogate/internal/api"
	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/database"
	"github.com/adastrum/photogate/internal/models"
	"github.com/adastrum/photogate/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Photogate API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("detector", cfg.DetectorType),
		slog.String("segmenter", cfg.SegmenterType),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inference registry: model handles are created once and shared
	registry, err := models.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create inference registry: %w", err)
	}

	deps := &api.Dependencies{
		Pipeline: pipeline.New(cfg, registry, logger),
	}

	// Audit trail is optional: no DATABASE_URL means no persistence
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		deps.DB = pool
		logger.Info("audit trail enabled")
	}

	// Setup router
	router := api.NewRouter(logger, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
