package main

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

	"github.com/edutrial/thpt-score-service/internal/cache"
	"github.com/edutrial/thpt-score-service/internal/config"
	"github.com/edutrial/thpt-score-service/internal/handlers"
	"github.com/edutrial/thpt-score-service/internal/repositories/postgres"
	"github.com/edutrial/thpt-score-service/internal/services"
	"github.com/edutrial/thpt-score-service/internal/utils"
	"github.com/edutrial/thpt-score-service/internal/validator"
	"github.com/edutrial/thpt-score-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger.Slog())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.Migrate(db); err != nil {
		return err
	}

	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(logger.Slog())
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	batchRepo := postgres.NewBatchPostgreSQL(db)
	cacheService := cache.NewRedisCache(redisClient, logger.Slog())

	serviceManager := services.NewServiceManager(batchRepo, cacheService, publisher, logger.Slog(), services.BatchOptions{
		MaxRows:   cfg.Batch.MaxRows,
		ReportTTL: cfg.Batch.ReportTTL,
		LookupTTL: cfg.Batch.LookupTTL,
	})

	opts := handlers.RouterOptions{
		MaxUploadBytes: cfg.Batch.MaxUploadBytes,
		HealthChecks: map[string]handlers.HealthCheck{
			"database": batchRepo.Ping,
			"cache":    cacheService.Ping,
		},
	}
	if cfg.Auth.Enabled {
		opts.Auth = handlers.AuthMiddleware(handlers.NewCasdoorVerifier(cfg.Auth))
	} else {
		logger.Warn("Authentication disabled, batch endpoints trust the " + handlers.DevUserHeader + " header")
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, validator.New(), logger, opts)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.NewRouter(handlerManager, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
