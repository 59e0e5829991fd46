/**
 * @description
 * This is the main entry point for the finance-service. The service runs the
 * daily rent-payment batch on a cron schedule and exposes an internal HTTP
 * surface to trigger runs out of band, generate contract payment schedules
 * and query profitability statistics.
 */
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/rentfolio/finance-service/internal/api"
	"github.com/rentfolio/finance-service/internal/app"
	"github.com/rentfolio/finance-service/internal/config"
	"github.com/rentfolio/finance-service/internal/store"
	"github.com/rentfolio/finance-service/pkg/notificationclient"
	"github.com/rentfolio/finance-service/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env for local development; in deployed environments the
	// variables come from the platform.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	// Load application configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Establish database connection with connection pool configuration
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// The event producer is optional: without a broker URL the engine just
	// logs status changes instead of publishing them.
	var publisher app.EventPublisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("unable to connect to RabbitMQ, events disabled", "error", err)
		} else {
			defer producer.Close()
			publisher = producer
		}
	}

	// Initialize dependencies
	repository := store.NewRepository(dbpool)
	notifier := notificationclient.NewClient(cfg.NotificationServiceURL, cfg.InternalAPIKey)
	processor := app.NewProcessor(repository, publisher, logger)
	coordinator := app.NewCoordinator(processor, repository, notifier, publisher, logger)
	service := app.NewService(repository, logger)
	scheduler := app.NewScheduler(coordinator, logger, *cfg)

	// Start the cron scheduler in the background
	scheduler.Start()
	logger.Info("scheduler started")

	// Start the HTTP server for the internal trigger surface
	handler := api.NewHandler(coordinator, service)
	router := api.NewRouter(handler, cfg.InternalAPIKey)
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("http server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal to gracefully shut down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	stopCtx := scheduler.Stop()
	<-stopCtx.Done() // Wait for any running job to finish
	logger.Info("scheduler stopped gracefully")
}
