package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medstore/internal/app"
	"medstore/internal/config"
	"medstore/internal/database"
	"medstore/internal/events"
	"medstore/internal/logger"
	"medstore/internal/repositories"
	"medstore/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger := logger.New("medstore", cfg.LogLevel)
	ctx := context.Background()

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Repositories ---
	var carts repositories.CartRepository
	if cfg.CartStore == config.CartStoreRedis {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		carts = repositories.NewRedisCartRepository(rdb, cfg.CartTTL)
	}
	repos := app.NewGORMRepositories(db, carts)

	// --- Events ---
	// Without RABBITMQ_URL the producer only logs.
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, appLogger)
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	}
	var publisher events.Publisher
	if mqClient != nil {
		publisher = mqClient
	}
	producer := events.NewProducer(publisher, appLogger)

	srv := app.New(repos, app.Options{
		JWTSecret: cfg.JWTSecret,
		JWTExpire: cfg.JWTExpire,
		Events:    producer,
		Logger:    appLogger,
		AccessLog: true,
	})

	if err := srv.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to provision admin account: %v", err)
	}
	if cfg.SeedDemoData {
		if err := seedMedicines(ctx, repos.Medicines, appLogger); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// --- Low stock consumer ---
	if mqClient != nil {
		watcher := events.NewLowStockWatcher(repos.Medicines, appLogger)
		if err := mqClient.Consume(events.LowStockQueue, events.RoutingKeyOrderPlaced, watcher.Handle); err != nil {
			log.Fatalf("Failed to start low stock consumer: %v", err)
		}
	}

	// --- Start HTTP Server ---
	appLogger.Info("starting server", "port", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.App.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	appLogger.Info("shutting down server")

	if err := srv.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("error during fiber shutdown", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	appLogger.Info("server gracefully stopped")
}
