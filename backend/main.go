package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"philosofium/backend/config"
	"philosofium/backend/routes"
	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "secret" {
		logger.Warn("JWT_SECRET is the default value; set it outside development")
	}

	// Initialize database
	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}

	deps := routes.Deps{DB: db, Cfg: cfg, Log: logger}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, leaderboard cache disabled", "error", err)
		} else {
			deps.LeaderboardCache = services.NewRedisLeaderboardCache(client, cfg.LeaderboardCacheTTL)
			logger.Info("leaderboard cache enabled", "ttl", cfg.LeaderboardCacheTTL)
		}
	}

	if cfg.ReconcileCron != "" {
		scheduler := cron.New()
		if err := services.NewReconcileJob(db, logger).Schedule(scheduler, cfg.ReconcileCron); err != nil {
			logger.Error("invalid RECONCILE_CRON", "spec", cfg.ReconcileCron, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("reconcile job scheduled", "spec", cfg.ReconcileCron)
	}

	app := routes.NewApp(deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("listening", "port", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
