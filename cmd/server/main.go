package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-inventory-backend/internal/config"
	"asset-inventory-backend/internal/dashboard"
	"asset-inventory-backend/internal/database"
	"asset-inventory-backend/internal/jobs"
	"asset-inventory-backend/internal/logging"
	"asset-inventory-backend/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log := logging.Configure(cfg.LogLevel)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	deps := server.Deps{Config: cfg, DB: db, Log: log}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.WithError(err).WithField("addr", cfg.RedisAddr).Fatal("redis unavailable")
		}
		defer rdb.Close()
		deps.Claimer = server.NewRedisClaimer(rdb)
	} else {
		log.Warn("REDIS_ADDR not set, Idempotency-Key headers are ignored")
	}

	if cfg.LowStockCron != "" {
		c, err := jobs.StartLowStockReport(cfg.LowStockCron, dashboard.NewService(db), log)
		if err != nil {
			log.WithError(err).WithField("spec", cfg.LowStockCron).Fatal("invalid LOW_STOCK_CRON")
		}
		defer c.Stop()
	}

	app := server.New(deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.WithError(err).Fatal("listen")
	}
}
