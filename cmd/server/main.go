package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/api"
	"github.com/Freeeeeet/guide_scheduler/internal/app"
	"github.com/Freeeeeet/guide_scheduler/internal/cache"
	"github.com/Freeeeeet/guide_scheduler/internal/config"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/notify"
	"github.com/Freeeeeet/guide_scheduler/internal/repository"
	"github.com/Freeeeeet/guide_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"github.com/Freeeeeet/guide_scheduler/migrations"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}

	logger.Info("Starting guide scheduler",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.Store),
		zap.String("timezone", loc.String()),
	)

	ctx := context.Background()

	// Хранилище
	var store repository.Store
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		store = memory.NewStore()
	default:
		pool, err := app.NewPool(ctx, cfg.GetDBDSN(), logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		migrator, err := app.NewMigrator(pool, migrations.FS, cfg.MigrationsDir, logger)
		if err != nil {
			logger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		if err := migrator.Close(); err != nil {
			logger.Warn("Failed to close migrator", zap.Error(err))
		}

		store = repository.NewPgStore(pool, logger)
	}

	// Кэш слотов
	var slotCache service.SlotCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: 0})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		logger.Info("Redis connected", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.SlotCacheTTL))
		slotCache = cache.NewSlotCache(rdb, cfg.SlotCacheTTL)
	}

	// Уведомления
	var notifier service.Notifier = notify.Nop{}
	if cfg.TelegramToken != "" {
		b, err := notify.NewTelegramBot(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to create telegram bot", zap.Error(err))
		}
		notifier = notify.NewTelegramNotifier(b, cfg.TelegramChatID, logger)
		logger.Info("Telegram notifications enabled", zap.Int64("chat_id", cfg.TelegramChatID))
	}

	services := service.New(store, slotCache, notifier, service.Options{
		Location:         loc,
		Now:              time.Now,
		SlotStepMinutes:  cfg.SlotStepMinutes,
		FeeBaseHours:     cfg.FeeBaseHours,
		DefaultBaseFee:   model.Money(cfg.DefaultBaseFee),
		DefaultHourlyFee: model.Money(cfg.DefaultHourlyFee),
	}, logger)

	a := api.NewAPI(services, cfg.StoreTimeout, logger)
	a.RegisterRoutes()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      a.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
