package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/app"
	"github.com/Freeeeeet/guide_scheduler/internal/cache"
	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/config"
	"github.com/Freeeeeet/guide_scheduler/internal/repository"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"go.uber.org/zap"
)

// Разовая очистка исключений на прошедшие даты; запускается по cron
func main() {
	before := flag.String("before", "", "delete exceptions dated before YYYY-MM-DD (default: today)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Store != config.StorePostgres {
		log.Fatalf("Housekeeping needs STORE=%s, got %q", config.StorePostgres, cfg.Store)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}

	var cutoff calendar.Date
	if *before != "" {
		if cutoff, err = calendar.ParseDate(*before); err != nil {
			logger.Fatal("Invalid -before", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := app.NewPool(ctx, cfg.GetDBDSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	schedules := service.NewScheduleService(repository.NewPgStore(pool, logger), cache.Nop{}, service.Options{
		Location: loc,
		Now:      time.Now,
	}, logger)

	deleted, err := schedules.PurgePastExceptions(ctx, cutoff)
	if err != nil {
		logger.Fatal("Failed to purge exceptions", zap.Error(err))
	}

	logger.Info("Housekeeping finished", zap.Int64("deleted", deleted))
}
