package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/advisor"
	"github.com/hongminglow/fincontrol-be/internal/config"
	"github.com/hongminglow/fincontrol-be/internal/export"
	"github.com/hongminglow/fincontrol-be/internal/recurring"
	"github.com/hongminglow/fincontrol-be/internal/server"
	"github.com/hongminglow/fincontrol-be/internal/storage/postgres"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := logger.Sugar()

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalw("init database", "error", err)
	}
	defer store.Close()

	if cfg.RecurringSweepSchedule != "" {
		sweeper := recurring.NewSweeper(store, store, log)
		stopSweep, err := sweeper.Schedule(ctx, cfg.RecurringSweepSchedule)
		if err != nil {
			log.Fatalw("schedule recurring sweep", "schedule", cfg.RecurringSweepSchedule, "error", err)
		}
		defer stopSweep()
	}

	srv := server.New(cfg, server.Deps{
		Store:  store,
		Health: store,
		Advisor: advisor.NewClient(advisor.Config{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, log),
		Exporter: export.NewService(store, log),
		Logger:   log,
	})

	go func() {
		log.Infow("fincontrol backend listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Errorw("graceful shutdown error", "error", err)
	}
}
