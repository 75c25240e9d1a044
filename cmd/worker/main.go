package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/henriquexaud/OrdersAPI/internal/config"
	"github.com/henriquexaud/OrdersAPI/internal/storage"
	"github.com/henriquexaud/OrdersAPI/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	w := worker.New(storage.New(db), cfg, logger.Named("worker"))
	w.Run(ctx)

	logger.Info("shutdown complete")
}

func newLogger(appEnv string) *zap.Logger {
	if appEnv == "production" {
		l, _ := zap.NewProduction()
		return l
	}
	l, _ := zap.NewDevelopment()
	return l
}
