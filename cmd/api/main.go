package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stakebook/internal/cache"
	"stakebook/internal/config"
	"stakebook/internal/db"
	"stakebook/internal/ledger"
	"stakebook/internal/repository"
	"stakebook/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("starting stakebook",
		zap.String("env", cfg.Server.Env),
		zap.Int("port", cfg.Server.Port),
	)

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()
	logger.Info("connected to PostgreSQL")

	var cacheClient *cache.Client
	if cfg.Redis.Enabled {
		cacheClient, err = cache.NewClient(ctx, cfg.Redis.URL, cfg.Redis.WalletTTL)
		if err != nil {
			logger.Warn("redis unavailable, wallet cache disabled", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
			logger.Info("connected to Redis")
		}
	}

	store := repository.NewStore(database, cacheClient, logger)
	service := ledger.NewService(store, logger)

	srv := server.New(server.Config{
		Port:        cfg.Server.Port,
		Database:    database,
		CacheClient: cacheClient,
		Service:     service,
		Logger:      logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
