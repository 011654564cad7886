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

	"yarn-backend/internal/config"
	"yarn-backend/internal/logger"
	"yarn-backend/internal/mailer"
	"yarn-backend/internal/metrics"
	"yarn-backend/internal/router"
	"yarn-backend/internal/store"
	"yarn-backend/internal/store/memstore"
	"yarn-backend/internal/store/mongostore"
	"yarn-backend/internal/store/pgstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zaplog, err := logger.NewZapLog(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer zaplog.Sync()

	for _, w := range cfg.Warnings() {
		zaplog.Warn(w)
	}

	if err := run(cfg, zaplog); err != nil {
		zaplog.Fatal("server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, zaplog *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return pgstore.Open(cfg.DatabaseDSN, zaplog)
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, zaplog)
	case config.DriverMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func run(cfg *config.Config, zaplog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, zaplog)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			zaplog.Error("store close", zap.Error(err))
		}
	}()

	app := router.New(router.Deps{
		Config:  cfg,
		Store:   st,
		Log:     zaplog,
		Mailer:  mailer.NewLogMailer(zaplog),
		Metrics: metrics.New(),
	})

	errc := make(chan error, 1)
	go func() {
		zaplog.Info("server listening", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		errc <- app.Listen(":" + cfg.HTTPPort)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	zaplog.Info("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}
