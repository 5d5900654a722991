package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-sourcing/internal/config"
	"github.com/diewo77/go-sourcing/internal/db"
	"github.com/diewo77/go-sourcing/internal/events"
	"github.com/diewo77/go-sourcing/internal/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed the product catalog and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Initialize(cfg.App.Env, cfg.App.LogLevel)
	defer func() { _ = logger.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.Migrate(ctx, conn, cfg); err != nil {
		logger.Log.Fatal("migration failed", zap.Error(err))
	}
	if *migrateOnlyFlag {
		logger.Log.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(conn); err != nil {
			logger.Log.Fatal("seeding failed", zap.Error(err))
		}
		logger.Log.Info("seeding completed")
		return
	}

	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		logger.Log.Fatal("invalid event sink", zap.Error(err))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Log.Warn("closing event publisher", zap.Error(err))
		}
	}()

	app := NewApp(cfg, conn, publisher)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go sweepVisitors(ctx, app)

	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env), zap.String("event_sink", cfg.Events.Sink))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("error during shutdown", zap.Error(err))
	}
	logger.Log.Info("server stopped gracefully")
}

// sweepVisitors drops idle rate-limit buckets until ctx ends.
func sweepVisitors(ctx context.Context, app *App) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			app.limiter.Sweep()
		}
	}
}
