package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"eventhub/config"
	"eventhub/internal/adapters/auth"
	deliveryhttp "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/repository/pgstats"
	"eventhub/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger("stats-server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("stats server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.StatsDBUrl)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Ping(startupCtx); err != nil {
		return err
	}

	hitRepo := pgstats.NewHitRepository(pool)
	if err := hitRepo.EnsureSchema(startupCtx); err != nil {
		return err
	}
	statsSvc, err := services.NewStatsService(hitRepo, []byte(cfg.StatsOriginKey), cfg.ContextTimeout)
	if err != nil {
		return err
	}

	router := deliveryhttp.NewStatsRouter(
		controllers.NewStatsController(logger, statsSvc),
		auth.NewJWTVerifier(cfg.JWTSecret),
	)
	handler := middleware.RequestID(middleware.LoggingMiddleware(logger, router))
	srv := &http.Server{Addr: ":" + cfg.StatsPort, Handler: handler}

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
