package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoteldesk/booking-system/internal/inventory/application"
	"github.com/hoteldesk/booking-system/internal/inventory/config"
	inventoryhttp "github.com/hoteldesk/booking-system/internal/inventory/infrastructure/http"
	inventorypg "github.com/hoteldesk/booking-system/internal/inventory/infrastructure/postgres"
	"github.com/hoteldesk/booking-system/pkg/logging"
	"github.com/hoteldesk/booking-system/pkg/shutdown"
	"github.com/hoteldesk/booking-system/pkg/tracing"
)

func main() {
	log := logging.New("inventory")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg := config.Load()

	tp, err := tracing.Init(ctx, "inventory-service", log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := inventorypg.NewRepository(log, pool)
	if err := repo.Migrate(ctx); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}
	if cfg.SeedSampleData {
		if err := repo.Seed(ctx); err != nil {
			log.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	svc := application.NewService(repo)
	handler := inventoryhttp.NewHandler(log, svc)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("inventory-service shutdown complete")
}
