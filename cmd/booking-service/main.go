package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/hoteldesk/booking-system/internal/booking/application"
	"github.com/hoteldesk/booking-system/internal/booking/config"
	bookinghttp "github.com/hoteldesk/booking-system/internal/booking/infrastructure/http"
	"github.com/hoteldesk/booking-system/internal/booking/infrastructure/inventory"
	bookingpg "github.com/hoteldesk/booking-system/internal/booking/infrastructure/postgres"
	"github.com/hoteldesk/booking-system/pkg/lock"
	"github.com/hoteldesk/booking-system/pkg/logging"
	"github.com/hoteldesk/booking-system/pkg/outbox"
	"github.com/hoteldesk/booking-system/pkg/shutdown"
	"github.com/hoteldesk/booking-system/pkg/tracing"
)

func main() {
	log := logging.New("booking")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg := config.Load()

	tp, err := tracing.Init(ctx, "booking-service", log)
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

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	repo := bookingpg.NewRepository(log, pool)
	if err := repo.Migrate(ctx); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	locker := lock.NewRedis(rdb, lock.Options{
		TTL:       cfg.LockTTL,
		Attempts:  cfg.LockRetryAttempts,
		BaseDelay: cfg.LockRetryBaseDelay,
	}, log)

	peer := inventory.NewClient(log, cfg.InventoryURL, cfg.InventoryTimeout)
	svc := application.NewService(log, repo, peer, locker)
	handler := bookinghttp.NewHandler(log, svc, rdb)

	// Outbox relay: booking events written with the confirmation commit get
	// published to Kafka out of band.
	writer := outbox.NewWriter(cfg.KafkaBrokers)
	defer func() { _ = writer.Close() }()
	store := bookingpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, store, dispatch, "booking-service-relay")

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

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
	log.Info("booking-service shutdown complete")
}
