package integration

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	bookingpg "github.com/hoteldesk/booking-system/internal/booking/infrastructure/postgres"
	bookingdomain "github.com/hoteldesk/booking-system/internal/booking/domain"
	"github.com/hoteldesk/booking-system/internal/inventory/domain"
	inventorypg "github.com/hoteldesk/booking-system/internal/inventory/infrastructure/postgres"
	"github.com/hoteldesk/booking-system/pkg/lock"
)

// TestStores exercises the row-lock and lock-store guarantees against real
// Postgres and Redis containers. Requires a local Docker daemon.
func TestStores(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	if err != nil {
		t.Skipf("containers unavailable: %v", err)
	}
	t.Cleanup(func() { env.Teardown(context.Background()) })

	pool, err := pgxpool.New(ctx, env.PGURL)
	if err != nil {
		t.Fatalf("pg connect: %v", err)
	}
	t.Cleanup(pool.Close)

	log := slog.New(slog.DiscardHandler)
	repo := inventorypg.NewRepository(log, pool)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var roomID int64
	err = pool.QueryRow(ctx, `INSERT INTO rooms (room_number, room_type, price_per_night_cents, total_quantity)
		VALUES ('901', 'Standard', 10000, 2) RETURNING id`).Scan(&roomID)
	if err != nil {
		t.Fatalf("insert room: %v", err)
	}
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("row lock conserves quantity under contention", func(t *testing.T) {
		const n = 8
		var wg sync.WaitGroup
		var successes, conflicts atomic.Int32
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Reserve(ctx, roomID, date)
				switch {
				case err == nil:
					successes.Add(1)
				case errors.Is(err, domain.ErrNoAvailability):
					conflicts.Add(1)
				default:
					t.Errorf("reserve: %v", err)
				}
			}()
		}
		wg.Wait()

		if successes.Load() != 2 {
			t.Fatalf("successes = %d, want 2 (total_quantity)", successes.Load())
		}
		if conflicts.Load() != n-2 {
			t.Fatalf("conflicts = %d, want %d", conflicts.Load(), n-2)
		}
		a, err := repo.CheckAvailability(ctx, roomID, date)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if a.AvailableQuantity != 0 {
			t.Fatalf("final quantity = %d, want 0", a.AvailableQuantity)
		}
	})

	t.Run("release stops at capacity", func(t *testing.T) {
		if _, err := repo.Release(ctx, roomID, date); err != nil {
			t.Fatalf("first release: %v", err)
		}
		if _, err := repo.Release(ctx, roomID, date); err != nil {
			t.Fatalf("second release: %v", err)
		}
		if _, err := repo.Release(ctx, roomID, date); !errors.Is(err, domain.ErrAtCapacity) {
			t.Fatalf("expected at-capacity, got %v", err)
		}
	})

	t.Run("redis lock round trip", func(t *testing.T) {
		opts, err := redis.ParseURL(env.RedisURL)
		if err != nil {
			t.Fatalf("parse redis url: %v", err)
		}
		rdb := redis.NewClient(opts)
		t.Cleanup(func() { _ = rdb.Close() })

		locker := lock.NewRedis(rdb, lock.Options{Attempts: 1}, log)
		token, err := locker.Acquire(ctx, "lock:room:901:2026-09-01")
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		if _, err := locker.Acquire(ctx, "lock:room:901:2026-09-01"); !errors.Is(err, lock.ErrNotAcquired) {
			t.Fatalf("expected contention, got %v", err)
		}
		if ok, err := locker.Release(ctx, "lock:room:901:2026-09-01", token); err != nil || !ok {
			t.Fatalf("release: ok=%v err=%v", ok, err)
		}
	})

	t.Run("rolled back booking leaves no row", func(t *testing.T) {
		brepo := bookingpg.NewRepository(log, pool)
		if err := brepo.Migrate(ctx); err != nil {
			t.Fatalf("migrate bookings: %v", err)
		}

		b, err := bookingdomain.NewBooking(1, roomID, date, date.AddDate(0, 0, 1), 10000)
		if err != nil {
			t.Fatalf("new booking: %v", err)
		}
		tx, err := brepo.Begin(ctx)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if err := tx.InsertPending(ctx, &b); err != nil {
			t.Fatalf("insert pending: %v", err)
		}
		if b.ID == 0 {
			t.Fatal("pending row should have an identity before commit")
		}
		if err := tx.Rollback(ctx); err != nil {
			t.Fatalf("rollback: %v", err)
		}
		if _, err := brepo.Get(ctx, b.ID); !errors.Is(err, bookingdomain.ErrNotFound) {
			t.Fatalf("rolled-back booking still visible: %v", err)
		}
	})

	t.Run("confirmed booking commits with outbox event", func(t *testing.T) {
		brepo := bookingpg.NewRepository(log, pool)
		b, err := bookingdomain.NewBooking(2, roomID, date, date.AddDate(0, 0, 1), 10000)
		if err != nil {
			t.Fatalf("new booking: %v", err)
		}
		tx, err := brepo.Begin(ctx)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if err := tx.InsertPending(ctx, &b); err != nil {
			t.Fatalf("insert pending: %v", err)
		}
		b.Status = bookingdomain.StatusConfirmed
		if err := tx.Confirm(ctx, &b, "BookingConfirmed", []byte(`{"booking_id":1}`)); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("commit: %v", err)
		}

		got, err := brepo.Get(ctx, b.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status != bookingdomain.StatusConfirmed {
			t.Fatalf("status = %s, want confirmed", got.Status)
		}

		store := bookingpg.NewOutboxStore(log, pool)
		events, err := store.LockBatch(ctx, "test-relay", 10, 5*time.Second)
		if err != nil {
			t.Fatalf("lock batch: %v", err)
		}
		if len(events) != 1 || events[0].Type != "BookingConfirmed" {
			t.Fatalf("events = %+v, want one BookingConfirmed", events)
		}
	})
}
