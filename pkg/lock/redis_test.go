package lock

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newRedisLocker(t *testing.T, opts Options) (*Redis, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log := slog.New(slog.DiscardHandler)
	return NewRedis(client, opts, log), mr, client
}

func TestRedisAcquireRelease(t *testing.T) {
	l, mr, _ := newRedisLocker(t, Options{})
	ctx := context.Background()

	token, err := l.Acquire(ctx, "lock:room:1:2026-09-01")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if got, _ := mr.Get("lock:room:1:2026-09-01"); got != token {
		t.Fatalf("stored value %q, want token %q", got, token)
	}

	released, err := l.Release(ctx, "lock:room:1:2026-09-01", token)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !released {
		t.Fatal("expected release to succeed")
	}
	if mr.Exists("lock:room:1:2026-09-01") {
		t.Fatal("key should be gone after release")
	}
}

func TestRedisAcquireExhaustsAttempts(t *testing.T) {
	l, _, _ := newRedisLocker(t, Options{Attempts: 3, BaseDelay: time.Millisecond})
	ctx := context.Background()

	if _, err := l.Acquire(ctx, "k"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	start := time.Now()
	_, err := l.Acquire(ctx, "k")
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
	// base*2^0 + base*2^1 = 3ms of backoff, no sleep after the final try
	if elapsed := time.Since(start); elapsed < 3*time.Millisecond {
		t.Fatalf("backoff too short: %v", elapsed)
	}
}

func TestRedisReleaseIdempotent(t *testing.T) {
	l, _, _ := newRedisLocker(t, Options{})
	ctx := context.Background()

	token, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok, err := l.Release(ctx, "k", token); err != nil || !ok {
		t.Fatalf("first release: ok=%v err=%v", ok, err)
	}
	if ok, err := l.Release(ctx, "k", token); err != nil || ok {
		t.Fatalf("second release should report false without error, got ok=%v err=%v", ok, err)
	}
}

func TestRedisReleaseAfterExpiryDoesNotTouchNewHolder(t *testing.T) {
	l, mr, _ := newRedisLocker(t, Options{TTL: time.Second, Attempts: 1})
	ctx := context.Background()

	first, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	// Force the TTL to lapse mid-critical-section.
	mr.FastForward(2 * time.Second)

	second, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("second acquire after expiry: %v", err)
	}

	released, err := l.Release(ctx, "k", first)
	if err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if released {
		t.Fatal("stale holder must not release the re-acquired lock")
	}
	if got, _ := mr.Get("k"); got != second {
		t.Fatalf("new holder's token clobbered: got %q want %q", got, second)
	}
}

func TestRedisContention(t *testing.T) {
	l, _, _ := newRedisLocker(t, Options{Attempts: 1})
	ctx := context.Background()

	token, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, "k"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("concurrent acquire should fail, got %v", err)
	}
	if _, err := l.Release(ctx, "k", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := l.Acquire(ctx, "k"); err != nil {
		t.Fatalf("re-acquire after release: %v", err)
	}
}
