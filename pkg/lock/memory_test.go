package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryAcquireRelease(t *testing.T) {
	l := NewInMemory(Options{Attempts: 1})
	ctx := context.Background()

	token, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, "k"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
	if ok, err := l.Release(ctx, "k", token); err != nil || !ok {
		t.Fatalf("release: ok=%v err=%v", ok, err)
	}
	if ok, _ := l.Release(ctx, "k", token); ok {
		t.Fatal("second release should report false")
	}
	if _, err := l.Acquire(ctx, "k"); err != nil {
		t.Fatalf("re-acquire: %v", err)
	}
}

func TestInMemoryTTLExpires(t *testing.T) {
	l := NewInMemory(Options{TTL: 10 * time.Millisecond, Attempts: 1})
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	fresh, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("acquire after expiry: %v", err)
	}
	if ok, _ := l.Release(ctx, "k", stale); ok {
		t.Fatal("stale token must not release the new holder's lock")
	}
	if ok, _ := l.Release(ctx, "k", fresh); !ok {
		t.Fatal("fresh token should release")
	}
}

func TestInMemoryWrongTokenRejected(t *testing.T) {
	l := NewInMemory(Options{Attempts: 1})
	ctx := context.Background()

	if _, err := l.Acquire(ctx, "k"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok, _ := l.Release(ctx, "k", "not-the-token"); ok {
		t.Fatal("foreign token must not release the lock")
	}
}
