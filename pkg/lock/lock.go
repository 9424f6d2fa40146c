// Package lock provides TTL-bounded advisory locks keyed by string, with a
// Redis-backed implementation for multi-process deployments and an in-memory
// implementation for tests and single-process runs. A successful acquisition
// yields a holder token; only the matching token can release the key, so a
// holder that outlives its TTL cannot delete a lock re-acquired by someone
// else.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotAcquired is returned when the lock could not be obtained after
// exhausting all retry attempts.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive locks on string keys.
type Locker interface {
	// Acquire obtains the lock for key, retrying with exponential backoff
	// per the configured Options. It returns the holder token on success
	// and ErrNotAcquired once attempts are exhausted.
	Acquire(ctx context.Context, key string) (string, error)

	// Release frees the lock only if it is still held by token. It reports
	// false when the key is absent or owned by another holder; both are
	// normal outcomes, not errors.
	Release(ctx context.Context, key, token string) (bool, error)
}

// Options control acquisition behavior. The retry delay for attempt n is
// BaseDelay * 2^n, with no jitter.
type Options struct {
	TTL       time.Duration
	Attempts  int
	BaseDelay time.Duration
}

// DefaultOptions match the development defaults: 10s lease, 3 attempts,
// 100ms base delay.
func DefaultOptions() Options {
	return Options{
		TTL:       10 * time.Second,
		Attempts:  3,
		BaseDelay: 100 * time.Millisecond,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.TTL <= 0 {
		o.TTL = def.TTL
	}
	if o.Attempts <= 0 {
		o.Attempts = def.Attempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = def.BaseDelay
	}
	return o
}

// backoff returns the delay to sleep after a failed attempt (0-based).
func (o Options) backoff(attempt int) time.Duration {
	return o.BaseDelay << uint(attempt)
}

// RoomKey builds the lock key for a room on a given night.
func RoomKey(roomID int64, date string) string {
	return fmt.Sprintf("lock:room:%d:%s", roomID, date)
}
