package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	token string
	timer *time.Timer
}

// InMemory implements Locker inside a single process. TTL expiry is driven
// by timers, mirroring the Redis semantics closely enough that callers can
// be tested without a real store.
type InMemory struct {
	opts Options

	mu    sync.Mutex
	locks map[string]*entry
}

// NewInMemory returns an in-memory locker.
func NewInMemory(opts Options) *InMemory {
	return &InMemory{opts: opts.normalized(), locks: make(map[string]*entry)}
}

func (l *InMemory) Acquire(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	for attempt := 0; attempt < l.opts.Attempts; attempt++ {
		if l.tryLock(key, token) {
			return token, nil
		}
		if attempt == l.opts.Attempts-1 {
			break
		}
		select {
		case <-time.After(l.opts.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", ErrNotAcquired
}

func (l *InMemory) Release(_ context.Context, key, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok || e.token != token {
		return false, nil
	}
	e.timer.Stop()
	delete(l.locks, key)
	return true, nil
}

func (l *InMemory) tryLock(key, token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.locks[key]; held {
		return false
	}
	l.locks[key] = &entry{
		token: token,
		timer: time.AfterFunc(l.opts.TTL, func() { l.expire(key, token) }),
	}
	return true
}

// expire removes the key on TTL lapse, unless it was released and
// re-acquired in the meantime.
func (l *InMemory) expire(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.locks[key]; ok && e.token == token {
		delete(l.locks, key)
	}
}
