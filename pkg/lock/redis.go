package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// delScript deletes the key only while it still holds the caller's token.
// The check and the delete must stay inside one script; splitting them at
// the caller races against TTL expiry and re-acquisition.
var delScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// Redis implements Locker using a Redis backend.
type Redis struct {
	client *redis.Client
	opts   Options
	log    *slog.Logger
}

// NewRedis returns a Redis locker using the provided client.
func NewRedis(client *redis.Client, opts Options, log *slog.Logger) *Redis {
	return &Redis{client: client, opts: opts.normalized(), log: log}
}

func (r *Redis) Acquire(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	for attempt := 0; attempt < r.opts.Attempts; attempt++ {
		ok, err := r.client.SetNX(ctx, key, token, r.opts.TTL).Result()
		if err != nil {
			return "", err
		}
		if ok {
			r.log.Debug("lock acquired", "key", key, "attempt", attempt+1)
			return token, nil
		}
		if attempt == r.opts.Attempts-1 {
			break
		}
		select {
		case <-time.After(r.opts.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	r.log.Warn("failed to acquire lock", "key", key, "attempts", r.opts.Attempts)
	return "", ErrNotAcquired
}

func (r *Redis) Release(ctx context.Context, key, token string) (bool, error) {
	res, err := delScript.Run(ctx, r.client, []string{key}, token).Result()
	if err != nil && err != redis.Nil {
		return false, err
	}
	n, _ := res.(int64)
	if n != 1 {
		r.log.Warn("lock already expired or owned by another holder", "key", key)
		return false, nil
	}
	r.log.Debug("lock released", "key", key)
	return true, nil
}
