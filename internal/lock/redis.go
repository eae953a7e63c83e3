package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"recruitsync_backend/internal/logger"
)

const (
	defaultRetryDelay = 50 * time.Millisecond
	keyPrefix         = "recruitsync:lock:"
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Redis is a cross-process Locker built on SET NX PX with a compare-and-delete
// release, so a holder whose lease expired cannot free someone else's lock.
type Redis struct {
	client     redis.UniversalClient
	retryDelay time.Duration
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, retryDelay: defaultRetryDelay}
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-time.After(r.retryDelay):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be done; release on a fresh one.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if err := releaseScript.Run(releaseCtx, r.client, []string{fullKey}, token).Err(); err != nil {
				logger.Warn("Failed to release lock", "key", key, "error", err)
			}
		})
	}, nil
}
