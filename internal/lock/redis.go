package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotAcquired is returned when the wait deadline passes before the lock frees up.
var ErrNotAcquired = errors.New("lock not acquired")

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis is a Locker shared across processes using SET NX with a TTL. Each
// holder writes a random token so only it can release the key.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewRedis constructs a Redis locker. Keys expire after ttl so a crashed
// holder cannot block the key forever; Acquire gives up after the same ttl.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, wait: ttl, retry: 25 * time.Millisecond, logger: logger}
}

// Acquire polls SET NX until it wins, ctx is done, or the wait budget runs out.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.client.SetNX(ctx, lockKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock %s: %w", key, ErrNotAcquired)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.release(lockKey, token) })
	}, nil
}

// release deletes lockKey if it still carries token. A failure leaves the key
// to expire after ttl.
func (r *Redis) release(lockKey, token string) {
	// fresh context so a cancelled request still frees the key
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	deleted, err := unlockScript.Run(ctx, r.client, []string{lockKey}, token).Int()
	switch {
	case err != nil:
		r.logger.Error("lock release failed", zap.String("key", lockKey), zap.Duration("expires_in", r.ttl), zap.Error(err))
	case deleted == 0:
		r.logger.Warn("lock expired before release", zap.String("key", lockKey))
	}
}
