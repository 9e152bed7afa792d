// Package lock provides the short-lived exclusive locks used to serialize
// gateway captures per order.
package lock

import (
	"context"
	"log/slog"
	"time"

	"coach-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "coach-booking:lock:"

var ErrLockNotOwned = errs.New("lock not owned by this client")

// Deletes the key only when it still holds our token, so an expired lock
// re-acquired by another caller is never released by us.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		slog.Error("failed to acquire lock", "key", key, "error", err)
		return "", false, errs.Wrap(err, "redis SETNX")
	}
	if !acquired {
		slog.Debug("lock busy", "key", key)
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	deleted, err := unlockScript.Run(ctx, l.client, []string{keyPrefix + key}, token).Int()
	if err != nil {
		return errs.Wrap(err, "redis unlock")
	}
	if deleted == 0 {
		slog.Warn("lock expired before release", "key", key)
		return ErrLockNotOwned
	}
	return nil
}
