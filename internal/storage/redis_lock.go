package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a single-holder lock used to keep ingestion runs from overlapping
// across processes. The TTL bounds how long a crashed holder blocks others.
type RedisLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisLock(rdb *redis.Client, key string, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisLock{rdb: rdb, key: key, ttl: ttl}
}

// TryLock acquires the lock without waiting. When acquired is false the lock
// is held by someone else and unlock is nil.
func (l *RedisLock) TryLock(ctx context.Context) (unlock func(context.Context) error, acquired bool, err error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", l.key, err)
		}
		return nil
	}, true, nil
}
