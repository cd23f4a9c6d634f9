package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLock(t *testing.T, ttl time.Duration) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLock(rdb, "logiscan:test:lock", ttl), mr
}

func TestRedisLockExcludesSecondHolder(t *testing.T) {
	lock, mr := setupTestLock(t, time.Minute)
	ctx := context.Background()

	unlock, ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("logiscan:test:lock"))

	again, ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, again)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("logiscan:test:lock"))

	_, ok, err = lock.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockUnlockKeepsForeignHolder(t *testing.T) {
	lock, mr := setupTestLock(t, time.Minute)
	ctx := context.Background()

	unlock, ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// lock expired and was taken by another process
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set("logiscan:test:lock", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("logiscan:test:lock")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLockExpires(t *testing.T) {
	lock, mr := setupTestLock(t, time.Second)
	ctx := context.Background()

	_, ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok, err = lock.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
