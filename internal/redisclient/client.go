package redisclient

import (
	"time"

	"logiscan/internal/config"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client from configuration. Timeouts are short because
// Redis only guards ingestion runs and should fail fast when unreachable.
func New(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
