package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"logiscan/internal/ai"
	"logiscan/internal/config"
	"logiscan/internal/feed"
	"logiscan/internal/pipeline"
	"logiscan/internal/redisclient"
	"logiscan/internal/storage"
)

// parseDuration parses a config duration, naming the key on failure.
func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// openStore connects to Postgres and makes sure the schema exists.
func openStore(ctx context.Context, cfg config.Config) (*storage.ArticleStore, error) {
	if cfg.Postgres.DSN == "" {
		return nil, config.ErrMissingDSN
	}
	pool, err := storage.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, err
	}
	store := storage.NewArticleStore(pool)
	if err := store.Ensure(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func newFetcher(cfg config.Config) (*feed.Fetcher, error) {
	timeout, err := parseDuration("sources.fetch_timeout", cfg.Sources.FetchTimeout)
	if err != nil {
		return nil, err
	}
	return feed.NewFetcher(cfg.Sources.UserAgent, timeout), nil
}

// buildPipeline wires fetcher, analyzer, store and the optional run lock.
// The returned cleanup releases the Redis client, if any.
func buildPipeline(cfg config.Config, store pipeline.Store) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}
	if cfg.OpenAI.APIKey == "" {
		slog.Warn("openai: api key not set, enrichment calls will fail")
	}
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	aiTimeout, err := parseDuration("openai.timeout", cfg.OpenAI.Timeout)
	if err != nil {
		return nil, cleanup, err
	}
	analyzer := ai.NewOpenAI(ai.Config{
		APIKey:            cfg.OpenAI.APIKey,
		Model:             cfg.OpenAI.Model,
		BaseURL:           cfg.OpenAI.BaseURL,
		Timeout:           aiTimeout,
		RequestsPerMinute: cfg.OpenAI.RequestsPerMinute,
		MaxInputRunes:     cfg.OpenAI.MaxInputRunes,
	})

	var opts []pipeline.Option
	if cfg.Cron.LockEnabled {
		ttl, err := parseDuration("cron.lock_ttl", cfg.Cron.LockTTL)
		if err != nil {
			return nil, cleanup, err
		}
		rdb := redisclient.New(cfg.Redis)
		cleanup = func() { _ = rdb.Close() }
		opts = append(opts, pipeline.WithLocker(storage.NewRedisLock(rdb, cfg.Cron.LockKey, ttl)))
		slog.Info("pipeline: run lock enabled", "key", cfg.Cron.LockKey, "ttl", ttl.String())
	}
	return pipeline.New(cfg.Sources.Feeds, fetcher, analyzer, store, opts...), cleanup, nil
}
