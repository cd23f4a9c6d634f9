package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillDefaults(t *testing.T) {
	var c Config
	c.FillDefaults()

	assert.Equal(t, "info", c.App.LogLevel)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, 50, c.HTTP.RecentLimit)
	assert.Equal(t, "gpt-4o", c.OpenAI.Model)
	assert.Equal(t, DefaultFeeds, c.Sources.Feeds)
	assert.Equal(t, "127.0.0.1:6379", c.Redis.Addr)

	// defaults must not alias the package-level slice
	c.Sources.Feeds[0] = "https://changed.example/rss"
	assert.Equal(t, "https://trans.info/rss", DefaultFeeds[0])
}

func TestFillDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{
		Sources: SourcesConfig{Feeds: []string{"https://x/rss"}},
		OpenAI:  OpenAIConfig{Model: "gpt-4o-mini"},
		HTTP:    HTTPConfig{RecentLimit: 10},
	}
	c.FillDefaults()

	assert.Equal(t, []string{"https://x/rss"}, c.Sources.Feeds)
	assert.Equal(t, "gpt-4o-mini", c.OpenAI.Model)
	assert.Equal(t, 10, c.HTTP.RecentLimit)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{Postgres: PostgresConfig{DSN: "postgres://u:p@localhost/db"}}
		c.FillDefaults()
		return c
	}

	t.Run("valid", func(t *testing.T) {
		c := valid()
		require.NoError(t, c.Validate())
	})

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"blank feeds", func(c *Config) { c.Sources.Feeds = []string{" ", ""} }, ErrNoFeeds},
		{"no model", func(c *Config) { c.OpenAI.Model = "" }, ErrMissingModel},
		{"no dsn", func(c *Config) { c.Postgres.DSN = "" }, ErrMissingDSN},
		{"bad level", func(c *Config) { c.App.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"bad recent limit", func(c *Config) { c.HTTP.RecentLimit = -1 }, ErrInvalidRecent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			assert.ErrorIs(t, c.Validate(), tc.want)
		})
	}
}

func TestRedacted(t *testing.T) {
	c := Config{
		Cron:     CronConfig{Secret: "s3cret"},
		OpenAI:   OpenAIConfig{APIKey: "sk-123"},
		Postgres: PostgresConfig{DSN: "postgres://app:hunter2@db:5432/logiscan?sslmode=disable"},
	}
	r := c.Redacted()

	assert.Equal(t, "****", r.Cron.Secret)
	assert.Equal(t, "****", r.OpenAI.APIKey)
	assert.Equal(t, "", r.Redis.Password)
	assert.Equal(t, "postgres://app:****@db:5432/logiscan?sslmode=disable", r.Postgres.DSN)
	// original untouched
	assert.Equal(t, "s3cret", c.Cron.Secret)
}
