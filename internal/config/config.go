package config

import (
	"errors"
	"strings"
)

// Validation errors returned by Config.Validate.
var (
	ErrNoFeeds         = errors.New("sources.feeds must list at least one feed URL")
	ErrMissingModel    = errors.New("openai.model is required")
	ErrMissingDSN      = errors.New("postgres.dsn is required")
	ErrInvalidLogLevel = errors.New("app.log_level must be one of: debug, info, warn, error")
	ErrInvalidRecent   = errors.New("http.recent_limit must be positive")
)

// DefaultFeeds are the Polish logistics feeds ingested when none are configured.
var DefaultFeeds = []string{
	"https://trans.info/rss",
	"https://logistyka.net.pl/rss",
	"https://www.transport-publiczny.pl/rss",
	"https://www.logistyka.net.pl/rss",
	"https://www.transport-logistyka.pl/rss",
}

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"` // text or json
}

// HTTPConfig controls the API server.
type HTTPConfig struct {
	Addr            string `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"` // duration string
	RecentLimit     int    `mapstructure:"recent_limit" yaml:"recent_limit"`
}

// CronConfig controls how ingestion runs are triggered.
type CronConfig struct {
	Secret      string `mapstructure:"secret" yaml:"secret"`
	Interval    string `mapstructure:"interval" yaml:"interval"` // empty disables the in-process scheduler
	LockEnabled bool   `mapstructure:"lock_enabled" yaml:"lock_enabled"`
	LockKey     string `mapstructure:"lock_key" yaml:"lock_key"`
	LockTTL     string `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

// SourcesConfig lists the feeds to ingest.
type SourcesConfig struct {
	Feeds        []string `mapstructure:"feeds" yaml:"feeds"`
	UserAgent    string   `mapstructure:"user_agent" yaml:"user_agent"`
	FetchTimeout string   `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
}

// OpenAIConfig configures the enrichment model.
type OpenAIConfig struct {
	APIKey            string `mapstructure:"api_key" yaml:"api_key"`
	Model             string `mapstructure:"model" yaml:"model"`
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"` // optional
	Timeout           string `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"` // 0 = unlimited
	MaxInputRunes     int    `mapstructure:"max_input_runes" yaml:"max_input_runes"`
}

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Cron     CronConfig     `mapstructure:"cron" yaml:"cron"`
	Sources  SourcesConfig  `mapstructure:"sources" yaml:"sources"`
	OpenAI   OpenAIConfig   `mapstructure:"openai" yaml:"openai"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ShutdownTimeout == "" {
		c.HTTP.ShutdownTimeout = "10s"
	}
	if c.HTTP.RecentLimit == 0 {
		c.HTTP.RecentLimit = 50
	}
	if c.Cron.LockKey == "" {
		c.Cron.LockKey = "logiscan:ingest:lock"
	}
	if c.Cron.LockTTL == "" {
		c.Cron.LockTTL = "30m"
	}
	if len(c.Sources.Feeds) == 0 {
		c.Sources.Feeds = append([]string(nil), DefaultFeeds...)
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "logiscan/1.0 (+rss ingest)"
	}
	if c.Sources.FetchTimeout == "" {
		c.Sources.FetchTimeout = "20s"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.Timeout == "" {
		c.OpenAI.Timeout = "120s"
	}
	if c.OpenAI.MaxInputRunes == 0 {
		c.OpenAI.MaxInputRunes = 8000
	}
	if c.Postgres.MaxConns == 0 {
		c.Postgres.MaxConns = 10
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	feeds := 0
	for _, f := range c.Sources.Feeds {
		if strings.TrimSpace(f) != "" {
			feeds++
		}
	}
	if feeds == 0 {
		return ErrNoFeeds
	}
	if strings.TrimSpace(c.OpenAI.Model) == "" {
		return ErrMissingModel
	}
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		return ErrMissingDSN
	}
	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.HTTP.RecentLimit <= 0 {
		return ErrInvalidRecent
	}
	return nil
}

// Redacted returns a copy with secrets masked, suitable for printing.
func (c Config) Redacted() Config {
	c.Cron.Secret = mask(c.Cron.Secret)
	c.OpenAI.APIKey = mask(c.OpenAI.APIKey)
	c.Redis.Password = mask(c.Redis.Password)
	c.Postgres.DSN = maskDSN(c.Postgres.DSN)
	c.Sources.Feeds = append([]string(nil), c.Sources.Feeds...)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// maskDSN hides the password part of a postgres URL (user:pass@host).
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	scheme := strings.Index(dsn, "://")
	start := 0
	if scheme >= 0 {
		start = scheme + 3
	}
	creds := dsn[start:at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return dsn
	}
	return dsn[:start] + creds[:colon] + ":****" + dsn[at:]
}
