package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"logiscan/internal/config"
	"logiscan/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "logiscan",
	Short:        "LogiScan logistics news ingestion",
	Long:         "Fetches Polish logistics RSS feeds, summarizes new articles with OpenAI and serves them over HTTP.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

// envBindings maps conventional deployment variables onto config keys.
var envBindings = map[string]string{
	"cron.secret":    "CRON_SECRET",
	"openai.api_key": "OPENAI_API_KEY",
	"postgres.dsn":   "DATABASE_URL",
	"redis.addr":     "REDIS_ADDR",
}

// envKeys get a LOGISCAN_<SECTION>_<KEY> override even when absent from the file.
var envKeys = []string{
	"app.log_level", "app.log_format",
	"http.addr", "http.shutdown_timeout", "http.recent_limit",
	"cron.interval", "cron.lock_enabled", "cron.lock_key", "cron.lock_ttl",
	"sources.user_agent", "sources.fetch_timeout",
	"openai.model", "openai.base_url", "openai.timeout", "openai.requests_per_minute", "openai.max_input_runes",
	"postgres.max_conns",
	"redis.username", "redis.password", "redis.db",
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error reading .env: %v\n", err)
		os.Exit(1)
	}

	v := viper.GetViper()
	v.SetEnvPrefix("logiscan")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, "LOGISCAN_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/logiscan")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	logging.Setup(appCfg.App.LogLevel, appCfg.App.LogFormat)
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}
