package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"logiscan/internal/server"
	"logiscan/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the optional ingest scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		shutdown, err := parseDuration("http.shutdown_timeout", cfg.HTTP.ShutdownTimeout)
		if err != nil {
			return err
		}

		// Signal handling for systemd
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		p, cleanup, err := buildPipeline(cfg, store)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := server.New(server.Options{
			Addr:            cfg.HTTP.Addr,
			CronSecret:      cfg.Cron.Secret,
			RecentLimit:     cfg.HTTP.RecentLimit,
			ShutdownTimeout: shutdown,
		}, p, store)

		ws := []worker.Worker{srv}
		if cfg.Cron.Interval != "" {
			interval, err := parseDuration("cron.interval", cfg.Cron.Interval)
			if err != nil {
				return err
			}
			slog.Info("starting ingest scheduler", "interval", interval.String(), "feeds", p.Feeds())
			ws = append(ws, &worker.IngestScheduler{Runner: p, Interval: interval})
		}
		return worker.NewManager(ws...).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
