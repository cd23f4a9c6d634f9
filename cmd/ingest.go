package cmd

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"logiscan/internal/server"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass and print its summary as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
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

		res, err := p.Run(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(server.NewCronResponse(res))
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
