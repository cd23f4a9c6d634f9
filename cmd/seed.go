package cmd

import (
	"context"
	"fmt"
	"time"

	"logiscan/internal/fixtures"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <articles.yaml>",
	Short: "Insert articles from a YAML seed file, skipping known URLs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		articles, err := fixtures.LoadFile(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		store, err := openStore(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		created, skipped, err := fixtures.Seed(ctx, store, articles)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", created, skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
