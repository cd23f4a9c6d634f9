package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the articles table and indexes if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		store, err := openStore(ctx, GetConfig())
		if err != nil {
			return err
		}
		store.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
