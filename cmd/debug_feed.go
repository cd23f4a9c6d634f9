package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var debugFeedCmd = &cobra.Command{
	Use:   "debug-feed <feed_url>",
	Short: "Debug: fetch a feed and print its parsed items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher, err := newFetcher(GetConfig())
		if err != nil {
			return err
		}
		items, err := fetcher.Fetch(context.Background(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, it := range items {
			date := "no date"
			if it.PublishedAt != nil {
				date = it.PublishedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(out, "%s | %s\n    %s\n    content: %d bytes\n", date, it.Title, it.Link, len(it.Content()))
		}
		fmt.Fprintf(out, "items: %d\n", len(items))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugFeedCmd)
}
