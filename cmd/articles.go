package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"logiscan/internal/server"

	"github.com/spf13/cobra"
)

var (
	articlesLimit int
	articlesTag   string
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Print the most recent stored articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		limit := articlesLimit
		if limit <= 0 {
			limit = cfg.HTTP.RecentLimit
		}
		list, err := store.Recent(ctx, limit)
		if err != nil {
			return err
		}
		if articlesTag != "" {
			list = server.FilterByTag(list, articlesTag)
		}

		out := cmd.OutOrStdout()
		for _, a := range list {
			date := "-"
			if a.PublishedAt != nil {
				date = a.PublishedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(out, "%s  [%s] %s\n", date, a.SourceName, a.Title)
			fmt.Fprintf(out, "    %s\n", a.OriginalURL)
			for _, p := range a.SummaryPoints {
				fmt.Fprintf(out, "    - %s\n", p)
			}
			if a.WhyItMatters != "" {
				fmt.Fprintf(out, "    Dlaczego to ważne: %s\n", a.WhyItMatters)
			}
			if len(a.Tags) > 0 {
				fmt.Fprintf(out, "    #%s\n", strings.Join(a.Tags, " #"))
			}
		}
		fmt.Fprintf(out, "%d article(s)\n", len(list))
		return nil
	},
}

func init() {
	articlesCmd.Flags().IntVar(&articlesLimit, "limit", 0, "number of articles (default http.recent_limit)")
	articlesCmd.Flags().StringVar(&articlesTag, "tag", "", "only show articles with this exact tag")
	rootCmd.AddCommand(articlesCmd)
}
