package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logiscan/internal/redisclient"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// pingCmd pings Redis and reports whether an ingestion run holds the lock.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and show the ingest run lock state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		res, err := rdb.Ping(ctx).Result()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res)

		ttl, err := rdb.PTTL(ctx, cfg.Cron.LockKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if ttl < 0 {
			fmt.Fprintf(out, "run lock %s: free\n", cfg.Cron.LockKey)
			return nil
		}
		fmt.Fprintf(out, "run lock %s: held, expires in %s\n", cfg.Cron.LockKey, ttl.Round(time.Second))
		return nil
	},
}

func init() {
	redisCmd.AddCommand(pingCmd)
}
