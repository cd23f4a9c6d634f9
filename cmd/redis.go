package cmd

import "github.com/spf13/cobra"

// redisCmd groups commands for the Redis instance backing the run lock.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis run-lock utilities",
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
