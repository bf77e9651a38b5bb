package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop the in-process tag cache",
	Long: `Drops the tag cache wholesale. Call this after mutating the
underlying dictionary database so stale tag lookups aren't served from
a previous run's cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng.ClearDatabaseCaches()
		fmt.Println("tag cache cleared.")
		return nil
	},
}
