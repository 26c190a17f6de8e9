// Package cmd wires the command-line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nightdrive",
	Short: "Vehicle listing aggregation service",
	Long: `nightdrive aggregates vehicle listings from multiple upstream sources,
scores them against their market peers, and serves curated feeds and
search results over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the CLI. Errors have already been printed by cobra.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
