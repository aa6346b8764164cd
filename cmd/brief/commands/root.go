package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "brief",
	Short: "Daily market brief pipeline for the A-share session",
	Long: `Collects index, futures, currency, commodity, bond, and news data
after the market close, scores data quality, derives futures basis,
and persists one snapshot per trading day.

Usage:
  go run ./cmd/brief [command]

Examples:
  go run ./cmd/brief run
  go run ./cmd/brief collect --date 2026-08-20
  go run ./cmd/brief report 2026-08-20
  go run ./cmd/brief serve
  go run ./cmd/brief scheduler start`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
