package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var runDate string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full daily routine: collect, persist, publish",
	Long: `The complete daily run. Identical to "collect" plus publishing the
brief to every configured channel.

Example:
  go run ./cmd/brief run
  go run ./cmd/brief run --date 2026-08-20`,
	RunE: runDaily,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runDate, "date", "", "run date (YYYY-MM-DD, default: current market date)")
}

func runDaily(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(true)
	if err != nil {
		return err
	}
	defer rt.close()

	date, err := resolveDate(rt, runDate)
	if err != nil {
		return err
	}

	snap, err := rt.runner.Run(context.Background(), date)
	if err != nil {
		return err
	}

	printSummary(snap)
	return nil
}
