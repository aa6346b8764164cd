package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhenliu/marketbrief/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Render the markdown brief of a stored snapshot",
	Long: `Renders the daily brief of a stored snapshot to stdout. Without a
date the most recent snapshot is used.

Example:
  go run ./cmd/brief report
  go run ./cmd/brief report 2026-08-20`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(false)
	if err != nil {
		return err
	}
	defer rt.close()

	snap, err := loadStored(rt, args)
	if err != nil {
		return err
	}

	fmt.Print(report.Markdown(snap))
	return nil
}
