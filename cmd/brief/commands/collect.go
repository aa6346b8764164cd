package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

var collectDate string

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection pass and persist the snapshot",
	Long: `Collects all six data categories for one trading day, scores the
result, derives futures basis, and persists the snapshot. Publishing
is skipped; use "run" for the full daily routine.

Example:
  go run ./cmd/brief collect
  go run ./cmd/brief collect --date 2026-08-20`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().StringVar(&collectDate, "date", "", "run date (YYYY-MM-DD, default: current market date)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(false)
	if err != nil {
		return err
	}
	defer rt.close()

	runDate, err := resolveDate(rt, collectDate)
	if err != nil {
		return err
	}

	snap, err := rt.runner.Run(context.Background(), runDate)
	if err != nil {
		return err
	}

	printSummary(snap)
	return nil
}

// resolveDate parses an explicit date or resolves today's market date.
func resolveDate(rt *runtime, date string) (time.Time, error) {
	if date == "" {
		return rt.runner.ResolveRunDate(time.Now().In(rt.cfg.Location()))
	}
	parsed, err := time.ParseInLocation("2006-01-02", date, rt.cfg.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return parsed, nil
}

func printSummary(snap contracts.MarketSnapshot) {
	fmt.Printf("Snapshot %s\n", snap.Date)

	for _, category := range contracts.Categories() {
		result, ok := snap.Result(category)
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %-10s %-8s attempts=%d latency=%s", category, result.Status, result.Attempts, result.Latency.Round(time.Millisecond))
		if result.Error != "" {
			line += "  " + result.Error
		}
		fmt.Println(line)
	}

	verdict := "PASS"
	if !snap.MeetsQualityBar() {
		verdict = "FAIL"
	}
	fmt.Printf("Quality: %d/100 (%s, bar %d)\n", snap.QualityScore, verdict, contracts.QualityBar)
	for _, d := range snap.QualityDefects {
		fmt.Printf("  defect [%s] %s\n", d.Category, d.Message)
	}

	if len(snap.Basis) > 0 {
		fmt.Println("Basis:")
		for _, r := range snap.Basis {
			fmt.Printf("  %-8s spot=%.2f futures=%.2f days=%d annualized=%+.2f%%\n",
				r.Contract, r.SpotPrice, r.FuturesPrice, r.TradingDaysToExpiry, r.AnnualizedBasisRate*100)
		}
	}
}
