package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

var qualityCmd = &cobra.Command{
	Use:   "quality [date]",
	Short: "Show the quality verdict of a stored snapshot",
	Long: `Prints the quality score, the pass/fail verdict, and every recorded
defect for a stored snapshot. Without a date the most recent snapshot
is used.

Example:
  go run ./cmd/brief quality
  go run ./cmd/brief quality 2026-08-20`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuality,
}

func init() {
	rootCmd.AddCommand(qualityCmd)
}

func runQuality(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(false)
	if err != nil {
		return err
	}
	defer rt.close()

	snap, err := loadStored(rt, args)
	if err != nil {
		return err
	}

	verdict := "PASS"
	if !snap.MeetsQualityBar() {
		verdict = "FAIL"
	}
	fmt.Printf("%s: %d/100 (%s, bar %d)\n", snap.Date, snap.QualityScore, verdict, contracts.QualityBar)

	if len(snap.QualityDefects) == 0 {
		fmt.Println("No defects recorded")
		return nil
	}
	for _, d := range snap.QualityDefects {
		fmt.Printf("  [%s] %s\n", d.Category, d.Message)
	}
	return nil
}

// loadStored loads the snapshot named by args, or the newest one.
func loadStored(rt *runtime, args []string) (contracts.MarketSnapshot, error) {
	ctx := context.Background()

	if len(args) == 1 {
		return rt.store.Load(ctx, args[0])
	}

	dates, err := rt.store.ListDates(ctx)
	if err != nil {
		return contracts.MarketSnapshot{}, err
	}
	if len(dates) == 0 {
		return contracts.MarketSnapshot{}, fmt.Errorf("no snapshots stored yet")
	}
	return rt.store.Load(ctx, dates[len(dates)-1])
}
