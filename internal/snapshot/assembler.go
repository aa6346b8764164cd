package snapshot

import (
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/internal/quality"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// Assembler merges the per-category collection results with the quality
// verdict and derived basis records into one immutable daily snapshot.
type Assembler struct {
	logger *logger.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(log *logger.Logger) *Assembler {
	return &Assembler{logger: log.WithField("module", "snapshot")}
}

// Assemble builds the snapshot for one run date. The result set must hold
// exactly one entry per known category; a hole means the orchestrator
// barrier was bypassed and the snapshot is refused.
func (a *Assembler) Assemble(
	date time.Time,
	results map[contracts.Category]contracts.CollectionResult,
	report quality.Report,
	basis []contracts.BasisRecord,
	basisDefects []contracts.Defect,
) (contracts.MarketSnapshot, error) {
	for _, category := range contracts.Categories() {
		if _, ok := results[category]; !ok {
			return contracts.MarketSnapshot{}, fmt.Errorf("incomplete result set: missing category %q", category)
		}
	}
	if len(results) != len(contracts.Categories()) {
		return contracts.MarketSnapshot{}, fmt.Errorf("result set holds %d entries, want %d", len(results), len(contracts.Categories()))
	}

	defects := make([]contracts.Defect, 0, len(report.Defects)+len(basisDefects))
	defects = append(defects, report.Defects...)
	defects = append(defects, basisDefects...)

	snap := contracts.MarketSnapshot{
		Date:           date.Format("2006-01-02"),
		Results:        results,
		QualityScore:   report.Score,
		QualityDefects: defects,
		Basis:          basis,
		CollectedAt:    time.Now().UTC(),
	}

	a.logger.WithFields(map[string]interface{}{
		"date":    snap.Date,
		"score":   snap.QualityScore,
		"defects": len(snap.QualityDefects),
		"basis":   len(snap.Basis),
	}).Info("Snapshot assembled")

	return snap, nil
}
