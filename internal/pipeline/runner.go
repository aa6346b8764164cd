package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/basis"
	"github.com/zhenliu/marketbrief/internal/calendar"
	"github.com/zhenliu/marketbrief/internal/collect"
	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/internal/quality"
	"github.com/zhenliu/marketbrief/internal/snapshot"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// Runner drives one end-to-end daily run: collect, score, derive basis,
// assemble, persist, publish. A degraded snapshot is still persisted;
// only an unresolvable run date aborts before any write.
type Runner struct {
	cal          *calendar.Calendar
	orchestrator *collect.Orchestrator
	scorer       *quality.Scorer
	analyzer     *basis.Analyzer
	assembler    *snapshot.Assembler
	store        contracts.Store
	reporters    []contracts.Reporter
	logger       *logger.Logger
	now          func() time.Time
}

// NewRunner wires the pipeline stages together.
func NewRunner(
	cal *calendar.Calendar,
	orchestrator *collect.Orchestrator,
	scorer *quality.Scorer,
	analyzer *basis.Analyzer,
	assembler *snapshot.Assembler,
	store contracts.Store,
	log *logger.Logger,
	reporters ...contracts.Reporter,
) *Runner {
	return &Runner{
		cal:          cal,
		orchestrator: orchestrator,
		scorer:       scorer,
		analyzer:     analyzer,
		assembler:    assembler,
		store:        store,
		reporters:    reporters,
		logger:       log.WithField("module", "pipeline"),
		now:          time.Now,
	}
}

// ResolveRunDate maps a wall-clock instant to the run date: the day
// itself when it is a trading day, otherwise the most recent one before
// it. Dates outside the configured holiday years are unresolvable.
func (r *Runner) ResolveRunDate(at time.Time) (time.Time, error) {
	trading, err := r.cal.IsTradingDay(at)
	if err != nil {
		return time.Time{}, &contracts.OrchestratorError{Date: at.Format("2006-01-02"), Err: err}
	}
	if trading {
		return at, nil
	}
	prev, err := r.cal.PreviousTradingDay(at)
	if err != nil {
		return time.Time{}, &contracts.OrchestratorError{Date: at.Format("2006-01-02"), Err: err}
	}
	return prev, nil
}

// Run executes the full pipeline for one run date and returns the
// persisted snapshot. Publishing is best-effort: a reporter failure is
// logged and does not fail the run.
func (r *Runner) Run(ctx context.Context, runDate time.Time) (contracts.MarketSnapshot, error) {
	started := r.now()
	r.logger.WithField("date", runDate.Format("2006-01-02")).Info("Daily run started")

	results, err := r.orchestrator.Collect(ctx, runDate)
	if err != nil {
		return contracts.MarketSnapshot{}, err
	}

	report, err := r.scorer.Score(results, r.now())
	if err != nil {
		return contracts.MarketSnapshot{}, fmt.Errorf("score results: %w", err)
	}

	var futures []contracts.FuturesQuote
	var indices []contracts.IndexQuote
	if result, ok := results[contracts.CategoryFutures]; ok {
		futures = result.Payload.Futures
	}
	if result, ok := results[contracts.CategoryIndex]; ok {
		indices = result.Payload.Indices
	}
	records, basisDefects := r.analyzer.ComputeAll(basis.Pair(futures, indices, runDate), runDate)

	snap, err := r.assembler.Assemble(runDate, results, report, records, basisDefects)
	if err != nil {
		return contracts.MarketSnapshot{}, err
	}

	if err := r.store.Save(ctx, snap); err != nil {
		return contracts.MarketSnapshot{}, fmt.Errorf("persist snapshot: %w", err)
	}

	for _, reporter := range r.reporters {
		if err := reporter.Publish(ctx, snap); err != nil {
			r.logger.WithError(err).Warn("Publishing brief failed")
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"date":     snap.Date,
		"score":    snap.QualityScore,
		"duration": r.now().Sub(started).String(),
	}).Info("Daily run finished")

	return snap, nil
}
