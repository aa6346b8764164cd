package collect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zhenliu/marketbrief/internal/calendar"
	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// Orchestrator runs every known category's adapter under its policy and
// assembles a partial-tolerant result set: one category failing completely
// never aborts the others.
type Orchestrator struct {
	adapters map[contracts.Category]contracts.Adapter
	cal      *calendar.Calendar
	logger   *logger.Logger

	// policies defaults to the fixed table; tests shrink the timeouts.
	policies func(contracts.Category) Policy
}

// NewOrchestrator creates an orchestrator over a fixed adapter set.
func NewOrchestrator(cal *calendar.Calendar, log *logger.Logger, adapters ...contracts.Adapter) *Orchestrator {
	byCategory := make(map[contracts.Category]contracts.Adapter, len(adapters))
	for _, a := range adapters {
		byCategory[a.Category()] = a
	}

	return &Orchestrator{
		adapters: byCategory,
		cal:      cal,
		logger:   log.WithField("module", "collect"),
		policies: PolicyFor,
	}
}

// WithPolicies overrides the policy lookup. Used by tests.
func (o *Orchestrator) WithPolicies(lookup func(contracts.Category) Policy) *Orchestrator {
	o.policies = lookup
	return o
}

// Collect runs one collection pass for runDate and returns exactly one
// CollectionResult per known category. Adapters run concurrently, each
// writing only its own slot; the barrier before return guarantees a fully
// populated mapping. The only fatal condition is a run date the calendar
// cannot resolve.
func (o *Orchestrator) Collect(ctx context.Context, runDate time.Time) (map[contracts.Category]contracts.CollectionResult, error) {
	dateStr := runDate.Format("2006-01-02")

	if _, err := o.cal.IsTradingDay(runDate); err != nil {
		return nil, &contracts.OrchestratorError{Date: dateStr, Err: err}
	}

	categories := contracts.Categories()

	o.logger.WithFields(map[string]interface{}{
		"date":       dateStr,
		"categories": len(categories),
	}).Info("Starting collection run")

	// Pre-sized, category-indexed slots: each goroutine writes exactly
	// one slot, so no locking is needed.
	slots := make([]contracts.CollectionResult, len(categories))

	var wg sync.WaitGroup
	for i, category := range categories {
		wg.Add(1)
		go func(i int, category contracts.Category) {
			defer wg.Done()
			slots[i] = o.collectOne(ctx, category)
		}(i, category)
	}
	wg.Wait()

	results := make(map[contracts.Category]contracts.CollectionResult, len(categories))
	for i, category := range categories {
		result := slots[i]
		results[category] = result

		// Logged after the barrier, in priority order, so two runs over
		// the same data produce identical logs.
		entry := o.logger.WithFields(map[string]interface{}{
			"category": category,
			"status":   result.Status,
			"attempts": result.Attempts,
			"latency":  result.Latency,
		})
		if result.Status == contracts.StatusFailed {
			entry.WithField("error", result.Error).Warn("Category collection failed")
		} else {
			entry.Info("Category collected")
		}
	}

	return results, nil
}

// collectOne produces the terminal result for a single category.
func (o *Orchestrator) collectOne(ctx context.Context, category contracts.Category) contracts.CollectionResult {
	policy := o.policies(category)

	adapter, ok := o.adapters[category]
	if !ok {
		return contracts.CollectionResult{
			Category: category,
			Status:   contracts.StatusFailed,
			Attempts: 1,
			Error:    fmt.Sprintf("no adapter registered for category %s", category),
		}
	}

	return policy.Run(ctx, category, adapter.Fetch)
}
