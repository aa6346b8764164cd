package quality

import (
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// Report is the scoring verdict: a composite score in [0, 100] and every
// defect found, in category-priority order. The raw score and defect list
// are always produced; failing the gate discards nothing.
type Report struct {
	Score   int
	Defects []contracts.Defect
}

// MeetsQualityBar reports whether the score clears the fixed gate.
func (r Report) MeetsQualityBar() bool {
	return r.Score >= contracts.QualityBar
}

// Scorer computes the composite quality score of a collection run.
// Scoring is additive-weighted: each category contributes its full weight
// when clean, half when partial or failing a payload check, zero when its
// collection failed outright.
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a Scorer.
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{logger: log.WithField("module", "quality")}
}

// Score evaluates a fully-populated result set as of the given time.
// It refuses a partially-populated mapping: scoring is only defined once
// every known category has a terminal status.
func (s *Scorer) Score(results map[contracts.Category]contracts.CollectionResult, asOf time.Time) (Report, error) {
	for _, category := range contracts.Categories() {
		if _, ok := results[category]; !ok {
			return Report{}, fmt.Errorf("cannot score: category %s has no result", category)
		}
	}

	var report Report

	// Categories() is priority-ordered and checks are deterministic, so
	// the same results always yield the same score and defect order.
	for _, category := range contracts.Categories() {
		result := results[category]
		rule := ruleTable[category]

		subScore, defects := scoreCategory(rule, result, asOf)
		report.Score += subScore
		report.Defects = append(report.Defects, defects...)
	}

	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}

	s.logger.WithFields(map[string]interface{}{
		"score":   report.Score,
		"defects": len(report.Defects),
		"passed":  report.MeetsQualityBar(),
	}).Info("Quality scoring completed")

	return report, nil
}

// scoreCategory computes one category's weighted sub-score and defects.
func scoreCategory(rule rule, result contracts.CollectionResult, asOf time.Time) (int, []contracts.Defect) {
	var defects []contracts.Defect

	if result.Status == contracts.StatusFailed {
		msg := "collection failed"
		if result.Error != "" {
			msg = fmt.Sprintf("collection failed: %s", result.Error)
		}
		defects = append(defects, contracts.Defect{Category: result.Category, Message: msg})
		return 0, defects
	}

	if result.Status == contracts.StatusPartial {
		msg := "partial collection"
		if result.Error != "" {
			msg = fmt.Sprintf("partial collection: %s", result.Error)
		}
		defects = append(defects, contracts.Defect{Category: result.Category, Message: msg})
	}

	for _, check := range rule.checks {
		for _, msg := range check(result.Payload, asOf) {
			defects = append(defects, contracts.Defect{Category: result.Category, Message: msg})
		}
	}

	if len(defects) > 0 {
		return rule.weight / 2, defects
	}
	return rule.weight, nil
}
