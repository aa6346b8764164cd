package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

var asOf = time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)

// cleanPayload returns a payload that passes every check for the category.
func cleanPayload(category contracts.Category) contracts.Payload {
	switch category {
	case contracts.CategoryIndex:
		return contracts.Payload{Indices: []contracts.IndexQuote{
			{Code: "sh000300", Name: "CSI 300", Price: 4102.3, ChangePercent: 0.42, Currency: "CNY"},
		}}
	case contracts.CategoryCurrency:
		return contracts.Payload{Currencies: []contracts.CurrencyQuote{
			{Pair: "USDCNY", Name: "USD/CNY", Rate: 7.1052, ChangePercent: -0.11},
		}}
	case contracts.CategoryCommodity:
		return contracts.Payload{Commodities: []contracts.CommodityQuote{
			{Name: "London Gold", Price: 2412.6, Unit: "USD/oz", Currency: "USD"},
		}}
	case contracts.CategoryBond:
		return contracts.Payload{Bonds: []contracts.BondYield{
			{Name: "CGB 10Y", TermYears: 10, Yield: 2.28},
		}}
	case contracts.CategoryFutures:
		return contracts.Payload{Futures: []contracts.FuturesQuote{
			{Product: "IF", Name: "CSI 300", Contract: "IF2609", Month: "next_month", Price: 4117.8, Expiry: "2026-09-18"},
		}}
	case contracts.CategoryNews:
		return contracts.Payload{News: []contracts.NewsItem{
			{Title: "PBOC keeps LPR unchanged in August fixing", Source: "sina", Timestamp: asOf.Add(-2 * time.Hour)},
		}}
	}
	return contracts.Payload{}
}

// fullResults builds one result per known category, ok unless listed.
func fullResults(failed ...contracts.Category) map[contracts.Category]contracts.CollectionResult {
	failedSet := make(map[contracts.Category]bool, len(failed))
	for _, c := range failed {
		failedSet[c] = true
	}

	results := make(map[contracts.Category]contracts.CollectionResult)
	for _, category := range contracts.Categories() {
		if failedSet[category] {
			results[category] = contracts.CollectionResult{
				Category: category,
				Status:   contracts.StatusFailed,
				Attempts: 2,
				Error:    "connection refused",
			}
			continue
		}
		results[category] = contracts.CollectionResult{
			Category: category,
			Status:   contracts.StatusOK,
			Payload:  cleanPayload(category),
			Attempts: 1,
		}
	}
	return results
}

func TestScoreAllClean(t *testing.T) {
	scorer := NewScorer(logger.Nop())

	report, err := scorer.Score(fullResults(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Defects)
	assert.True(t, report.MeetsQualityBar())
}

func TestScoreAllFailed(t *testing.T) {
	scorer := NewScorer(logger.Nop())

	report, err := scorer.Score(fullResults(contracts.Categories()...), asOf)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Score)
	assert.False(t, report.MeetsQualityBar())
	assert.Len(t, report.Defects, len(contracts.Categories()))
}

func TestScoreDegradedRunFailsGate(t *testing.T) {
	// index and currency healthy, commodity/bond/futures down.
	scorer := NewScorer(logger.Nop())

	report, err := scorer.Score(fullResults(
		contracts.CategoryCommodity,
		contracts.CategoryBond,
		contracts.CategoryFutures,
	), asOf)
	require.NoError(t, err)

	// index 25 + currency 15 + news 10 = 50
	assert.Equal(t, 50, report.Score)
	assert.False(t, report.MeetsQualityBar())
	assert.Len(t, report.Defects, 3)
}

func TestScoreIdempotent(t *testing.T) {
	scorer := NewScorer(logger.Nop())
	results := fullResults(contracts.CategoryBond, contracts.CategoryNews)

	first, err := scorer.Score(results, asOf)
	require.NoError(t, err)
	second, err := scorer.Score(results, asOf)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	require.Equal(t, len(first.Defects), len(second.Defects))
	for i := range first.Defects {
		assert.Equal(t, first.Defects[i], second.Defects[i], "defect %d ordering changed", i)
	}
}

func TestScorePartialHalvesWeight(t *testing.T) {
	scorer := NewScorer(logger.Nop())

	results := fullResults()
	r := results[contracts.CategoryFutures]
	r.Status = contracts.StatusPartial
	r.Error = "two contracts missing"
	results[contracts.CategoryFutures] = r

	report, err := scorer.Score(results, asOf)
	require.NoError(t, err)

	// futures 20 -> 10
	assert.Equal(t, 90, report.Score)
	require.Len(t, report.Defects, 1)
	assert.Equal(t, contracts.CategoryFutures, report.Defects[0].Category)
	assert.Contains(t, report.Defects[0].Message, "partial collection")
}

func TestScoreRangeChecks(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(results map[contracts.Category]contracts.CollectionResult)
		category contracts.Category
		want     string
	}{
		{
			name: "non-positive index price",
			mutate: func(results map[contracts.Category]contracts.CollectionResult) {
				r := results[contracts.CategoryIndex]
				r.Payload.Indices[0].Price = 0
				results[contracts.CategoryIndex] = r
			},
			category: contracts.CategoryIndex,
			want:     "not positive",
		},
		{
			name: "index change outside band",
			mutate: func(results map[contracts.Category]contracts.CollectionResult) {
				r := results[contracts.CategoryIndex]
				r.Payload.Indices[0].ChangePercent = -61.4
				results[contracts.CategoryIndex] = r
			},
			category: contracts.CategoryIndex,
			want:     "outside [-50, 50]",
		},
		{
			name: "bond yield outside band",
			mutate: func(results map[contracts.Category]contracts.CollectionResult) {
				r := results[contracts.CategoryBond]
				r.Payload.Bonds[0].Yield = 72.5
				results[contracts.CategoryBond] = r
			},
			category: contracts.CategoryBond,
			want:     "outside [-5, 50]",
		},
		{
			name: "stale news",
			mutate: func(results map[contracts.Category]contracts.CollectionResult) {
				r := results[contracts.CategoryNews]
				r.Payload.News[0].Timestamp = asOf.Add(-48 * time.Hour)
				results[contracts.CategoryNews] = r
			},
			category: contracts.CategoryNews,
			want:     "older than",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewScorer(logger.Nop())
			results := fullResults()
			tt.mutate(results)

			report, err := scorer.Score(results, asOf)
			require.NoError(t, err)

			assert.Less(t, report.Score, 100, "check failure must cost score")
			require.NotEmpty(t, report.Defects)
			assert.Equal(t, tt.category, report.Defects[0].Category)
			assert.Contains(t, report.Defects[0].Message, tt.want)
		})
	}
}

func TestScoreDefectOrdering(t *testing.T) {
	scorer := NewScorer(logger.Nop())

	// Defects in a low-priority category and a high-priority one.
	report, err := scorer.Score(fullResults(
		contracts.CategoryNews,
		contracts.CategoryCurrency,
	), asOf)
	require.NoError(t, err)

	require.Len(t, report.Defects, 2)
	assert.Equal(t, contracts.CategoryCurrency, report.Defects[0].Category, "high priority defects come first")
	assert.Equal(t, contracts.CategoryNews, report.Defects[1].Category)
}

func TestScoreRejectsPartialResultSet(t *testing.T) {
	scorer := NewScorer(logger.Nop())

	results := fullResults()
	delete(results, contracts.CategoryBond)

	_, err := scorer.Score(results, asOf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bond")
}

func TestRuleTableWeightsSumTo100(t *testing.T) {
	total := 0
	for _, category := range contracts.Categories() {
		rule, ok := ruleTable[category]
		require.True(t, ok, "category %s missing from rule table", category)
		total += rule.weight
	}
	assert.Equal(t, 100, total)
}
