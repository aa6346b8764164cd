package quality

import (
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

// check inspects a collected payload and returns defect messages. Checks
// never mutate the payload and must be deterministic: the same payload
// always yields the same messages in the same order.
type check func(p contracts.Payload, asOf time.Time) []string

// rule binds a category's score weight to its payload checks.
type rule struct {
	weight int
	checks []check
}

// ruleTable is the declarative scoring configuration. Weights sum to 100;
// adding a category or a range check means touching this table, not the
// scorer's control flow.
var ruleTable = map[contracts.Category]rule{
	contracts.CategoryIndex: {
		weight: 25,
		checks: []check{indexNotEmpty, indexPricesPositive, indexChangeInRange},
	},
	contracts.CategoryCurrency: {
		weight: 15,
		checks: []check{currencyNotEmpty, currencyRatesPositive},
	},
	contracts.CategoryCommodity: {
		weight: 15,
		checks: []check{commodityNotEmpty, commodityPricesPositive},
	},
	contracts.CategoryBond: {
		weight: 15,
		checks: []check{bondNotEmpty, bondYieldsInRange},
	},
	contracts.CategoryFutures: {
		weight: 20,
		checks: []check{futuresNotEmpty, futuresPricesPositive},
	},
	contracts.CategoryNews: {
		weight: 10,
		checks: []check{newsNotEmpty, newsFresh},
	},
}

// maxNewsAge bounds how stale a headline may be before it is flagged.
const maxNewsAge = 24 * time.Hour

func indexNotEmpty(p contracts.Payload, _ time.Time) []string {
	if len(p.Indices) == 0 {
		return []string{"no index quotes collected"}
	}
	return nil
}

func indexPricesPositive(p contracts.Payload, _ time.Time) []string {
	var defects []string
	for _, q := range p.Indices {
		if q.Price <= 0 {
			defects = append(defects, fmt.Sprintf("index %s price %.2f is not positive", q.Code, q.Price))
		}
	}
	return defects
}

func indexChangeInRange(p contracts.Payload, _ time.Time) []string {
	var defects []string
	for _, q := range p.Indices {
		if q.ChangePercent < -50 || q.ChangePercent > 50 {
			defects = append(defects, fmt.Sprintf("index %s change %.2f%% outside [-50, 50]", q.Code, q.ChangePercent))
		}
	}
	return defects
}

func currencyNotEmpty(p contracts.Payload, _ time.Time) []string {
	if len(p.Currencies) == 0 {
		return []string{"no currency quotes collected"}
	}
	return nil
}

func currencyRatesPositive(p contracts.Payload, _ time.Time) []string {
	var defects []string
	for _, q := range p.Currencies {
		if q.Rate <= 0 {
			defects = append(defects, fmt.Sprintf("currency %s rate %.4f is not positive", q.Pair, q.Rate))
		}
	}
	return defects
}

func commodityNotEmpty(p contracts.Payload, _ time.Time) []string {
	if len(p.Commodities) == 0 {
		return []string{"no commodity quotes collected"}
	}
	return nil
}

func commodityPricesPositive(p contracts.Payload, _ time.Time) []string {
	var defects []string
	for _, q := range p.Commodities {
		if q.Price <= 0 {
			defects = append(defects, fmt.Sprintf("commodity %s price %.2f is not positive", q.Name, q.Price))
		}
	}
	return defects
}

func bondNotEmpty(p contracts.Payload, _ time.Time) []string {
	if len(p.Bonds) == 0 {
		return []string{"no bond yields collected"}
	}
	return nil
}

func bondYieldsInRange(p contracts.Payload, _ time.Time) []string {
	var defects []string
	for _, b := range p.Bonds {
		if b.Yield < -5 || b.Yield > 50 {
			defects = append(defects, fmt.Sprintf("bond %s yield %.2f%% outside [-5, 50]", b.Name, b.Yield))
		}
	}
	return defects
}

func futuresNotEmpty(p contracts.Payload, _ time.Time) []string {
	if len(p.Futures) == 0 {
		return []string{"no futures quotes collected"}
	}
	return nil
}

func futuresPricesPositive(p contracts.Payload, _ time.Time) []string {
	var defects []string
	for _, q := range p.Futures {
		if q.Price <= 0 {
			defects = append(defects, fmt.Sprintf("futures %s price %.2f is not positive", q.Contract, q.Price))
		}
	}
	return defects
}

func newsNotEmpty(p contracts.Payload, _ time.Time) []string {
	if len(p.News) == 0 {
		return []string{"no news items collected"}
	}
	return nil
}

func newsFresh(p contracts.Payload, asOf time.Time) []string {
	stale := 0
	for _, n := range p.News {
		if !n.Timestamp.IsZero() && asOf.Sub(n.Timestamp) > maxNewsAge {
			stale++
		}
	}
	if stale > 0 {
		return []string{fmt.Sprintf("%d news items older than %s", stale, maxNewsAge)}
	}
	return nil
}
