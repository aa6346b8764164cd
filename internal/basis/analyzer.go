package basis

import (
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/calendar"
	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// TradingDaysPerYear is the canonical day count for annualization.
const TradingDaysPerYear = 252

// Input pairs one futures contract quote with its underlying spot price.
type Input struct {
	Contract     string
	Product      string
	IndexName    string
	SpotPrice    float64
	FuturesPrice float64
	Expiry       time.Time
}

// Analyzer derives annualized basis rates using trading-day day counts.
type Analyzer struct {
	cal    *calendar.Calendar
	logger *logger.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(cal *calendar.Calendar, log *logger.Logger) *Analyzer {
	return &Analyzer{
		cal:    cal,
		logger: log.WithField("module", "basis"),
	}
}

// Compute derives the basis record for one contract as of a run date.
// An expired or same-day contract, or a non-positive spot price, is a
// contracts.DomainError: the contract is excluded, never reported with a
// degenerate rate.
func (a *Analyzer) Compute(in Input, asOf time.Time) (contracts.BasisRecord, error) {
	if in.SpotPrice <= 0 {
		return contracts.BasisRecord{}, &contracts.DomainError{
			Contract: in.Contract,
			Reason:   fmt.Sprintf("spot price %.2f is not positive", in.SpotPrice),
		}
	}

	days, err := a.cal.TradingDaysBetween(asOf, in.Expiry)
	if err != nil {
		return contracts.BasisRecord{}, fmt.Errorf("day count for %s: %w", in.Contract, err)
	}

	if days <= 0 {
		return contracts.BasisRecord{}, &contracts.DomainError{
			Contract: in.Contract,
			Reason:   fmt.Sprintf("%d trading days to expiry: expired or same-day contract", days),
		}
	}

	spread := in.FuturesPrice - in.SpotPrice
	rate := spread / in.SpotPrice * (TradingDaysPerYear / float64(days))

	return contracts.BasisRecord{
		Contract:            in.Contract,
		Product:             in.Product,
		IndexName:           in.IndexName,
		SpotPrice:           in.SpotPrice,
		FuturesPrice:        in.FuturesPrice,
		ExpiryDate:          in.Expiry.Format("2006-01-02"),
		TradingDaysToExpiry: days,
		Basis:               spread,
		BasisPercent:        spread / in.SpotPrice * 100,
		AnnualizedBasisRate: rate,
	}, nil
}

// ComputeAll computes every contract independently: one contract's
// failure is recorded as a defect and never blocks the others. Records
// keep the input order, which pipelines build near-to-far.
func (a *Analyzer) ComputeAll(inputs []Input, asOf time.Time) ([]contracts.BasisRecord, []contracts.Defect) {
	records := make([]contracts.BasisRecord, 0, len(inputs))
	var defects []contracts.Defect

	for _, in := range inputs {
		record, err := a.Compute(in, asOf)
		if err != nil {
			a.logger.WithError(err).WithField("contract", in.Contract).Warn("Basis computation excluded contract")
			defects = append(defects, contracts.Defect{
				Category: contracts.CategoryFutures,
				Message:  fmt.Sprintf("basis excluded: %v", err),
			})
			continue
		}
		records = append(records, record)
	}

	return records, defects
}
