package calendar

import "time"

// Contract month tags for the stock index futures ladder.
const (
	MonthCurrent     = "current"      // contract expiring this month
	MonthNext        = "next_month"   // one month out
	MonthNextQuarter = "next_quarter" // two months out
)

// ContractMonths lists the tracked ladder in near-to-far order.
var ContractMonths = []string{MonthCurrent, MonthNext, MonthNextQuarter}

// monthOffsets maps a contract month tag to its offset from the run month.
var monthOffsets = map[string]int{
	MonthCurrent:     0,
	MonthNext:        1,
	MonthNextQuarter: 2,
}

// ThirdFriday returns the third Friday of a month, the standard expiry of
// CFFEX stock index futures.
func ThirdFriday(year int, month time.Month) time.Time {
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysUntilFriday := (int(time.Friday) - int(firstDay.Weekday()) + 7) % 7
	firstFriday := firstDay.AddDate(0, 0, daysUntilFriday)
	return firstFriday.AddDate(0, 0, 14)
}

// ContractExpiry resolves the expiry date of a ladder slot relative to the
// given run date. An unknown tag resolves as the current month.
func ContractExpiry(monthTag string, from time.Time) time.Time {
	offset := monthOffsets[monthTag]
	target := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
	return ThirdFriday(target.Year(), target.Month())
}

// ContractCode builds the exchange contract code for a ladder slot, e.g.
// IF2609 for the September 2026 contract.
func ContractCode(product, monthTag string, from time.Time) string {
	offset := monthOffsets[monthTag]
	target := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
	return product + target.Format("0601")
}
