package calendar

import (
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

// Calendar resolves trading days against immutable per-year holiday
// tables. A date whose year has no table is a contracts.ConfigError,
// never a silent "no holidays" fallback.
type Calendar struct {
	holidays map[int]map[string]struct{}
}

// New creates a calendar with the built-in holiday tables.
func New() *Calendar {
	return NewWithHolidays(builtinHolidays)
}

// NewWithHolidays creates a calendar from explicit per-year tables,
// each a list of ISO dates. Used by tests.
func NewWithHolidays(tables map[int][]string) *Calendar {
	holidays := make(map[int]map[string]struct{}, len(tables))
	for year, dates := range tables {
		set := make(map[string]struct{}, len(dates))
		for _, d := range dates {
			set[d] = struct{}{}
		}
		holidays[year] = set
	}
	return &Calendar{holidays: holidays}
}

// Years returns the configured years.
func (c *Calendar) Years() []int {
	years := make([]int, 0, len(c.holidays))
	for y := range c.holidays {
		years = append(years, y)
	}
	return years
}

// resolveYear returns the holiday set for a year.
func (c *Calendar) resolveYear(year int) (map[string]struct{}, error) {
	set, ok := c.holidays[year]
	if !ok {
		return nil, &contracts.ConfigError{Year: year}
	}
	return set, nil
}

// IsTradingDay reports whether date is neither a weekend nor a configured
// holiday.
func (c *Calendar) IsTradingDay(date time.Time) (bool, error) {
	set, err := c.resolveYear(date.Year())
	if err != nil {
		return false, err
	}

	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false, nil
	}

	_, holiday := set[date.Format("2006-01-02")]
	return !holiday, nil
}

// TradingDaysBetween counts trading days from `from` to `to`, excluding
// `from` and including `to`. The count is signed: when `to` precedes
// `from` the result is the negated reverse count. Every year the span
// touches must be configured.
func (c *Calendar) TradingDaysBetween(from, to time.Time) (int, error) {
	from = midnight(from)
	to = midnight(to)

	if to.Before(from) {
		n, err := c.TradingDaysBetween(to, from)
		return -n, err
	}

	count := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		trading, err := c.IsTradingDay(d)
		if err != nil {
			return 0, err
		}
		if trading {
			count++
		}
	}
	return count, nil
}

// NextTradingDay returns the first trading day strictly after date.
func (c *Calendar) NextTradingDay(date time.Time) (time.Time, error) {
	d := midnight(date)
	for {
		d = d.AddDate(0, 0, 1)
		trading, err := c.IsTradingDay(d)
		if err != nil {
			return time.Time{}, fmt.Errorf("next trading day after %s: %w", date.Format("2006-01-02"), err)
		}
		if trading {
			return d, nil
		}
	}
}

// PreviousTradingDay returns the last trading day strictly before date.
func (c *Calendar) PreviousTradingDay(date time.Time) (time.Time, error) {
	d := midnight(date)
	for {
		d = d.AddDate(0, 0, -1)
		trading, err := c.IsTradingDay(d)
		if err != nil {
			return time.Time{}, fmt.Errorf("previous trading day before %s: %w", date.Format("2006-01-02"), err)
		}
		if trading {
			return d, nil
		}
	}
}

// midnight truncates a timestamp to its calendar date.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
