package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsTradingDay(t *testing.T) {
	cal := New()

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"regular weekday", "2026-01-02", true},
		{"saturday", "2026-01-03", false},
		{"sunday", "2026-01-04", false},
		{"new year holiday", "2026-01-01", false},
		{"spring festival", "2026-01-30", false},
		{"national day", "2026-10-01", false},
		{"day after golden week", "2026-10-08", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.IsTradingDay(date(tt.date))
			if err != nil {
				t.Fatalf("IsTradingDay(%s) error: %v", tt.date, err)
			}
			if got != tt.want {
				t.Errorf("IsTradingDay(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsTradingDayUnconfiguredYear(t *testing.T) {
	cal := New()

	_, err := cal.IsTradingDay(date("2030-06-03"))
	if err == nil {
		t.Fatal("Expected error for unconfigured year, got nil")
	}

	var cfgErr *contracts.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %T: %v", err, err)
	}
	if cfgErr.Year != 2030 {
		t.Errorf("ConfigError.Year = %d, want 2030", cfgErr.Year)
	}
}

// TradingDaysBetween excludes the start date and includes the end date.
// The basis formula depends on this convention; these cases pin it down.
func TestTradingDaysBetween(t *testing.T) {
	cal := New()

	tests := []struct {
		name string
		from string
		to   string
		want int
	}{
		{"same day", "2026-08-20", "2026-08-20", 0},
		{"next day", "2026-08-20", "2026-08-21", 1},
		{"over a weekend", "2026-08-21", "2026-08-24", 1},
		{"21 trading days to expiry", "2026-08-20", "2026-09-18", 21},
		{"across golden week", "2026-09-30", "2026-10-09", 2},
		{"start date excluded", "2026-08-21", "2026-08-21", 0},
		{"reversed is negated", "2026-09-18", "2026-08-20", -21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.TradingDaysBetween(date(tt.from), date(tt.to))
			if err != nil {
				t.Fatalf("TradingDaysBetween(%s, %s) error: %v", tt.from, tt.to, err)
			}
			if got != tt.want {
				t.Errorf("TradingDaysBetween(%s, %s) = %d, want %d", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTradingDaysBetweenUnconfiguredSpan(t *testing.T) {
	cal := New()

	_, err := cal.TradingDaysBetween(date("2026-12-28"), date("2027-01-05"))
	if err == nil {
		t.Fatal("Expected error for span into unconfigured year, got nil")
	}

	var cfgErr *contracts.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %T: %v", err, err)
	}
}

func TestNextTradingDay(t *testing.T) {
	cal := New()

	got, err := cal.NextTradingDay(date("2026-09-30"))
	if err != nil {
		t.Fatalf("NextTradingDay error: %v", err)
	}
	if got.Format("2006-01-02") != "2026-10-08" {
		t.Errorf("NextTradingDay(2026-09-30) = %s, want 2026-10-08", got.Format("2006-01-02"))
	}
}

func TestPreviousTradingDay(t *testing.T) {
	cal := New()

	got, err := cal.PreviousTradingDay(date("2026-10-08"))
	if err != nil {
		t.Fatalf("PreviousTradingDay error: %v", err)
	}
	if got.Format("2006-01-02") != "2026-09-30" {
		t.Errorf("PreviousTradingDay(2026-10-08) = %s, want 2026-09-30", got.Format("2006-01-02"))
	}
}

func TestThirdFriday(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  string
	}{
		{2026, time.January, "2026-01-16"},
		{2026, time.June, "2026-06-19"},
		{2026, time.September, "2026-09-18"},
		{2026, time.December, "2026-12-18"},
	}

	for _, tt := range tests {
		got := ThirdFriday(tt.year, tt.month)
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("ThirdFriday(%d, %s) = %s, want %s",
				tt.year, tt.month, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestContractExpiry(t *testing.T) {
	from := date("2026-08-20")

	tests := []struct {
		monthTag string
		want     string
	}{
		{MonthCurrent, "2026-08-21"},
		{MonthNext, "2026-09-18"},
		{MonthNextQuarter, "2026-10-16"},
	}

	for _, tt := range tests {
		got := ContractExpiry(tt.monthTag, from)
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("ContractExpiry(%s) = %s, want %s", tt.monthTag, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestContractExpiryYearRollover(t *testing.T) {
	from := date("2026-12-07")

	got := ContractExpiry(MonthNext, from)
	if got.Format("2006-01-02") != "2027-01-15" {
		t.Errorf("ContractExpiry(next_month) across year = %s, want 2027-01-15", got.Format("2006-01-02"))
	}
}

func TestContractCode(t *testing.T) {
	from := date("2026-08-20")

	tests := []struct {
		product  string
		monthTag string
		want     string
	}{
		{"IF", MonthCurrent, "IF2608"},
		{"IC", MonthNext, "IC2609"},
		{"IM", MonthNextQuarter, "IM2610"},
	}

	for _, tt := range tests {
		if got := ContractCode(tt.product, tt.monthTag, from); got != tt.want {
			t.Errorf("ContractCode(%s, %s) = %s, want %s", tt.product, tt.monthTag, got, tt.want)
		}
	}
}
