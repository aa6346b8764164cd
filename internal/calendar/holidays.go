package calendar

// builtinHolidays lists mainland exchange closures per year, weekends
// included where the official notice spans them. Extending the calendar
// to a new year means adding its table here; lookups outside the
// covered years fail with a configuration error.
var builtinHolidays = map[int][]string{
	2025: {
		"2025-01-01", // New Year's Day
		"2025-01-28", // Spring Festival
		"2025-01-29",
		"2025-01-30",
		"2025-01-31",
		"2025-02-01",
		"2025-02-02",
		"2025-02-03",
		"2025-02-04",
		"2025-04-04", // Qingming Festival
		"2025-04-05",
		"2025-04-06",
		"2025-05-01", // Labor Day
		"2025-05-02",
		"2025-05-03",
		"2025-05-04",
		"2025-05-05",
		"2025-05-31", // Dragon Boat Festival
		"2025-06-01",
		"2025-06-02",
		"2025-10-01", // National Day / Mid-Autumn
		"2025-10-02",
		"2025-10-03",
		"2025-10-04",
		"2025-10-05",
		"2025-10-06",
		"2025-10-07",
		"2025-10-08",
	},
	2026: {
		"2026-01-01", // New Year's Day
		"2026-01-28", // Spring Festival
		"2026-01-29",
		"2026-01-30",
		"2026-01-31",
		"2026-02-01",
		"2026-02-02",
		"2026-02-03",
		"2026-02-14", // Spring Festival make-up
		"2026-02-15",
		"2026-04-04", // Qingming Festival
		"2026-04-05",
		"2026-04-06",
		"2026-05-01", // Labor Day
		"2026-05-02",
		"2026-05-03",
		"2026-05-04",
		"2026-05-05",
		"2026-06-19", // Dragon Boat Festival
		"2026-06-20",
		"2026-06-21",
		"2026-10-01", // National Day
		"2026-10-02",
		"2026-10-03",
		"2026-10-04",
		"2026-10-05",
		"2026-10-06",
		"2026-10-07",
		"2026-10-10", // National Day make-up
	},
}
