package domain

import "time"

// AddMonths adds delta whole months to a calendar date, preserving the
// day-of-month when the target month is long enough and otherwise clamping
// to the last day of the target month. Negative deltas subtract months.
// Total over any date and any delta.
func AddMonths(d time.Time, delta int) time.Time {
	// Anchor on the first of the month so AddDate cannot overflow into a
	// neighboring month, then clamp the day.
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, delta, 0)

	day := d.Day()
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, d.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date builds a UTC calendar date, the canonical form for effective and
// billing dates throughout the ledger.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
