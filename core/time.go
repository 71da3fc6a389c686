/*
Package core provides shared primitives for the fleet rent engine.

PURPOSE:
  This package contains domain-agnostic helpers used by every other
  package: calendar arithmetic for rent accrual and attendance sheets,
  money rounding, and the centralized error types.

KEY CONCEPTS IN THIS FILE (time.go):
  - Billable days: elapsed whole days between two instants (floored)
  - Month calendars: day counts and Sunday detection for attendance

DESIGN PRINCIPLES:
  1. All calendar math is UTC-based; callers normalize at the boundary
  2. Day counts never go negative - accrual clamps at zero
  3. No caching: these are cheap pure functions invoked on read

SEE ALSO:
  - errors.go: Centralized error types
  - money.go: Decimal rounding helpers
*/
package core

import (
	"time"
)

// =============================================================================
// BILLABLE DAY ARITHMETIC
// =============================================================================

// DaysBetween returns the number of whole days elapsed from 'from' to 'to',
// floored. Returns a negative value when 'to' precedes 'from'; accrual
// callers clamp with ClampDays.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// ClampDays clamps a day count to zero or more.
func ClampDays(days int) int {
	if days < 0 {
		return 0
	}
	return days
}

// =============================================================================
// MONTH CALENDARS
// =============================================================================

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsSunday reports whether the given calendar day falls on a Sunday.
func IsSunday(year int, month time.Month, day int) bool {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday() == time.Sunday
}

// WorkingDaysInMonth returns the count of non-Sunday days in the month.
// This is the divisor for per-day salary proration.
func WorkingDaysInMonth(year int, month time.Month) int {
	total := DaysInMonth(year, month)
	working := 0
	for day := 1; day <= total; day++ {
		if !IsSunday(year, month, day) {
			working++
		}
	}
	return working
}

// StartOfMonth returns midnight UTC on the first day of the month.
func StartOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns midnight UTC on the last day of the month.
func EndOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}
