/*
Package payroll turns per-day attendance codes into prorated salary figures.

PURPOSE:
  Staff attendance is kept as a day-indexed map of codes, one sheet per
  (staff, month, year). The salary summary is derived from the sheet on
  every read and cached alongside it on save; the map alone is always
  enough to re-derive the figure.

KEY CONCEPTS IN THIS FILE (types.go):
  - Code: one of P/A/H/CL/HD/S/LOP for a calendar day
  - AttendanceMap: day-of-month -> code
  - SalarySheet: the persisted map plus its cached summary
  - Staff: identity plus the monthly salary figure

CODE SEMANTICS:
  P   present        full day of pay
  A   absent         no pay
  H   half-day       half a day of pay
  CL  casual leave   full day of pay
  HD  holiday        full day of pay
  S   sunday         pre-filled, read-only, no pay
  LOP loss of pay    no pay

SEE ALSO:
  - calculator.go: ComputeSummary proration formula
  - service.go: Sheet lifecycle, cell edits, persistence
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/core"
)

// =============================================================================
// ATTENDANCE CODES
// =============================================================================

// Code marks a staff member's status for one calendar day.
type Code string

const (
	CodePresent     Code = "P"
	CodeAbsent      Code = "A"
	CodeHalfDay     Code = "H"
	CodeCasualLeave Code = "CL"
	CodeHoliday     Code = "HD"
	CodeSunday      Code = "S"
	CodeLossOfPay   Code = "LOP"
)

// Valid reports whether the code is one of the seven allowed values.
func (c Code) Valid() bool {
	switch c {
	case CodePresent, CodeAbsent, CodeHalfDay, CodeCasualLeave,
		CodeHoliday, CodeSunday, CodeLossOfPay:
		return true
	}
	return false
}

// AttendanceMap is a day-of-month indexed map of attendance codes.
// Missing days default to S on Sundays and A otherwise.
type AttendanceMap map[int]Code

// Clone returns an independent copy of the map.
func (m AttendanceMap) Clone() AttendanceMap {
	out := make(AttendanceMap, len(m))
	for day, code := range m {
		out[day] = code
	}
	return out
}

// NewMonthMap returns a fresh map for the month with Sundays pre-filled as
// S. Non-Sunday days are left absent from the map.
func NewMonthMap(year int, month time.Month) AttendanceMap {
	m := make(AttendanceMap)
	for day := 1; day <= core.DaysInMonth(year, month); day++ {
		if core.IsSunday(year, month, day) {
			m[day] = CodeSunday
		}
	}
	return m
}

// =============================================================================
// STAFF AND SALARY SHEETS
// =============================================================================

// Staff is a salaried employee of the fleet operation.
type Staff struct {
	ID           string
	Name         string
	Mobile       string
	Role         string
	SalaryAmount decimal.Decimal
	JoinDate     time.Time
	CreatedAt    time.Time
}

// SalarySummary is the categorized attendance tally plus the prorated
// total. It is a cache of ComputeSummary's output, never a second source
// of truth.
type SalarySummary struct {
	Present     int
	Absent      int
	HalfDays    int
	CasualLeave int
	Holiday     int
	Sunday      int
	LOP         int
	TotalSalary decimal.Decimal
}

// SalarySheet is one staff member's attendance for one month, persisted
// together with the derived summary.
type SalarySheet struct {
	StaffID      string
	Year         int
	Month        time.Month
	Days         AttendanceMap
	SalaryAmount decimal.Decimal
	Summary      SalarySummary
	UpdatedAt    time.Time
}
