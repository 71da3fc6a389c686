/*
service.go - Salary sheet lifecycle and cell edits

PURPOSE:
  Owns the attendance sheet lifecycle:
  - Sheets are created lazily when a salary report is first opened for a
    month, with Sundays pre-filled as S.
  - Every cell edit and every explicit save persists the map together with
    the recomputed summary.
  - Sundays are never settable; the calendar does not even enable input
    for them, and the service rejects the write outright.

CONCURRENCY:
  Cell edits are independent per day; concurrent edits to the same cell
  are last-write-wins at the store.

SEE ALSO:
  - calculator.go: The proration the service caches
  - store/sqlite: SaveSheet persists map and summary in one statement
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/core"
)

// =============================================================================
// STORES - Persistence interfaces
// =============================================================================

// StaffStore handles staff persistence. GetStaff returns (nil, nil) when
// the id is unknown.
type StaffStore interface {
	GetStaff(ctx context.Context, id string) (*Staff, error)
	SaveStaff(ctx context.Context, s *Staff) error
	ListStaff(ctx context.Context) ([]Staff, error)
}

// SheetStore handles salary-sheet persistence. GetSheet returns (nil, nil)
// when no sheet exists yet for the month.
type SheetStore interface {
	GetSheet(ctx context.Context, staffID string, year int, month time.Month) (*SalarySheet, error)
	SaveSheet(ctx context.Context, sheet *SalarySheet) error
}

// =============================================================================
// SALARY SERVICE
// =============================================================================

// SalaryService manages attendance sheets and their derived summaries.
type SalaryService struct {
	Staff  StaffStore
	Sheets SheetStore

	// Now is the clock; defaults to time.Now. Injectable for tests.
	Now func() time.Time
}

func NewSalaryService(staff StaffStore, sheets SheetStore) *SalaryService {
	return &SalaryService{Staff: staff, Sheets: sheets, Now: time.Now}
}

func (s *SalaryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GetSheet returns the staff member's sheet for the month, creating and
// persisting a Sunday-prefilled one on first open. The summary is always
// recomputed from the map before returning. Fails with NotFoundError when
// the staff id is unknown.
func (s *SalaryService) GetSheet(ctx context.Context, staffID string, year int, month time.Month) (*SalarySheet, error) {
	staff, err := s.Staff.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, &core.NotFoundError{Kind: "staff", ID: staffID}
	}

	sheet, err := s.Sheets.GetSheet(ctx, staffID, year, month)
	if err != nil {
		return nil, err
	}

	if sheet == nil {
		sheet = &SalarySheet{
			StaffID:      staffID,
			Year:         year,
			Month:        month,
			Days:         NewMonthMap(year, month),
			SalaryAmount: staff.SalaryAmount,
		}
		sheet.Summary = ComputeSummary(sheet.Days, year, month, sheet.SalaryAmount)
		sheet.UpdatedAt = s.now()
		if err := s.Sheets.SaveSheet(ctx, sheet); err != nil {
			return nil, err
		}
		return sheet, nil
	}

	sheet.Summary = ComputeSummary(sheet.Days, year, month, sheet.SalaryAmount)
	return sheet, nil
}

// SetDayCode edits a single attendance cell and persists the sheet with a
// recomputed summary. Fails with InvalidCodeError for a code outside the
// allowed set and ReadOnlyDayError when the day is a Sunday.
func (s *SalaryService) SetDayCode(ctx context.Context, staffID string, year int, month time.Month, day int, code Code) (*SalarySheet, error) {
	if !code.Valid() {
		return nil, &core.InvalidCodeError{Code: string(code)}
	}
	if day < 1 || day > core.DaysInMonth(year, month) {
		return nil, fmt.Errorf("%w: day %d of %04d-%02d", core.ErrDayOutOfRange, day, year, month)
	}
	if core.IsSunday(year, month, day) {
		return nil, &core.ReadOnlyDayError{Year: year, Month: month, Day: day}
	}

	sheet, err := s.GetSheet(ctx, staffID, year, month)
	if err != nil {
		return nil, err
	}

	sheet.Days[day] = code
	sheet.Summary = ComputeSummary(sheet.Days, year, month, sheet.SalaryAmount)
	sheet.UpdatedAt = s.now()

	if err := s.Sheets.SaveSheet(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// SaveSalary persists a full attendance map and the salary amount together
// with the derived summary. Sundays are forced back to S regardless of what
// the caller submitted, and out-of-range or invalid entries are rejected.
func (s *SalaryService) SaveSalary(ctx context.Context, staffID string, year int, month time.Month, days AttendanceMap, salaryAmount decimal.Decimal) (*SalarySheet, error) {
	staff, err := s.Staff.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, &core.NotFoundError{Kind: "staff", ID: staffID}
	}

	total := core.DaysInMonth(year, month)
	clean := make(AttendanceMap, len(days))
	for day, code := range days {
		if day < 1 || day > total {
			return nil, fmt.Errorf("%w: day %d of %04d-%02d", core.ErrDayOutOfRange, day, year, month)
		}
		if !code.Valid() {
			return nil, &core.InvalidCodeError{Code: string(code)}
		}
		clean[day] = code
	}
	for day := 1; day <= total; day++ {
		if core.IsSunday(year, month, day) {
			clean[day] = CodeSunday
		}
	}

	sheet := &SalarySheet{
		StaffID:      staffID,
		Year:         year,
		Month:        month,
		Days:         clean,
		SalaryAmount: salaryAmount,
		Summary:      ComputeSummary(clean, year, month, salaryAmount),
		UpdatedAt:    s.now(),
	}

	if err := s.Sheets.SaveSheet(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}
