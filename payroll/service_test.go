package payroll_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fleet-rent-engine/core"
	"github.com/warp/fleet-rent-engine/payroll"
	"github.com/warp/fleet-rent-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestSalaryService(t *testing.T) (*payroll.SalaryService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := payroll.NewSalaryService(store, store)

	require.NoError(t, store.SaveStaff(context.Background(), &payroll.Staff{
		ID:           "stf-1",
		Name:         "Test Staff",
		Role:         "supervisor",
		SalaryAmount: decimal.NewFromInt(30000),
	}))
	return svc, store
}

// =============================================================================
// SHEET LIFECYCLE TESTS
// =============================================================================

func TestGetSheet_FirstOpen_CreatesSundayPrefilledSheet(t *testing.T) {
	// GIVEN: No sheet exists for the month
	// WHEN: Opening the salary report
	// THEN: A sheet is created with Sundays prefilled as S and persisted

	svc, store := newTestSalaryService(t)
	ctx := context.Background()

	sheet, err := svc.GetSheet(ctx, "stf-1", testYear, testMonth)
	require.NoError(t, err)

	assert.Equal(t, payroll.CodeSunday, sheet.Days[7])
	assert.Equal(t, payroll.CodeSunday, sheet.Days[14])
	assert.Equal(t, payroll.CodeSunday, sheet.Days[21])
	assert.Equal(t, payroll.CodeSunday, sheet.Days[28])
	assert.True(t, sheet.SalaryAmount.Equal(decimal.NewFromInt(30000)))

	stored, err := store.GetSheet(ctx, "stf-1", testYear, testMonth)
	require.NoError(t, err)
	assert.NotNil(t, stored, "lazy-created sheet must be persisted")
}

func TestGetSheet_UnknownStaff_NotFound(t *testing.T) {
	svc, _ := newTestSalaryService(t)

	_, err := svc.GetSheet(context.Background(), "nope", testYear, testMonth)

	assert.True(t, core.IsNotFound(err))
}

func TestGetSheet_AlwaysRecomputesSummary(t *testing.T) {
	// GIVEN: A persisted sheet with a stale summary
	// WHEN: Reading it back
	// THEN: The summary reflects the stored map, not the stale cache

	svc, store := newTestSalaryService(t)
	ctx := context.Background()

	_, err := svc.SetDayCode(ctx, "stf-1", testYear, testMonth, 1, payroll.CodePresent)
	require.NoError(t, err)

	stored, err := store.GetSheet(ctx, "stf-1", testYear, testMonth)
	require.NoError(t, err)
	stored.Summary = payroll.SalarySummary{}
	require.NoError(t, store.SaveSheet(ctx, stored))

	sheet, err := svc.GetSheet(ctx, "stf-1", testYear, testMonth)
	require.NoError(t, err)

	assert.Equal(t, 1, sheet.Summary.Present)
}

// =============================================================================
// CELL EDIT TESTS
// =============================================================================

func TestSetDayCode_PersistsCodeAndSummaryTogether(t *testing.T) {
	// GIVEN: A fresh month
	// WHEN: Marking day 1 present
	// THEN: The stored sheet carries both the cell and the recomputed summary

	svc, store := newTestSalaryService(t)
	ctx := context.Background()

	sheet, err := svc.SetDayCode(ctx, "stf-1", testYear, testMonth, 1, payroll.CodePresent)
	require.NoError(t, err)

	assert.Equal(t, payroll.CodePresent, sheet.Days[1])
	assert.Equal(t, 1, sheet.Summary.Present)

	stored, _ := store.GetSheet(ctx, "stf-1", testYear, testMonth)
	assert.Equal(t, payroll.CodePresent, stored.Days[1])
	assert.Equal(t, 1, stored.Summary.Present)
}

func TestSetDayCode_Idempotent(t *testing.T) {
	// GIVEN: Day 1 already marked present
	// WHEN: Marking it present again
	// THEN: Same sheet, same summary

	svc, _ := newTestSalaryService(t)
	ctx := context.Background()

	_, err := svc.SetDayCode(ctx, "stf-1", testYear, testMonth, 1, payroll.CodePresent)
	require.NoError(t, err)

	sheet, err := svc.SetDayCode(ctx, "stf-1", testYear, testMonth, 1, payroll.CodePresent)
	require.NoError(t, err)

	assert.Equal(t, 1, sheet.Summary.Present)
}

func TestSetDayCode_Sunday_Rejected(t *testing.T) {
	// GIVEN: September 7 2025 is a Sunday
	// WHEN: Trying to mark it present
	// THEN: Rejected with ReadOnlyDayError; the cell stays S

	svc, store := newTestSalaryService(t)
	ctx := context.Background()

	_, err := svc.SetDayCode(ctx, "stf-1", testYear, testMonth, 7, payroll.CodePresent)

	require.Error(t, err)
	var ro *core.ReadOnlyDayError
	require.ErrorAs(t, err, &ro)
	assert.Equal(t, 7, ro.Day)

	// Sheet was never created for a rejected first edit.
	stored, _ := store.GetSheet(ctx, "stf-1", testYear, testMonth)
	assert.Nil(t, stored)
}

func TestSetDayCode_InvalidCode_Rejected(t *testing.T) {
	svc, _ := newTestSalaryService(t)

	_, err := svc.SetDayCode(context.Background(), "stf-1", testYear, testMonth, 1, payroll.Code("X"))

	var bad *core.InvalidCodeError
	assert.ErrorAs(t, err, &bad)
}

func TestSetDayCode_DayOutOfRange_Rejected(t *testing.T) {
	// September has 30 days.
	svc, _ := newTestSalaryService(t)

	_, err := svc.SetDayCode(context.Background(), "stf-1", testYear, testMonth, 31, payroll.CodePresent)

	assert.ErrorIs(t, err, core.ErrDayOutOfRange)
}

// =============================================================================
// FULL SAVE TESTS
// =============================================================================

func TestSaveSalary_PersistsMapWithSummary(t *testing.T) {
	svc, store := newTestSalaryService(t)
	ctx := context.Background()

	days := fullMonth(payroll.CodePresent)
	days[1] = payroll.CodeLossOfPay
	days[2] = payroll.CodeLossOfPay

	sheet, err := svc.SaveSalary(ctx, "stf-1", testYear, testMonth, days, decimal.NewFromInt(30000))
	require.NoError(t, err)

	assert.Equal(t, 24, sheet.Summary.Present)
	assert.True(t, sheet.Summary.TotalSalary.Equal(decimal.NewFromFloat(27692.31)),
		"totalSalary = %s", sheet.Summary.TotalSalary)

	stored, _ := store.GetSheet(ctx, "stf-1", testYear, testMonth)
	require.NotNil(t, stored)
	assert.Equal(t, 2, stored.Summary.LOP)
}

func TestSaveSalary_SundaysForcedBack(t *testing.T) {
	// GIVEN: A submitted map that tries to mark a Sunday present
	// WHEN: Saving the month
	// THEN: The Sunday is forced back to S

	svc, _ := newTestSalaryService(t)

	days := payroll.AttendanceMap{7: payroll.CodePresent}

	sheet, err := svc.SaveSalary(context.Background(), "stf-1", testYear, testMonth, days, decimal.NewFromInt(30000))
	require.NoError(t, err)

	assert.Equal(t, payroll.CodeSunday, sheet.Days[7])
	assert.Equal(t, 0, sheet.Summary.Present)
}

func TestSaveSalary_InvalidEntry_Rejected(t *testing.T) {
	svc, _ := newTestSalaryService(t)

	_, err := svc.SaveSalary(context.Background(), "stf-1", testYear, testMonth,
		payroll.AttendanceMap{1: payroll.Code("Z")}, decimal.NewFromInt(30000))

	assert.ErrorIs(t, err, core.ErrInvalidCode)
}

func TestSaveSalary_OutOfRangeDay_Rejected(t *testing.T) {
	svc, _ := newTestSalaryService(t)

	_, err := svc.SaveSalary(context.Background(), "stf-1", testYear, testMonth,
		payroll.AttendanceMap{31: payroll.CodePresent}, decimal.NewFromInt(30000))

	assert.ErrorIs(t, err, core.ErrDayOutOfRange)
}

func TestSaveSalary_UnknownStaff_NotFound(t *testing.T) {
	svc, _ := newTestSalaryService(t)

	_, err := svc.SaveSalary(context.Background(), "nope", testYear, testMonth,
		payroll.AttendanceMap{}, decimal.NewFromInt(30000))

	assert.True(t, core.IsNotFound(err))
}
