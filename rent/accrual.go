/*
accrual.go - Rent accrual and booking-total calculators

PURPOSE:
  Pure functions that turn a selection's lifecycle timestamps into live
  figures. Nothing here is stored as the source of truth: handlers invoke
  these on read, so a paused selection stops owing more the moment it is
  paused and an inactive vehicle never accrues.

TWO DISTINCT FIGURES:
  ComputeRentSummary:  the RUNNING due - elapsed billable days times the
                       billing-unit rate, minus recorded rent payments.
  ComputeTotalPayment: the ONE-TIME total owed at booking - deposit plus
                       one billing unit of rent plus the accidental cover
                       fee (weekly plans only). Never conflate the two.

BILLING-UNIT NOTE:
  Billable days are calendar days for BOTH plan types. A weekly plan's
  per-unit rate is its full weekly rent, so the day-count is charged at
  that rate unadjusted. This matches the deployed behavior and is kept
  as-is; see DESIGN.md.

SEE ALSO:
  - types.go: PlanSelection and RentSlab
  - selection.go: Lifecycle transitions that stamp the pause boundary
*/
package rent

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/core"
)

// =============================================================================
// RENT SUMMARY - Running due, computed on read
// =============================================================================

// RentSummary is the live accrual figure for a selection.
type RentSummary struct {
	TotalDays  int
	RentPerDay decimal.Decimal
	TotalDue   decimal.Decimal
	HasStarted bool
}

// ComputeRentSummary derives the running rent due for a selection at 'now'.
// vehicleActive is supplied by the caller: rent accrues only while the
// driver's vehicle is active. Returns a zeroed summary with HasStarted=false
// when accrual never began or the vehicle is not active.
func ComputeRentSummary(sel *PlanSelection, vehicleActive bool, now time.Time) RentSummary {
	if sel.RentStartDate.IsZero() || !vehicleActive {
		return RentSummary{RentPerDay: decimal.Zero, TotalDue: decimal.Zero}
	}

	rentPerDay := sel.SelectedSlab.UnitRent(sel.PlanType)

	// While inactive the pause boundary freezes the day count; elapsed
	// wall-clock time past it does not accrue.
	endBoundary := now
	if sel.Status == SelectionInactive && sel.RentPausedDate != nil {
		endBoundary = *sel.RentPausedDate
	}

	totalDays := core.ClampDays(core.DaysBetween(sel.RentStartDate, endBoundary))
	grossDue := rentPerDay.Mul(decimal.NewFromInt(int64(totalDays)))
	totalDue := core.MaxZero(grossDue.Sub(sel.RentPaid()))

	return RentSummary{
		TotalDays:  totalDays,
		RentPerDay: rentPerDay,
		TotalDue:   totalDue,
		HasStarted: true,
	}
}

// =============================================================================
// TOTAL PAYMENT - One-time amount owed at booking
// =============================================================================

// ComputeTotalPayment returns the one-time total owed when the plan is
// booked: security deposit + one billing unit of rent + accidental cover.
// The cover fee applies to weekly plans only.
func ComputeTotalPayment(sel *PlanSelection) decimal.Decimal {
	total := sel.SecurityDeposit.Add(sel.SelectedSlab.UnitRent(sel.PlanType))
	if sel.PlanType == PlanWeekly {
		total = total.Add(sel.SelectedSlab.AccidentalCover)
	}
	return total
}
