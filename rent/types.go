/*
Package rent implements the plan-selection lifecycle and rent accrual.

PURPOSE:
  A driver books a rent plan by creating a PlanSelection: a snapshot of the
  chosen rent slab plus the lifecycle fields that start and stop daily-rent
  accrual. Rent owed is never stored - it is computed on read from the
  selection's timestamps (see accrual.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - RentSlab: one tier of a plan (trips -> daily rent / weekly rent / cover)
  - PlanSelection: the per-booking record owning accrual lifecycle state
  - SelectionStatus: active | inactive | completed | cancelled
  - PaymentType: security | rent (which due the recorded payment offsets)

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary field
  2. Snapshot semantics: the selected slab is copied at booking time, so
     later plan edits never change what an existing booking owes
  3. Derived dues: amounts owed are computed, never cached as truth

SEE ALSO:
  - accrual.go: ComputeRentSummary / ComputeTotalPayment
  - selection.go: State machine and payment recording
  - fleet/coordinator.go: Creates selections when plans are assigned
*/
package rent

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PLAN AND PAYMENT ENUMERATIONS
// =============================================================================

// PlanType distinguishes daily-rent plans from weekly-rent plans.
type PlanType string

const (
	PlanDaily  PlanType = "daily"
	PlanWeekly PlanType = "weekly"
)

// Valid reports whether the plan type is one of the two known kinds.
func (p PlanType) Valid() bool {
	return p == PlanDaily || p == PlanWeekly
}

// SelectionStatus governs whether rent accrues on a selection.
type SelectionStatus string

const (
	SelectionActive    SelectionStatus = "active"
	SelectionInactive  SelectionStatus = "inactive"
	SelectionCompleted SelectionStatus = "completed"
	SelectionCancelled SelectionStatus = "cancelled"
)

// Valid reports whether the status is one of the four enumerated states.
func (s SelectionStatus) Valid() bool {
	switch s {
	case SelectionActive, SelectionInactive, SelectionCompleted, SelectionCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends the accrual lifecycle.
func (s SelectionStatus) Terminal() bool {
	return s == SelectionCompleted || s == SelectionCancelled
}

// PaymentType identifies which due a recorded payment offsets.
type PaymentType string

const (
	PaymentSecurity PaymentType = "security"
	PaymentRent     PaymentType = "rent"
)

// Valid reports whether the payment type is one of the two known kinds.
func (p PaymentType) Valid() bool {
	return p == PaymentSecurity || p == PaymentRent
}

// =============================================================================
// RENT SLAB - One tier of a plan's schedule
// =============================================================================

// RentSlab is a tier of a rent plan keyed by trip volume. Daily plans charge
// RentDay per billing unit; weekly plans charge WeeklyRent plus a one-time
// AccidentalCover fee at booking.
type RentSlab struct {
	Trips           int
	RentDay         decimal.Decimal
	WeeklyRent      decimal.Decimal
	AccidentalCover decimal.Decimal
}

// UnitRent returns the slab's rent for one billing unit of the given plan
// type: the daily rate for daily plans, the weekly rate for weekly plans.
func (s RentSlab) UnitRent(planType PlanType) decimal.Decimal {
	if planType == PlanWeekly {
		return s.WeeklyRent
	}
	return s.RentDay
}

// =============================================================================
// PLAN SELECTION - One per (driver, plan) booking
// =============================================================================

// PlanSelection is a driver's booking of a rent plan, with its own accrual
// lifecycle. DriverMobile and DriverUsername are denormalized so selections
// can be looked up without a join.
type PlanSelection struct {
	ID              string
	PlanName        string
	PlanType        PlanType
	SelectedSlab    RentSlab
	SecurityDeposit decimal.Decimal
	Status          SelectionStatus

	// RentStartDate is set once, on first activation, and never reset.
	// Zero means accrual has not started.
	RentStartDate time.Time

	// RentPausedDate is stamped each time the status flips to inactive.
	// While inactive, accrual counts only up to this boundary. Reactivation
	// resumes counting from the original RentStartDate; paused intervals are
	// not credited back.
	RentPausedDate *time.Time

	// PaymentType and PaidAmount record the latest manual payment. PaidAmount
	// offsets the running rent due only when PaymentType is 'rent'.
	PaymentType PaymentType
	PaidAmount  *decimal.Decimal

	DriverMobile   string
	DriverUsername string
	CreatedAt      time.Time
}

// Open reports whether the selection is still in its accrual lifecycle.
// At most one open selection should exist per driver and plan type.
func (s *PlanSelection) Open() bool {
	return !s.Status.Terminal()
}

// RentPaid returns the recorded payment that offsets running rent, or zero
// when the recorded payment was a security deposit (or absent).
func (s *PlanSelection) RentPaid() decimal.Decimal {
	if s.PaymentType != PaymentRent || s.PaidAmount == nil {
		return decimal.Zero
	}
	return *s.PaidAmount
}
