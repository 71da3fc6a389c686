/*
errors.go - Centralized error types for the fleet rent engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Domain packages wrap these sentinels with structured context.

ERROR CATEGORIES:
  1. Lookup errors    - unknown driver/vehicle/plan/selection/staff ids
  2. Validation errors - illegal status values, bad attendance codes
  3. Write errors      - dual-write failures that left records half-updated

USAGE:
  Callers branch on sentinels with errors.Is():

    if errors.Is(err, core.ErrNotFound) {
        // 404
    }

  Structured types carry the specifics:

    var pw *core.PartialWriteError
    if errors.As(err, &pw) {
        log.Printf("%s written, %s failed", pw.Succeeded, pw.Failed)
    }

SEE ALSO:
  - fleet/coordinator.go: Produces PartialWriteError on dual-write failures
  - rent/selection.go: Produces InvalidTransitionError and DuplicateSelectionError
  - payroll/service.go: Produces InvalidCodeError and ReadOnlyDayError
*/
package core

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition is returned when a selection status value is not
	// one of the enumerated states.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidCode is returned when an attendance code is not in the
	// allowed set {P, A, H, CL, HD, S, LOP}.
	ErrInvalidCode = errors.New("invalid attendance code")

	// ErrReadOnlyDay is returned when editing a Sunday attendance cell.
	// Sundays are always 'S' and are not settable.
	ErrReadOnlyDay = errors.New("attendance day is read-only")

	// ErrDayOutOfRange is returned when a day-of-month falls outside the
	// target month's calendar.
	ErrDayOutOfRange = errors.New("day outside month")

	// ErrDuplicateSelection is returned when an open plan selection already
	// exists for the same driver and plan type. Treated as non-fatal by the
	// assignment coordinator.
	ErrDuplicateSelection = errors.New("plan selection already exists")

	// ErrInvalidPaymentType is returned when a recorded payment names a type
	// other than 'security' or 'rent'.
	ErrInvalidPaymentType = errors.New("invalid payment type")

	// ErrPartialWrite is returned when one half of a dual-write succeeded and
	// the other failed. Never hidden as a generic success.
	ErrPartialWrite = errors.New("partial write")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which record kind and id could not be resolved.
type NotFoundError struct {
	Kind string // "driver", "vehicle", "plan", "selection", "staff"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidTransitionError reports an illegal selection status value.
type InvalidTransitionError struct {
	Status string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid selection status: %q", e.Status)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// InvalidCodeError reports a bad attendance code.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid attendance code: %q", e.Code)
}

func (e *InvalidCodeError) Unwrap() error { return ErrInvalidCode }

// ReadOnlyDayError reports an attempt to edit a Sunday cell.
type ReadOnlyDayError struct {
	Year  int
	Month time.Month
	Day   int
}

func (e *ReadOnlyDayError) Error() string {
	return fmt.Sprintf("day %04d-%02d-%02d is a Sunday and cannot be edited",
		e.Year, e.Month, e.Day)
}

func (e *ReadOnlyDayError) Unwrap() error { return ErrReadOnlyDay }

// DuplicateSelectionError identifies the conflicting open selection.
type DuplicateSelectionError struct {
	DriverMobile string
	PlanType     string
	ExistingID   string
}

func (e *DuplicateSelectionError) Error() string {
	return fmt.Sprintf("open %s selection already exists for driver %s (id: %s)",
		e.PlanType, e.DriverMobile, e.ExistingID)
}

func (e *DuplicateSelectionError) Unwrap() error { return ErrDuplicateSelection }

// PartialWriteError reports which half of a dual-write landed so the caller
// can manually reconcile. The first write is NOT rolled back.
type PartialWriteError struct {
	Succeeded string // record that was persisted, e.g. "driver"
	Failed    string // record whose write failed, e.g. "vehicle"
	Cause     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %s updated but %s write failed: %v",
		e.Succeeded, e.Failed, e.Cause)
}

func (e *PartialWriteError) Unwrap() error { return ErrPartialWrite }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidCode) ||
		errors.Is(err, ErrReadOnlyDay) ||
		errors.Is(err, ErrDayOutOfRange) ||
		errors.Is(err, ErrDuplicateSelection) ||
		errors.Is(err, ErrInvalidPaymentType)
}
