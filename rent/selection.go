/*
selection.go - Plan-selection lifecycle service

PURPOSE:
  Owns the selection state machine and payment recording. All mutations go
  through SelectionService so the lifecycle invariants hold:

  STATE MACHINE:
    creation            -> active (RentStartDate stamped once)
    active   -> inactive   stamps RentPausedDate; accrual stops there
    inactive -> active     accrual resumes; RentStartDate is NOT reset and
                           paused days are NOT credited back
    active|inactive -> completed|cancelled   terminal, no further accrual

  SetStatus validates only that the new status is one of the four enumerated
  values; the stored record is the single source of lifecycle truth and any
  cached rent figure must be recomputed on next read.

DUPLICATE PREVENTION:
  Create rejects a new selection when an open one already exists for the
  same (driver mobile, plan type) pair. This is the only structural guard;
  callers that race past it are reconciled manually.

SEE ALSO:
  - accrual.go: Reads the lifecycle fields this service maintains
  - fleet/coordinator.go: Swallows DuplicateSelectionError on plan assignment
*/
package rent

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/core"
)

// =============================================================================
// SELECTION STORE - Persistence interface
// =============================================================================

// SelectionStore handles persistence of plan selections.
// Get returns (nil, nil) when the id is unknown.
type SelectionStore interface {
	GetSelection(ctx context.Context, id string) (*PlanSelection, error)
	SaveSelection(ctx context.Context, sel *PlanSelection) error
	ListSelections(ctx context.Context) ([]PlanSelection, error)

	// FindOpenSelection returns the open (non-completed, non-cancelled)
	// selection for a driver mobile and plan type, or (nil, nil).
	FindOpenSelection(ctx context.Context, driverMobile string, planType PlanType) (*PlanSelection, error)
}

// =============================================================================
// SELECTION SERVICE
// =============================================================================

// SelectionService mutates plan selections through the lifecycle rules.
type SelectionService struct {
	Store SelectionStore

	// Now is the clock; defaults to time.Now. Injectable for tests.
	Now func() time.Time
}

func NewSelectionService(store SelectionStore) *SelectionService {
	return &SelectionService{Store: store, Now: time.Now}
}

func (s *SelectionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create books a plan selection. The selection starts active with
// RentStartDate stamped to creation time. Fails with DuplicateSelectionError
// when an open selection already exists for the same driver and plan type.
func (s *SelectionService) Create(ctx context.Context, sel *PlanSelection) error {
	if !sel.PlanType.Valid() {
		return fmt.Errorf("unknown plan type %q", sel.PlanType)
	}

	if sel.DriverMobile != "" {
		existing, err := s.Store.FindOpenSelection(ctx, sel.DriverMobile, sel.PlanType)
		if err != nil {
			return err
		}
		if existing != nil {
			return &core.DuplicateSelectionError{
				DriverMobile: sel.DriverMobile,
				PlanType:     string(sel.PlanType),
				ExistingID:   existing.ID,
			}
		}
	}

	now := s.now()
	sel.Status = SelectionActive
	sel.RentStartDate = now
	sel.RentPausedDate = nil
	sel.CreatedAt = now
	return s.Store.SaveSelection(ctx, sel)
}

// Get resolves a selection by id. Fails with NotFoundError when unknown.
func (s *SelectionService) Get(ctx context.Context, id string) (*PlanSelection, error) {
	sel, err := s.Store.GetSelection(ctx, id)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		return nil, &core.NotFoundError{Kind: "selection", ID: id}
	}
	return sel, nil
}

// SetStatus persists a new lifecycle status. Fails with NotFoundError for an
// unknown id and InvalidTransitionError when the status is not one of the
// four enumerated values. Leaving active stamps RentPausedDate.
func (s *SelectionService) SetStatus(ctx context.Context, id string, status SelectionStatus) (*PlanSelection, error) {
	if !status.Valid() {
		return nil, &core.InvalidTransitionError{Status: string(status)}
	}

	sel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sel.Status == SelectionActive && status != SelectionActive {
		paused := s.now()
		sel.RentPausedDate = &paused
	}
	sel.Status = status

	if err := s.Store.SaveSelection(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// RecordPayment stores the latest manually recorded payment for the
// selection. The amount offsets the running rent due only when the type is
// 'rent'; 'security' payments sit against the deposit.
func (s *SelectionService) RecordPayment(ctx context.Context, id string, paymentType PaymentType, amount decimal.Decimal) (*PlanSelection, error) {
	if !paymentType.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidPaymentType, paymentType)
	}

	sel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sel.PaymentType = paymentType
	sel.PaidAmount = &amount

	if err := s.Store.SaveSelection(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}
