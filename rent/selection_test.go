package rent_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fleet-rent-engine/core"
	"github.com/warp/fleet-rent-engine/rent"
	"github.com/warp/fleet-rent-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestSelectionService(t *testing.T) (*rent.SelectionService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := rent.NewSelectionService(store)
	return svc, store
}

func newSelection(id, mobile string) *rent.PlanSelection {
	return &rent.PlanSelection{
		ID:       id,
		PlanName: "Daily Basic",
		PlanType: rent.PlanDaily,
		SelectedSlab: rent.RentSlab{
			Trips:   10,
			RentDay: decimal.NewFromInt(500),
		},
		SecurityDeposit: decimal.NewFromInt(3000),
		DriverMobile:    mobile,
		DriverUsername:  "Test Driver",
	}
}

// =============================================================================
// CREATION TESTS
// =============================================================================

func TestSelectionService_Create_StartsActiveWithStartDate(t *testing.T) {
	// GIVEN: A fresh booking
	// WHEN: Creating it
	// THEN: Status is active and RentStartDate is stamped

	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	fixed := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }

	sel := newSelection("sel-1", "9000000001")
	require.NoError(t, svc.Create(ctx, sel))

	assert.Equal(t, rent.SelectionActive, sel.Status)
	assert.Equal(t, fixed, sel.RentStartDate)
	assert.Nil(t, sel.RentPausedDate)
}

func TestSelectionService_Create_DuplicateOpenSelection_Rejected(t *testing.T) {
	// GIVEN: An open daily selection for a driver mobile
	// WHEN: Booking another daily selection for the same mobile
	// THEN: Rejected with DuplicateSelectionError naming the existing id

	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))

	err := svc.Create(ctx, newSelection("sel-2", "9000000001"))

	require.Error(t, err)
	var dup *core.DuplicateSelectionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "sel-1", dup.ExistingID)
	assert.True(t, core.IsClientError(err))
}

func TestSelectionService_Create_DifferentPlanType_Allowed(t *testing.T) {
	// GIVEN: An open daily selection for a driver
	// WHEN: Booking a weekly selection for the same driver
	// THEN: Allowed; duplicate prevention is per (mobile, plan type)

	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))

	weekly := newSelection("sel-2", "9000000001")
	weekly.PlanType = rent.PlanWeekly
	weekly.SelectedSlab.WeeklyRent = decimal.NewFromInt(2000)

	assert.NoError(t, svc.Create(ctx, weekly))
}

func TestSelectionService_Create_AfterTerminalSelection_Allowed(t *testing.T) {
	// GIVEN: A completed daily selection for a driver
	// WHEN: Booking a new daily selection for the same driver
	// THEN: Allowed; only OPEN selections block new bookings

	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))
	_, err := svc.SetStatus(ctx, "sel-1", rent.SelectionCompleted)
	require.NoError(t, err)

	assert.NoError(t, svc.Create(ctx, newSelection("sel-2", "9000000001")))
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestSelectionService_SetStatus_PauseStampsBoundary(t *testing.T) {
	// GIVEN: An active selection
	// WHEN: Setting it inactive
	// THEN: RentPausedDate is stamped and RentStartDate is untouched

	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return start }
	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))

	paused := start.AddDate(0, 0, 7)
	svc.Now = func() time.Time { return paused }

	sel, err := svc.SetStatus(ctx, "sel-1", rent.SelectionInactive)
	require.NoError(t, err)

	assert.Equal(t, rent.SelectionInactive, sel.Status)
	require.NotNil(t, sel.RentPausedDate)
	assert.Equal(t, paused, *sel.RentPausedDate)
	assert.Equal(t, start, sel.RentStartDate)
}

func TestSelectionService_SetStatus_ReactivationKeepsStartDate(t *testing.T) {
	// GIVEN: A paused selection
	// WHEN: Reactivating it
	// THEN: RentStartDate is NOT reset; paused days are not credited back

	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return start }
	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))

	_, err := svc.SetStatus(ctx, "sel-1", rent.SelectionInactive)
	require.NoError(t, err)

	sel, err := svc.SetStatus(ctx, "sel-1", rent.SelectionActive)
	require.NoError(t, err)

	assert.Equal(t, rent.SelectionActive, sel.Status)
	assert.Equal(t, start, sel.RentStartDate)
}

func TestSelectionService_SetStatus_TerminalFromActive_StampsPause(t *testing.T) {
	// GIVEN: An active selection
	// WHEN: Completing it
	// THEN: Leaving active stamps the pause boundary

	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))

	sel, err := svc.SetStatus(ctx, "sel-1", rent.SelectionCompleted)
	require.NoError(t, err)

	assert.True(t, sel.Status.Terminal())
	assert.NotNil(t, sel.RentPausedDate)
}

func TestSelectionService_SetStatus_InvalidValue_Rejected(t *testing.T) {
	// GIVEN: An existing selection
	// WHEN: Setting a status outside the four enumerated values
	// THEN: Rejected with InvalidTransitionError; record unchanged

	svc, store := newTestSelectionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))

	_, err := svc.SetStatus(ctx, "sel-1", rent.SelectionStatus("paused"))

	require.Error(t, err)
	var bad *core.InvalidTransitionError
	assert.ErrorAs(t, err, &bad)

	stored, _ := store.GetSelection(ctx, "sel-1")
	assert.Equal(t, rent.SelectionActive, stored.Status)
}

func TestSelectionService_Get_Unknown_NotFound(t *testing.T) {
	svc, _ := newTestSelectionService(t)

	_, err := svc.Get(context.Background(), "nope")

	assert.True(t, core.IsNotFound(err))
}

// =============================================================================
// PAYMENT TESTS
// =============================================================================

func TestSelectionService_RecordPayment_StoresLatest(t *testing.T) {
	// GIVEN: An active selection
	// WHEN: Recording a rent payment
	// THEN: Payment type and amount are persisted

	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))

	sel, err := svc.RecordPayment(ctx, "sel-1", rent.PaymentRent, decimal.NewFromInt(1200))
	require.NoError(t, err)

	assert.Equal(t, rent.PaymentRent, sel.PaymentType)
	require.NotNil(t, sel.PaidAmount)
	assert.True(t, sel.PaidAmount.Equal(decimal.NewFromInt(1200)))
	assert.True(t, sel.RentPaid().Equal(decimal.NewFromInt(1200)))
}

func TestSelectionService_RecordPayment_InvalidType_Rejected(t *testing.T) {
	svc, _ := newTestSelectionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newSelection("sel-1", "9000000001")))

	_, err := svc.RecordPayment(ctx, "sel-1", rent.PaymentType("advance"), decimal.NewFromInt(100))

	assert.ErrorIs(t, err, core.ErrInvalidPaymentType)
}
