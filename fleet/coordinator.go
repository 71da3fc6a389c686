/*
coordinator.go - Bidirectional driver<->vehicle and driver<->plan assignment

PURPOSE:
  Administrative assignment actions fan out to more than one record:

  AssignVehicle writes driver.VehicleAssigned and vehicle.AssignedDriver,
  and clears the previous vehicle's link on reassignment. The two records
  are stored independently; the writes are sequential, not transactional.

  AssignPlan writes the driver's plan fields and then creates the driver's
  PlanSelection. Creation is idempotent: an existing open selection for the
  same (driver, plan type) is swallowed and the plan-field update - already
  persisted - is reported as success.

PARTIAL WRITES:
  When the first write of a pair lands and the second fails, the first is
  NOT rolled back. The failure surfaces as core.PartialWriteError naming
  which side succeeded, so the caller can manually reconcile. It is never
  hidden as a generic success.

  Two concurrent AssignVehicle calls for the same vehicle can interleave
  and leave the pair inconsistent; there is no locking here. The mirrored
  fields are eventually consistent through this coordinator, not through a
  hard transactional link.

SEE ALSO:
  - types.go: Store interfaces and the mirrored link fields
  - rent/selection.go: Duplicate prevention on selection creation
  - core/errors.go: PartialWriteError contract
*/
package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/core"
	"github.com/warp/fleet-rent-engine/rent"
)

// =============================================================================
// ASSIGNMENT COORDINATOR
// =============================================================================

// Coordinator enforces the bidirectional driver<->vehicle link and the
// driver<->plan-selection creation rule.
type Coordinator struct {
	Drivers    DriverStore
	Vehicles   VehicleStore
	Plans      PlanStore
	Selections *rent.SelectionService

	// Now is the clock; defaults to time.Now. Injectable for tests.
	Now func() time.Time
}

func NewCoordinator(drivers DriverStore, vehicles VehicleStore, plans PlanStore, selections *rent.SelectionService) *Coordinator {
	return &Coordinator{
		Drivers:    drivers,
		Vehicles:   vehicles,
		Plans:      plans,
		Selections: selections,
		Now:        time.Now,
	}
}

// =============================================================================
// VEHICLE ASSIGNMENT
// =============================================================================

// AssignVehicle links a driver to a vehicle, or unlinks when vehicleID is
// nil. Both halves of the mirrored pair are written; a failure after the
// first write surfaces as PartialWriteError. Fails with NotFoundError when
// the driver or the target vehicle cannot be resolved.
func (c *Coordinator) AssignVehicle(ctx context.Context, driverID string, vehicleID *string) (*Driver, error) {
	driver, err := c.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, &core.NotFoundError{Kind: "driver", ID: driverID}
	}

	// Resolve the driver's current vehicle before touching anything. A
	// stale registration that no longer resolves is treated as no previous
	// assignment.
	var prev *Vehicle
	if driver.VehicleAssigned != "" {
		prev, err = c.Vehicles.GetVehicleByRegistration(ctx, driver.VehicleAssigned)
		if err != nil {
			return nil, err
		}
	}

	if vehicleID == nil {
		return c.unassignVehicle(ctx, driver, prev)
	}

	target, err := c.Vehicles.GetVehicle(ctx, *vehicleID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &core.NotFoundError{Kind: "vehicle", ID: *vehicleID}
	}

	// Driver side first: the human identifier, not the internal id.
	driver.VehicleAssigned = target.Registration
	if err := c.Drivers.SaveDriver(ctx, driver); err != nil {
		return nil, fmt.Errorf("failed to update driver %s: %w", driver.ID, err)
	}

	target.AssignedDriver = driver.ID
	if err := c.Vehicles.SaveVehicle(ctx, target); err != nil {
		return driver, &core.PartialWriteError{Succeeded: "driver", Failed: "vehicle", Cause: err}
	}

	// A reassignment frees the previous vehicle.
	if prev != nil && prev.ID != target.ID {
		prev.AssignedDriver = ""
		if err := c.Vehicles.SaveVehicle(ctx, prev); err != nil {
			return driver, &core.PartialWriteError{Succeeded: "driver,vehicle", Failed: "previous vehicle", Cause: err}
		}
	}

	return driver, nil
}

func (c *Coordinator) unassignVehicle(ctx context.Context, driver *Driver, prev *Vehicle) (*Driver, error) {
	driver.VehicleAssigned = ""
	if err := c.Drivers.SaveDriver(ctx, driver); err != nil {
		return nil, fmt.Errorf("failed to update driver %s: %w", driver.ID, err)
	}

	if prev != nil {
		prev.AssignedDriver = ""
		if err := c.Vehicles.SaveVehicle(ctx, prev); err != nil {
			return driver, &core.PartialWriteError{Succeeded: "driver", Failed: "vehicle", Cause: err}
		}
	}

	return driver, nil
}

// =============================================================================
// PLAN ASSIGNMENT
// =============================================================================

// AssignPlan writes the driver's plan fields from the resolved plan's first
// slab, then creates the driver's plan selection when the mobile number is
// known. An already-existing open selection is swallowed: the plan-field
// update has been persisted and is reported as success. Any other selection
// failure surfaces as PartialWriteError; the driver write is not rolled back.
func (c *Coordinator) AssignPlan(ctx context.Context, driverID string, planID *string) (*Driver, error) {
	driver, err := c.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, &core.NotFoundError{Kind: "driver", ID: driverID}
	}

	if planID == nil {
		driver.CurrentPlan = ""
		driver.PlanAmount = decimal.Zero
		driver.PlanType = ""
		if err := c.Drivers.SaveDriver(ctx, driver); err != nil {
			return nil, fmt.Errorf("failed to update driver %s: %w", driver.ID, err)
		}
		return driver, nil
	}

	plan, err := c.Plans.GetPlan(ctx, *planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &core.NotFoundError{Kind: "plan", ID: *planID}
	}

	slab, ok := plan.FirstSlab()
	if !ok {
		return nil, fmt.Errorf("plan %s has no rent slabs", plan.ID)
	}

	driver.CurrentPlan = plan.Name
	driver.PlanAmount = slab.UnitRent(plan.PlanType)
	driver.PlanType = plan.PlanType
	if err := c.Drivers.SaveDriver(ctx, driver); err != nil {
		return nil, fmt.Errorf("failed to update driver %s: %w", driver.ID, err)
	}

	// The selection only makes sense when the driver is reachable by mobile;
	// selections are keyed on it for join-free lookup.
	if driver.Mobile == "" {
		return driver, nil
	}

	sel := &rent.PlanSelection{
		ID:             newSelectionID(driver.ID, plan.ID, c.Now()),
		PlanName:       plan.Name,
		PlanType:       plan.PlanType,
		SelectedSlab:   slab,
		Status:         rent.SelectionActive,
		DriverMobile:   driver.Mobile,
		DriverUsername: driver.Name,
	}

	if err := c.Selections.Create(ctx, sel); err != nil {
		if errors.Is(err, core.ErrDuplicateSelection) {
			// Already booked: idempotent, the driver update stands.
			return driver, nil
		}
		return driver, &core.PartialWriteError{Succeeded: "driver", Failed: "selection", Cause: err}
	}

	return driver, nil
}

// =============================================================================
// SELECTION -> VEHICLE STATUS CASCADE
// =============================================================================

// CascadeSelectionStatus mirrors a selection's activity onto the driver's
// vehicle: an active selection marks the vehicle active, an inactive one
// marks it inactive. Terminal selection states leave the vehicle untouched.
// The link is loose - a driver or vehicle that cannot be resolved is not an
// error; the fields stay eventually consistent through this coordinator.
func (c *Coordinator) CascadeSelectionStatus(ctx context.Context, driverMobile string, status rent.SelectionStatus) error {
	var vehicleStatus VehicleStatus
	switch status {
	case rent.SelectionActive:
		vehicleStatus = VehicleActive
	case rent.SelectionInactive:
		vehicleStatus = VehicleInactive
	default:
		return nil
	}

	driver, err := c.Drivers.GetDriverByMobile(ctx, driverMobile)
	if err != nil {
		return err
	}
	if driver == nil || driver.VehicleAssigned == "" {
		return nil
	}

	vehicle, err := c.Vehicles.GetVehicleByRegistration(ctx, driver.VehicleAssigned)
	if err != nil {
		return err
	}
	if vehicle == nil {
		return nil
	}

	vehicle.Status = vehicleStatus
	return c.Vehicles.SaveVehicle(ctx, vehicle)
}

func newSelectionID(driverID, planID string, at time.Time) string {
	return fmt.Sprintf("sel-%s-%s-%d", driverID, planID, at.UnixNano())
}
