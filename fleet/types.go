/*
Package fleet holds the fleet entities and the assignment coordinator.

PURPOSE:
  Drivers and vehicles are stored independently but carry mirrored link
  fields: driver.VehicleAssigned names the vehicle by its human identifier
  (registration), vehicle.AssignedDriver names the driver by internal id.
  The coordinator (coordinator.go) is the only writer allowed to touch the
  pair, keeping the two records in agreement.

KEY CONCEPTS IN THIS FILE (types.go):
  - Driver: identity plus the denormalized plan and vehicle link fields
  - Vehicle: status gates whether rent accrues (active only)
  - RentPlan: the slab catalog, read-only reference data for the core

SEE ALSO:
  - coordinator.go: AssignVehicle / AssignPlan
  - rent/types.go: RentSlab and PlanSelection
*/
package fleet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/rent"
)

// =============================================================================
// VEHICLE
// =============================================================================

// VehicleStatus gates rent accrual: only active vehicles accrue.
type VehicleStatus string

const (
	VehicleActive    VehicleStatus = "active"
	VehicleInactive  VehicleStatus = "inactive"
	VehiclePending   VehicleStatus = "pending"
	VehicleSuspended VehicleStatus = "suspended"
)

// Valid reports whether the status is one of the enumerated values.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleActive, VehicleInactive, VehiclePending, VehicleSuspended:
		return true
	}
	return false
}

// Vehicle may be assigned to at most one driver at a time.
// AssignedDriver holds the driver's internal id, empty when unassigned.
type Vehicle struct {
	ID             string
	Registration   string // human identifier, what drivers see
	Model          string
	Status         VehicleStatus
	AssignedDriver string
	CreatedAt      time.Time
}

// =============================================================================
// DRIVER
// =============================================================================

// Driver holds identity and employment attributes plus the denormalized
// plan and vehicle fields the coordinator maintains. VehicleAssigned is the
// vehicle's registration (not its internal id), empty when unassigned.
type Driver struct {
	ID            string
	Name          string
	Mobile        string
	LicenseNumber string
	KYCStatus     string
	JoinDate      time.Time

	CurrentPlan     string
	PlanAmount      decimal.Decimal
	PlanType        rent.PlanType
	VehicleAssigned string

	CreatedAt time.Time
}

// =============================================================================
// RENT PLAN - Slab catalog (read-only reference data)
// =============================================================================

// RentPlan is a plan's schedule of rent slabs. The core only reads it;
// slabs are snapshotted into selections at booking time.
type RentPlan struct {
	ID        string
	Name      string
	PlanType  rent.PlanType
	Slabs     []rent.RentSlab
	CreatedAt time.Time
}

// FirstSlab returns the plan's first slab, the tier used when deriving a
// driver's PlanAmount at assignment time. ok is false for an empty catalog.
func (p *RentPlan) FirstSlab() (rent.RentSlab, bool) {
	if len(p.Slabs) == 0 {
		return rent.RentSlab{}, false
	}
	return p.Slabs[0], true
}

// =============================================================================
// STORES - Persistence interfaces
// =============================================================================

// DriverStore handles driver persistence. Get methods return (nil, nil)
// when the record is unknown.
type DriverStore interface {
	GetDriver(ctx context.Context, id string) (*Driver, error)
	GetDriverByMobile(ctx context.Context, mobile string) (*Driver, error)
	SaveDriver(ctx context.Context, d *Driver) error
	ListDrivers(ctx context.Context) ([]Driver, error)
}

// VehicleStore handles vehicle persistence.
type VehicleStore interface {
	GetVehicle(ctx context.Context, id string) (*Vehicle, error)
	GetVehicleByRegistration(ctx context.Context, registration string) (*Vehicle, error)
	SaveVehicle(ctx context.Context, v *Vehicle) error
	ListVehicles(ctx context.Context) ([]Vehicle, error)
}

// PlanStore handles rent-plan persistence.
type PlanStore interface {
	GetPlan(ctx context.Context, id string) (*RentPlan, error)
	SavePlan(ctx context.Context, p *RentPlan) error
	ListPlans(ctx context.Context) ([]RentPlan, error)
}
