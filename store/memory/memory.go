// Package memory provides an in-memory implementation of every store
// interface, for tests and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/fleet-rent-engine/fleet"
	"github.com/warp/fleet-rent-engine/payroll"
	"github.com/warp/fleet-rent-engine/rent"
)

// =============================================================================
// MEMORY STORE - Map-backed implementation (for testing/dev)
// =============================================================================

// Store implements fleet.DriverStore, fleet.VehicleStore, fleet.PlanStore,
// rent.SelectionStore, payroll.StaffStore and payroll.SheetStore.
type Store struct {
	mu         sync.RWMutex
	drivers    map[string]fleet.Driver
	vehicles   map[string]fleet.Vehicle
	plans      map[string]fleet.RentPlan
	selections map[string]rent.PlanSelection
	staff      map[string]payroll.Staff
	sheets     map[sheetKey]payroll.SalarySheet

	// FailSaves lists record kinds whose saves fail with the paired error.
	// Used by tests to provoke partial-write paths.
	FailSaves map[string]error
}

type sheetKey struct {
	StaffID string
	Year    int
	Month   time.Month
}

func New() *Store {
	return &Store{
		drivers:    make(map[string]fleet.Driver),
		vehicles:   make(map[string]fleet.Vehicle),
		plans:      make(map[string]fleet.RentPlan),
		selections: make(map[string]rent.PlanSelection),
		staff:      make(map[string]payroll.Staff),
		sheets:     make(map[sheetKey]payroll.SalarySheet),
		FailSaves:  make(map[string]error),
	}
}

func (s *Store) failFor(kind string) error {
	return s.FailSaves[kind]
}

// =============================================================================
// DRIVER STORE
// =============================================================================

func (s *Store) GetDriver(_ context.Context, id string) (*fleet.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.drivers[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *Store) GetDriverByMobile(_ context.Context, mobile string) (*fleet.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.drivers {
		if d.Mobile == mobile {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (s *Store) SaveDriver(_ context.Context, d *fleet.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor("driver"); err != nil {
		return err
	}
	s.drivers[d.ID] = *d
	return nil
}

func (s *Store) ListDrivers(_ context.Context) ([]fleet.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// VEHICLE STORE
// =============================================================================

func (s *Store) GetVehicle(_ context.Context, id string) (*fleet.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vehicles[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (s *Store) GetVehicleByRegistration(_ context.Context, registration string) (*fleet.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vehicles {
		if v.Registration == registration {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (s *Store) SaveVehicle(_ context.Context, v *fleet.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor("vehicle"); err != nil {
		return err
	}
	s.vehicles[v.ID] = *v
	return nil
}

func (s *Store) ListVehicles(_ context.Context) ([]fleet.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// PLAN STORE
// =============================================================================

func (s *Store) GetPlan(_ context.Context, id string) (*fleet.RentPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.plans[id]; ok {
		p.Slabs = append([]rent.RentSlab(nil), p.Slabs...)
		return &p, nil
	}
	return nil, nil
}

func (s *Store) SavePlan(_ context.Context, p *fleet.RentPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor("plan"); err != nil {
		return err
	}
	stored := *p
	stored.Slabs = append([]rent.RentSlab(nil), p.Slabs...)
	s.plans[p.ID] = stored
	return nil
}

func (s *Store) ListPlans(_ context.Context) ([]fleet.RentPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.RentPlan, 0, len(s.plans))
	for _, p := range s.plans {
		p.Slabs = append([]rent.RentSlab(nil), p.Slabs...)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// SELECTION STORE
// =============================================================================

func (s *Store) GetSelection(_ context.Context, id string) (*rent.PlanSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sel, ok := s.selections[id]; ok {
		return &sel, nil
	}
	return nil, nil
}

func (s *Store) SaveSelection(_ context.Context, sel *rent.PlanSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor("selection"); err != nil {
		return err
	}
	s.selections[sel.ID] = *sel
	return nil
}

func (s *Store) ListSelections(_ context.Context) ([]rent.PlanSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]rent.PlanSelection, 0, len(s.selections))
	for _, sel := range s.selections {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindOpenSelection(_ context.Context, driverMobile string, planType rent.PlanType) (*rent.PlanSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sel := range s.selections {
		if sel.DriverMobile == driverMobile && sel.PlanType == planType && sel.Open() {
			sel := sel
			return &sel, nil
		}
	}
	return nil, nil
}

// =============================================================================
// STAFF STORE
// =============================================================================

func (s *Store) GetStaff(_ context.Context, id string) (*payroll.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.staff[id]; ok {
		return &st, nil
	}
	return nil, nil
}

func (s *Store) SaveStaff(_ context.Context, st *payroll.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor("staff"); err != nil {
		return err
	}
	s.staff[st.ID] = *st
	return nil
}

func (s *Store) ListStaff(_ context.Context) ([]payroll.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]payroll.Staff, 0, len(s.staff))
	for _, st := range s.staff {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// SHEET STORE
// =============================================================================

func (s *Store) GetSheet(_ context.Context, staffID string, year int, month time.Month) (*payroll.SalarySheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sh, ok := s.sheets[sheetKey{StaffID: staffID, Year: year, Month: month}]; ok {
		sh.Days = sh.Days.Clone()
		return &sh, nil
	}
	return nil, nil
}

func (s *Store) SaveSheet(_ context.Context, sheet *payroll.SalarySheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor("sheet"); err != nil {
		return err
	}
	stored := *sheet
	stored.Days = sheet.Days.Clone()
	s.sheets[sheetKey{StaffID: sheet.StaffID, Year: sheet.Year, Month: sheet.Month}] = stored
	return nil
}
