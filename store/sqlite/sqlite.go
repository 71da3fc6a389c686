/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence interface of the engine (fleet.DriverStore,
  fleet.VehicleStore, fleet.PlanStore, rent.SelectionStore,
  payroll.StaffStore, payroll.SheetStore) on one SQLite database. The same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  drivers:          identity + denormalized plan/vehicle link fields
  vehicles:         status + mirrored assigned_driver link
  rent_plans:       slab catalogs (slabs stored as JSON)
  plan_selections:  one row per booking, owning the accrual lifecycle
  staff:            salaried employees
  salary_sheets:    attendance map + cached summary, one row per month

DECIMALS AND DATES:
  Monetary amounts are stored as TEXT via decimal.String() to avoid float
  drift; timestamps as RFC3339 TEXT.

ATOMIC SHEET SAVES:
  SaveSheet writes the attendance map and the derived summary in a single
  upsert, so the pair is never half-persisted. Cross-table dual-writes
  (driver+vehicle) are deliberately NOT wrapped in a transaction here;
  the coordinator surfaces partial failures instead.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and WAL mode so readers don't block.

USAGE:
  store, err := sqlite.New("./data/fleet.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - store/memory: In-memory implementation for unit tests
  - fleet/coordinator.go: The dual-write semantics over these stores
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/fleet-rent-engine/core"
	"github.com/warp/fleet-rent-engine/fleet"
	"github.com/warp/fleet-rent-engine/payroll"
	"github.com/warp/fleet-rent-engine/rent"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mobile TEXT,
		license_number TEXT,
		kyc_status TEXT,
		join_date TEXT,
		current_plan TEXT,
		plan_amount TEXT NOT NULL DEFAULT '0',
		plan_type TEXT,
		vehicle_assigned TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_drivers_mobile ON drivers(mobile);

	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		registration TEXT NOT NULL UNIQUE,
		model TEXT,
		status TEXT NOT NULL,
		assigned_driver TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vehicles_assigned_driver
		ON vehicles(assigned_driver) WHERE assigned_driver != '';

	CREATE TABLE IF NOT EXISTS rent_plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		plan_type TEXT NOT NULL,
		slabs_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plan_selections (
		id TEXT PRIMARY KEY,
		plan_name TEXT NOT NULL,
		plan_type TEXT NOT NULL,
		slab_json TEXT NOT NULL,
		security_deposit TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		rent_start_date TEXT,
		rent_paused_date TEXT,
		payment_type TEXT,
		paid_amount TEXT,
		driver_mobile TEXT,
		driver_username TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: open-selection lookup for duplicate prevention
	CREATE INDEX IF NOT EXISTS idx_selections_driver_type_status
		ON plan_selections(driver_mobile, plan_type, status);

	CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mobile TEXT,
		role TEXT,
		salary_amount TEXT NOT NULL DEFAULT '0',
		join_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Map and summary are persisted together; the summary is a cache,
	-- always re-derivable from days_json alone.
	CREATE TABLE IF NOT EXISTS salary_sheets (
		staff_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		days_json TEXT NOT NULL,
		salary_amount TEXT NOT NULL DEFAULT '0',
		summary_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (staff_id, year, month)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DRIVER STORE (fleet.DriverStore interface)
// =============================================================================

// SaveDriver inserts or updates a driver.
func (s *Store) SaveDriver(ctx context.Context, d *fleet.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO drivers (id, name, mobile, license_number, kyc_status, join_date,
			current_plan, plan_amount, plan_type, vehicle_assigned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			mobile = excluded.mobile,
			license_number = excluded.license_number,
			kyc_status = excluded.kyc_status,
			join_date = excluded.join_date,
			current_plan = excluded.current_plan,
			plan_amount = excluded.plan_amount,
			plan_type = excluded.plan_type,
			vehicle_assigned = excluded.vehicle_assigned
	`

	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Mobile, d.LicenseNumber, d.KYCStatus,
		formatTime(d.JoinDate), d.CurrentPlan, d.PlanAmount.String(),
		string(d.PlanType), d.VehicleAssigned, d.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save driver: %w", err)
	}
	return nil
}

// GetDriver returns a driver by id, or nil when unknown.
func (s *Store) GetDriver(ctx context.Context, id string) (*fleet.Driver, error) {
	return s.getDriver(ctx, "WHERE id = ?", id)
}

// GetDriverByMobile returns a driver by mobile number, or nil when unknown.
func (s *Store) GetDriverByMobile(ctx context.Context, mobile string) (*fleet.Driver, error) {
	return s.getDriver(ctx, "WHERE mobile = ?", mobile)
}

func (s *Store) getDriver(ctx context.Context, where string, arg any) (*fleet.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, mobile, license_number, kyc_status, join_date,
		       current_plan, plan_amount, plan_type, vehicle_assigned, created_at
		FROM drivers ` + where

	row := s.db.QueryRowContext(ctx, query, arg)
	d, err := scanDriver(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDrivers returns all drivers ordered by id.
func (s *Store) ListDrivers(ctx context.Context) ([]fleet.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, mobile, license_number, kyc_status, join_date,
		       current_plan, plan_amount, plan_type, vehicle_assigned, created_at
		FROM drivers ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []fleet.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, *d)
	}
	return drivers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*fleet.Driver, error) {
	var (
		d                           fleet.Driver
		mobile, license, kyc        sql.NullString
		joinDate                    sql.NullString
		currentPlan, planType       sql.NullString
		planAmount, vehicleAssigned sql.NullString
		createdAt                   string
	)

	err := row.Scan(&d.ID, &d.Name, &mobile, &license, &kyc, &joinDate,
		&currentPlan, &planAmount, &planType, &vehicleAssigned, &createdAt)
	if err != nil {
		return nil, err
	}

	d.Mobile = mobile.String
	d.LicenseNumber = license.String
	d.KYCStatus = kyc.String
	d.JoinDate = parseTime(joinDate.String)
	d.CurrentPlan = currentPlan.String
	d.PlanAmount = core.MustParseDecimal(planAmount.String)
	d.PlanType = rent.PlanType(planType.String)
	d.VehicleAssigned = vehicleAssigned.String
	d.CreatedAt = parseTime(createdAt)
	return &d, nil
}

// =============================================================================
// VEHICLE STORE (fleet.VehicleStore interface)
// =============================================================================

// SaveVehicle inserts or updates a vehicle.
func (s *Store) SaveVehicle(ctx context.Context, v *fleet.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO vehicles (id, registration, model, status, assigned_driver, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			registration = excluded.registration,
			model = excluded.model,
			status = excluded.status,
			assigned_driver = excluded.assigned_driver
	`

	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Registration, v.Model, string(v.Status), v.AssignedDriver,
		v.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// GetVehicle returns a vehicle by id, or nil when unknown.
func (s *Store) GetVehicle(ctx context.Context, id string) (*fleet.Vehicle, error) {
	return s.getVehicle(ctx, "WHERE id = ?", id)
}

// GetVehicleByRegistration returns a vehicle by its human identifier.
func (s *Store) GetVehicleByRegistration(ctx context.Context, registration string) (*fleet.Vehicle, error) {
	return s.getVehicle(ctx, "WHERE registration = ?", registration)
}

func (s *Store) getVehicle(ctx context.Context, where string, arg any) (*fleet.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, registration, model, status, assigned_driver, created_at
		FROM vehicles ` + where

	row := s.db.QueryRowContext(ctx, query, arg)
	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListVehicles returns all vehicles ordered by id.
func (s *Store) ListVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, registration, model, status, assigned_driver, created_at
		FROM vehicles ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []fleet.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func scanVehicle(row rowScanner) (*fleet.Vehicle, error) {
	var (
		v                     fleet.Vehicle
		model, assignedDriver sql.NullString
		status, createdAt     string
	)

	err := row.Scan(&v.ID, &v.Registration, &model, &status, &assignedDriver, &createdAt)
	if err != nil {
		return nil, err
	}

	v.Model = model.String
	v.Status = fleet.VehicleStatus(status)
	v.AssignedDriver = assignedDriver.String
	v.CreatedAt = parseTime(createdAt)
	return &v, nil
}

// =============================================================================
// PLAN STORE (fleet.PlanStore interface)
// =============================================================================

// slabJSON is the storage shape of a rent slab.
type slabJSON struct {
	Trips           int    `json:"trips"`
	RentDay         string `json:"rentDay"`
	WeeklyRent      string `json:"weeklyRent"`
	AccidentalCover string `json:"accidentalCover"`
}

func toSlabJSON(slab rent.RentSlab) slabJSON {
	return slabJSON{
		Trips:           slab.Trips,
		RentDay:         slab.RentDay.String(),
		WeeklyRent:      slab.WeeklyRent.String(),
		AccidentalCover: slab.AccidentalCover.String(),
	}
}

func (j slabJSON) toSlab() rent.RentSlab {
	return rent.RentSlab{
		Trips:           j.Trips,
		RentDay:         core.MustParseDecimal(j.RentDay),
		WeeklyRent:      core.MustParseDecimal(j.WeeklyRent),
		AccidentalCover: core.MustParseDecimal(j.AccidentalCover),
	}
}

// SavePlan inserts or updates a rent plan and its slab catalog.
func (s *Store) SavePlan(ctx context.Context, p *fleet.RentPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	slabs := make([]slabJSON, len(p.Slabs))
	for i, slab := range p.Slabs {
		slabs[i] = toSlabJSON(slab)
	}
	slabsJSON, err := json.Marshal(slabs)
	if err != nil {
		return fmt.Errorf("failed to encode slabs: %w", err)
	}

	query := `
		INSERT INTO rent_plans (id, name, plan_type, slabs_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			plan_type = excluded.plan_type,
			slabs_json = excluded.slabs_json
	`

	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Name, string(p.PlanType), string(slabsJSON),
		p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// GetPlan returns a plan by id, or nil when unknown.
func (s *Store) GetPlan(ctx context.Context, id string) (*fleet.RentPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, plan_type, slabs_json, created_at
		FROM rent_plans WHERE id = ?
	`, id)

	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlans returns all plans ordered by id.
func (s *Store) ListPlans(ctx context.Context) ([]fleet.RentPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, plan_type, slabs_json, created_at
		FROM rent_plans ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []fleet.RentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func scanPlan(row rowScanner) (*fleet.RentPlan, error) {
	var (
		p         fleet.RentPlan
		planType  string
		slabsStr  string
		createdAt string
	)

	if err := row.Scan(&p.ID, &p.Name, &planType, &slabsStr, &createdAt); err != nil {
		return nil, err
	}

	var slabs []slabJSON
	if err := json.Unmarshal([]byte(slabsStr), &slabs); err != nil {
		return nil, fmt.Errorf("failed to decode slabs for plan %s: %w", p.ID, err)
	}
	p.Slabs = make([]rent.RentSlab, len(slabs))
	for i, j := range slabs {
		p.Slabs[i] = j.toSlab()
	}

	p.PlanType = rent.PlanType(planType)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// =============================================================================
// SELECTION STORE (rent.SelectionStore interface)
// =============================================================================

// SaveSelection inserts or updates a plan selection.
func (s *Store) SaveSelection(ctx context.Context, sel *rent.PlanSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sel.CreatedAt.IsZero() {
		sel.CreatedAt = time.Now().UTC()
	}

	slabJSON, err := json.Marshal(toSlabJSON(sel.SelectedSlab))
	if err != nil {
		return fmt.Errorf("failed to encode slab: %w", err)
	}

	var pausedDate, paidAmount any
	if sel.RentPausedDate != nil {
		pausedDate = sel.RentPausedDate.Format(time.RFC3339)
	}
	if sel.PaidAmount != nil {
		paidAmount = sel.PaidAmount.String()
	}

	query := `
		INSERT INTO plan_selections (id, plan_name, plan_type, slab_json,
			security_deposit, status, rent_start_date, rent_paused_date,
			payment_type, paid_amount, driver_mobile, driver_username, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			plan_name = excluded.plan_name,
			plan_type = excluded.plan_type,
			slab_json = excluded.slab_json,
			security_deposit = excluded.security_deposit,
			status = excluded.status,
			rent_start_date = excluded.rent_start_date,
			rent_paused_date = excluded.rent_paused_date,
			payment_type = excluded.payment_type,
			paid_amount = excluded.paid_amount,
			driver_mobile = excluded.driver_mobile,
			driver_username = excluded.driver_username
	`

	_, err = s.db.ExecContext(ctx, query,
		sel.ID, sel.PlanName, string(sel.PlanType), string(slabJSON),
		sel.SecurityDeposit.String(), string(sel.Status),
		formatTime(sel.RentStartDate), pausedDate,
		string(sel.PaymentType), paidAmount,
		sel.DriverMobile, sel.DriverUsername,
		sel.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

// GetSelection returns a selection by id, or nil when unknown.
func (s *Store) GetSelection(ctx context.Context, id string) (*rent.PlanSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectionQuery+" WHERE id = ?", id)
	sel, err := scanSelection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sel, nil
}

// ListSelections returns all selections ordered by creation time.
func (s *Store) ListSelections(ctx context.Context) ([]rent.PlanSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectionQuery+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	defer rows.Close()

	var selections []rent.PlanSelection
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		selections = append(selections, *sel)
	}
	return selections, rows.Err()
}

// FindOpenSelection returns the open selection for a driver mobile and plan
// type, or nil. Open means neither completed nor cancelled.
func (s *Store) FindOpenSelection(ctx context.Context, driverMobile string, planType rent.PlanType) (*rent.PlanSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectionQuery+`
		WHERE driver_mobile = ? AND plan_type = ?
		  AND status NOT IN ('completed', 'cancelled')
		ORDER BY created_at DESC LIMIT 1
	`, driverMobile, string(planType))

	sel, err := scanSelection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sel, nil
}

const selectionQuery = `
	SELECT id, plan_name, plan_type, slab_json, security_deposit, status,
	       rent_start_date, rent_paused_date, payment_type, paid_amount,
	       driver_mobile, driver_username, created_at
	FROM plan_selections
`

func scanSelection(row rowScanner) (*rent.PlanSelection, error) {
	var (
		sel                     rent.PlanSelection
		planType, status        string
		slabStr, deposit        string
		startDate, pausedDate   sql.NullString
		paymentType, paidAmount sql.NullString
		mobile, username        sql.NullString
		createdAt               string
	)

	err := row.Scan(&sel.ID, &sel.PlanName, &planType, &slabStr, &deposit, &status,
		&startDate, &pausedDate, &paymentType, &paidAmount, &mobile, &username, &createdAt)
	if err != nil {
		return nil, err
	}

	var slab slabJSON
	if err := json.Unmarshal([]byte(slabStr), &slab); err != nil {
		return nil, fmt.Errorf("failed to decode slab for selection %s: %w", sel.ID, err)
	}

	sel.PlanType = rent.PlanType(planType)
	sel.SelectedSlab = slab.toSlab()
	sel.SecurityDeposit = core.MustParseDecimal(deposit)
	sel.Status = rent.SelectionStatus(status)
	sel.RentStartDate = parseTime(startDate.String)
	if pausedDate.Valid && pausedDate.String != "" {
		t := parseTime(pausedDate.String)
		sel.RentPausedDate = &t
	}
	sel.PaymentType = rent.PaymentType(paymentType.String)
	if paidAmount.Valid && paidAmount.String != "" {
		amount := core.MustParseDecimal(paidAmount.String)
		sel.PaidAmount = &amount
	}
	sel.DriverMobile = mobile.String
	sel.DriverUsername = username.String
	sel.CreatedAt = parseTime(createdAt)
	return &sel, nil
}

// =============================================================================
// STAFF STORE (payroll.StaffStore interface)
// =============================================================================

// SaveStaff inserts or updates a staff member.
func (s *Store) SaveStaff(ctx context.Context, st *payroll.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO staff (id, name, mobile, role, salary_amount, join_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			mobile = excluded.mobile,
			role = excluded.role,
			salary_amount = excluded.salary_amount,
			join_date = excluded.join_date
	`

	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Mobile, st.Role, st.SalaryAmount.String(),
		formatTime(st.JoinDate), st.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save staff: %w", err)
	}
	return nil
}

// GetStaff returns a staff member by id, or nil when unknown.
func (s *Store) GetStaff(ctx context.Context, id string) (*payroll.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, mobile, role, salary_amount, join_date, created_at
		FROM staff WHERE id = ?
	`, id)

	st, err := scanStaff(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ListStaff returns all staff ordered by id.
func (s *Store) ListStaff(ctx context.Context) ([]payroll.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, mobile, role, salary_amount, join_date, created_at
		FROM staff ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var staff []payroll.Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, *st)
	}
	return staff, rows.Err()
}

func scanStaff(row rowScanner) (*payroll.Staff, error) {
	var (
		st           payroll.Staff
		mobile, role sql.NullString
		salary       string
		joinDate     sql.NullString
		createdAt    string
	)

	err := row.Scan(&st.ID, &st.Name, &mobile, &role, &salary, &joinDate, &createdAt)
	if err != nil {
		return nil, err
	}

	st.Mobile = mobile.String
	st.Role = role.String
	st.SalaryAmount = core.MustParseDecimal(salary)
	st.JoinDate = parseTime(joinDate.String)
	st.CreatedAt = parseTime(createdAt)
	return &st, nil
}

// =============================================================================
// SHEET STORE (payroll.SheetStore interface)
// =============================================================================

// sheetSummaryJSON is the storage shape of a cached salary summary.
type sheetSummaryJSON struct {
	Present     int    `json:"present"`
	Absent      int    `json:"absent"`
	HalfDays    int    `json:"halfDays"`
	CasualLeave int    `json:"casualLeave"`
	Holiday     int    `json:"holiday"`
	Sunday      int    `json:"sunday"`
	LOP         int    `json:"lop"`
	TotalSalary string `json:"totalSalary"`
}

// SaveSheet persists the attendance map and the derived summary together in
// one upsert.
func (s *Store) SaveSheet(ctx context.Context, sheet *payroll.SalarySheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	daysJSON, err := json.Marshal(sheet.Days)
	if err != nil {
		return fmt.Errorf("failed to encode attendance map: %w", err)
	}
	summaryJSON, err := json.Marshal(sheetSummaryJSON{
		Present:     sheet.Summary.Present,
		Absent:      sheet.Summary.Absent,
		HalfDays:    sheet.Summary.HalfDays,
		CasualLeave: sheet.Summary.CasualLeave,
		Holiday:     sheet.Summary.Holiday,
		Sunday:      sheet.Summary.Sunday,
		LOP:         sheet.Summary.LOP,
		TotalSalary: sheet.Summary.TotalSalary.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	query := `
		INSERT INTO salary_sheets (staff_id, year, month, days_json, salary_amount, summary_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(staff_id, year, month) DO UPDATE SET
			days_json = excluded.days_json,
			salary_amount = excluded.salary_amount,
			summary_json = excluded.summary_json,
			updated_at = excluded.updated_at
	`

	updatedAt := sheet.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, query,
		sheet.StaffID, sheet.Year, int(sheet.Month),
		string(daysJSON), sheet.SalaryAmount.String(), string(summaryJSON),
		updatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save salary sheet: %w", err)
	}
	return nil
}

// GetSheet returns the sheet for a staff member and month, or nil when no
// sheet exists yet.
func (s *Store) GetSheet(ctx context.Context, staffID string, year int, month time.Month) (*payroll.SalarySheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT staff_id, year, month, days_json, salary_amount, summary_json, updated_at
		FROM salary_sheets
		WHERE staff_id = ? AND year = ? AND month = ?
	`, staffID, year, int(month))

	var (
		sheet      payroll.SalarySheet
		monthInt   int
		daysStr    string
		salary     string
		summaryStr string
		updatedAt  string
	)

	err := row.Scan(&sheet.StaffID, &sheet.Year, &monthInt, &daysStr, &salary, &summaryStr, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sheet.Month = time.Month(monthInt)
	sheet.SalaryAmount = core.MustParseDecimal(salary)
	sheet.UpdatedAt = parseTime(updatedAt)

	if err := json.Unmarshal([]byte(daysStr), &sheet.Days); err != nil {
		return nil, fmt.Errorf("failed to decode attendance map: %w", err)
	}

	var summary sheetSummaryJSON
	if err := json.Unmarshal([]byte(summaryStr), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	sheet.Summary = payroll.SalarySummary{
		Present:     summary.Present,
		Absent:      summary.Absent,
		HalfDays:    summary.HalfDays,
		CasualLeave: summary.CasualLeave,
		Holiday:     summary.Holiday,
		Sunday:      summary.Sunday,
		LOP:         summary.LOP,
		TotalSalary: core.MustParseDecimal(summary.TotalSalary),
	}

	return &sheet, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Compile-time interface checks.
var (
	_ fleet.DriverStore   = (*Store)(nil)
	_ fleet.VehicleStore  = (*Store)(nil)
	_ fleet.PlanStore     = (*Store)(nil)
	_ rent.SelectionStore = (*Store)(nil)
	_ payroll.StaffStore  = (*Store)(nil)
	_ payroll.SheetStore  = (*Store)(nil)
)
