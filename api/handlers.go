/*
handlers.go - HTTP API handlers for the fleet rent engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the coordinator, selection service and
  salary service.

ENDPOINTS:
  Drivers:
    GET    /api/drivers                 List drivers
    POST   /api/drivers                 Register driver
    GET    /api/drivers/{id}            Get driver
    PATCH  /api/drivers/{id}            Partial update; vehicleAssigned and
                                        currentPlan route via coordinator

  Vehicles:
    GET    /api/vehicles                List vehicles
    POST   /api/vehicles                Register vehicle
    GET    /api/vehicles/{id}           Get vehicle
    PATCH  /api/vehicles/{id}           Partial update

  Plans:
    GET    /api/plans                   List rent plans
    POST   /api/plans                   Create rent plan
    GET    /api/plans/{id}              Get rent plan

  Selections:
    GET    /api/selections              List selections
    POST   /api/selections              Book a plan (400 on duplicate)
    GET    /api/selections/{id}         Get selection
    PATCH  /api/selections/{id}         Set status or record payment
    GET    /api/selections/{id}/rent-summary   Live accrual figure

  Staff & Salary:
    GET    /api/staff                   List staff
    POST   /api/staff                   Register staff
    GET    /api/staff/{id}/salary       Sheet for ?year=&month= (lazy create)
    PUT    /api/staff/{id}/salary       Persist full map + summary
    PUT    /api/staff/{id}/attendance   Edit one cell, recompute summary

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, duplicates, bad codes, Sunday edits
  - 404: Record not found
  - 500: Internal errors; partial writes include which side succeeded

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/core"
	"github.com/warp/fleet-rent-engine/fleet"
	"github.com/warp/fleet-rent-engine/payroll"
	"github.com/warp/fleet-rent-engine/rent"
	"github.com/warp/fleet-rent-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Coordinator *fleet.Coordinator
	Selections  *rent.SelectionService
	Salaries    *payroll.SalaryService
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	selections := rent.NewSelectionService(store)
	return &Handler{
		Store:       store,
		Coordinator: fleet.NewCoordinator(store, store, store, selections),
		Selections:  selections,
		Salaries:    payroll.NewSalaryService(store, store),
	}
}

// =============================================================================
// DRIVER HANDLERS
// =============================================================================

// ListDrivers returns all drivers.
func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Store.ListDrivers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list drivers", err)
		return
	}

	dtos := make([]DriverDTO, len(drivers))
	for i := range drivers {
		dtos[i] = toDriverDTO(&drivers[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDriver returns a single driver.
func (h *Handler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	driver, err := h.Store.GetDriver(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get driver", err)
		return
	}
	if driver == nil {
		writeError(w, http.StatusNotFound, "Driver not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toDriverDTO(driver))
}

// CreateDriver registers a new driver.
func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req CreateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	driver := &fleet.Driver{
		ID:            req.ID,
		Name:          req.Name,
		Mobile:        req.Mobile,
		LicenseNumber: req.LicenseNumber,
		KYCStatus:     req.KYCStatus,
		JoinDate:      parseDate(req.JoinDate),
	}
	if err := h.Store.SaveDriver(r.Context(), driver); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create driver", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDriverDTO(driver))
}

// UpdateDriver applies a partial driver update. Plain identity fields are
// written directly; vehicleAssigned and currentPlan go through the
// assignment coordinator so the mirrored records stay in agreement.
func (h *Handler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	var req UpdateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	driver, err := h.Store.GetDriver(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get driver", err)
		return
	}
	if driver == nil {
		writeError(w, http.StatusNotFound, "Driver not found", nil)
		return
	}

	changed := false
	if req.Name != nil {
		driver.Name = *req.Name
		changed = true
	}
	if req.Mobile != nil {
		driver.Mobile = *req.Mobile
		changed = true
	}
	if req.LicenseNumber != nil {
		driver.LicenseNumber = *req.LicenseNumber
		changed = true
	}
	if req.KYCStatus != nil {
		driver.KYCStatus = *req.KYCStatus
		changed = true
	}
	if changed {
		if err := h.Store.SaveDriver(ctx, driver); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update driver", err)
			return
		}
	}

	if req.CurrentPlan != nil {
		planID, err := h.resolvePlanID(r, *req.CurrentPlan)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if _, err := h.Coordinator.AssignPlan(ctx, id, planID); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	if req.VehicleAssigned != nil {
		vehicleID, err := h.resolveVehicleID(r, *req.VehicleAssigned)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if _, err := h.Coordinator.AssignVehicle(ctx, id, vehicleID); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	updated, err := h.Store.GetDriver(ctx, id)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload driver", err)
		return
	}
	writeJSON(w, http.StatusOK, toDriverDTO(updated))
}

// resolvePlanID maps a request's currentPlan value to a plan id pointer.
// Empty string clears the plan. Accepts a plan id or a plan name; the
// alternate-name fallback lives here at the boundary, not in the core.
func (h *Handler) resolvePlanID(r *http.Request, value string) (*string, error) {
	if value == "" {
		return nil, nil
	}
	ctx := r.Context()

	plan, err := h.Store.GetPlan(ctx, value)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plans, err := h.Store.ListPlans(ctx)
		if err != nil {
			return nil, err
		}
		for i := range plans {
			if plans[i].Name == value {
				plan = &plans[i]
				break
			}
		}
	}
	if plan == nil {
		return nil, &core.NotFoundError{Kind: "plan", ID: value}
	}
	return &plan.ID, nil
}

// resolveVehicleID maps a request's vehicleAssigned value to a vehicle id
// pointer. Empty string clears the assignment. Accepts a registration (the
// human identifier the field carries) or an internal id.
func (h *Handler) resolveVehicleID(r *http.Request, value string) (*string, error) {
	if value == "" {
		return nil, nil
	}
	ctx := r.Context()

	vehicle, err := h.Store.GetVehicleByRegistration(ctx, value)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		vehicle, err = h.Store.GetVehicle(ctx, value)
		if err != nil {
			return nil, err
		}
	}
	if vehicle == nil {
		return nil, &core.NotFoundError{Kind: "vehicle", ID: value}
	}
	return &vehicle.ID, nil
}

// =============================================================================
// VEHICLE HANDLERS
// =============================================================================

// ListVehicles returns all vehicles.
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Store.ListVehicles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vehicles", err)
		return
	}

	dtos := make([]VehicleDTO, len(vehicles))
	for i := range vehicles {
		dtos[i] = toVehicleDTO(&vehicles[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetVehicle returns a single vehicle.
func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	vehicle, err := h.Store.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get vehicle", err)
		return
	}
	if vehicle == nil {
		writeError(w, http.StatusNotFound, "Vehicle not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleDTO(vehicle))
}

// CreateVehicle registers a new vehicle.
func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Registration == "" {
		writeError(w, http.StatusBadRequest, "id and registration are required", nil)
		return
	}

	status := fleet.VehicleStatus(req.Status)
	if req.Status == "" {
		status = fleet.VehiclePending
	}
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid vehicle status", nil)
		return
	}

	vehicle := &fleet.Vehicle{
		ID:           req.ID,
		Registration: req.Registration,
		Model:        req.Model,
		Status:       status,
	}
	if err := h.Store.SaveVehicle(r.Context(), vehicle); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create vehicle", err)
		return
	}
	writeJSON(w, http.StatusCreated, toVehicleDTO(vehicle))
}

// UpdateVehicle applies a partial vehicle update. These are direct record
// mutations; the driver's mirrored field is reconciled by the coordinator
// on the next assignment action, not here.
func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	var req UpdateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	vehicle, err := h.Store.GetVehicle(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get vehicle", err)
		return
	}
	if vehicle == nil {
		writeError(w, http.StatusNotFound, "Vehicle not found", nil)
		return
	}

	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Status != nil {
		status := fleet.VehicleStatus(*req.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid vehicle status", nil)
			return
		}
		vehicle.Status = status
	}
	if req.AssignedDriver != nil {
		vehicle.AssignedDriver = *req.AssignedDriver
	}

	if err := h.Store.SaveVehicle(ctx, vehicle); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update vehicle", err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleDTO(vehicle))
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// ListPlans returns all rent plans.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Store.ListPlans(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list plans", err)
		return
	}

	dtos := make([]RentPlanDTO, len(plans))
	for i := range plans {
		dtos[i] = toPlanDTO(&plans[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPlan returns a single rent plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	plan, err := h.Store.GetPlan(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get plan", err)
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "Plan not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// CreatePlan creates a rent plan with its slab catalog.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	planType := rent.PlanType(req.PlanType)
	if !planType.Valid() {
		writeError(w, http.StatusBadRequest, "planType must be 'daily' or 'weekly'", nil)
		return
	}

	slabs := make([]rent.RentSlab, len(req.RentSlabs))
	for i, slab := range req.RentSlabs {
		slabs[i] = fromSlabDTO(slab)
	}

	plan := &fleet.RentPlan{
		ID:       req.ID,
		Name:     req.Name,
		PlanType: planType,
		Slabs:    slabs,
	}
	if err := h.Store.SavePlan(r.Context(), plan); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanDTO(plan))
}

func fromSlabDTO(dto RentSlabDTO) rent.RentSlab {
	return rent.RentSlab{
		Trips:           dto.Trips,
		RentDay:         decimal.NewFromFloat(dto.RentDay),
		WeeklyRent:      decimal.NewFromFloat(dto.WeeklyRent),
		AccidentalCover: decimal.NewFromFloat(dto.AccidentalCover),
	}
}

// =============================================================================
// SELECTION HANDLERS
// =============================================================================

// ListSelections returns all plan selections.
func (h *Handler) ListSelections(w http.ResponseWriter, r *http.Request) {
	selections, err := h.Store.ListSelections(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list selections", err)
		return
	}

	dtos := make([]SelectionDTO, len(selections))
	for i := range selections {
		dtos[i] = toSelectionDTO(&selections[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSelection returns a single plan selection.
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := h.Selections.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSelectionDTO(sel))
}

// CreateSelection books a plan for a driver. Responds 400 when an open
// selection already exists for the same driver and plan type.
func (h *Handler) CreateSelection(w http.ResponseWriter, r *http.Request) {
	var req CreateSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	planType := rent.PlanType(req.PlanType)
	if !planType.Valid() {
		writeError(w, http.StatusBadRequest, "planType must be 'daily' or 'weekly'", nil)
		return
	}

	sel := &rent.PlanSelection{
		ID:              newRecordID("sel"),
		PlanName:        req.PlanName,
		PlanType:        planType,
		SelectedSlab:    fromSlabDTO(req.SelectedRentSlab),
		SecurityDeposit: decimal.NewFromFloat(req.SecurityDeposit),
		DriverMobile:    req.DriverMobile,
		DriverUsername:  req.DriverUsername,
	}

	if err := h.Selections.Create(r.Context(), sel); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSelectionDTO(sel))
}

// PatchSelection sets a selection's lifecycle status or records a payment.
// A status change to active/inactive also cascades to the driver's vehicle
// status through the coordinator.
func (h *Handler) PatchSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	var req PatchSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		sel *rent.PlanSelection
		err error
	)

	switch {
	case req.Status != nil:
		sel, err = h.Selections.SetStatus(ctx, id, rent.SelectionStatus(*req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if cascadeErr := h.Coordinator.CascadeSelectionStatus(ctx, sel.DriverMobile, sel.Status); cascadeErr != nil {
			writeDomainError(w, &core.PartialWriteError{
				Succeeded: "selection", Failed: "vehicle", Cause: cascadeErr,
			})
			return
		}
	case req.PaymentType != nil && req.PaidAmount != nil:
		sel, err = h.Selections.RecordPayment(ctx, id,
			rent.PaymentType(*req.PaymentType), decimal.NewFromFloat(*req.PaidAmount))
		if err != nil {
			writeDomainError(w, err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "Provide either status or paymentType+paidAmount", nil)
		return
	}

	writeJSON(w, http.StatusOK, toSelectionDTO(sel))
}

// GetRentSummary returns the live accrual figure for a selection. The
// vehicle's activity is resolved here: selection -> driver (by mobile) ->
// vehicle (by registration). Rent accrues only while the vehicle is active.
func (h *Handler) GetRentSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sel, err := h.Selections.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	vehicleActive := false
	if sel.DriverMobile != "" {
		driver, err := h.Store.GetDriverByMobile(ctx, sel.DriverMobile)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to resolve driver", err)
			return
		}
		if driver != nil && driver.VehicleAssigned != "" {
			vehicle, err := h.Store.GetVehicleByRegistration(ctx, driver.VehicleAssigned)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to resolve vehicle", err)
				return
			}
			vehicleActive = vehicle != nil && vehicle.Status == fleet.VehicleActive
		}
	}

	summary := rent.ComputeRentSummary(sel, vehicleActive, time.Now().UTC())
	writeJSON(w, http.StatusOK, toRentSummaryDTO(summary))
}

// =============================================================================
// STAFF & SALARY HANDLERS
// =============================================================================

// ListStaff returns all staff members.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Store.ListStaff(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list staff", err)
		return
	}

	dtos := make([]StaffDTO, len(staff))
	for i := range staff {
		dtos[i] = toStaffDTO(&staff[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStaff registers a staff member.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	staff := &payroll.Staff{
		ID:           req.ID,
		Name:         req.Name,
		Mobile:       req.Mobile,
		Role:         req.Role,
		SalaryAmount: decimal.NewFromFloat(req.SalaryAmount),
		JoinDate:     parseDate(req.JoinDate),
	}
	if err := h.Store.SaveStaff(r.Context(), staff); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create staff", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStaffDTO(staff))
}

// GetSalary returns the attendance sheet and summary for a month, creating
// a Sunday-prefilled sheet on first open.
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	year, month, err := parseYearMonth(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year/month", err)
		return
	}

	sheet, err := h.Salaries.GetSheet(r.Context(), id, year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSheetDTO(sheet))
}

// PutSalary persists a full attendance map together with the recomputed
// summary.
func (h *Handler) PutSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PutSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12", nil)
		return
	}

	days := make(payroll.AttendanceMap, len(req.Attendance))
	for day, code := range req.Attendance {
		days[day] = payroll.Code(code)
	}

	sheet, err := h.Salaries.SaveSalary(r.Context(), id, req.Year, time.Month(req.Month),
		days, decimal.NewFromFloat(req.SalaryAmount))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSheetDTO(sheet))
}

// PutAttendanceDay edits a single attendance cell and returns the updated
// map with its recomputed summary.
func (h *Handler) PutAttendanceDay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PutAttendanceDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12", nil)
		return
	}

	sheet, err := h.Salaries.SetDayCode(r.Context(), id, req.Year, time.Month(req.Month),
		req.Day, payroll.Code(req.Code))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSheetDTO(sheet))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses. Partial writes
// are never reported as success: the response names which side landed so
// the caller can reconcile.
func writeDomainError(w http.ResponseWriter, err error) {
	var pw *core.PartialWriteError
	if errors.As(err, &pw) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "partial_write",
			Details: map[string]string{
				"succeeded": pw.Succeeded,
				"failed":    pw.Failed,
			},
		})
		return
	}

	switch {
	case core.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case core.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseYearMonth(yearStr, monthStr string) (int, time.Month, error) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			return 0, 0, err
		}
		year = y
	}
	if monthStr != "" {
		m, err := strconv.Atoi(monthStr)
		if err != nil {
			return 0, 0, err
		}
		month = time.Month(m)
	}
	// time.Date would silently normalize month 13 into January of the next
	// year; reject instead of building a sheet for the wrong month.
	if month < time.January || month > time.December {
		return 0, 0, fmt.Errorf("month %d out of range", month)
	}
	return year, month, nil
}

// recordSeq is seeded from the wall clock so ids stay unique across process
// restarts, and advanced atomically so concurrent handlers never mint the
// same id. A duplicate id would silently upsert over another booking.
var recordSeq atomic.Int64

func init() {
	recordSeq.Store(time.Now().UnixNano())
}

func newRecordID(prefix string) string {
	return prefix + "-" + strconv.FormatInt(recordSeq.Add(1), 36)
}
