/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

FIELD-NAME CONTRACTS:
  The frontend depends on these exact names; do not rename:
  - vehicleAssigned:  driver -> vehicle human identifier (registration)
  - assignedDriver:   vehicle -> driver internal id
  - rentStartDate / rentPausedDate: accrual lifecycle timestamps
  - paymentType: "security" | "rent"
  - attendance codes: exactly P, A, H, CL, HD, S, LOP

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  Partial-update requests use pointer fields; nil means "leave unchanged".

VALIDATION:
  Validation is done in handlers and services, not in DTOs. DTOs are pure
  data carriers. Monetary fields are float64 at this boundary only; domain
  logic uses decimal.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Route definitions
*/
package api

import (
	"time"

	"github.com/warp/fleet-rent-engine/fleet"
	"github.com/warp/fleet-rent-engine/payroll"
	"github.com/warp/fleet-rent-engine/rent"
)

// =============================================================================
// DRIVER TYPES
// =============================================================================

// DriverDTO represents a driver in API responses.
type DriverDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Mobile          string  `json:"mobile"`
	LicenseNumber   string  `json:"licenseNumber,omitempty"`
	KYCStatus       string  `json:"kycStatus,omitempty"`
	JoinDate        string  `json:"joinDate,omitempty"`
	CurrentPlan     string  `json:"currentPlan"`
	PlanAmount      float64 `json:"planAmount"`
	PlanType        string  `json:"planType"`
	VehicleAssigned string  `json:"vehicleAssigned"`
	CreatedAt       string  `json:"createdAt,omitempty"`
}

// CreateDriverRequest is the request to register a driver.
type CreateDriverRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Mobile        string `json:"mobile"`
	LicenseNumber string `json:"licenseNumber"`
	KYCStatus     string `json:"kycStatus"`
	JoinDate      string `json:"joinDate"`
}

// UpdateDriverRequest is a partial driver update. vehicleAssigned and
// currentPlan route through the assignment coordinator; an empty string
// clears the link.
type UpdateDriverRequest struct {
	Name            *string `json:"name,omitempty"`
	Mobile          *string `json:"mobile,omitempty"`
	LicenseNumber   *string `json:"licenseNumber,omitempty"`
	KYCStatus       *string `json:"kycStatus,omitempty"`
	VehicleAssigned *string `json:"vehicleAssigned,omitempty"`
	CurrentPlan     *string `json:"currentPlan,omitempty"`
}

// =============================================================================
// VEHICLE TYPES
// =============================================================================

// VehicleDTO represents a vehicle in API responses.
type VehicleDTO struct {
	ID             string `json:"id"`
	Registration   string `json:"registration"`
	Model          string `json:"model,omitempty"`
	Status         string `json:"status"`
	AssignedDriver string `json:"assignedDriver"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// CreateVehicleRequest is the request to register a vehicle.
type CreateVehicleRequest struct {
	ID           string `json:"id"`
	Registration string `json:"registration"`
	Model        string `json:"model"`
	Status       string `json:"status"`
}

// UpdateVehicleRequest is a partial vehicle update.
type UpdateVehicleRequest struct {
	Model          *string `json:"model,omitempty"`
	Status         *string `json:"status,omitempty"`
	AssignedDriver *string `json:"assignedDriver,omitempty"`
}

// =============================================================================
// PLAN AND SELECTION TYPES
// =============================================================================

// RentSlabDTO is one tier of a plan's schedule.
type RentSlabDTO struct {
	Trips           int     `json:"trips"`
	RentDay         float64 `json:"rentDay"`
	WeeklyRent      float64 `json:"weeklyRent"`
	AccidentalCover float64 `json:"accidentalCover"`
}

// RentPlanDTO represents a rent plan and its slab catalog.
type RentPlanDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	PlanType  string        `json:"planType"`
	RentSlabs []RentSlabDTO `json:"rentSlabs"`
	CreatedAt string        `json:"createdAt,omitempty"`
}

// CreatePlanRequest is the request to create a rent plan.
type CreatePlanRequest struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	PlanType  string        `json:"planType"`
	RentSlabs []RentSlabDTO `json:"rentSlabs"`
}

// SelectionDTO represents a plan selection in API responses. totalPayment
// is the one-time amount owed at booking, distinct from the running due in
// RentSummaryDTO.
type SelectionDTO struct {
	ID               string      `json:"id"`
	PlanName         string      `json:"planName"`
	PlanType         string      `json:"planType"`
	SelectedRentSlab RentSlabDTO `json:"selectedRentSlab"`
	SecurityDeposit  float64     `json:"securityDeposit"`
	Status           string      `json:"status"`
	RentStartDate    string      `json:"rentStartDate,omitempty"`
	RentPausedDate   *string     `json:"rentPausedDate,omitempty"`
	PaymentType      string      `json:"paymentType,omitempty"`
	PaidAmount       *float64    `json:"paidAmount,omitempty"`
	DriverMobile     string      `json:"driverMobile"`
	DriverUsername   string      `json:"driverUsername"`
	TotalPayment     float64     `json:"totalPayment"`
	CreatedAt        string      `json:"createdAt,omitempty"`
}

// CreateSelectionRequest is the public request to book a plan.
type CreateSelectionRequest struct {
	PlanName         string        `json:"planName"`
	PlanType         string        `json:"planType"`
	SecurityDeposit  float64       `json:"securityDeposit"`
	RentSlabs        []RentSlabDTO `json:"rentSlabs"`
	SelectedRentSlab RentSlabDTO   `json:"selectedRentSlab"`
	DriverMobile     string        `json:"driverMobile"`
	DriverUsername   string        `json:"driverUsername"`
}

// PatchSelectionRequest updates a selection's status or records a payment.
type PatchSelectionRequest struct {
	Status      *string  `json:"status,omitempty"`
	PaymentType *string  `json:"paymentType,omitempty"`
	PaidAmount  *float64 `json:"paidAmount,omitempty"`
}

// RentSummaryDTO is the live accrual figure for a selection.
type RentSummaryDTO struct {
	RentPerDay float64 `json:"rentPerDay"`
	TotalDays  int     `json:"totalDays"`
	TotalDue   float64 `json:"totalDue"`
	HasStarted bool    `json:"hasStarted"`
}

// =============================================================================
// STAFF AND SALARY TYPES
// =============================================================================

// StaffDTO represents a staff member in API responses.
type StaffDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Mobile       string  `json:"mobile,omitempty"`
	Role         string  `json:"role,omitempty"`
	SalaryAmount float64 `json:"salaryAmount"`
	JoinDate     string  `json:"joinDate,omitempty"`
}

// CreateStaffRequest is the request to register a staff member.
type CreateStaffRequest struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Mobile       string  `json:"mobile"`
	Role         string  `json:"role"`
	SalaryAmount float64 `json:"salaryAmount"`
	JoinDate     string  `json:"joinDate"`
}

// SalarySummaryDTO is the categorized attendance tally plus prorated total.
type SalarySummaryDTO struct {
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	HalfDays    int     `json:"halfDays"`
	CasualLeave int     `json:"casualLeave"`
	Holiday     int     `json:"holiday"`
	Sunday      int     `json:"sunday"`
	LOP         int     `json:"lop"`
	TotalSalary float64 `json:"totalSalary"`
}

// SalarySheetDTO is one staff member's attendance month plus its summary.
type SalarySheetDTO struct {
	StaffID      string           `json:"staffId"`
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	Attendance   map[int]string   `json:"attendance"`
	SalaryAmount float64          `json:"salaryAmount"`
	Summary      SalarySummaryDTO `json:"summary"`
}

// PutSalaryRequest persists a full attendance map with the salary amount.
type PutSalaryRequest struct {
	Year         int            `json:"year"`
	Month        int            `json:"month"`
	Attendance   map[int]string `json:"attendance"`
	SalaryAmount float64        `json:"salaryAmount"`
}

// PutAttendanceDayRequest edits a single attendance cell.
type PutAttendanceDayRequest struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Code  string `json:"code"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toDriverDTO(d *fleet.Driver) DriverDTO {
	planAmount, _ := d.PlanAmount.Float64()
	return DriverDTO{
		ID:              d.ID,
		Name:            d.Name,
		Mobile:          d.Mobile,
		LicenseNumber:   d.LicenseNumber,
		KYCStatus:       d.KYCStatus,
		JoinDate:        formatDate(d.JoinDate),
		CurrentPlan:     d.CurrentPlan,
		PlanAmount:      planAmount,
		PlanType:        string(d.PlanType),
		VehicleAssigned: d.VehicleAssigned,
		CreatedAt:       formatTimestamp(d.CreatedAt),
	}
}

func toVehicleDTO(v *fleet.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:             v.ID,
		Registration:   v.Registration,
		Model:          v.Model,
		Status:         string(v.Status),
		AssignedDriver: v.AssignedDriver,
		CreatedAt:      formatTimestamp(v.CreatedAt),
	}
}

func toSlabDTO(slab rent.RentSlab) RentSlabDTO {
	rentDay, _ := slab.RentDay.Float64()
	weeklyRent, _ := slab.WeeklyRent.Float64()
	cover, _ := slab.AccidentalCover.Float64()
	return RentSlabDTO{
		Trips:           slab.Trips,
		RentDay:         rentDay,
		WeeklyRent:      weeklyRent,
		AccidentalCover: cover,
	}
}

func toPlanDTO(p *fleet.RentPlan) RentPlanDTO {
	slabs := make([]RentSlabDTO, len(p.Slabs))
	for i, slab := range p.Slabs {
		slabs[i] = toSlabDTO(slab)
	}
	return RentPlanDTO{
		ID:        p.ID,
		Name:      p.Name,
		PlanType:  string(p.PlanType),
		RentSlabs: slabs,
		CreatedAt: formatTimestamp(p.CreatedAt),
	}
}

func toSelectionDTO(sel *rent.PlanSelection) SelectionDTO {
	deposit, _ := sel.SecurityDeposit.Float64()
	totalPayment, _ := rent.ComputeTotalPayment(sel).Float64()

	dto := SelectionDTO{
		ID:               sel.ID,
		PlanName:         sel.PlanName,
		PlanType:         string(sel.PlanType),
		SelectedRentSlab: toSlabDTO(sel.SelectedSlab),
		SecurityDeposit:  deposit,
		Status:           string(sel.Status),
		RentStartDate:    formatTimestamp(sel.RentStartDate),
		PaymentType:      string(sel.PaymentType),
		DriverMobile:     sel.DriverMobile,
		DriverUsername:   sel.DriverUsername,
		TotalPayment:     totalPayment,
		CreatedAt:        formatTimestamp(sel.CreatedAt),
	}
	if sel.RentPausedDate != nil {
		paused := sel.RentPausedDate.Format(time.RFC3339)
		dto.RentPausedDate = &paused
	}
	if sel.PaidAmount != nil {
		paid, _ := sel.PaidAmount.Float64()
		dto.PaidAmount = &paid
	}
	return dto
}

func toRentSummaryDTO(summary rent.RentSummary) RentSummaryDTO {
	rentPerDay, _ := summary.RentPerDay.Float64()
	totalDue, _ := summary.TotalDue.Float64()
	return RentSummaryDTO{
		RentPerDay: rentPerDay,
		TotalDays:  summary.TotalDays,
		TotalDue:   totalDue,
		HasStarted: summary.HasStarted,
	}
}

func toStaffDTO(st *payroll.Staff) StaffDTO {
	salary, _ := st.SalaryAmount.Float64()
	return StaffDTO{
		ID:           st.ID,
		Name:         st.Name,
		Mobile:       st.Mobile,
		Role:         st.Role,
		SalaryAmount: salary,
		JoinDate:     formatDate(st.JoinDate),
	}
}

func toSheetDTO(sheet *payroll.SalarySheet) SalarySheetDTO {
	attendance := make(map[int]string, len(sheet.Days))
	for day, code := range sheet.Days {
		attendance[day] = string(code)
	}
	salary, _ := sheet.SalaryAmount.Float64()
	totalSalary, _ := sheet.Summary.TotalSalary.Float64()
	return SalarySheetDTO{
		StaffID:      sheet.StaffID,
		Year:         sheet.Year,
		Month:        int(sheet.Month),
		Attendance:   attendance,
		SalaryAmount: salary,
		Summary: SalarySummaryDTO{
			Present:     sheet.Summary.Present,
			Absent:      sheet.Summary.Absent,
			HalfDays:    sheet.Summary.HalfDays,
			CasualLeave: sheet.Summary.CasualLeave,
			Holiday:     sheet.Summary.Holiday,
			Sunday:      sheet.Summary.Sunday,
			LOP:         sheet.Summary.LOP,
			TotalSalary: totalSalary,
		},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
