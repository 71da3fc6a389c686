/*
handlers_test.go - HTTP-level tests for the API

Tests for:
- Driver updates routed through the assignment coordinator
- Selection lifecycle over HTTP, including the vehicle-status cascade
- Rent summary resolution (selection -> driver -> vehicle)
- Attendance editing rules
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/fleet"
	"github.com/warp/fleet-rent-engine/payroll"
	"github.com/warp/fleet-rent-engine/rent"
	"github.com/warp/fleet-rent-engine/store/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(store)
	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return server, handler
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp
}

func strPtr(s string) *string { return &s }

func TestUpdateDriver_VehicleAssignment_LinksBothSides(t *testing.T) {
	// GIVEN: A driver and an active vehicle
	server, _ := newTestServer(t)

	doJSON(t, "POST", server.URL+"/api/vehicles", CreateVehicleRequest{
		ID: "veh-1", Registration: "KA01AB1234", Model: "Bajaj RE", Status: "active",
	}, nil)
	doJSON(t, "POST", server.URL+"/api/drivers", CreateDriverRequest{
		ID: "drv-1", Name: "Asha", Mobile: "9000000001",
	}, nil)

	// WHEN: Patching the driver with the vehicle's registration
	var driver DriverDTO
	resp := doJSON(t, "PATCH", server.URL+"/api/drivers/drv-1", UpdateDriverRequest{
		VehicleAssigned: strPtr("KA01AB1234"),
	}, &driver)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	// THEN: Both mirrored fields are set
	if driver.VehicleAssigned != "KA01AB1234" {
		t.Errorf("Expected vehicleAssigned=KA01AB1234, got %q", driver.VehicleAssigned)
	}

	var vehicle VehicleDTO
	doJSON(t, "GET", server.URL+"/api/vehicles/veh-1", nil, &vehicle)
	if vehicle.AssignedDriver != "drv-1" {
		t.Errorf("Expected assignedDriver=drv-1, got %q", vehicle.AssignedDriver)
	}
}

func TestUpdateDriver_PlanAssignment_CreatesSelection(t *testing.T) {
	// GIVEN: A driver with a mobile and a daily plan
	server, h := newTestServer(t)

	doJSON(t, "POST", server.URL+"/api/drivers", CreateDriverRequest{
		ID: "drv-1", Name: "Asha", Mobile: "9000000001",
	}, nil)
	doJSON(t, "POST", server.URL+"/api/plans", CreatePlanRequest{
		ID: "plan-1", Name: "Daily Basic", PlanType: "daily",
		RentSlabs: []RentSlabDTO{{Trips: 10, RentDay: 500}},
	}, nil)

	// WHEN: Patching the driver's current plan (by plan name)
	var driver DriverDTO
	doJSON(t, "PATCH", server.URL+"/api/drivers/drv-1", UpdateDriverRequest{
		CurrentPlan: strPtr("Daily Basic"),
	}, &driver)

	// THEN: Plan fields come from the first slab and a selection exists
	if driver.CurrentPlan != "Daily Basic" {
		t.Errorf("Expected currentPlan='Daily Basic', got %q", driver.CurrentPlan)
	}
	if driver.PlanAmount != 500 {
		t.Errorf("Expected planAmount=500, got %v", driver.PlanAmount)
	}

	sel, err := h.Store.FindOpenSelection(context.Background(), "9000000001", rent.PlanDaily)
	if err != nil {
		t.Fatalf("Failed to look up selection: %v", err)
	}
	if sel == nil {
		t.Fatal("Expected an open selection after plan assignment")
	}
}

func TestCreateSelection_Duplicate_Returns400(t *testing.T) {
	server, _ := newTestServer(t)

	req := CreateSelectionRequest{
		PlanName: "Daily Basic", PlanType: "daily",
		SecurityDeposit:  3000,
		SelectedRentSlab: RentSlabDTO{Trips: 10, RentDay: 500},
		DriverMobile:     "9000000001", DriverUsername: "Asha",
	}

	resp := doJSON(t, "POST", server.URL+"/api/selections", req, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "POST", server.URL+"/api/selections", req, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate open selection, got %d", resp.StatusCode)
	}
}

func TestPatchSelection_StatusCascadesToVehicle(t *testing.T) {
	// GIVEN: A driver assigned to an active vehicle with an open selection
	server, _ := newTestServer(t)

	doJSON(t, "POST", server.URL+"/api/vehicles", CreateVehicleRequest{
		ID: "veh-1", Registration: "KA01AB1234", Status: "active",
	}, nil)
	doJSON(t, "POST", server.URL+"/api/drivers", CreateDriverRequest{
		ID: "drv-1", Name: "Asha", Mobile: "9000000001",
	}, nil)
	doJSON(t, "PATCH", server.URL+"/api/drivers/drv-1", UpdateDriverRequest{
		VehicleAssigned: strPtr("KA01AB1234"),
	}, nil)

	var sel SelectionDTO
	doJSON(t, "POST", server.URL+"/api/selections", CreateSelectionRequest{
		PlanName: "Daily Basic", PlanType: "daily",
		SelectedRentSlab: RentSlabDTO{Trips: 10, RentDay: 500},
		DriverMobile:     "9000000001",
	}, &sel)

	// WHEN: Pausing the selection
	var updated SelectionDTO
	resp := doJSON(t, "PATCH", server.URL+"/api/selections/"+sel.ID, PatchSelectionRequest{
		Status: strPtr("inactive"),
	}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	// THEN: The pause boundary is stamped and the vehicle flipped inactive
	if updated.Status != "inactive" {
		t.Errorf("Expected status=inactive, got %q", updated.Status)
	}
	if updated.RentPausedDate == nil {
		t.Error("Expected rentPausedDate to be stamped")
	}

	var vehicle VehicleDTO
	doJSON(t, "GET", server.URL+"/api/vehicles/veh-1", nil, &vehicle)
	if vehicle.Status != "inactive" {
		t.Errorf("Expected vehicle status=inactive after cascade, got %q", vehicle.Status)
	}
}

func TestGetRentSummary_ResolvesVehicleActivity(t *testing.T) {
	// GIVEN: A selection that started 10 days ago on an active vehicle
	server, h := newTestServer(t)
	ctx := context.Background()

	if err := h.Store.SaveVehicle(ctx, &fleet.Vehicle{
		ID: "veh-1", Registration: "KA01AB1234", Status: fleet.VehicleActive,
	}); err != nil {
		t.Fatalf("Failed to save vehicle: %v", err)
	}
	if err := h.Store.SaveDriver(ctx, &fleet.Driver{
		ID: "drv-1", Name: "Asha", Mobile: "9000000001", VehicleAssigned: "KA01AB1234",
	}); err != nil {
		t.Fatalf("Failed to save driver: %v", err)
	}
	if err := h.Store.SaveSelection(ctx, &rent.PlanSelection{
		ID:            "sel-1",
		PlanType:      rent.PlanDaily,
		SelectedSlab:  rent.RentSlab{Trips: 10, RentDay: decimal.NewFromInt(500)},
		Status:        rent.SelectionActive,
		RentStartDate: time.Now().UTC().AddDate(0, 0, -10),
		DriverMobile:  "9000000001",
	}); err != nil {
		t.Fatalf("Failed to save selection: %v", err)
	}

	// WHEN: Fetching the rent summary
	var summary RentSummaryDTO
	resp := doJSON(t, "GET", server.URL+"/api/selections/sel-1/rent-summary", nil, &summary)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	// THEN: 10 billable days at 500/day
	if !summary.HasStarted {
		t.Error("Expected hasStarted=true")
	}
	if summary.TotalDays != 10 {
		t.Errorf("Expected totalDays=10, got %d", summary.TotalDays)
	}
	if summary.TotalDue != 5000 {
		t.Errorf("Expected totalDue=5000, got %v", summary.TotalDue)
	}

	// AND: Suspending the vehicle stops accrual entirely
	vehicle, _ := h.Store.GetVehicle(ctx, "veh-1")
	vehicle.Status = fleet.VehicleSuspended
	if err := h.Store.SaveVehicle(ctx, vehicle); err != nil {
		t.Fatalf("Failed to suspend vehicle: %v", err)
	}

	doJSON(t, "GET", server.URL+"/api/selections/sel-1/rent-summary", nil, &summary)
	if summary.HasStarted {
		t.Error("Expected hasStarted=false for a non-active vehicle")
	}
	if summary.TotalDue != 0 {
		t.Errorf("Expected totalDue=0 for a non-active vehicle, got %v", summary.TotalDue)
	}
}

func TestGetSalary_LazyCreatesSheet(t *testing.T) {
	server, _ := newTestServer(t)

	doJSON(t, "POST", server.URL+"/api/staff", CreateStaffRequest{
		ID: "stf-1", Name: "Ravi", SalaryAmount: 30000,
	}, nil)

	var sheet SalarySheetDTO
	url := fmt.Sprintf("%s/api/staff/stf-1/salary?year=2025&month=9", server.URL)
	resp := doJSON(t, "GET", url, nil, &sheet)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	// September 2025 Sundays: 7, 14, 21, 28.
	for _, day := range []int{7, 14, 21, 28} {
		if sheet.Attendance[day] != string(payroll.CodeSunday) {
			t.Errorf("Expected day %d prefilled as S, got %q", day, sheet.Attendance[day])
		}
	}
	if sheet.Summary.Sunday != 4 {
		t.Errorf("Expected 4 Sundays, got %d", sheet.Summary.Sunday)
	}
}

func TestPutAttendanceDay_EditAndSundayRejection(t *testing.T) {
	server, _ := newTestServer(t)

	doJSON(t, "POST", server.URL+"/api/staff", CreateStaffRequest{
		ID: "stf-1", Name: "Ravi", SalaryAmount: 30000,
	}, nil)

	// A weekday edit lands and recomputes the summary.
	var sheet SalarySheetDTO
	resp := doJSON(t, "PUT", server.URL+"/api/staff/stf-1/attendance", PutAttendanceDayRequest{
		Year: 2025, Month: 9, Day: 1, Code: "P",
	}, &sheet)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if sheet.Summary.Present != 1 {
		t.Errorf("Expected present=1, got %d", sheet.Summary.Present)
	}

	// Sunday edits are rejected outright.
	resp = doJSON(t, "PUT", server.URL+"/api/staff/stf-1/attendance", PutAttendanceDayRequest{
		Year: 2025, Month: 9, Day: 7, Code: "P",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for Sunday edit, got %d", resp.StatusCode)
	}

	// So are unknown codes.
	resp = doJSON(t, "PUT", server.URL+"/api/staff/stf-1/attendance", PutAttendanceDayRequest{
		Year: 2025, Month: 9, Day: 2, Code: "X",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid code, got %d", resp.StatusCode)
	}
}

func TestNewRecordID_UniqueUnderConcurrency(t *testing.T) {
	// GIVEN: Many handlers minting record ids at once
	// WHEN: 64 goroutines each generate 200 ids
	// THEN: Every id is distinct - a duplicate would upsert over another
	//       driver's booking

	const workers = 64
	const perWorker = 200

	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- newRecordID("sel")
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, workers*perWorker)
	for id := range ids {
		if seen[id] {
			t.Fatalf("Duplicate record id minted: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d distinct ids, got %d", workers*perWorker, len(seen))
	}
}

func TestGetSalary_MonthOutOfRange_Returns400(t *testing.T) {
	// time.Date would normalize month 13 into January of the next year;
	// the handler must reject it instead of serving the wrong sheet.
	server, _ := newTestServer(t)

	doJSON(t, "POST", server.URL+"/api/staff", CreateStaffRequest{
		ID: "stf-1", Name: "Ravi", SalaryAmount: 30000,
	}, nil)

	resp := doJSON(t, "GET", server.URL+"/api/staff/stf-1/salary?year=2025&month=13", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for month=13, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "GET", server.URL+"/api/staff/stf-1/salary?year=2025&month=0", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for month=0, got %d", resp.StatusCode)
	}
}

func TestPutAttendanceDay_MonthOutOfRange_Returns400(t *testing.T) {
	server, _ := newTestServer(t)

	doJSON(t, "POST", server.URL+"/api/staff", CreateStaffRequest{
		ID: "stf-1", Name: "Ravi", SalaryAmount: 30000,
	}, nil)

	resp := doJSON(t, "PUT", server.URL+"/api/staff/stf-1/attendance", PutAttendanceDayRequest{
		Year: 2025, Month: 13, Day: 1, Code: "P",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for month=13, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "PUT", server.URL+"/api/staff/stf-1/salary", PutSalaryRequest{
		Year: 2025, Month: 13, SalaryAmount: 30000,
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for salary month=13, got %d", resp.StatusCode)
	}
}

func TestGetDriver_Unknown_Returns404(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "GET", server.URL+"/api/drivers/nope", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestPatchSelection_InvalidStatus_Returns400(t *testing.T) {
	server, _ := newTestServer(t)

	var sel SelectionDTO
	doJSON(t, "POST", server.URL+"/api/selections", CreateSelectionRequest{
		PlanName: "Daily Basic", PlanType: "daily",
		SelectedRentSlab: RentSlabDTO{Trips: 10, RentDay: 500},
		DriverMobile:     "9000000001",
	}, &sel)

	resp := doJSON(t, "PATCH", server.URL+"/api/selections/"+sel.ID, PatchSelectionRequest{
		Status: strPtr("paused"),
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status value, got %d", resp.StatusCode)
	}
}
