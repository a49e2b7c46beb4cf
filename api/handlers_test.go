package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pswdirect/care-engine/api"
	"github.com/pswdirect/care-engine/shift"
	"github.com/pswdirect/care-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	handler := api.NewHandler(store, shift.NopNotifier{})
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createBookingViaAPI(t *testing.T, srv *httptest.Server) (bookingID, shiftID string) {
	t.Helper()
	var created struct {
		Booking api.BookingDTO `json:"booking"`
		Shift   api.ShiftDTO   `json:"shift"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/bookings", map[string]any{
		"client_name":     "Robin",
		"client_email":    "robin@example.com",
		"within_coverage": true,
		"task_ids":        []string{"personal-care"},
		"date":            "2026-09-07",
		"start_time":      "10:00",
		"end_time":        "11:00",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return created.Booking.ID, created.Shift.ID
}

// =============================================================================
// QUOTES
// =============================================================================

func TestCreateQuote(t *testing.T) {
	srv, _ := newTestServer(t)

	var out api.QuoteResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/quotes", map[string]any{
		"task_ids": []string{"personal-care"},
		"date":     "2026-09-07",
		"time":     "10:00",
	}, &out)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, out.Quote)
	assert.Equal(t, 60, out.Quote.BaseMinutes)
	assert.Equal(t, "35.00", out.Quote.BaseCharge)
	assert.Equal(t, "4.55", out.Quote.HSTAmount)
	assert.Equal(t, "39.55", out.Quote.Total)
}

func TestCreateQuote_EmptySelectionIsNullQuote(t *testing.T) {
	srv, _ := newTestServer(t)

	var out api.QuoteResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/quotes", map[string]any{
		"task_ids": []string{},
	}, &out)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, out.Quote)
}

func TestCreateQuote_ASAPFloor(t *testing.T) {
	srv, _ := newTestServer(t)

	var out api.QuoteResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/quotes", map[string]any{
		"task_ids": []string{"personal-care"},
		"is_asap":  true,
	}, &out)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, out.Quote)
	assert.Equal(t, "1.25", out.Quote.SurgeMultiplier)
	assert.Equal(t, "49.44", out.Quote.Total)
}

// =============================================================================
// BOOKINGS
// =============================================================================

func TestCreateBooking_SpawnsShift(t *testing.T) {
	srv, store := newTestServer(t)

	bookingID, shiftID := createBookingViaAPI(t, srv)
	require.NotEmpty(t, bookingID)
	require.NotEmpty(t, shiftID)

	var got api.BookingDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/bookings/"+bookingID, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, shiftID, got.ShiftID)
	require.NotNil(t, got.Quote)

	// The spawned shift is on the job board.
	shifts, err := store.ShiftsByStatus(context.Background(), shift.StatusAvailable)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, shiftID, shifts[0].ID)
}

func TestCreateBooking_OutsideCoverageIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/bookings", map[string]any{
		"client_name":     "Robin",
		"within_coverage": false,
		"task_ids":        []string{"personal-care"},
		"date":            "2026-09-07",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookingAdminActions(t *testing.T) {
	srv, _ := newTestServer(t)
	bookingID, _ := createBookingViaAPI(t, srv)

	var b api.BookingDTO
	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/bookings/%s/assign", srv.URL, bookingID),
		map[string]string{"worker_id": "worker-7"}, &b)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", b.Status)
	assert.Equal(t, "worker-7", b.WorkerID)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/bookings/%s/cancel", srv.URL, bookingID), nil, &b)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", b.Status)

	// Cancelling twice conflicts.
	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/bookings/%s/cancel", srv.URL, bookingID), nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestBookingActions_UnknownID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/bookings/missing/cancel", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// SHIFT LIFECYCLE OVER HTTP
// =============================================================================

func TestShiftLifecycle_EndToEnd(t *testing.T) {
	// GIVEN: a booking with its available shift
	// WHEN: a worker claims, checks in, and signs out over the API
	// THEN: each step succeeds and the booking status tracks along

	srv, _ := newTestServer(t)
	bookingID, shiftID := createBookingViaAPI(t, srv)

	var sh api.ShiftDTO
	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/shifts/%s/claim", srv.URL, shiftID),
		map[string]string{"worker_id": "worker-7", "worker_name": "Dana"}, &sh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "claimed", sh.Status)

	var b api.BookingDTO
	doJSON(t, http.MethodGet, srv.URL+"/api/bookings/"+bookingID, nil, &b)
	assert.Equal(t, "active", b.Status)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/shifts/%s/checkin", srv.URL, shiftID),
		map[string]string{"location": "43.65,-79.38"}, &sh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "checked-in", sh.Status)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/shifts/%s/signout", srv.URL, shiftID),
		map[string]string{"care_record": "all done"}, &sh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", sh.Status)

	doJSON(t, http.MethodGet, srv.URL+"/api/bookings/"+bookingID, nil, &b)
	assert.Equal(t, "completed", b.Status)
}

func TestClaimShift_Conflicts(t *testing.T) {
	srv, _ := newTestServer(t)
	_, shiftID := createBookingViaAPI(t, srv)

	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/shifts/%s/claim", srv.URL, shiftID),
		map[string]string{"worker_id": "worker-1"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Second claim loses with 409.
	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/shifts/%s/claim", srv.URL, shiftID),
		map[string]string{"worker_id": "worker-2"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown shift is 404, missing worker_id is 400.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/shifts/missing/claim",
		map[string]string{"worker_id": "worker-1"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/shifts/%s/claim", srv.URL, shiftID),
		map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListShifts_DefaultsToAvailable(t *testing.T) {
	srv, _ := newTestServer(t)
	_, shiftID := createBookingViaAPI(t, srv)

	var shifts []api.ShiftDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/shifts", nil, &shifts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, shifts, 1)
	assert.Equal(t, shiftID, shifts[0].ID)

	var claimed []api.ShiftDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/shifts?status=claimed", nil, &claimed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, claimed)
}

// =============================================================================
// PAYROLL
// =============================================================================

func completeShiftViaAPI(t *testing.T, srv *httptest.Server) {
	t.Helper()
	_, shiftID := createBookingViaAPI(t, srv)
	for _, step := range []struct {
		verb string
		body map[string]string
	}{
		{"claim", map[string]string{"worker_id": "worker-7", "worker_name": "Dana"}},
		{"checkin", map[string]string{"location": "here"}},
		{"signout", map[string]string{"care_record": "done"}},
	} {
		resp := doJSON(t, http.MethodPost,
			fmt.Sprintf("%s/api/shifts/%s/%s", srv.URL, shiftID, step.verb), step.body, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestSettle_ReturnsEntriesAndSummaries(t *testing.T) {
	srv, _ := newTestServer(t)
	completeShiftViaAPI(t, srv)

	var out api.SettleResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/settle", map[string]string{}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, out.Entries, 1)
	e := out.Entries[0]
	assert.Equal(t, "worker-7", e.WorkerID)
	assert.Equal(t, "standard", e.ShiftCategory)
	require.Len(t, out.ByDate, 1)
	require.Len(t, out.ByWorker, 1)
	assert.Equal(t, 1, out.ByWorker[0].ShiftCount)
}

func TestExportSettlement_CSV(t *testing.T) {
	srv, _ := newTestServer(t)
	completeShiftViaAPI(t, srv)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/payroll/export", strings.NewReader("{}"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "settlement.csv")

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body.String(),
		"Date,Worker,Shift,Category,Hours,Rate,Base Pay,Overtime Pay,Total Pay\n"))
	assert.Contains(t, body.String(), "TOTAL,")
}

// =============================================================================
// ADMIN CONFIG
// =============================================================================

func TestAdminPricingConfig_ClampOnSave(t *testing.T) {
	srv, _ := newTestServer(t)

	var cfg api.PricingConfigDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/admin/pricing-config", nil, &cfg)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 35.0, cfg.StandardRate)

	cfg.OvertimeBlockMinutes = 5
	cfg.OvertimeRatePercentage = 500

	var saved api.PricingConfigDTO
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/admin/pricing-config", cfg, &saved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 15, saved.OvertimeBlockMinutes)
	assert.Equal(t, 100, saved.OvertimeRatePercentage)
}

func TestAdminPayRates_RoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	rates := api.PayRatesDTO{Standard: 24, Hospital: 32, Doctor: 28}
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/admin/pay-rates", rates, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.PayRatesDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/admin/pay-rates", nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, rates, got)
}

func TestAdminTasks_DisableIsSoft(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/tasks/personal-care/disable", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var tasks []api.TaskDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/admin/tasks", nil, &tasks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, tasks, 8)
	for _, task := range tasks {
		if task.ID == "personal-care" {
			assert.True(t, task.Disabled)
		}
	}
}
