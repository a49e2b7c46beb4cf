/*
handlers.go - HTTP handlers for the care engine

PURPOSE:
  Exposes the pricing, booking, shift-lifecycle, and payroll engines over
  REST. Handles HTTP plumbing and JSON; delegates every decision to the
  domain packages.

ENDPOINTS:
  Quotes:
    POST   /api/quotes                      Price a selection (may be null)

  Bookings:
    POST   /api/bookings                    Create booking (+its one shift)
    GET    /api/bookings                    List bookings
    GET    /api/bookings/{id}               Get booking
    POST   /api/bookings/{id}/assign        Admin: assign worker
    POST   /api/bookings/{id}/cancel        Admin: cancel
    POST   /api/bookings/{id}/archive       Admin: archive
    POST   /api/bookings/{id}/restore       Admin: restore
    POST   /api/bookings/{id}/pay           Admin: mark paid
    POST   /api/bookings/{id}/refund        Admin: refund

  Shifts (worker job board):
    GET    /api/shifts?status=available     List by status
    POST   /api/shifts/{id}/claim
    POST   /api/shifts/{id}/checkin
    POST   /api/shifts/{id}/signout

  Payroll:
    POST   /api/payroll/settle              Derive entries + summaries
    POST   /api/payroll/export              Flat CSV report

  Admin config:
    GET/PUT /api/admin/pricing-config
    GET/PUT /api/admin/pay-rates
    GET/PUT /api/admin/surge-rules
    GET/POST /api/admin/tasks
    POST   /api/admin/tasks/{id}/disable

ERROR HANDLING:
  - 400: invalid input
  - 404: unknown booking/shift
  - 409: rejected transitions (AlreadyClaimed and friends) and illegal
         admin actions - recoverable locally, reload and pick again
  - 500: store failures (retryable by the caller, never retried here)

SECURITY NOTE:
  Identity and role come from the excluded auth layer; handlers trust the
  ids in the request body.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pswdirect/care-engine/booking"
	"github.com/pswdirect/care-engine/payroll"
	"github.com/pswdirect/care-engine/pricing"
	"github.com/pswdirect/care-engine/shift"
)

// =============================================================================
// STORE CONTRACTS
// =============================================================================

// ConfigStore supplies and persists the admin-editable tables. Saves clamp
// bounded fields rather than rejecting them.
type ConfigStore interface {
	PricingConfig(ctx context.Context) (pricing.Config, error)
	SavePricingConfig(ctx context.Context, cfg pricing.Config) (pricing.Config, error)
	SurgeRules(ctx context.Context) ([]pricing.SurgeRule, error)
	SaveSurgeRules(ctx context.Context, rules []pricing.SurgeRule) error
	PayRates(ctx context.Context) (payroll.PayRates, error)
	SavePayRates(ctx context.Context, rates payroll.PayRates) error
	Tasks(ctx context.Context) ([]pricing.TaskDefinition, error)
	SaveTask(ctx context.Context, t pricing.TaskDefinition) error
	DisableTask(ctx context.Context, id string) error
}

// Store is everything the handlers need from persistence.
type Store interface {
	shift.Store
	booking.Store
	ConfigStore
}

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     Store
	Bookings  *booking.Service
	Lifecycle *shift.Lifecycle
}

// NewHandler wires the domain services over one store.
func NewHandler(store Store, notifier shift.Notifier) *Handler {
	return &Handler{
		Store:     store,
		Bookings:  booking.NewService(store, store),
		Lifecycle: shift.NewLifecycle(store, notifier),
	}
}

// snapshot fetches the current pricing inputs; every engine call receives
// this explicitly.
func (h *Handler) snapshot(r *http.Request) (pricing.Snapshot, error) {
	ctx := r.Context()
	cfg, err := h.Store.PricingConfig(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	rules, err := h.Store.SurgeRules(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	tasks, err := h.Store.Tasks(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	return pricing.Snapshot{Config: cfg, Rules: rules, Catalog: pricing.NewCatalog(tasks)}, nil
}

// =============================================================================
// QUOTES
// =============================================================================

func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	snap, err := h.snapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load pricing config", err)
		return
	}

	date := parseDate(req.Date)
	multiplier := pricing.EvaluateSurge(snap.Rules, snap.Config, date, req.Time, req.IsASAP)

	var explicit *decimal.Decimal
	if req.ExplicitDurationHours != nil {
		d := decimal.NewFromFloat(*req.ExplicitDurationHours)
		explicit = &d
	}

	quote := pricing.Price(snap.Catalog, snap.Config, req.TaskIDs, multiplier, explicit)
	writeJSON(w, http.StatusOK, QuoteResponse{Quote: quoteDTO(quote, multiplier.String())})
}

// =============================================================================
// BOOKINGS
// =============================================================================

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	snap, err := h.snapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load pricing config", err)
		return
	}

	date := parseDate(req.Date)
	var explicit *decimal.Decimal
	if req.ExplicitDurationHours != nil {
		d := decimal.NewFromFloat(*req.ExplicitDurationHours)
		explicit = &d
	}

	b, sh, err := h.Bookings.Create(r.Context(), booking.CreateRequest{
		ClientName:            req.ClientName,
		ClientEmail:           req.ClientEmail,
		PatientName:           req.PatientName,
		Address:               req.Address,
		WithinCoverage:        req.WithinCoverage,
		TaskIDs:               req.TaskIDs,
		ScheduledDate:         date,
		ScheduledStart:        parseDateTime(req.Date, req.StartTime),
		ScheduledEnd:          parseDateTime(req.Date, req.EndTime),
		IsASAP:                req.IsASAP,
		ExplicitDurationHours: explicit,
	}, snap)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNoTasks), errors.Is(err, booking.ErrOutsideCoverage):
			writeError(w, http.StatusBadRequest, "booking rejected", err)
		default:
			writeError(w, http.StatusInternalServerError, "failed to create booking", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"booking": bookingDTO(b),
		"shift":   shiftDTO(sh),
	})
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Store.ListBookings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings", err)
		return
	}
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = bookingDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "booking not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load booking", err)
		return
	}
	writeJSON(w, http.StatusOK, bookingDTO(b))
}

// bookingAction wraps the admin verbs that share the same shape.
func (h *Handler) bookingAction(action func(r *http.Request, id string) (booking.Booking, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := action(r, chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrBookingNotFound):
				writeError(w, http.StatusNotFound, "booking not found", err)
			case errors.Is(err, booking.ErrIllegalBookingState):
				writeError(w, http.StatusConflict, "action not allowed in current state", err)
			default:
				writeError(w, http.StatusInternalServerError, "booking update failed", err)
			}
			return
		}
		writeJSON(w, http.StatusOK, bookingDTO(b))
	}
}

func (h *Handler) AssignWorker(w http.ResponseWriter, r *http.Request) {
	var req AssignWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WorkerID == "" {
		writeError(w, http.StatusBadRequest, "worker_id is required", err)
		return
	}
	h.bookingAction(func(r *http.Request, id string) (booking.Booking, error) {
		return h.Bookings.AssignWorker(r.Context(), id, req.WorkerID)
	})(w, r)
}

// =============================================================================
// SHIFTS
// =============================================================================

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	status := shift.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = shift.StatusAvailable
	}
	shifts, err := h.Store.ShiftsByStatus(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shifts", err)
		return
	}
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = shiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ClaimShift(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WorkerID == "" {
		writeError(w, http.StatusBadRequest, "worker_id is required", err)
		return
	}

	sh, err := h.Lifecycle.Claim(r.Context(), chi.URLParam(r, "id"), req.WorkerID, req.WorkerName)
	if err != nil {
		h.writeShiftError(w, err)
		return
	}
	h.syncBooking(r, sh)
	writeJSON(w, http.StatusOK, shiftDTO(sh))
}

func (h *Handler) CheckInShift(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sh, err := h.Lifecycle.CheckIn(r.Context(), chi.URLParam(r, "id"), req.Location)
	if err != nil {
		h.writeShiftError(w, err)
		return
	}
	h.syncBooking(r, sh)
	writeJSON(w, http.StatusOK, shiftDTO(sh))
}

func (h *Handler) SignOutShift(w http.ResponseWriter, r *http.Request) {
	var req SignOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	// Current config snapshot: grace threshold and the rate table to pin
	// onto the completed shift.
	cfg, err := h.Store.PricingConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load config", err)
		return
	}
	rates, err := h.Store.PayRates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load pay rates", err)
		return
	}

	sh, err := h.Lifecycle.SignOut(r.Context(), chi.URLParam(r, "id"), shift.SignOutParams{
		CareRecord:   req.CareRecord,
		NotifyEmail:  req.NotifyEmail,
		GraceMinutes: cfg.OvertimeGraceMinutes,
		RateFor:      rates.Resolve,
	})
	if err != nil {
		h.writeShiftError(w, err)
		return
	}
	h.syncBooking(r, sh)
	writeJSON(w, http.StatusOK, shiftDTO(sh))
}

func (h *Handler) writeShiftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shift.ErrShiftNotFound):
		writeError(w, http.StatusNotFound, "shift not found", err)
	case shift.IsInvalidTransition(err):
		writeError(w, http.StatusConflict, "invalid shift transition", err)
	default:
		writeError(w, http.StatusInternalServerError, "shift update failed", err)
	}
}

// syncBooking reflects a shift transition onto its booking. Best effort:
// the shift is already persisted, a failed sync only delays the booking
// status display.
func (h *Handler) syncBooking(r *http.Request, sh shift.Shift) {
	if _, err := h.Bookings.SyncShift(r.Context(), sh); err != nil {
		log.Printf("booking sync for shift %s failed: %v", sh.ID, err)
	}
}

// =============================================================================
// PAYROLL
// =============================================================================

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	entries, err := h.settleEntries(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "settlement failed", err)
		return
	}

	resp := SettleResponse{Entries: make([]PayrollEntryDTO, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = payrollEntryDTO(e)
	}
	for _, d := range payroll.GroupByDate(entries) {
		resp.ByDate = append(resp.ByDate, DailySummaryDTO{
			Date:       d.Date.Format("2006-01-02"),
			ShiftCount: d.ShiftCount,
			Counts:     categoryCounts(d.CountsByCategory),
			TotalHours: d.TotalHours.StringFixed(2),
			TotalOwed:  d.TotalOwed.StringFixed(2),
		})
	}
	for _, ws := range payroll.GroupByWorker(entries) {
		resp.ByWorker = append(resp.ByWorker, WorkerSummaryDTO{
			WorkerID:   ws.WorkerID,
			WorkerName: ws.WorkerName,
			ShiftCount: ws.ShiftCount,
			Counts:     categoryCounts(ws.CountsByCategory),
			TotalHours: ws.TotalHours.StringFixed(2),
			TotalOwed:  ws.TotalOwed.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ExportSettlement(w http.ResponseWriter, r *http.Request) {
	entries, err := h.settleEntries(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "settlement failed", err)
		return
	}

	report := payroll.Export(entries, time.Time{}, time.Time{})
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="settlement.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report))
}

func (h *Handler) settleEntries(r *http.Request) ([]payroll.PayrollEntry, error) {
	var req SettleRequest
	if r.Body != nil {
		// An empty body settles everything completed.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	shifts, err := h.Store.CompletedShifts(r.Context(), parseDate(req.From), parseDate(req.To))
	if err != nil {
		return nil, err
	}
	rates, err := h.Store.PayRates(r.Context())
	if err != nil {
		return nil, err
	}
	return payroll.Settle(shifts, rates), nil
}

func categoryCounts(in map[pricing.Category]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

// =============================================================================
// ADMIN CONFIG
// =============================================================================

func (h *Handler) GetPricingConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.PricingConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load config", err)
		return
	}
	writeJSON(w, http.StatusOK, configToDTO(cfg))
}

func (h *Handler) SavePricingConfig(w http.ResponseWriter, r *http.Request) {
	var dto PricingConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	// Out-of-range fields are clamped on save, not rejected.
	saved, err := h.Store.SavePricingConfig(r.Context(), configFromDTO(dto))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config", err)
		return
	}
	writeJSON(w, http.StatusOK, configToDTO(saved))
}

func (h *Handler) GetPayRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Store.PayRates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load pay rates", err)
		return
	}
	writeJSON(w, http.StatusOK, PayRatesDTO{
		Standard: rates.Standard.InexactFloat64(),
		Hospital: rates.Hospital.InexactFloat64(),
		Doctor:   rates.Doctor.InexactFloat64(),
	})
}

func (h *Handler) SavePayRates(w http.ResponseWriter, r *http.Request) {
	var dto PayRatesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	rates := payroll.PayRates{
		Standard: decimal.NewFromFloat(dto.Standard),
		Hospital: decimal.NewFromFloat(dto.Hospital),
		Doctor:   decimal.NewFromFloat(dto.Doctor),
	}
	if err := h.Store.SavePayRates(r.Context(), rates); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save pay rates", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) GetSurgeRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.SurgeRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load surge rules", err)
		return
	}
	dtos := make([]SurgeRuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = SurgeRuleDTO{
			ID:         rule.ID,
			Name:       rule.Name,
			Weekdays:   rule.Weekdays,
			StartClock: rule.StartClock,
			EndClock:   rule.EndClock,
			Multiplier: rule.Multiplier.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SaveSurgeRules(w http.ResponseWriter, r *http.Request) {
	var dtos []SurgeRuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	rules := make([]pricing.SurgeRule, len(dtos))
	for i, dto := range dtos {
		rules[i] = pricing.SurgeRule{
			ID:         dto.ID,
			Name:       dto.Name,
			Weekdays:   dto.Weekdays,
			StartClock: dto.StartClock,
			EndClock:   dto.EndClock,
			Multiplier: decimal.NewFromFloat(dto.Multiplier),
		}
	}
	if err := h.Store.SaveSurgeRules(r.Context(), rules); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save surge rules", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Store.Tasks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load tasks", err)
		return
	}
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = TaskDTO{
			ID:              t.ID,
			Name:            t.Name,
			IncludedMinutes: t.IncludedMinutes,
			Category:        string(t.Category),
			Disabled:        t.Disabled,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SaveTask(w http.ResponseWriter, r *http.Request) {
	var dto TaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.ID == "" {
		writeError(w, http.StatusBadRequest, "task id is required", err)
		return
	}
	t := pricing.TaskDefinition{
		ID:              dto.ID,
		Name:            dto.Name,
		IncludedMinutes: dto.IncludedMinutes,
		Category:        pricing.Category(dto.Category),
		Disabled:        dto.Disabled,
	}
	if t.Category == "" {
		t.Category = pricing.CategoryStandard
	}
	if err := h.Store.SaveTask(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save task", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) DisableTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DisableTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to disable task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func configToDTO(cfg pricing.Config) PricingConfigDTO {
	return PricingConfigDTO{
		StandardRate:           cfg.StandardRate.InexactFloat64(),
		HospitalRate:           cfg.HospitalRate.InexactFloat64(),
		DoctorRate:             cfg.DoctorRate.InexactFloat64(),
		SurgeMultiplier:        cfg.SurgeMultiplier.InexactFloat64(),
		MinimumHours:           cfg.MinimumHours.InexactFloat64(),
		MinimumBookingFee:      cfg.MinimumBookingFee.InexactFloat64(),
		OvertimeRatePercentage: cfg.OvertimeRatePercentage,
		OvertimeGraceMinutes:   cfg.OvertimeGraceMinutes,
		OvertimeBlockMinutes:   cfg.OvertimeBlockMinutes,
		DurationOverrides:      cfg.DurationOverrides,
	}
}

func configFromDTO(dto PricingConfigDTO) pricing.Config {
	return pricing.Config{
		StandardRate:           decimal.NewFromFloat(dto.StandardRate),
		HospitalRate:           decimal.NewFromFloat(dto.HospitalRate),
		DoctorRate:             decimal.NewFromFloat(dto.DoctorRate),
		SurgeMultiplier:        decimal.NewFromFloat(dto.SurgeMultiplier),
		MinimumHours:           decimal.NewFromFloat(dto.MinimumHours),
		MinimumBookingFee:      decimal.NewFromFloat(dto.MinimumBookingFee),
		OvertimeRatePercentage: dto.OvertimeRatePercentage,
		OvertimeGraceMinutes:   dto.OvertimeGraceMinutes,
		OvertimeBlockMinutes:   dto.OvertimeBlockMinutes,
		DurationOverrides:      dto.DurationOverrides,
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

func parseDateTime(date, clock string) time.Time {
	if date == "" || clock == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}
	}
	return t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": message, "detail": detail})
}
