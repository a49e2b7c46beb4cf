/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the domain types.
  Money fields are rendered as fixed two-decimal strings; clients display
  them verbatim instead of re-deriving totals from the parts (the minimum
  fee floor makes Total legitimately exceed the sum of the breakdown).

NAMING CONVENTION:
  - *DTO: response types
  - *Request: request body types

VALIDATION:
  Done in handlers; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/pswdirect/care-engine/booking"
	"github.com/pswdirect/care-engine/payroll"
	"github.com/pswdirect/care-engine/pricing"
	"github.com/pswdirect/care-engine/shift"
)

// =============================================================================
// QUOTE
// =============================================================================

type QuoteRequest struct {
	TaskIDs               []string `json:"task_ids"`
	Date                  string   `json:"date"`  // "2006-01-02"
	Time                  string   `json:"time"`  // "15:04"
	IsASAP                bool     `json:"is_asap"`
	ExplicitDurationHours *float64 `json:"explicit_duration_hours,omitempty"`
}

type QuoteDTO struct {
	BaseMinutes         int    `json:"base_minutes"`
	BaseCost            string `json:"base_cost"`
	BaseCharge          string `json:"base_charge"`
	HSTAmount           string `json:"hst_amount"`
	SurgeAmount         string `json:"surge_amount"`
	Subtotal            string `json:"subtotal"`
	Total               string `json:"total"`
	SurgeMultiplier     string `json:"surge_multiplier"`
	IsMinimumFeeApplied bool   `json:"is_minimum_fee_applied"`
}

// QuoteResponse wraps a possibly-null quote: no tasks selected is a valid
// transient state, not an error.
type QuoteResponse struct {
	Quote *QuoteDTO `json:"quote"`
}

func quoteDTO(q *pricing.Quote, multiplier string) *QuoteDTO {
	if q == nil {
		return nil
	}
	return &QuoteDTO{
		BaseMinutes:         q.BaseMinutes,
		BaseCost:            q.BaseCost.StringFixed(2),
		BaseCharge:          q.BaseCharge.StringFixed(2),
		HSTAmount:           q.HSTAmount.StringFixed(2),
		SurgeAmount:         q.SurgeAmount.StringFixed(2),
		Subtotal:            q.Subtotal.StringFixed(2),
		Total:               q.Total.StringFixed(2),
		SurgeMultiplier:     multiplier,
		IsMinimumFeeApplied: q.IsMinimumFeeApplied,
	}
}

// =============================================================================
// BOOKING
// =============================================================================

type CreateBookingRequest struct {
	ClientName            string   `json:"client_name"`
	ClientEmail           string   `json:"client_email"`
	PatientName           string   `json:"patient_name"`
	Address               string   `json:"address"`
	WithinCoverage        bool     `json:"within_coverage"`
	TaskIDs               []string `json:"task_ids"`
	Date                  string   `json:"date"`
	StartTime             string   `json:"start_time"`
	EndTime               string   `json:"end_time"`
	IsASAP                bool     `json:"is_asap"`
	ExplicitDurationHours *float64 `json:"explicit_duration_hours,omitempty"`
}

type BookingDTO struct {
	ID            string    `json:"id"`
	ClientName    string    `json:"client_name"`
	ClientEmail   string    `json:"client_email,omitempty"`
	PatientName   string    `json:"patient_name,omitempty"`
	Address       string    `json:"address,omitempty"`
	TaskIDs       []string  `json:"task_ids"`
	ScheduledDate string    `json:"scheduled_date"`
	IsASAP        bool      `json:"is_asap"`
	Quote         *QuoteDTO `json:"quote"`
	ShiftID       string    `json:"shift_id"`
	WorkerID      string    `json:"worker_id,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	CreatedAt     string    `json:"created_at,omitempty"`
}

func bookingDTO(b booking.Booking) BookingDTO {
	dto := BookingDTO{
		ID:            b.ID,
		ClientName:    b.ClientName,
		ClientEmail:   b.ClientEmail,
		PatientName:   b.PatientName,
		Address:       b.Address,
		TaskIDs:       b.TaskIDs,
		ScheduledDate: b.ScheduledDate.Format("2006-01-02"),
		IsASAP:        b.IsASAP,
		Quote:         quoteDTO(b.Quote, ""),
		ShiftID:       b.ShiftID,
		WorkerID:      b.WorkerID,
		PaymentStatus: string(b.PaymentStatus),
		Status:        string(b.Status),
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

type AssignWorkerRequest struct {
	WorkerID string `json:"worker_id"`
}

// =============================================================================
// SHIFT
// =============================================================================

type ShiftDTO struct {
	ID                 string   `json:"id"`
	BookingID          string   `json:"booking_id"`
	WorkerID           string   `json:"worker_id,omitempty"`
	WorkerName         string   `json:"worker_name,omitempty"`
	Services           []string `json:"services"`
	Category           string   `json:"category"`
	ScheduledDate      string   `json:"scheduled_date"`
	ScheduledStart     string   `json:"scheduled_start"`
	ScheduledEnd       string   `json:"scheduled_end"`
	ClaimedAt          string   `json:"claimed_at,omitempty"`
	CheckedInAt        string   `json:"checked_in_at,omitempty"`
	CheckInLocation    string   `json:"check_in_location,omitempty"`
	SignedOutAt        string   `json:"signed_out_at,omitempty"`
	OvertimeMinutes    int      `json:"overtime_minutes"`
	FlaggedForOvertime bool     `json:"flagged_for_overtime"`
	Status             string   `json:"status"`
}

func shiftDTO(s shift.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:                 s.ID,
		BookingID:          s.BookingID,
		WorkerID:           s.WorkerID,
		WorkerName:         s.WorkerName,
		Services:           s.Services,
		Category:           string(s.Category),
		ScheduledDate:      s.ScheduledDate.Format("2006-01-02"),
		ScheduledStart:     s.ScheduledStart.Format(time.RFC3339),
		ScheduledEnd:       s.ScheduledEnd.Format(time.RFC3339),
		CheckInLocation:    s.CheckInLocation,
		OvertimeMinutes:    s.OvertimeMinutes,
		FlaggedForOvertime: s.FlaggedForOvertime,
		Status:             string(s.Status),
	}
	if s.ClaimedAt != nil {
		dto.ClaimedAt = s.ClaimedAt.Format(time.RFC3339)
	}
	if s.CheckedInAt != nil {
		dto.CheckedInAt = s.CheckedInAt.Format(time.RFC3339)
	}
	if s.SignedOutAt != nil {
		dto.SignedOutAt = s.SignedOutAt.Format(time.RFC3339)
	}
	return dto
}

type ClaimRequest struct {
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
}

type CheckInRequest struct {
	Location string `json:"location"`
}

type SignOutRequest struct {
	CareRecord  string `json:"care_record"`
	NotifyEmail string `json:"notify_email"`
}

// =============================================================================
// PAYROLL
// =============================================================================

type SettleRequest struct {
	From string `json:"from,omitempty"` // "2006-01-02", optional
	To   string `json:"to,omitempty"`
}

type PayrollEntryDTO struct {
	WorkerID        string `json:"worker_id"`
	WorkerName      string `json:"worker_name"`
	ShiftID         string `json:"shift_id"`
	Date            string `json:"date"`
	ShiftCategory   string `json:"shift_category"`
	HoursWorked     string `json:"hours_worked"`
	PayRate         string `json:"pay_rate"`
	OvertimeMinutes int    `json:"overtime_minutes"`
	BasePay         string `json:"base_pay"`
	OvertimePay     string `json:"overtime_pay"`
	TotalPay        string `json:"total_pay"`
}

type DailySummaryDTO struct {
	Date       string         `json:"date"`
	ShiftCount int            `json:"shift_count"`
	Counts     map[string]int `json:"counts_by_category"`
	TotalHours string         `json:"total_hours"`
	TotalOwed  string         `json:"total_owed"`
}

type WorkerSummaryDTO struct {
	WorkerID   string         `json:"worker_id"`
	WorkerName string         `json:"worker_name"`
	ShiftCount int            `json:"shift_count"`
	Counts     map[string]int `json:"counts_by_category"`
	TotalHours string         `json:"total_hours"`
	TotalOwed  string         `json:"total_owed"`
}

type SettleResponse struct {
	Entries  []PayrollEntryDTO  `json:"entries"`
	ByDate   []DailySummaryDTO  `json:"by_date"`
	ByWorker []WorkerSummaryDTO `json:"by_worker"`
}

func payrollEntryDTO(e payroll.PayrollEntry) PayrollEntryDTO {
	return PayrollEntryDTO{
		WorkerID:        e.WorkerID,
		WorkerName:      e.WorkerName,
		ShiftID:         e.ShiftID,
		Date:            e.Date.Format("2006-01-02"),
		ShiftCategory:   string(e.ShiftCategory),
		HoursWorked:     e.HoursWorked.StringFixed(2),
		PayRate:         e.PayRate.StringFixed(2),
		OvertimeMinutes: e.OvertimeMinutes,
		BasePay:         e.BasePay.StringFixed(2),
		OvertimePay:     e.OvertimePay.StringFixed(2),
		TotalPay:        e.TotalPay.StringFixed(2),
	}
}

// =============================================================================
// ADMIN CONFIG
// =============================================================================

type PricingConfigDTO struct {
	StandardRate           float64        `json:"standard_rate"`
	HospitalRate           float64        `json:"hospital_rate"`
	DoctorRate             float64        `json:"doctor_rate"`
	SurgeMultiplier        float64        `json:"surge_multiplier"`
	MinimumHours           float64        `json:"minimum_hours"`
	MinimumBookingFee      float64        `json:"minimum_booking_fee"`
	OvertimeRatePercentage int            `json:"overtime_rate_percentage"`
	OvertimeGraceMinutes   int            `json:"overtime_grace_minutes"`
	OvertimeBlockMinutes   int            `json:"overtime_block_minutes"`
	DurationOverrides      map[string]int `json:"duration_overrides,omitempty"`
}

type PayRatesDTO struct {
	Standard float64 `json:"standard"`
	Hospital float64 `json:"hospital"`
	Doctor   float64 `json:"doctor"`
}

type TaskDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IncludedMinutes int    `json:"included_minutes"`
	Category        string `json:"category"`
	Disabled        bool   `json:"disabled"`
}

type SurgeRuleDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Weekdays   []int   `json:"weekdays"`
	StartClock string  `json:"start_clock"`
	EndClock   string  `json:"end_clock"`
	Multiplier float64 `json:"multiplier,omitempty"`
}
