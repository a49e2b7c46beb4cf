/*
Package payroll converts completed shifts into payable amounts.

PURPOSE:
  The settlement engine is a derivation step: given completed shifts and
  the pay-rate table, it produces payroll entries deterministically. It
  never mutates shifts and never persists entries itself - the caller owns
  deduplication of persisted output.

KEY CONCEPTS IN THIS FILE (types.go):
  - PayRates: admin-editable hourly worker rates per category
  - PayrollEntry: one payable line per completed shift
  - DailySummary / WorkerSummary: pure reductions for settlement review

RATE RETROACTIVITY:
  Shifts snapshot their pay rate at sign-out (see shift.SignOutParams).
  Settlement prefers the snapshot; the live table is only a fallback for
  shifts recorded before snapshots existed. An admin rate edit therefore
  cannot rewrite history for snapshotted shifts.

SEE ALSO:
  - settlement.go: Settle, Classify and the grouping reductions
  - export.go: the flat settlement report
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pswdirect/care-engine/pricing"
)

// =============================================================================
// PAY RATES
// =============================================================================

// PayRates is the hourly worker pay per shift category. Admin-editable,
// versionless.
type PayRates struct {
	Standard decimal.Decimal
	Hospital decimal.Decimal
	Doctor   decimal.Decimal
}

// Resolve returns the rate for a category. Satisfies shift.RateResolver.
func (r PayRates) Resolve(cat pricing.Category) decimal.Decimal {
	switch cat {
	case pricing.CategoryHospital:
		return r.Hospital
	case pricing.CategoryDoctor:
		return r.Doctor
	default:
		return r.Standard
	}
}

// DefaultPayRates is the seed table for a fresh install.
func DefaultPayRates() PayRates {
	return PayRates{
		Standard: decimal.NewFromInt(22),
		Hospital: decimal.NewFromInt(30),
		Doctor:   decimal.NewFromInt(26),
	}
}

// =============================================================================
// PAYROLL ENTRY
// =============================================================================

// PayrollEntry is one payable line derived from a completed shift.
// Generated, never hand-edited; regenerable from the same inputs.
type PayrollEntry struct {
	WorkerID   string
	WorkerName string
	ShiftID    string
	Date       time.Time

	ShiftCategory pricing.Category
	HoursWorked   decimal.Decimal
	PayRate       decimal.Decimal

	OvertimeMinutes int
	BasePay         decimal.Decimal
	OvertimePay     decimal.Decimal
	TotalPay        decimal.Decimal
}

// =============================================================================
// REVIEW SUMMARIES
// =============================================================================

// DailySummary aggregates entries for a calendar date.
type DailySummary struct {
	Date             time.Time
	ShiftCount       int
	CountsByCategory map[pricing.Category]int
	TotalHours       decimal.Decimal
	TotalOwed        decimal.Decimal
}

// WorkerSummary aggregates entries for one worker.
type WorkerSummary struct {
	WorkerID         string
	WorkerName       string
	ShiftCount       int
	CountsByCategory map[pricing.Category]int
	TotalHours       decimal.Decimal
	TotalOwed        decimal.Decimal
}
