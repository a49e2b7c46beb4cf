/*
settlement.go - Completed shifts to payroll entries

PURPOSE:
  Settle is the batch derivation: completed shifts in, payroll entries
  out. Deterministic: the same shifts and the same rate table always
  produce byte-identical entries, in a stable order.

TWO CLOCKS, AGAIN:
  hoursWorked is the ACTUAL span from check-in to sign-out, not the
  scheduled duration. Overtime minutes were already determined at sign-out
  against the SCHEDULED end. Base pay and overtime pay therefore come from
  different clocks on purpose.

CLASSIFICATION FALLBACK:
  New shifts carry their category from creation. Older records only have
  free-text service names, so Classify does a best-effort keyword match.
  It is a fallback, not an authoritative catalog lookup.
*/
package payroll

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pswdirect/care-engine/pricing"
	"github.com/pswdirect/care-engine/shift"
)

// overtimeMultiplier is the statutory 1.5x applied to overtime pay.
var overtimeMultiplier = decimal.RequireFromString("1.5")

// =============================================================================
// CLASSIFICATION
// =============================================================================

var hospitalKeywords = []string{"hospital", "discharge", "pick-up"}
var doctorKeywords = []string{"doctor", "appointment", "escort"}

// Classify infers a shift category from its recorded service names.
// Hospital keywords win over doctor keywords; anything else is standard.
func Classify(services []string) pricing.Category {
	category := pricing.CategoryStandard
	for _, svc := range services {
		s := strings.ToLower(svc)
		for _, kw := range hospitalKeywords {
			if strings.Contains(s, kw) {
				return pricing.CategoryHospital
			}
		}
		for _, kw := range doctorKeywords {
			if strings.Contains(s, kw) {
				category = pricing.CategoryDoctor
			}
		}
	}
	return category
}

// categoryOf prefers the persisted category, falling back to keywords for
// legacy records.
func categoryOf(s shift.Shift) pricing.Category {
	if s.Category != "" {
		return s.Category
	}
	return Classify(s.Services)
}

// =============================================================================
// SETTLE
// =============================================================================

// Settle derives payroll entries from completed shifts. Shifts in any
// other state, or missing their punch timestamps, are skipped. rates is
// the caller's current snapshot of the pay-rate table, used only for
// shifts without a sign-out rate snapshot.
func Settle(shifts []shift.Shift, rates PayRates) []PayrollEntry {
	entries := make([]PayrollEntry, 0, len(shifts))
	for _, s := range shifts {
		if s.Status != shift.StatusCompleted || s.CheckedInAt == nil || s.SignedOutAt == nil {
			continue
		}

		category := categoryOf(s)
		rate := s.PayRateSnapshot
		if rate.IsZero() {
			rate = rates.Resolve(category)
		}

		worked := s.SignedOutAt.Sub(*s.CheckedInAt)
		hours := decimal.NewFromInt(int64(worked.Seconds())).Div(decimal.NewFromInt(3600)).Round(4)

		basePay := hours.Mul(rate).Round(2)
		overtimePay := decimal.NewFromInt(int64(s.OvertimeMinutes)).
			Div(decimal.NewFromInt(60)).
			Mul(rate).
			Mul(overtimeMultiplier).
			Round(2)

		entries = append(entries, PayrollEntry{
			WorkerID:        s.WorkerID,
			WorkerName:      s.WorkerName,
			ShiftID:         s.ID,
			Date:            s.ScheduledDate,
			ShiftCategory:   category,
			HoursWorked:     hours,
			PayRate:         rate,
			OvertimeMinutes: s.OvertimeMinutes,
			BasePay:         basePay,
			OvertimePay:     overtimePay,
			TotalPay:        basePay.Add(overtimePay),
		})
	}

	// Stable order: by date, then worker, then shift id. Determinism here
	// is what makes the export diffable across runs.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		if entries[i].WorkerID != entries[j].WorkerID {
			return entries[i].WorkerID < entries[j].WorkerID
		}
		return entries[i].ShiftID < entries[j].ShiftID
	})
	return entries
}

// =============================================================================
// REVIEW REDUCTIONS
// =============================================================================

// GroupByDate folds entries into per-date summaries, ordered by date.
func GroupByDate(entries []PayrollEntry) []DailySummary {
	byDate := make(map[string]*DailySummary)
	var keys []string
	for _, e := range entries {
		k := e.Date.Format("2006-01-02")
		sum, ok := byDate[k]
		if !ok {
			sum = &DailySummary{
				Date:             e.Date,
				CountsByCategory: make(map[pricing.Category]int),
				TotalHours:       decimal.Zero,
				TotalOwed:        decimal.Zero,
			}
			byDate[k] = sum
			keys = append(keys, k)
		}
		sum.ShiftCount++
		sum.CountsByCategory[e.ShiftCategory]++
		sum.TotalHours = sum.TotalHours.Add(e.HoursWorked)
		sum.TotalOwed = sum.TotalOwed.Add(e.TotalPay)
	}

	sort.Strings(keys)
	out := make([]DailySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byDate[k])
	}
	return out
}

// GroupByWorker folds entries into per-worker summaries, ordered by worker id.
func GroupByWorker(entries []PayrollEntry) []WorkerSummary {
	byWorker := make(map[string]*WorkerSummary)
	var keys []string
	for _, e := range entries {
		sum, ok := byWorker[e.WorkerID]
		if !ok {
			sum = &WorkerSummary{
				WorkerID:         e.WorkerID,
				WorkerName:       e.WorkerName,
				CountsByCategory: make(map[pricing.Category]int),
				TotalHours:       decimal.Zero,
				TotalOwed:        decimal.Zero,
			}
			byWorker[e.WorkerID] = sum
			keys = append(keys, e.WorkerID)
		}
		sum.ShiftCount++
		sum.CountsByCategory[e.ShiftCategory]++
		sum.TotalHours = sum.TotalHours.Add(e.HoursWorked)
		sum.TotalOwed = sum.TotalOwed.Add(e.TotalPay)
	}

	sort.Strings(keys)
	out := make([]WorkerSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byWorker[k])
	}
	return out
}
