package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pswdirect/care-engine/payroll"
	"github.com/pswdirect/care-engine/pricing"
	"github.com/pswdirect/care-engine/shift"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func completedShift(id, workerID string, date time.Time, hours float64, overtimeMin int) shift.Shift {
	start := date.Add(9 * time.Hour)
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return shift.Shift{
		ID:              id,
		BookingID:       "booking-" + id,
		WorkerID:        workerID,
		WorkerName:      "Worker " + workerID,
		Category:        pricing.CategoryStandard,
		ScheduledDate:   date,
		ScheduledStart:  start,
		ScheduledEnd:    end,
		CheckedInAt:     &start,
		SignedOutAt:     &end,
		OvertimeMinutes: overtimeMin,
		Status:          shift.StatusCompleted,
	}
}

var settleDay = time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestClassify_Keywords(t *testing.T) {
	cases := []struct {
		name     string
		services []string
		want     pricing.Category
	}{
		{"plain services", []string{"Personal Care", "Meal Prep"}, pricing.CategoryStandard},
		{"doctor keyword", []string{"Doctor Visit Escort"}, pricing.CategoryDoctor},
		{"appointment keyword", []string{"Specialist appointment"}, pricing.CategoryDoctor},
		{"hospital keyword", []string{"Hospital Discharge"}, pricing.CategoryHospital},
		{"hospital beats doctor", []string{"Doctor escort", "hospital pick-up"}, pricing.CategoryHospital},
		{"case insensitive", []string{"HOSPITAL DISCHARGE"}, pricing.CategoryHospital},
		{"empty", nil, pricing.CategoryStandard},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, payroll.Classify(tc.services))
		})
	}
}

func TestSettle_PersistedCategoryBeatsKeywords(t *testing.T) {
	// GIVEN: a shift whose persisted category disagrees with its service text
	// WHEN: settled
	// THEN: the persisted category wins; keywords are only a legacy fallback

	s := completedShift("s1", "w1", settleDay, 2, 0)
	s.Category = pricing.CategoryHospital
	s.Services = []string{"Personal Care"}

	entries := payroll.Settle([]shift.Shift{s}, payroll.DefaultPayRates())
	require.Len(t, entries, 1)
	assert.Equal(t, pricing.CategoryHospital, entries[0].ShiftCategory)
	assert.True(t, entries[0].PayRate.Equal(payroll.DefaultPayRates().Hospital))
}

func TestSettle_LegacyShiftFallsBackToKeywords(t *testing.T) {
	s := completedShift("s1", "w1", settleDay, 2, 0)
	s.Category = ""
	s.Services = []string{"Doctor Visit"}

	entries := payroll.Settle([]shift.Shift{s}, payroll.DefaultPayRates())
	require.Len(t, entries, 1)
	assert.Equal(t, pricing.CategoryDoctor, entries[0].ShiftCategory)
}

// =============================================================================
// SETTLEMENT MATH
// =============================================================================

func TestSettle_BasePayFromActualWorkedSpan(t *testing.T) {
	// GIVEN: a 2-hour completed standard shift at the default $22/hr
	// WHEN: settled
	// THEN: base pay $44.00, no overtime

	entries := payroll.Settle(
		[]shift.Shift{completedShift("s1", "w1", settleDay, 2, 0)},
		payroll.DefaultPayRates(),
	)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.True(t, e.HoursWorked.Equal(decimal.NewFromInt(2)), "hours: %s", e.HoursWorked)
	assert.True(t, e.BasePay.Equal(decimal.NewFromInt(44)), "base: %s", e.BasePay)
	assert.True(t, e.OvertimePay.IsZero())
	assert.True(t, e.TotalPay.Equal(decimal.NewFromInt(44)))
}

func TestSettle_OvertimePaidAtTimeAndAHalf(t *testing.T) {
	// GIVEN: 30 overtime minutes at $22/hr
	// WHEN: settled
	// THEN: overtime pay = 0.5 * 22 * 1.5 = $16.50 on raw minutes, no block
	//       rounding on the payroll side

	entries := payroll.Settle(
		[]shift.Shift{completedShift("s1", "w1", settleDay, 2.5, 30)},
		payroll.DefaultPayRates(),
	)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.True(t, e.OvertimePay.Equal(decimal.RequireFromString("16.50")), "overtime: %s", e.OvertimePay)
	assert.True(t, e.TotalPay.Equal(e.BasePay.Add(e.OvertimePay)))
}

func TestSettle_SnapshotRateBeatsLiveTable(t *testing.T) {
	// GIVEN: a shift that froze $20/hr at sign-out, and a live table that
	//        has since been raised
	// WHEN: settled
	// THEN: the frozen rate is paid; admin edits never rewrite history

	s := completedShift("s1", "w1", settleDay, 2, 0)
	s.PayRateSnapshot = decimal.NewFromInt(20)

	live := payroll.DefaultPayRates()
	live.Standard = decimal.NewFromInt(99)

	entries := payroll.Settle([]shift.Shift{s}, live)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].PayRate.Equal(decimal.NewFromInt(20)), "rate: %s", entries[0].PayRate)
	assert.True(t, entries[0].BasePay.Equal(decimal.NewFromInt(40)))
}

func TestSettle_SkipsIncompleteShifts(t *testing.T) {
	// GIVEN: shifts in every non-completed state plus one missing its punches
	// WHEN: settled
	// THEN: none produce entries

	available := completedShift("s1", "w1", settleDay, 2, 0)
	available.Status = shift.StatusAvailable

	claimed := completedShift("s2", "w1", settleDay, 2, 0)
	claimed.Status = shift.StatusClaimed

	noPunches := completedShift("s3", "w1", settleDay, 2, 0)
	noPunches.CheckedInAt = nil

	entries := payroll.Settle([]shift.Shift{available, claimed, noPunches}, payroll.DefaultPayRates())
	assert.Empty(t, entries)
}

func TestSettle_Deterministic(t *testing.T) {
	// GIVEN: the same shifts fed in two different orders
	// WHEN: settled twice
	// THEN: identical entries in identical order

	shifts := []shift.Shift{
		completedShift("s2", "w2", settleDay.AddDate(0, 0, 1), 3, 0),
		completedShift("s1", "w1", settleDay, 2, 15),
		completedShift("s3", "w1", settleDay, 1, 0),
	}
	reversed := []shift.Shift{shifts[2], shifts[1], shifts[0]}

	a := payroll.Settle(shifts, payroll.DefaultPayRates())
	b := payroll.Settle(reversed, payroll.DefaultPayRates())

	require.Len(t, a, 3)
	assert.Equal(t, a, b)
	assert.Equal(t, "s1", a[0].ShiftID)
	assert.Equal(t, "s3", a[1].ShiftID)
	assert.Equal(t, "s2", a[2].ShiftID)
}

// =============================================================================
// REVIEW REDUCTIONS
// =============================================================================

func TestGroupByDate(t *testing.T) {
	entries := payroll.Settle([]shift.Shift{
		completedShift("s1", "w1", settleDay, 2, 0),
		completedShift("s2", "w2", settleDay, 3, 0),
		completedShift("s3", "w1", settleDay.AddDate(0, 0, 1), 1, 0),
	}, payroll.DefaultPayRates())

	days := payroll.GroupByDate(entries)
	require.Len(t, days, 2)

	assert.True(t, days[0].Date.Equal(settleDay))
	assert.Equal(t, 2, days[0].ShiftCount)
	assert.Equal(t, 2, days[0].CountsByCategory[pricing.CategoryStandard])
	assert.True(t, days[0].TotalHours.Equal(decimal.NewFromInt(5)), "hours: %s", days[0].TotalHours)
	assert.True(t, days[0].TotalOwed.Equal(decimal.NewFromInt(110)), "owed: %s", days[0].TotalOwed)

	assert.Equal(t, 1, days[1].ShiftCount)
}

func TestGroupByWorker(t *testing.T) {
	entries := payroll.Settle([]shift.Shift{
		completedShift("s1", "w1", settleDay, 2, 0),
		completedShift("s2", "w2", settleDay, 3, 0),
		completedShift("s3", "w1", settleDay.AddDate(0, 0, 1), 1, 0),
	}, payroll.DefaultPayRates())

	workers := payroll.GroupByWorker(entries)
	require.Len(t, workers, 2)

	assert.Equal(t, "w1", workers[0].WorkerID)
	assert.Equal(t, 2, workers[0].ShiftCount)
	assert.True(t, workers[0].TotalHours.Equal(decimal.NewFromInt(3)))
	assert.True(t, workers[0].TotalOwed.Equal(decimal.NewFromInt(66)))

	assert.Equal(t, "w2", workers[1].WorkerID)
	assert.Equal(t, 1, workers[1].ShiftCount)
}
