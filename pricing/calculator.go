/*
calculator.go - Quote computation

PURPOSE:
  Turns selected tasks + a surge multiplier + an optional caller-chosen
  duration into an itemized Quote.

PRICE BREAKDOWN:
  baseMinutes = max(MinimumHours*60, sum of included minutes) unless the
                caller chose an explicit duration, which is used verbatim
                (the engine never silently shrinks a chosen duration; the
                UI warns when tasks exceed it)
  baseCost    = hourly rate of the highest-priority category selected
  baseCharge  = baseCost * baseMinutes/60
  hstAmount   = baseCharge * 13% (fixed Ontario HST - a hard-coded
                regional assumption, exposed as a named constant)
  surgeAmount = (baseCharge + hstAmount) * (multiplier - 1)
  subtotal    = baseCharge + hstAmount
  total       = subtotal + surgeAmount, floored at MinimumBookingFee

MINIMUM FEE:
  When the floor applies, only Total is raised and IsMinimumFeeApplied is
  set. The breakdown fields are NOT rewritten, so Total can legitimately
  exceed the sum of the parts. Callers must display the floor adjustment
  explicitly instead of re-deriving it.

NULL QUOTES:
  An empty task selection returns nil, not an error. An unpriced booking
  is a valid transient UI state.
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// HSTRate is the Ontario harmonized sales tax applied to the base charge.
// Not configurable in this version.
var HSTRate = decimal.RequireFromString("0.13")

// =============================================================================
// QUOTE
// =============================================================================

// Quote is the itemized price for a booking. Derived, embedded in the
// Booking record, never persisted independently.
type Quote struct {
	BaseMinutes         int
	BaseCost            decimal.Decimal // hourly rate applied to the block
	BaseCharge          decimal.Decimal
	HSTAmount           decimal.Decimal
	SurgeAmount         decimal.Decimal
	Subtotal            decimal.Decimal
	Total               decimal.Decimal
	IsMinimumFeeApplied bool
}

// =============================================================================
// PRICE
// =============================================================================

// Price computes the quote for the selected tasks.
// Returns nil when taskIDs is empty. Unknown ids contribute 0 minutes.
// explicitHours, when non-nil, is a caller-chosen duration used verbatim.
func Price(catalog *Catalog, cfg Config, taskIDs []string, surgeMultiplier decimal.Decimal, explicitHours *decimal.Decimal) *Quote {
	if len(taskIDs) == 0 {
		return nil
	}

	sixty := decimal.NewFromInt(60)

	var baseMinutes int
	if explicitHours != nil {
		baseMinutes = int(explicitHours.Mul(sixty).IntPart())
	} else {
		taskMinutes := 0
		for _, id := range taskIDs {
			taskMinutes += catalog.IncludedMinutes(id, cfg)
		}
		minimumMinutes := int(cfg.MinimumHours.Mul(sixty).IntPart())
		baseMinutes = taskMinutes
		if minimumMinutes > baseMinutes {
			baseMinutes = minimumMinutes
		}
	}

	baseCost := cfg.RateFor(catalog.HighestCategory(taskIDs))
	baseCharge := baseCost.Mul(decimal.NewFromInt(int64(baseMinutes))).Div(sixty).Round(2)
	hstAmount := baseCharge.Mul(HSTRate).Round(2)
	subtotal := baseCharge.Add(hstAmount)

	surgeAmount := decimal.Zero
	one := decimal.NewFromInt(1)
	if surgeMultiplier.GreaterThan(one) {
		surgeAmount = subtotal.Mul(surgeMultiplier.Sub(one)).Round(2)
	}

	q := &Quote{
		BaseMinutes: baseMinutes,
		BaseCost:    baseCost,
		BaseCharge:  baseCharge,
		HSTAmount:   hstAmount,
		SurgeAmount: surgeAmount,
		Subtotal:    subtotal,
		Total:       subtotal.Add(surgeAmount),
	}

	if q.Total.LessThan(cfg.MinimumBookingFee) {
		q.Total = cfg.MinimumBookingFee
		q.IsMinimumFeeApplied = true
	}
	return q
}

// =============================================================================
// OVERTIME CHARGE (client side)
// =============================================================================

// OvertimeCharge computes the client-billed amount for overtime minutes on
// a completed shift. Overtime is rounded UP into whole billing blocks of
// OvertimeBlockMinutes and billed at the block's share of the hourly rate
// scaled by OvertimeRatePercentage. This is the client invoice side; the
// worker payroll side pays raw overtime minutes at 1.5x instead.
func OvertimeCharge(cfg Config, hourlyRate decimal.Decimal, overtimeMinutes int) decimal.Decimal {
	if overtimeMinutes <= 0 {
		return decimal.Zero
	}
	block := cfg.OvertimeBlockMinutes
	if block <= 0 {
		block = 15
	}
	blocks := (overtimeMinutes + block - 1) / block
	billedMinutes := decimal.NewFromInt(int64(blocks * block))
	pct := decimal.NewFromInt(int64(cfg.OvertimeRatePercentage)).Div(decimal.NewFromInt(100))
	scale := decimal.NewFromInt(1).Add(pct)
	return hourlyRate.Mul(billedMinutes).Div(decimal.NewFromInt(60)).Mul(scale).Round(2)
}
