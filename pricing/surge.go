/*
surge.go - Surge multiplier evaluation

PURPOSE:
  Maps a requested slot (date + clock time) and the ASAP flag onto a
  surge multiplier >= 1.0 using the configured high-demand windows.

RULES:
  1. If (date, clock) falls inside a configured window, that window's
     multiplier applies (the config default when the window does not
     override it). Overlapping windows take the highest multiplier.
  2. ASAP is a FLOOR of 1.25, not a replacement: a pre-existing higher
     surge window still wins.
  3. A missing slot (ASAP request with no explicit date/time) still yields
     a valid multiplier - the ASAP floor - never an error.

  Pure and deterministic for identical inputs; re-quoting and audits
  depend on that.
*/
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ASAPFloorMultiplier is the minimum surge applied to ASAP requests.
var ASAPFloorMultiplier = decimal.RequireFromString("1.25")

// EvaluateSurge returns the surge multiplier for a requested slot.
// date may be the zero time and clock may be empty (no explicit slot).
// clock is "HH:MM", 24-hour.
func EvaluateSurge(rules []SurgeRule, cfg Config, date time.Time, clock string, isASAP bool) decimal.Decimal {
	one := decimal.NewFromInt(1)
	multiplier := one

	if !date.IsZero() && validClock(clock) {
		weekday := int(date.Weekday())
		for _, r := range rules {
			if !r.appliesOn(weekday) {
				continue
			}
			if !validClock(r.StartClock) || !validClock(r.EndClock) {
				continue
			}
			if clock < r.StartClock || clock > r.EndClock {
				continue
			}
			m := r.Multiplier
			if m.IsZero() {
				m = cfg.SurgeMultiplier
			}
			if m.GreaterThan(multiplier) {
				multiplier = m
			}
		}
	}

	if isASAP && multiplier.LessThan(ASAPFloorMultiplier) {
		multiplier = ASAPFloorMultiplier
	}
	if multiplier.LessThan(one) {
		multiplier = one
	}
	return multiplier
}

// validClock accepts zero-padded "HH:MM". Zero-padding makes plain string
// comparison order clock values correctly.
func validClock(clock string) bool {
	if len(clock) != 5 || clock[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", clock)
	return err == nil
}
