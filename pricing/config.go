/*
config.go - Admin-editable pricing configuration

PURPOSE:
  Config carries every knob an administrator can turn: hourly rates per
  category, the default surge multiplier, the minimum-hours and minimum-fee
  floors, and the overtime billing parameters.

CLAMPING (documented quirk):
  Bounded fields are clamped silently on save rather than rejected:
    OvertimeRatePercentage  10..100
    OvertimeGraceMinutes    0..30
    OvertimeBlockMinutes    15..60
  This deliberately favors availability over strict validation. Testers:
  an out-of-range save that "succeeds" with a different value is expected
  behavior, not a bug.

EXPLICIT SNAPSHOTS:
  Config is a value type passed by the caller into each pricing call. The
  caller fetches the current snapshot from the store; the engine never
  reads ambient mutable state. Readers tolerate config changing between
  calls - no snapshot isolation is guaranteed across calls.

SEE ALSO:
  - surge.go: SurgeRule evaluation against Config.SurgeMultiplier
  - calculator.go: Quote computation from Config
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIG
// =============================================================================

type Config struct {
	// Base hourly client rates per category.
	StandardRate decimal.Decimal
	HospitalRate decimal.Decimal
	DoctorRate   decimal.Decimal

	// Default multiplier applied inside high-demand windows that do not
	// override it.
	SurgeMultiplier decimal.Decimal

	// Floors.
	MinimumHours      decimal.Decimal
	MinimumBookingFee decimal.Decimal

	// Overtime billing (client side). Payroll's 1.5x is separate.
	OvertimeRatePercentage int // clamped 10..100
	OvertimeGraceMinutes   int // clamped 0..30
	OvertimeBlockMinutes   int // clamped 15..60

	// Per-task duration overrides, minutes by task id.
	DurationOverrides map[string]int
}

// RateFor returns the hourly client rate for a category.
func (c Config) RateFor(cat Category) decimal.Decimal {
	switch cat {
	case CategoryHospital:
		return c.HospitalRate
	case CategoryDoctor:
		return c.DoctorRate
	default:
		return c.StandardRate
	}
}

// Clamp forces all bounded fields into range. Called on every admin save.
func (c Config) Clamp() Config {
	c.OvertimeRatePercentage = clampInt(c.OvertimeRatePercentage, 10, 100)
	c.OvertimeGraceMinutes = clampInt(c.OvertimeGraceMinutes, 0, 30)
	c.OvertimeBlockMinutes = clampInt(c.OvertimeBlockMinutes, 15, 60)
	if c.SurgeMultiplier.LessThan(decimal.NewFromInt(1)) {
		c.SurgeMultiplier = decimal.NewFromInt(1)
	}
	if c.MinimumHours.IsNegative() {
		c.MinimumHours = decimal.Zero
	}
	if c.MinimumBookingFee.IsNegative() {
		c.MinimumBookingFee = decimal.Zero
	}
	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DefaultConfig is the seed configuration for a fresh install.
func DefaultConfig() Config {
	return Config{
		StandardRate:           decimal.NewFromInt(35),
		HospitalRate:           decimal.NewFromInt(55),
		DoctorRate:             decimal.NewFromInt(45),
		SurgeMultiplier:        decimal.RequireFromString("1.5"),
		MinimumHours:           decimal.NewFromInt(1),
		MinimumBookingFee:      decimal.NewFromInt(30),
		OvertimeRatePercentage: 50,
		OvertimeGraceMinutes:   15,
		OvertimeBlockMinutes:   30,
		DurationOverrides:      map[string]int{},
	}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot bundles the admin-editable pricing inputs for a single engine
// call. Callers fetch the current values from the store and pass them in;
// nothing in this package reads shared mutable state.
type Snapshot struct {
	Config  Config
	Rules   []SurgeRule
	Catalog *Catalog
}

// =============================================================================
// SURGE RULES
// =============================================================================

// SurgeRule describes one high-demand window. Clock values are "HH:MM",
// 24-hour, inclusive on both ends. A zero Multiplier means "use the
// config default".
type SurgeRule struct {
	ID         string
	Name       string
	Weekdays   []int // time.Weekday values, 0=Sunday
	StartClock string
	EndClock   string
	Multiplier decimal.Decimal
}

func (r SurgeRule) appliesOn(weekday int) bool {
	for _, d := range r.Weekdays {
		if d == weekday {
			return true
		}
	}
	return false
}

// DefaultSurgeRules is the seed rule set: weekday rush hours and weekend
// mornings are high-demand windows at the config default multiplier.
func DefaultSurgeRules() []SurgeRule {
	return []SurgeRule{
		{
			ID:         "weekday-evening-rush",
			Name:       "Weekday evening rush",
			Weekdays:   []int{1, 2, 3, 4, 5},
			StartClock: "16:00",
			EndClock:   "20:00",
		},
		{
			ID:         "weekend-morning",
			Name:       "Weekend morning",
			Weekdays:   []int{0, 6},
			StartClock: "08:00",
			EndClock:   "12:00",
		},
	}
}
