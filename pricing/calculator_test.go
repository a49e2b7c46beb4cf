package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pswdirect/care-engine/pricing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultSetup() (*pricing.Catalog, pricing.Config) {
	return pricing.NewCatalog(pricing.DefaultTasks()), pricing.DefaultConfig()
}

// =============================================================================
// QUOTE COMPUTATION
// =============================================================================

func TestPrice_SingleStandardTask(t *testing.T) {
	// GIVEN: personal-care alone (60 included minutes), standard rate $35/hr,
	//        minimum 1 hour, no surge
	// WHEN: priced
	// THEN: base $35.00, HST $4.55, subtotal/total $39.55

	catalog, cfg := defaultSetup()

	q := pricing.Price(catalog, cfg, []string{"personal-care"}, decimal.NewFromInt(1), nil)
	require.NotNil(t, q)

	assert.Equal(t, 60, q.BaseMinutes)
	assert.True(t, q.BaseCharge.Equal(money("35.00")), "base charge: %s", q.BaseCharge)
	assert.True(t, q.HSTAmount.Equal(money("4.55")), "hst: %s", q.HSTAmount)
	assert.True(t, q.SurgeAmount.IsZero())
	assert.True(t, q.Subtotal.Equal(money("39.55")), "subtotal: %s", q.Subtotal)
	assert.True(t, q.Total.Equal(money("39.55")), "total: %s", q.Total)
	assert.False(t, q.IsMinimumFeeApplied)
}

func TestPrice_ASAPFloorMultiplier(t *testing.T) {
	// GIVEN: the same booking but quoted with the ASAP floor multiplier 1.25
	// WHEN: priced
	// THEN: surge = 39.55 * 0.25 = 9.89, total 49.44

	catalog, cfg := defaultSetup()

	q := pricing.Price(catalog, cfg, []string{"personal-care"}, pricing.ASAPFloorMultiplier, nil)
	require.NotNil(t, q)

	assert.True(t, q.SurgeAmount.Equal(money("9.89")), "surge: %s", q.SurgeAmount)
	assert.True(t, q.Total.Equal(money("49.44")), "total: %s", q.Total)
}

func TestPrice_EmptySelectionReturnsNil(t *testing.T) {
	catalog, cfg := defaultSetup()

	assert.Nil(t, pricing.Price(catalog, cfg, nil, decimal.NewFromInt(1), nil))
	assert.Nil(t, pricing.Price(catalog, cfg, []string{}, decimal.NewFromInt(1), nil))
}

func TestPrice_MinimumHoursFloor(t *testing.T) {
	// GIVEN: medication-reminder alone carries 30 included minutes
	// WHEN: priced with MinimumHours=1
	// THEN: billed as a full 60 minutes

	catalog, cfg := defaultSetup()

	q := pricing.Price(catalog, cfg, []string{"medication-reminder"}, decimal.NewFromInt(1), nil)
	require.NotNil(t, q)

	assert.Equal(t, 60, q.BaseMinutes)
	assert.True(t, q.BaseCharge.Equal(money("35.00")))
}

func TestPrice_HighestCategoryWins(t *testing.T) {
	// GIVEN: a mixed selection with a doctor-category task
	// WHEN: priced
	// THEN: the doctor rate ($45/hr) applies to the whole block

	catalog, cfg := defaultSetup()

	q := pricing.Price(catalog, cfg, []string{"personal-care", "doctor-escort"}, decimal.NewFromInt(1), nil)
	require.NotNil(t, q)

	assert.True(t, q.BaseCost.Equal(money("45")), "rate: %s", q.BaseCost)
	assert.Equal(t, 150, q.BaseMinutes)
}

func TestPrice_HospitalOutranksDoctor(t *testing.T) {
	catalog, cfg := defaultSetup()

	q := pricing.Price(catalog, cfg, []string{"doctor-escort", "hospital-discharge"}, decimal.NewFromInt(1), nil)
	require.NotNil(t, q)

	assert.True(t, q.BaseCost.Equal(money("55")), "rate: %s", q.BaseCost)
}

func TestPrice_UnknownTaskIDsContributeNothing(t *testing.T) {
	// GIVEN: a selection containing an id the catalog has never heard of
	// WHEN: priced
	// THEN: the unknown id adds zero minutes and no error

	catalog, cfg := defaultSetup()

	q := pricing.Price(catalog, cfg, []string{"personal-care", "no-such-task"}, decimal.NewFromInt(1), nil)
	require.NotNil(t, q)

	assert.Equal(t, 60, q.BaseMinutes)
}

func TestPrice_ExplicitDurationUsedVerbatim(t *testing.T) {
	// GIVEN: the caller chose 0.5 hours even though tasks total 60 minutes
	// WHEN: priced
	// THEN: 30 minutes, not silently raised to the task sum or the minimum

	catalog, cfg := defaultSetup()

	half := money("0.5")
	q := pricing.Price(catalog, cfg, []string{"personal-care"}, decimal.NewFromInt(1), &half)
	require.NotNil(t, q)

	assert.Equal(t, 30, q.BaseMinutes)
	assert.True(t, q.BaseCharge.Equal(money("17.50")), "base charge: %s", q.BaseCharge)
}

func TestPrice_MinimumFeeRaisesOnlyTotal(t *testing.T) {
	// GIVEN: a quote below the $30 floor (30 explicit minutes at $35/hr
	//        comes to $19.78 with tax)
	// WHEN: priced
	// THEN: Total is bumped to the floor, the breakdown is untouched, and
	//       the flag is set

	catalog, cfg := defaultSetup()

	half := money("0.5")
	q := pricing.Price(catalog, cfg, []string{"personal-care"}, decimal.NewFromInt(1), &half)
	require.NotNil(t, q)

	assert.True(t, q.IsMinimumFeeApplied)
	assert.True(t, q.Total.Equal(money("30")), "total: %s", q.Total)
	assert.True(t, q.Subtotal.Equal(money("19.78")), "subtotal: %s", q.Subtotal)
	assert.True(t, q.Total.GreaterThan(q.Subtotal.Add(q.SurgeAmount)))
}

func TestPrice_DurationOverrideChangesIncludedMinutes(t *testing.T) {
	catalog, cfg := defaultSetup()
	cfg.DurationOverrides = map[string]int{"personal-care": 90}

	q := pricing.Price(catalog, cfg, []string{"personal-care"}, decimal.NewFromInt(1), nil)
	require.NotNil(t, q)

	assert.Equal(t, 90, q.BaseMinutes)
}

// =============================================================================
// CONFIG CLAMPING
// =============================================================================

func TestClamp_BoundedFields(t *testing.T) {
	cfg := pricing.Config{
		OvertimeRatePercentage: 500,
		OvertimeGraceMinutes:   -5,
		OvertimeBlockMinutes:   5,
		SurgeMultiplier:        money("0.5"),
		MinimumHours:           money("-1"),
		MinimumBookingFee:      money("-10"),
	}

	got := cfg.Clamp()

	assert.Equal(t, 100, got.OvertimeRatePercentage)
	assert.Equal(t, 0, got.OvertimeGraceMinutes)
	assert.Equal(t, 15, got.OvertimeBlockMinutes)
	assert.True(t, got.SurgeMultiplier.Equal(money("1")))
	assert.True(t, got.MinimumHours.IsZero())
	assert.True(t, got.MinimumBookingFee.IsZero())
}

func TestClamp_InRangeValuesUntouched(t *testing.T) {
	cfg := pricing.DefaultConfig()
	got := cfg.Clamp()

	assert.Equal(t, cfg.OvertimeRatePercentage, got.OvertimeRatePercentage)
	assert.Equal(t, cfg.OvertimeGraceMinutes, got.OvertimeGraceMinutes)
	assert.Equal(t, cfg.OvertimeBlockMinutes, got.OvertimeBlockMinutes)
}

// =============================================================================
// OVERTIME CHARGE (client side)
// =============================================================================

func TestOvertimeCharge_RoundsUpToBlocks(t *testing.T) {
	// GIVEN: 31 overtime minutes, 30-minute blocks, 50% premium, $35/hr
	// WHEN: charged
	// THEN: billed as two full blocks (60 min): 35 * 1.5 = 52.50

	cfg := pricing.DefaultConfig()

	got := pricing.OvertimeCharge(cfg, money("35"), 31)
	assert.True(t, got.Equal(money("52.50")), "charge: %s", got)
}

func TestOvertimeCharge_ExactBlockBoundary(t *testing.T) {
	cfg := pricing.DefaultConfig()

	got := pricing.OvertimeCharge(cfg, money("35"), 30)
	assert.True(t, got.Equal(money("26.25")), "charge: %s", got)
}

func TestOvertimeCharge_ZeroMinutes(t *testing.T) {
	cfg := pricing.DefaultConfig()

	assert.True(t, pricing.OvertimeCharge(cfg, money("35"), 0).IsZero())
	assert.True(t, pricing.OvertimeCharge(cfg, money("35"), -10).IsZero())
}
