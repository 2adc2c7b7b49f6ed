package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveMinutes(t *testing.T) {
	// 20 days * 7h * 60 * 70% = 5880
	got := EffectiveMinutes(TimeSettings{WorkDays: 20, HoursPerDay: 7, RealUtilizationPct: 70})
	if got != 5880 {
		t.Errorf("EffectiveMinutes = %d, want 5880", got)
	}

	// 22 days * 8h * 60 * 75% = 7920
	got = EffectiveMinutes(TimeSettings{WorkDays: 22, HoursPerDay: 8, RealUtilizationPct: 75})
	if got != 7920 {
		t.Errorf("EffectiveMinutes = %d, want 7920", got)
	}

	// full utilization
	got = EffectiveMinutes(TimeSettings{WorkDays: 20, HoursPerDay: 8, RealUtilizationPct: 100})
	if got != 9600 {
		t.Errorf("EffectiveMinutes = %d, want 9600", got)
	}
}

func TestEffectiveMinutesClampsUtilization(t *testing.T) {
	if got := EffectiveMinutes(TimeSettings{WorkDays: 20, HoursPerDay: 7, RealUtilizationPct: 150}); got != 8400 {
		t.Errorf("utilization above 100 should clamp: got %d, want 8400", got)
	}
	if got := EffectiveMinutes(TimeSettings{WorkDays: 20, HoursPerDay: 7, RealUtilizationPct: -10}); got != 0 {
		t.Errorf("negative utilization should clamp to zero: got %d", got)
	}
}

func TestMonthlyDepreciation(t *testing.T) {
	if got := MonthlyDepreciation(Asset{PurchasePriceCents: 6_762_000, DepreciationMonths: 36}); got != 187_833 {
		t.Errorf("MonthlyDepreciation = %d, want 187833", got)
	}
	if got := MonthlyDepreciation(Asset{PurchasePriceCents: 1_200_000, DepreciationMonths: 12}); got != 100_000 {
		t.Errorf("MonthlyDepreciation exact = %d, want 100000", got)
	}
	if got := MonthlyDepreciation(Asset{PurchasePriceCents: 1_000_000, DepreciationMonths: 7}); got != 142_857 {
		t.Errorf("MonthlyDepreciation = %d, want 142857", got)
	}
	if got := MonthlyDepreciation(Asset{PurchasePriceCents: 1_000_000, DepreciationMonths: 0}); got != 0 {
		t.Errorf("zero-horizon asset must contribute zero, got %d", got)
	}
}

func TestDepreciationSchedule(t *testing.T) {
	monthly := MonthlyDepreciation(Asset{PurchasePriceCents: 6_762_000, DepreciationMonths: 36})

	assert.Equal(t, int64(2_253_996), AccumulatedDepreciation(monthly, 12))
	assert.Equal(t, int64(0), AccumulatedDepreciation(monthly, 0))
	assert.Equal(t, int64(4_508_004), BookValue(6_762_000, 2_253_996))
	assert.Equal(t, int64(0), BookValue(1_000_000, 1_000_000))
	assert.Equal(t, int64(0), BookValue(1_000_000, 1_500_000))
}

func TestMonthlyFixedPool(t *testing.T) {
	items := []FixedCostItem{
		{ID: "rent", AmountCents: 1_500_000},
		{ID: "salaries", AmountCents: 195_500},
	}
	assets := []Asset{
		{ID: "chair", PurchasePriceCents: 6_762_000, DepreciationMonths: 36}, // 187,833/mo
		{ID: "broken", PurchasePriceCents: 999_999, DepreciationMonths: 0},   // skipped
	}

	total, malformed := MonthlyFixedPool(items, assets)
	if total != 1_883_333 {
		t.Errorf("MonthlyFixedPool = %d, want 1883333", total)
	}
	if len(malformed) != 1 || malformed[0] != "broken" {
		t.Errorf("malformed = %v, want [broken]", malformed)
	}
}

func TestMonthlyFixedPoolEmpty(t *testing.T) {
	total, malformed := MonthlyFixedPool(nil, nil)
	if total != 0 || malformed != nil {
		t.Errorf("empty inputs: total = %d, malformed = %v", total, malformed)
	}
}

func TestRecipeVariableCostRoundsEachLine(t *testing.T) {
	lines := []RecipeLine{
		// 1000/3 per portion = 333.33; * 1 -> 333
		{SupplyID: "a", Qty: 1, SupplyPrice: 1_000, SupplyPortions: 3},
		// 1000/3 * 2 = 666.67 -> 667
		{SupplyID: "b", Qty: 2, SupplyPrice: 1_000, SupplyPortions: 3},
	}
	total, _ := RecipeVariableCost(lines)
	// round-then-sum: 333 + 667 = 1000. Sum-then-round would also give 1000
	// here, so pin down a case where the policies diverge:
	if total != 1_000 {
		t.Errorf("RecipeVariableCost = %d, want 1000", total)
	}

	diverging := []RecipeLine{
		// 100/3 = 33.33 -> 33 (three lines: 99, versus round(100) = 100)
		{SupplyID: "x", Qty: 1, SupplyPrice: 100, SupplyPortions: 3},
		{SupplyID: "y", Qty: 1, SupplyPrice: 100, SupplyPortions: 3},
		{SupplyID: "z", Qty: 1, SupplyPrice: 100, SupplyPortions: 3},
	}
	total, _ = RecipeVariableCost(diverging)
	if total != 99 {
		t.Errorf("round-each-line policy: got %d, want 99", total)
	}
}

func TestRecipeVariableCostExample(t *testing.T) {
	lines := []RecipeLine{
		{SupplyID: "gloves", Qty: 2, SupplyPrice: 500, SupplyPortions: 1},
		{SupplyID: "gauze", Qty: 5, SupplyPrice: 200, SupplyPortions: 1},
		{SupplyID: "fluoride", Qty: 1, SupplyPrice: 1_318, SupplyPortions: 1},
	}
	total, malformed := RecipeVariableCost(lines)
	if total != 3_318 {
		t.Errorf("RecipeVariableCost = %d, want 3318", total)
	}
	if malformed != nil {
		t.Errorf("malformed = %v, want none", malformed)
	}
}

func TestRecipeVariableCostSkipsBadPortions(t *testing.T) {
	lines := []RecipeLine{
		{SupplyID: "ok", Qty: 1, SupplyPrice: 5_000, SupplyPortions: 1},
		{SupplyID: "bad", Qty: 3, SupplyPrice: 9_999, SupplyPortions: 0},
	}
	total, malformed := RecipeVariableCost(lines)
	if total != 5_000 {
		t.Errorf("RecipeVariableCost = %d, want 5000 (bad line contributes zero)", total)
	}
	if len(malformed) != 1 || malformed[0] != "bad" {
		t.Errorf("malformed = %v, want [bad]", malformed)
	}
}

func TestBuildCostContextScenario(t *testing.T) {
	settings := &TimeSettings{WorkDays: 20, HoursPerDay: 7, RealUtilizationPct: 70}
	items := []FixedCostItem{{ID: "pool", AmountCents: 1_883_333}}

	cc, malformed := BuildCostContext("clinic-1", settings, items, nil)

	assert.Empty(t, malformed)
	assert.True(t, cc.Ready)
	assert.Equal(t, int64(5880), cc.EffectiveMinutes)
	// round(1,883,333 / 5880) = 320
	assert.Equal(t, int64(320), cc.CostPerMinuteCents)
}

func TestBuildCostContextNotReady(t *testing.T) {
	items := []FixedCostItem{{AmountCents: 1_000_000}}

	// no time settings
	cc, _ := BuildCostContext("c", nil, items, nil)
	if cc.Ready {
		t.Error("missing settings must not be ready")
	}

	// zero effective minutes
	cc, _ = BuildCostContext("c", &TimeSettings{WorkDays: 0, HoursPerDay: 7, RealUtilizationPct: 70}, items, nil)
	if cc.Ready {
		t.Error("zero effective minutes must not be ready")
	}

	// empty fixed-cost pool
	cc, _ = BuildCostContext("c", &TimeSettings{WorkDays: 20, HoursPerDay: 7, RealUtilizationPct: 70}, nil, nil)
	if cc.Ready {
		t.Error("zero fixed-cost pool must not be ready")
	}
	if cc.CostPerMinuteCents != 0 {
		t.Errorf("not-ready context must not carry a rate, got %d", cc.CostPerMinuteCents)
	}
}

func TestFixedContribution(t *testing.T) {
	cc := CostContext{Ready: true, CostPerMinuteCents: 320}

	got, err := cc.FixedContribution(60)
	if err != nil {
		t.Fatalf("FixedContribution failed: %v", err)
	}
	if got != 19_200 {
		t.Errorf("FixedContribution = %d, want 19200", got)
	}

	if _, err := cc.FixedContribution(0); err == nil {
		t.Error("expected error for non-positive minutes")
	}

	notReady := CostContext{}
	if _, err := notReady.FixedContribution(60); err != ErrNotReady {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
}
