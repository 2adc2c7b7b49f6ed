package profitability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odontoflow/economics-engine/internal/costing"
	"github.com/odontoflow/economics-engine/internal/period"
)

func wholeMarch() period.Period {
	return period.WholeMonth(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
}

func TestComputeReport(t *testing.T) {
	// Revenue 100 000, variable 15 000, configured fixed 40 000 monthly,
	// depreciation 5 000 monthly, whole month so no proration.
	treatments := []Treatment{
		{ID: "t1", PriceCents: 60_000, VariableCostCents: 10_000},
		{ID: "t2", PriceCents: 40_000, VariableCostCents: 5_000},
	}
	expenses := []Expense{
		{ID: "e1", AmountCents: 38_000},
	}
	fixedCosts := []costing.FixedCostItem{
		{ID: "rent", AmountCents: 25_000},
		{ID: "salaries", AmountCents: 15_000},
	}
	assets := []costing.Asset{
		{ID: "chair", PurchasePriceCents: 300_000, DepreciationMonths: 60},
	}

	r := Compute("clinic-1", wholeMarch(), treatments, expenses, fixedCosts, assets)

	assert.Equal(t, int64(100_000), r.RevenueCents)
	assert.Equal(t, int64(15_000), r.Costs.VariableCents)
	assert.Equal(t, int64(38_000), r.Costs.FixedRealCents)
	assert.Equal(t, int64(40_000), r.Costs.FixedConfiguredCents)
	assert.Equal(t, int64(5_000), r.Costs.DepreciationCents)

	assert.Equal(t, int64(85_000), r.Profits.GrossProfitCents)
	assert.Equal(t, 85.0, r.Profits.GrossMarginPct)
	assert.Equal(t, int64(45_000), r.Profits.OperatingProfitCents)
	assert.Equal(t, int64(50_000), r.Profits.EBITDACents)
	assert.Equal(t, int64(45_000), r.Profits.NetProfitCents)
	assert.LessOrEqual(t, r.Profits.EBITDACents, r.RevenueCents)
	assert.Empty(t, r.Warnings)

	assert.Equal(t, int64(62_000), r.Profits.RealProfitCents)
	assert.Equal(t, int64(40_000), r.Profits.TheoreticalProfitCents)
	assert.Equal(t, int64(22_000), r.Profits.DifferenceCents)

	assert.Equal(t, 2, r.TreatmentsCount)
	assert.Equal(t, 1, r.ExpensesCount)
	assert.Equal(t, 1.0, r.Period.ProrationFactor)
}

func TestComputeReportZeroRevenue(t *testing.T) {
	r := Compute("clinic-1", wholeMarch(), nil, nil, nil, nil)
	assert.Zero(t, r.RevenueCents)
	assert.Zero(t, r.Profits.GrossMarginPct)
	assert.Zero(t, r.Profits.NetMarginPct)
}

func TestComputeReportProratesMonthlyFigures(t *testing.T) {
	// 11 days of a 29-day February.
	p, err := period.Resolve("2024-02-10", "2024-02-20", time.Time{})
	require.NoError(t, err)
	require.Equal(t, 11, p.Days)
	require.Equal(t, 29, p.DaysInMonth)

	fixedCosts := []costing.FixedCostItem{{ID: "rent", AmountCents: 290_000}}
	assets := []costing.Asset{{ID: "cbct", PurchasePriceCents: 580_000, DepreciationMonths: 10}}

	r := Compute("clinic-1", p, nil, nil, fixedCosts, assets)

	// 290 000 * 11/29 = 110 000; monthly depreciation 58 000 * 11/29 = 22 000.
	assert.Equal(t, int64(110_000), r.Costs.FixedConfiguredCents)
	assert.Equal(t, int64(22_000), r.Costs.DepreciationCents)
}

func TestComputeReportMalformedAssetWarns(t *testing.T) {
	assets := []costing.Asset{
		{ID: "good", PurchasePriceCents: 120_000, DepreciationMonths: 12},
		{ID: "bad", Name: "Broken scanner", PurchasePriceCents: 990_000, DepreciationMonths: 0},
	}
	r := Compute("clinic-1", wholeMarch(), nil, nil, nil, assets)

	assert.Equal(t, int64(10_000), r.Costs.DepreciationCents)
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "data_inconsistency", r.Warnings[0].Code)
	assert.Equal(t, "bad", r.Warnings[0].RecordID)
}

func TestComputeReportEBITDAAboveRevenueWarns(t *testing.T) {
	// Negative snapshot variable cost is the kind of upstream corruption
	// that pushes EBITDA above revenue. It must be surfaced, never clamped.
	treatments := []Treatment{{ID: "t1", PriceCents: 10_000, VariableCostCents: -20_000}}
	assets := []costing.Asset{{ID: "a", PurchasePriceCents: 60_000, DepreciationMonths: 12}}

	r := Compute("clinic-1", wholeMarch(), treatments, nil, nil, assets)

	assert.Greater(t, r.Profits.EBITDACents, r.RevenueCents)
	require.NotEmpty(t, r.Warnings)
	assert.Equal(t, "data_inconsistency", r.Warnings[len(r.Warnings)-1].Code)
}
