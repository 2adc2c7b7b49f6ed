// Package profitability builds period profit reports from realized
// treatments and recorded expenses. Treatment cost fields are immutable
// snapshots taken when the treatment was completed; this package only sums
// them and never re-derives a cost from current supply or service state.
package profitability

import (
	"fmt"

	"github.com/odontoflow/economics-engine/internal/costing"
	"github.com/odontoflow/economics-engine/internal/money"
	"github.com/odontoflow/economics-engine/internal/period"
)

// Treatment carries the snapshot fields a profit report needs.
type Treatment struct {
	ID                string
	PriceCents        int64
	VariableCostCents int64
}

// Expense is one recorded outgoing payment.
type Expense struct {
	ID          string
	AmountCents int64
	IsVariable  bool
}

// Warning flags a data problem found while computing a report. The
// computation proceeds with the offending record contributing zero.
type Warning struct {
	Code     string `json:"code"`
	RecordID string `json:"record_id,omitempty"`
	Message  string `json:"message"`
}

// Costs groups the cost side of the report.
type Costs struct {
	VariableCents        int64 `json:"variable_cents"`
	FixedRealCents       int64 `json:"fixed_real_cents"`
	FixedConfiguredCents int64 `json:"fixed_configured_cents"`
	DepreciationCents    int64 `json:"depreciation_cents"`
}

// Profits groups the derived profit lines. RealProfit is revenue minus
// recorded expenses (cash view); the remaining lines use configured costs
// (pricing view). NetProfit equals OperatingProfit: the model carries no
// tax or interest, and the response says so in Explanation.
type Profits struct {
	GrossProfitCents       int64   `json:"gross_profit_cents"`
	GrossMarginPct         float64 `json:"gross_margin_pct"`
	OperatingProfitCents   int64   `json:"operating_profit_cents"`
	OperatingMarginPct     float64 `json:"operating_margin_pct"`
	EBITDACents            int64   `json:"ebitda_cents"`
	NetProfitCents         int64   `json:"net_profit_cents"`
	NetMarginPct           float64 `json:"net_margin_pct"`
	RealProfitCents        int64   `json:"real_profit_cents"`
	RealMarginPct          float64 `json:"real_margin_pct"`
	TheoreticalProfitCents int64   `json:"theoretical_profit_cents"`
	DifferenceCents        int64   `json:"difference_cents"`
}

// Benchmarks are reference industry targets returned for comparison only.
type Benchmarks struct {
	GrossMarginTargetPct     float64 `json:"gross_margin_target_pct"`
	OperatingMarginTargetPct float64 `json:"operating_margin_target_pct"`
	EBITDAMarginTargetPct    float64 `json:"ebitda_margin_target_pct"`
	OverheadRatioTargetPct   float64 `json:"overhead_ratio_target_pct"`
}

// DefaultBenchmarks are dental-industry reference targets.
var DefaultBenchmarks = Benchmarks{
	GrossMarginTargetPct:     85,
	OperatingMarginTargetPct: 20,
	EBITDAMarginTargetPct:    17.5,
	OverheadRatioTargetPct:   63,
}

// PeriodInfo echoes the resolved reporting window.
type PeriodInfo struct {
	Start           string  `json:"start"`
	End             string  `json:"end"`
	Days            int     `json:"days"`
	ProrationFactor float64 `json:"proration_factor"`
}

// Report is a clinic's profitability over one period.
type Report struct {
	ClinicID        string     `json:"clinic_id"`
	Period          PeriodInfo `json:"period"`
	RevenueCents    int64      `json:"revenue_cents"`
	Costs           Costs      `json:"costs"`
	Profits         Profits    `json:"profits"`
	Benchmarks      Benchmarks `json:"benchmarks"`
	TreatmentsCount int        `json:"treatments_count"`
	ExpensesCount   int        `json:"expenses_count"`
	Warnings        []Warning  `json:"warnings,omitempty"`
	Explanation     string     `json:"explanation"`
}

const explanation = "net profit equals operating profit; taxes and interest are not modeled"

// Compute derives a profitability report. Monthly figures (configured fixed
// costs, depreciation) are prorated onto the period; realized figures
// (revenue, snapshot variable costs, recorded expenses) are summed as-is.
// An EBITDA above revenue is surfaced as a warning and never clamped.
func Compute(clinicID string, p period.Period, treatments []Treatment, expenses []Expense,
	fixedCosts []costing.FixedCostItem, assets []costing.Asset) Report {

	var revenue, variable int64
	for _, t := range treatments {
		revenue += t.PriceCents
		variable += t.VariableCostCents
	}

	var fixedReal int64
	for _, e := range expenses {
		fixedReal += e.AmountCents
	}

	var monthlyFixed int64
	for _, fc := range fixedCosts {
		monthlyFixed += fc.AmountCents
	}

	var warnings []Warning
	var monthlyDepreciation int64
	for _, a := range assets {
		if a.DepreciationMonths <= 0 {
			warnings = append(warnings, Warning{
				Code:     "data_inconsistency",
				RecordID: a.ID,
				Message:  fmt.Sprintf("asset %q has a non-positive depreciation horizon; it contributes zero", a.Name),
			})
			continue
		}
		monthlyDepreciation += costing.MonthlyDepreciation(a)
	}

	fixedConfigured := p.Prorate(monthlyFixed)
	depreciation := p.Prorate(monthlyDepreciation)

	gross := revenue - variable
	operating := gross - fixedConfigured
	ebitda := operating + depreciation
	net := operating

	real := revenue - fixedReal
	theoretical := revenue - variable - fixedConfigured - depreciation

	if ebitda > revenue {
		warnings = append(warnings, Warning{
			Code:    "data_inconsistency",
			Message: fmt.Sprintf("ebitda %d exceeds revenue %d; check treatment cost snapshots", ebitda, revenue),
		})
	}

	return Report{
		ClinicID: clinicID,
		Period: PeriodInfo{
			Start:           p.StartString(),
			End:             p.EndString(),
			Days:            p.Days,
			ProrationFactor: p.Factor(),
		},
		RevenueCents: revenue,
		Costs: Costs{
			VariableCents:        variable,
			FixedRealCents:       fixedReal,
			FixedConfiguredCents: fixedConfigured,
			DepreciationCents:    depreciation,
		},
		Profits: Profits{
			GrossProfitCents:       gross,
			GrossMarginPct:         money.DisplayPct(money.RatioPct(gross, revenue)),
			OperatingProfitCents:   operating,
			OperatingMarginPct:     money.DisplayPct(money.RatioPct(operating, revenue)),
			EBITDACents:            ebitda,
			NetProfitCents:         net,
			NetMarginPct:           money.DisplayPct(money.RatioPct(net, revenue)),
			RealProfitCents:        real,
			RealMarginPct:          money.DisplayPct(money.RatioPct(real, revenue)),
			TheoreticalProfitCents: theoretical,
			DifferenceCents:        real - theoretical,
		},
		Benchmarks:      DefaultBenchmarks,
		TreatmentsCount: len(treatments),
		ExpensesCount:   len(expenses),
		Warnings:        warnings,
		Explanation:     explanation,
	}
}
