// Package equilibrium computes break-even revenue targets and tracks
// progress against them within the current month.
package equilibrium

import (
	"errors"
	"fmt"
	"math"

	"github.com/odontoflow/economics-engine/internal/money"
)

// ErrUnreachableBreakEven means the variable cost ratio is 100% or more, so
// no revenue level can cover fixed costs. It is reported to the caller,
// never masked with a large-but-finite number.
var ErrUnreachableBreakEven = errors.New("equilibrium: contribution margin is zero or negative")

// DefaultSafetyMarginPct pads the break-even target when the caller supplies
// no margin of their own.
const DefaultSafetyMarginPct = 20.0

// Input are the knobs of one break-even calculation.
type Input struct {
	MonthlyFixedCents int64
	VariableCostPct   float64
	WorkDays          int
	SafetyMarginPct   float64
}

// Targets is the computed break-even position.
type Targets struct {
	FixedCostsCents       int64   `json:"fixed_costs_cents"`
	VariableCostPct       float64 `json:"variable_cost_pct"`
	ContributionMarginPct float64 `json:"contribution_margin_pct"`
	BreakEvenRevenueCents int64   `json:"break_even_revenue_cents"`
	SafetyMarginPct       float64 `json:"safety_margin_pct"`
	SafetyMarginCents     int64   `json:"safety_margin_cents"`
	MonthlyTargetCents    int64   `json:"monthly_target_cents"`
	DailyTargetCents      int64   `json:"daily_target_cents"`
	WorkDays              int     `json:"work_days"`
}

// Calculate derives the break-even revenue and the padded monthly and daily
// targets. A contribution margin of zero or below is unreachable and fails;
// a non-positive work day count fails rather than yielding a zero daily
// target that would silently disable pacing.
func Calculate(in Input) (Targets, error) {
	contribution := 100 - in.VariableCostPct
	if contribution <= 0 {
		return Targets{}, fmt.Errorf("variable cost ratio %.1f%%: %w", in.VariableCostPct, ErrUnreachableBreakEven)
	}
	if in.WorkDays <= 0 {
		return Targets{}, fmt.Errorf("equilibrium: work days must be positive, got %d", in.WorkDays)
	}

	safetyPct := in.SafetyMarginPct
	if safetyPct < 0 {
		safetyPct = 0
	}

	breakEven := money.Round(float64(in.MonthlyFixedCents) * 100 / contribution)
	safety := money.Percent(breakEven, safetyPct)
	monthlyTarget := breakEven + safety
	daily := money.RoundRatio(monthlyTarget, int64(in.WorkDays))

	return Targets{
		FixedCostsCents:       in.MonthlyFixedCents,
		VariableCostPct:       in.VariableCostPct,
		ContributionMarginPct: contribution,
		BreakEvenRevenueCents: breakEven,
		SafetyMarginPct:       safetyPct,
		SafetyMarginCents:     safety,
		MonthlyTargetCents:    monthlyTarget,
		DailyTargetCents:      daily,
		WorkDays:              in.WorkDays,
	}, nil
}

// Progress measures current revenue against a monthly target.
type Progress struct {
	CurrentRevenueCents int64   `json:"current_revenue_cents"`
	RevenueGapCents     int64   `json:"revenue_gap_cents"`
	DaysToBreakEven     int64   `json:"days_to_break_even"`
	ProgressPct         float64 `json:"progress_pct"`
}

// MeasureProgress reports how far current revenue sits from the target at
// the given daily pace. The gap never goes negative and the percentage is
// capped at 100 once the target is reached.
func MeasureProgress(currentCents, targetCents, dailyTargetCents int64) Progress {
	gap := targetCents - currentCents
	if gap < 0 {
		gap = 0
	}

	var days int64
	if dailyTargetCents > 0 {
		days = int64(math.Ceil(float64(gap) / float64(dailyTargetCents)))
	}

	var pct float64
	if targetCents > 0 {
		pct = float64(currentCents) / float64(targetCents) * 100
		if pct > 100 {
			pct = 100
		}
	}

	return Progress{
		CurrentRevenueCents: currentCents,
		RevenueGapCents:     gap,
		DaysToBreakEven:     days,
		ProgressPct:         money.DisplayPct(pct),
	}
}

// RequiredServices is how many sales at the average ticket price cover the
// break-even revenue. Zero when the average price is unknown.
func RequiredServices(breakEvenCents, avgPriceCents int64) int64 {
	if avgPriceCents <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(breakEvenCents) / float64(avgPriceCents)))
}
