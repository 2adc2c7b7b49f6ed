// Package costing derives a clinic's cost allocation rate from its
// configured work pattern, recurring fixed costs, and depreciable assets,
// and prices service recipes from supply portions.
package costing

import (
	"errors"
	"fmt"

	"github.com/odontoflow/economics-engine/internal/money"
)

// ErrNotReady indicates the clinic cost context cannot be computed: missing
// time settings, zero effective minutes, or an empty fixed-cost pool. Callers
// must treat this as a blocked precondition, never as zero cost.
var ErrNotReady = errors.New("costing: clinic cost context not ready")

// TimeSettings is a clinic's configured monthly work pattern.
type TimeSettings struct {
	WorkDays           int
	HoursPerDay        float64
	RealUtilizationPct float64
}

// FixedCostItem is one recurring monthly cost (rent, salaries, ...).
type FixedCostItem struct {
	ID          string
	Name        string
	AmountCents int64
}

// Asset is a depreciable capital purchase.
type Asset struct {
	ID                 string
	Name               string
	PurchasePriceCents int64
	DepreciationMonths int
}

// RecipeLine is one bill-of-materials entry for a service, joined to its
// supply's purchase price and portion count.
type RecipeLine struct {
	SupplyID       string
	SupplyName     string
	Qty            float64
	SupplyPrice    int64
	SupplyPortions int
}

// EffectiveMinutes converts a work pattern into billable minutes per month.
// The utilization percentage is clamped to [0, 100].
func EffectiveMinutes(ts TimeSettings) int64 {
	pct := ts.RealUtilizationPct
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return money.Round(float64(ts.WorkDays) * ts.HoursPerDay * 60 * pct / 100)
}

// MonthlyDepreciation returns an asset's straight-line monthly charge.
// An asset with a non-positive depreciation horizon contributes zero.
func MonthlyDepreciation(a Asset) int64 {
	if a.DepreciationMonths <= 0 {
		return 0
	}
	return money.RoundRatio(a.PurchasePriceCents, int64(a.DepreciationMonths))
}

// AccumulatedDepreciation returns the total depreciation charged after the
// given number of elapsed months.
func AccumulatedDepreciation(monthlyCents int64, elapsedMonths int) int64 {
	if elapsedMonths <= 0 {
		return 0
	}
	return monthlyCents * int64(elapsedMonths)
}

// BookValue is the remaining undepreciated value of an asset, floored at zero.
func BookValue(purchasePriceCents, accumulatedCents int64) int64 {
	if accumulatedCents >= purchasePriceCents {
		return 0
	}
	return purchasePriceCents - accumulatedCents
}

// MonthlyFixedPool sums configured fixed costs plus asset depreciation into
// the monthly fixed-cost pool. Assets with a non-positive depreciation
// horizon contribute zero and are reported back by id so the caller can
// surface the inconsistency without aborting.
func MonthlyFixedPool(items []FixedCostItem, assets []Asset) (totalCents int64, malformed []string) {
	for _, it := range items {
		totalCents += it.AmountCents
	}
	for _, a := range assets {
		if a.DepreciationMonths <= 0 {
			malformed = append(malformed, a.ID)
			continue
		}
		totalCents += MonthlyDepreciation(a)
	}
	return totalCents, malformed
}

// RecipeVariableCost sums a service's bill of materials. Each line is rounded
// independently before summing; this round-then-sum policy matches the stored
// tariff history and must not be consolidated into a sum-then-round.
// Lines whose supply has no positive portion count contribute zero and are
// reported by supply id.
func RecipeVariableCost(lines []RecipeLine) (totalCents int64, malformed []string) {
	for _, l := range lines {
		if l.SupplyPortions <= 0 {
			malformed = append(malformed, l.SupplyID)
			continue
		}
		if l.Qty <= 0 {
			continue
		}
		costPerPortion := float64(l.SupplyPrice) / float64(l.SupplyPortions)
		totalCents += money.Round(costPerPortion * l.Qty)
	}
	return totalCents, malformed
}

// CostContext is a clinic's resolved allocation rate. Ready is a distinct
// state: a clinic without time settings or fixed costs must block tariff
// creation rather than silently price services as free.
type CostContext struct {
	ClinicID           string
	Ready              bool
	CostPerMinuteCents int64
	EffectiveMinutes   int64
	MonthlyFixedCents  int64
}

// BuildCostContext combines the three configuration inputs. settings may be
// nil when the clinic has never configured its time budget.
func BuildCostContext(clinicID string, settings *TimeSettings, items []FixedCostItem, assets []Asset) (CostContext, []string) {
	pool, malformed := MonthlyFixedPool(items, assets)

	cc := CostContext{ClinicID: clinicID, MonthlyFixedCents: pool}
	if settings == nil {
		return cc, malformed
	}

	cc.EffectiveMinutes = EffectiveMinutes(*settings)
	if cc.EffectiveMinutes <= 0 || pool <= 0 {
		return cc, malformed
	}

	cc.Ready = true
	cc.CostPerMinuteCents = money.RoundRatio(pool, cc.EffectiveMinutes)
	return cc, malformed
}

// FixedContribution allocates the clinic rate over a service duration.
func (cc CostContext) FixedContribution(estMinutes int) (int64, error) {
	if !cc.Ready {
		return 0, ErrNotReady
	}
	if estMinutes <= 0 {
		return 0, fmt.Errorf("costing: estimated minutes must be positive, got %d", estMinutes)
	}
	return money.Round(float64(cc.CostPerMinuteCents) * float64(estMinutes)), nil
}
