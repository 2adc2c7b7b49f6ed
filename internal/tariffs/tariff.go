// Package tariffs computes and persists versioned service prices from the
// clinic's cost allocation rate, the service recipe cost, and a margin.
package tariffs

import (
	"errors"
	"fmt"
	"time"

	"github.com/odontoflow/economics-engine/internal/money"
)

// ErrInvalidServiceDuration blocks tariff creation for a service whose
// estimated duration is not positive. Only that service's tariff fails.
var ErrInvalidServiceDuration = errors.New("tariffs: service must define estimated minutes")

// ErrServiceNotFound indicates the service does not exist for the clinic.
var ErrServiceNotFound = errors.New("tariffs: service not found")

// Tariff is an immutable-once-created versioned price record. A service may
// accumulate versions over time; the current one has IsActive true and a nil
// ValidUntil. Rows are keyed by (service_id, version) at the store.
type Tariff struct {
	ID                      string     `json:"id"`
	ClinicID                string     `json:"clinic_id"`
	ServiceID               string     `json:"service_id"`
	Version                 int        `json:"version"`
	ValidFrom               time.Time  `json:"valid_from"`
	ValidUntil              *time.Time `json:"valid_until"`
	FixedCostPerMinuteCents int64      `json:"fixed_cost_per_minute_cents"`
	VariableCostCents       int64      `json:"variable_cost_cents"`
	MarginPct               float64    `json:"margin_pct"`
	PriceCents              int64      `json:"price_cents"`
	RoundedPriceCents       int64      `json:"rounded_price_cents"`
	IsActive                bool       `json:"is_active"`
}

// Quote is the decomposed theoretical price of one service.
type Quote struct {
	FixedContributionCents int64 `json:"fixed_contribution_cents"`
	VariableCostCents      int64 `json:"variable_cost_cents"`
	BaseCostCents          int64 `json:"base_cost_cents"`
	MarginAmountCents      int64 `json:"margin_amount_cents"`
	PriceCents             int64 `json:"price_cents"`
}

// ComputeQuote prices a service: cost-per-minute times duration for the
// fixed share, plus recipe cost, plus margin on the base. The invariant
// PriceCents == BaseCostCents + MarginAmountCents always holds because the
// margin is rounded once and added, never recomputed from the total.
func ComputeQuote(costPerMinuteCents int64, estMinutes int, variableCostCents int64, marginPct float64) Quote {
	fixed := money.Round(float64(costPerMinuteCents) * float64(estMinutes))
	base := fixed + variableCostCents
	margin := money.Percent(base, marginPct)
	return Quote{
		FixedContributionCents: fixed,
		VariableCostCents:      variableCostCents,
		BaseCostCents:          base,
		MarginAmountCents:      margin,
		PriceCents:             base + margin,
	}
}

// BreakEvenPrice is the price that exactly covers a service's allocated
// fixed share and recipe cost.
func BreakEvenPrice(fixedContributionCents, variableCostCents int64) int64 {
	return fixedContributionCents + variableCostCents
}

// RequiredMarginPct returns the margin percentage needed to reach a target
// price from a base cost, floored at zero when the target is below cost.
func RequiredMarginPct(baseCostCents, targetPriceCents int64) (float64, error) {
	if baseCostCents <= 0 {
		return 0, fmt.Errorf("tariffs: base cost must be positive, got %d", baseCostCents)
	}
	if targetPriceCents <= baseCostCents {
		return 0, nil
	}
	return float64(targetPriceCents-baseCostCents) / float64(baseCostCents) * 100, nil
}

// SuggestDisplayPrice rounds a computed price to the nearest step for
// charging (e.g. nearest 5 000 cents). The theoretical price is kept
// alongside the suggestion on the stored tariff.
func SuggestDisplayPrice(priceCents, stepCents int64) (int64, error) {
	return money.RoundToStep(priceCents, stepCents)
}
