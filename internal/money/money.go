// Package money implements the integer-cent arithmetic used by the
// economics engine. All monetary values are stored as int64 cents; floats
// appear only as intermediate ratios that are immediately rounded back to
// cents. The rounding policy everywhere is round-half-up (half away from
// zero goes toward positive infinity, matching Math.round semantics the
// historical pricing data was produced with).
package money

import (
	"errors"
	"math"
)

// ErrInvalidStep is returned by RoundToStep for a non-positive step.
var ErrInvalidStep = errors.New("money: step must be positive")

// Round converts an intermediate float ratio to integer cents, half up.
func Round(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// RoundRatio rounds num/den to integer cents, half up. den must be non-zero;
// callers guard the denominator because a zero denominator means a distinct
// domain state (not-ready, zero sales) rather than a zero amount.
func RoundRatio(num, den int64) int64 {
	return Round(float64(num) / float64(den))
}

// RoundToStep rounds an amount to the nearest multiple of step, half up.
// Used when suggesting a display price for a tariff (e.g. nearest 50 pesos).
func RoundToStep(amountCents, stepCents int64) (int64, error) {
	if stepCents <= 0 {
		return 0, ErrInvalidStep
	}
	return Round(float64(amountCents)/float64(stepCents)) * stepCents, nil
}

// Percent applies pct (0..100) to an amount and rounds to cents.
func Percent(amountCents int64, pct float64) int64 {
	return Round(float64(amountCents) * pct / 100)
}

// DisplayPct rounds a percentage to one decimal place for display. Internal
// math stays in integer cents; this is applied only at the response edge.
func DisplayPct(pct float64) float64 {
	return math.Floor(pct*10+0.5) / 10
}

// RatioPct returns 100*num/den rounded to one decimal, or 0 when den is 0.
func RatioPct(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return DisplayPct(float64(num) / float64(den) * 100)
}
