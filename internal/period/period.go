// Package period maps reporting date ranges onto fractions of a reference
// month so that monthly fixed-cost and depreciation figures can be prorated.
package period

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for report boundaries, inclusive both ends.
const DateLayout = "2006-01-02"

// ErrInvalidRange wraps every date-range validation failure from Resolve, so
// callers can report the problem as caller error rather than engine failure.
var ErrInvalidRange = errors.New("period: invalid date range")

// Period is an inclusive [Start, End] range resolved against a reference
// month (the month containing Start).
type Period struct {
	Start time.Time
	End   time.Time

	// Days is the inclusive day count of the range.
	Days int
	// DaysInMonth is the calendar length of the reference month.
	DaysInMonth int
}

// Factor is the proration multiplier for monthly amounts.
func (p Period) Factor() float64 {
	return float64(p.Days) / float64(p.DaysInMonth)
}

// Prorate scales a monthly cent amount onto the period, rounding half up.
func (p Period) Prorate(monthlyCents int64) int64 {
	return int64(float64(monthlyCents)*p.Factor() + 0.5)
}

// StartString returns the ISO start date.
func (p Period) StartString() string { return p.Start.Format(DateLayout) }

// EndString returns the ISO end date.
func (p Period) EndString() string { return p.End.Format(DateLayout) }

// Resolve builds a Period from optional ISO dates. With both dates empty the
// period is the whole month containing now, so the proration factor is
// exactly 1. now is caller-supplied; the engine itself never reads the clock.
func Resolve(startStr, endStr string, now time.Time) (Period, error) {
	if startStr == "" && endStr == "" {
		return WholeMonth(now), nil
	}
	if startStr == "" || endStr == "" {
		return Period{}, fmt.Errorf("%w: both start and end must be provided, or neither", ErrInvalidRange)
	}

	start, err := time.ParseInLocation(DateLayout, startStr, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: bad start date %q", ErrInvalidRange, startStr)
	}
	end, err := time.ParseInLocation(DateLayout, endStr, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: bad end date %q", ErrInvalidRange, endStr)
	}
	if end.Before(start) {
		return Period{}, fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidRange, endStr, startStr)
	}

	return Period{
		Start:       start,
		End:         end,
		Days:        int(end.Sub(start).Hours()/24) + 1,
		DaysInMonth: daysInMonth(start),
	}, nil
}

// WholeMonth returns the period covering the full month containing t.
func WholeMonth(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	days := daysInMonth(start)
	return Period{
		Start:       start,
		End:         start.AddDate(0, 0, days-1),
		Days:        days,
		DaysInMonth: days,
	}
}

func daysInMonth(t time.Time) int {
	// day 0 of the next month is the last day of this one
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
