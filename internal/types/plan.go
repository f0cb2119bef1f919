package types

import (
	"time"

	ierr "github.com/nextstep/nextstep/internal/errors"
)

// PlanType is the closed set of subscription plans. Each maps to a fixed
// number of calendar months.
type PlanType string

const (
	Plan1Month  PlanType = "1_MONTH"
	Plan3Month  PlanType = "3_MONTH"
	Plan6Month  PlanType = "6_MONTH"
	Plan12Month PlanType = "12_MONTH"
)

var planMonths = map[PlanType]int{
	Plan1Month:  1,
	Plan3Month:  3,
	Plan6Month:  6,
	Plan12Month: 12,
}

// Months returns the plan duration in calendar months. Zero for unknown plans;
// callers must Validate first.
func (p PlanType) Months() int {
	return planMonths[p]
}

func (p PlanType) String() string {
	return string(p)
}

// Validate rejects plan tags outside the closed enumeration. An unknown plan
// is a configuration error, never something to recover from at runtime.
func (p PlanType) Validate() error {
	if _, ok := planMonths[p]; !ok {
		return ierr.NewErrorf("invalid plan: %s", p).
			WithHint("Plan must be one of: 1_MONTH, 3_MONTH, 6_MONTH, 12_MONTH").
			WithReportableDetails(map[string]any{"plan": p}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ExpiryFrom adds the plan's month count to start using calendar-month
// arithmetic. The day of month is preserved; when the target month is
// shorter the date clamps to its last day (Jan 31 + 1 month = Feb 28/29).
// time.AddDate normalizes overflow into the next month, so the clamp is
// done explicitly.
func (p PlanType) ExpiryFrom(start time.Time) time.Time {
	months := p.Months()
	year, month, day := start.Date()

	targetYear := year
	targetMonth := int(month) + months
	for targetMonth > 12 {
		targetMonth -= 12
		targetYear++
	}

	if last := daysInMonth(targetYear, time.Month(targetMonth)); day > last {
		day = last
	}

	hour, min, sec := start.Clock()
	return time.Date(targetYear, time.Month(targetMonth), day, hour, min, sec, start.Nanosecond(), start.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
