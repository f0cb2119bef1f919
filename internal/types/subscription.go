package types

import (
	"math"
	"time"
)

// SubscriptionStatus is the two-state lifecycle of a subscriber. There is no
// pending or suspended state; grace periods live in tenant settings, not here.
type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired SubscriptionStatus = "EXPIRED"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// DayOf truncates t to midnight in loc. All day-granularity comparisons in
// the lifecycle and reminder logic go through this one function so the day
// boundary policy stays uniform.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SubscriptionStatusFor derives the lifecycle state from the expiry date at
// day granularity: EXPIRED iff expiry day < today's day. Reactivation never
// happens here; a renewal recomputes the expiry date and re-runs this rule.
func SubscriptionStatusFor(expiryDate, now time.Time, loc *time.Location) SubscriptionStatus {
	if DayOf(expiryDate, loc).Before(DayOf(now, loc)) {
		return SubscriptionStatusExpired
	}
	return SubscriptionStatusActive
}

// DaysUntil returns the whole number of days from now's day to target's day,
// negative when target is in the past. Midnight-to-midnight spans are not
// always exact multiples of 24h in zones with DST, hence the rounding.
func DaysUntil(target, now time.Time, loc *time.Location) int {
	hours := DayOf(target, loc).Sub(DayOf(now, loc)).Hours()
	return int(math.Round(hours / 24))
}
