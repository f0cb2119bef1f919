package types

import (
	"time"

	"github.com/samber/lo"
)

// ReminderTier is a reminder category with an associated message variant.
type ReminderTier string

const (
	ReminderTier3Day    ReminderTier = "3_DAY"
	ReminderTier1Day    ReminderTier = "1_DAY"
	ReminderTierToday   ReminderTier = "TODAY"
	ReminderTierExpired ReminderTier = "EXPIRED"
)

func (t ReminderTier) String() string {
	return string(t)
}

// NotificationChannel identifies an outbound delivery channel. The dedup
// ledger key and the run summary are both broken down by channel.
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "EMAIL"
	ChannelWhatsApp NotificationChannel = "WHATSAPP"
)

func (c NotificationChannel) String() string {
	return string(c)
}

// ReminderDeliveryState tracks one ledger entry through its send attempt.
// PENDING marks a claimed key whose send is in flight; SENT is final.
type ReminderDeliveryState string

const (
	ReminderDeliveryPending ReminderDeliveryState = "PENDING"
	ReminderDeliverySent    ReminderDeliveryState = "SENT"
	ReminderDeliveryFailed  ReminderDeliveryState = "FAILED"
)

func (s ReminderDeliveryState) String() string {
	return string(s)
}

// DefaultReminderThresholdDays is the observed production window: three days
// out, one day out, day of expiry, and one day past.
var DefaultReminderThresholdDays = []int{3, 1, 0, -1}

// TierForDaysLeft maps a days-to-expiry count to its reminder tier.
func TierForDaysLeft(daysLeft int) ReminderTier {
	switch {
	case daysLeft >= 2:
		return ReminderTier3Day
	case daysLeft == 1:
		return ReminderTier1Day
	case daysLeft == 0:
		return ReminderTierToday
	default:
		return ReminderTierExpired
	}
}

// EvaluateReminder decides whether a reminder is due given the expiry date
// and the current time, against the configured threshold set. Pure and
// stable under repeated calls: same inputs, same answer.
func EvaluateReminder(expiryDate, now time.Time, loc *time.Location, thresholdDays []int) (ReminderTier, int, bool) {
	if len(thresholdDays) == 0 {
		thresholdDays = DefaultReminderThresholdDays
	}
	daysLeft := DaysUntil(expiryDate, now, loc)
	if !lo.Contains(thresholdDays, daysLeft) {
		return "", daysLeft, false
	}
	return TierForDaysLeft(daysLeft), daysLeft, true
}
