package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTierForDaysLeft(t *testing.T) {
	assert.Equal(t, ReminderTier3Day, TierForDaysLeft(3))
	assert.Equal(t, ReminderTier1Day, TierForDaysLeft(1))
	assert.Equal(t, ReminderTierToday, TierForDaysLeft(0))
	assert.Equal(t, ReminderTierExpired, TierForDaysLeft(-1))
	assert.Equal(t, ReminderTierExpired, TierForDaysLeft(-10))
}

func TestEvaluateReminder(t *testing.T) {
	now := time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		expiry   time.Time
		wantTier ReminderTier
		wantDays int
		wantDue  bool
	}{
		{
			name:     "ThreeDaysOut",
			expiry:   time.Date(2024, time.January, 18, 23, 0, 0, 0, time.UTC),
			wantTier: ReminderTier3Day,
			wantDays: 3,
			wantDue:  true,
		},
		{
			name:     "OneDayOut",
			expiry:   time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC),
			wantTier: ReminderTier1Day,
			wantDays: 1,
			wantDue:  true,
		},
		{
			name:     "ExpiresToday",
			expiry:   time.Date(2024, time.January, 15, 1, 0, 0, 0, time.UTC),
			wantTier: ReminderTierToday,
			wantDays: 0,
			wantDue:  true,
		},
		{
			name:     "ExpiredYesterday",
			expiry:   time.Date(2024, time.January, 14, 22, 0, 0, 0, time.UTC),
			wantTier: ReminderTierExpired,
			wantDays: -1,
			wantDue:  true,
		},
		{
			name:    "TwoDaysOutIsNotDue",
			expiry:  time.Date(2024, time.January, 17, 12, 0, 0, 0, time.UTC),
			wantDue: false,
		},
		{
			name:    "ExpiredTwoDaysAgoIsNotDue",
			expiry:  time.Date(2024, time.January, 13, 12, 0, 0, 0, time.UTC),
			wantDue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, days, due := EvaluateReminder(tt.expiry, now, time.UTC, DefaultReminderThresholdDays)
			assert.Equal(t, tt.wantDue, due)
			if tt.wantDue {
				assert.Equal(t, tt.wantTier, tier)
				assert.Equal(t, tt.wantDays, days)
			}
		})
	}
}

func TestEvaluateReminderCustomThresholds(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	expiry := time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC)

	_, _, due := EvaluateReminder(expiry, now, time.UTC, DefaultReminderThresholdDays)
	assert.False(t, due)

	tier, days, due := EvaluateReminder(expiry, now, time.UTC, []int{7, 3, 1, 0, -1})
	assert.True(t, due)
	assert.Equal(t, 7, days)
	assert.Equal(t, ReminderTier3Day, tier)
}

func TestSubscriptionStatusFor(t *testing.T) {
	now := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

	// Expiring later today is still ACTIVE; yesterday is EXPIRED.
	assert.Equal(t, SubscriptionStatusActive,
		SubscriptionStatusFor(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, SubscriptionStatusActive,
		SubscriptionStatusFor(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, SubscriptionStatusExpired,
		SubscriptionStatusFor(time.Date(2024, time.January, 14, 23, 59, 0, 0, time.UTC), now, time.UTC))
}

func TestDayBoundaryFollowsLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	assert.NoError(t, err)

	// 2024-01-14 20:00 UTC is already 2024-01-15 in Kolkata.
	now := time.Date(2024, time.January, 14, 20, 0, 0, 0, time.UTC)
	expiry := time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, SubscriptionStatusActive, SubscriptionStatusFor(expiry, now, time.UTC))
	assert.Equal(t, SubscriptionStatusExpired, SubscriptionStatusFor(expiry, now, kolkata))
}
