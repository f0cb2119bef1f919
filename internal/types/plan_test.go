package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanMonths(t *testing.T) {
	assert.Equal(t, 1, Plan1Month.Months())
	assert.Equal(t, 3, Plan3Month.Months())
	assert.Equal(t, 6, Plan6Month.Months())
	assert.Equal(t, 12, Plan12Month.Months())
}

func TestPlanValidate(t *testing.T) {
	for _, p := range []PlanType{Plan1Month, Plan3Month, Plan6Month, Plan12Month} {
		assert.NoError(t, p.Validate())
	}
	assert.Error(t, PlanType("2_MONTH").Validate())
	assert.Error(t, PlanType("").Validate())
}

func TestExpiryFrom(t *testing.T) {
	tests := []struct {
		name     string
		plan     PlanType
		start    string
		expected string
	}{
		{
			name:     "SimpleOneMonth",
			plan:     Plan1Month,
			start:    "2024-01-15",
			expected: "2024-02-15",
		},
		{
			name:     "MonthEndClampsToFebruaryLeapYear",
			plan:     Plan1Month,
			start:    "2024-01-31",
			expected: "2024-02-29",
		},
		{
			name:     "MonthEndClampsToFebruaryNonLeapYear",
			plan:     Plan1Month,
			start:    "2023-01-31",
			expected: "2023-02-28",
		},
		{
			name:     "ClampsToThirtyDayMonth",
			plan:     Plan3Month,
			start:    "2024-08-31",
			expected: "2024-11-30",
		},
		{
			name:     "TwelveMonthsAcrossLeapDay",
			plan:     Plan12Month,
			start:    "2024-02-29",
			expected: "2025-02-28",
		},
		{
			name:     "SixMonthsPlain",
			plan:     Plan6Month,
			start:    "2024-03-10",
			expected: "2024-09-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := time.Parse("2006-01-02", tt.start)
			assert.NoError(t, err)

			expiry := tt.plan.ExpiryFrom(start)
			assert.Equal(t, tt.expected, expiry.Format("2006-01-02"))
		})
	}
}

// The expiry never lands on a different month than start month + plan months,
// which AddDate alone does not guarantee.
func TestExpiryFromNeverOverflowsMonth(t *testing.T) {
	for day := 1; day <= 31; day++ {
		start := time.Date(2023, time.January, day, 0, 0, 0, 0, time.UTC)
		expiry := Plan1Month.ExpiryFrom(start)
		assert.Equal(t, time.February, expiry.Month(), "start day %d", day)
	}
}
