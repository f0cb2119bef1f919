package dto

import (
	"time"

	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// RunSweepRequest represents the request to run a reminder sweep. An omitted
// AsOf runs the sweep against the current time.
type RunSweepRequest struct {
	AsOf *time.Time `json:"as_of,omitempty" form:"as_of" time_format:"2006-01-02"`

	// DryRun evaluates and counts without sending or recording anything.
	DryRun bool `json:"dry_run,omitempty" form:"dry_run"`
}

func (r *RunSweepRequest) Validate() error {
	return nil
}

// SweepRunResponse summarizes one sweep run
type SweepRunResponse struct {
	RunDay           string   `json:"run_day"`
	Evaluated        int      `json:"evaluated"`
	Sent             int      `json:"sent"`
	Failed           int      `json:"failed"`
	SkippedDuplicate int      `json:"skipped_duplicate"`
	NoContact        int      `json:"no_contact"`
	Expired          int      `json:"expired"`
	Errors           []string `json:"errors,omitempty"`
}

// UpdateReminderConfigRequest represents the request to change a tenant's
// reminder configuration. Nil fields keep their current value.
type UpdateReminderConfigRequest struct {
	ThresholdDays []int   `json:"threshold_days,omitempty"`
	DayTimezone   *string `json:"day_timezone,omitempty"`
}

func (r *UpdateReminderConfigRequest) Validate() error {
	if len(r.ThresholdDays) == 0 && r.DayTimezone == nil {
		return ierr.NewError("no configuration fields provided").
			WithHint("Provide threshold_days or day_timezone").
			Mark(ierr.ErrValidation)
	}
	if r.DayTimezone != nil {
		if err := types.ValidateTimezone(*r.DayTimezone); err != nil {
			return err
		}
	}
	return nil
}

// ReminderConfigResponse represents a tenant's effective reminder configuration
type ReminderConfigResponse struct {
	ThresholdDays []int  `json:"threshold_days"`
	DayTimezone   string `json:"day_timezone"`
}

// ReminderRecordResponse represents one dedup ledger entry
type ReminderRecordResponse struct {
	ID            string                      `json:"id"`
	SubscriberID  string                      `json:"subscriber_id"`
	SendDay       time.Time                   `json:"send_day"`
	Channel       types.NotificationChannel   `json:"channel"`
	Tier          types.ReminderTier          `json:"tier"`
	Delivery      types.ReminderDeliveryState `json:"delivery"`
	FailureReason string                      `json:"failure_reason,omitempty"`
	SentAt        time.Time                   `json:"sent_at"`
}
