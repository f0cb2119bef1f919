package attendance

import (
	"time"

	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// Entry is one subscriber visit: a check-in, optionally closed by a
// check-out. At most one entry exists per subscriber per calendar day.
type Entry struct {
	ID           string                 `json:"id"`
	SubscriberID string                 `json:"subscriber_id"`
	Day          time.Time              `json:"day"`
	CheckIn      time.Time              `json:"check_in"`
	CheckOut     *time.Time             `json:"check_out,omitempty"`
	Source       types.AttendanceSource `json:"source"`

	types.BaseModel
}

// Validate checks the entry's structural invariants.
func (e *Entry) Validate() error {
	if e.SubscriberID == "" {
		return ierr.NewError("subscriber_id is required").
			WithHint("Attendance entry must reference a subscriber").
			Mark(ierr.ErrValidation)
	}
	if e.Day.IsZero() {
		return ierr.NewError("day is required").
			WithHint("Attendance entry must carry its calendar day").
			Mark(ierr.ErrValidation)
	}
	if e.CheckIn.IsZero() {
		return ierr.NewError("check_in is required").
			WithHint("Attendance entry must carry its check-in time").
			Mark(ierr.ErrValidation)
	}
	if err := e.Source.Validate(); err != nil {
		return err
	}
	return nil
}
