package dto

import (
	"context"
	"time"

	"github.com/nextstep/nextstep/internal/domain/attendance"
	"github.com/nextstep/nextstep/internal/types"
	"github.com/nextstep/nextstep/internal/validator"
)

// CheckInRequest represents the request to mark a subscriber present for the
// current day
type CheckInRequest struct {
	SubscriberID string                 `json:"subscriber_id" validate:"required"`
	Source       types.AttendanceSource `json:"source,omitempty"`
}

// Validate validates the check-in request
func (r *CheckInRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Source == "" {
		return nil
	}
	return r.Source.Validate()
}

// ToEntry converts the request to an attendance domain model
func (r *CheckInRequest) ToEntry(ctx context.Context, now time.Time, loc *time.Location) *attendance.Entry {
	source := r.Source
	if source == "" {
		source = types.AttendanceSourceManual
	}
	return &attendance.Entry{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ATTENDANCE),
		SubscriberID: r.SubscriberID,
		Day:          types.DayOf(now, loc),
		CheckIn:      now.UTC(),
		Source:       source,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// ListAttendanceRequest represents the query parameters for listing
// attendance entries
type ListAttendanceRequest struct {
	types.QueryFilter

	SubscriberIDs []string   `form:"subscriber_id"`
	Day           *time.Time `form:"day" time_format:"2006-01-02"`
}

func (r *ListAttendanceRequest) ToFilter() *attendance.Filter {
	qf := r.QueryFilter
	return &attendance.Filter{
		QueryFilter:   &qf,
		SubscriberIDs: r.SubscriberIDs,
		Day:           r.Day,
	}
}

// AttendanceResponse represents the response for attendance operations
type AttendanceResponse struct {
	ID           string                 `json:"id"`
	SubscriberID string                 `json:"subscriber_id"`
	Day          time.Time              `json:"day"`
	CheckIn      time.Time              `json:"check_in"`
	CheckOut     *time.Time             `json:"check_out,omitempty"`
	Source       types.AttendanceSource `json:"source"`

	// Subscriber identity for roster views.
	SubscriberName  string `json:"subscriber_name,omitempty"`
	SubscriberPhone string `json:"subscriber_phone,omitempty"`
}

// NewAttendanceResponse creates a response from an attendance domain model
func NewAttendanceResponse(e *attendance.Entry) *AttendanceResponse {
	if e == nil {
		return nil
	}
	return &AttendanceResponse{
		ID:           e.ID,
		SubscriberID: e.SubscriberID,
		Day:          e.Day,
		CheckIn:      e.CheckIn,
		CheckOut:     e.CheckOut,
		Source:       e.Source,
	}
}

// ListAttendanceResponse is a paginated list of attendance entries
type ListAttendanceResponse struct {
	Items []*AttendanceResponse `json:"items"`
	Total int                   `json:"total"`
}
