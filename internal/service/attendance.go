package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/attendance"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// AttendanceService tracks subscriber visits: one check-in per subscriber
// per calendar day, optionally closed by a check-out.
type AttendanceService interface {
	// CheckIn marks the subscriber present for today. A second check-in on
	// the same day returns an ErrAlreadyExists-marked error.
	CheckIn(ctx context.Context, req *dto.CheckInRequest) (*dto.AttendanceResponse, error)

	// CheckOut closes an open attendance entry with the current time.
	CheckOut(ctx context.Context, id string) (*dto.AttendanceResponse, error)

	ListAttendance(ctx context.Context, req *dto.ListAttendanceRequest) (*dto.ListAttendanceResponse, error)
}

type attendanceService struct {
	ServiceParams
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(params ServiceParams) AttendanceService {
	return &attendanceService{
		ServiceParams: params,
	}
}

func (s *attendanceService) CheckIn(ctx context.Context, req *dto.CheckInRequest) (*dto.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	// Attendance days roll over on the tenant's configured timezone, the
	// same boundary the reminder sweep uses.
	loc, err := NewReminderConfigService(s.ServiceParams).DayLocation(ctx)
	if err != nil {
		return nil, err
	}

	entry := req.ToEntry(ctx, time.Now(), loc)
	if err := s.AttendanceRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscriber checked in",
		"attendance_id", entry.ID,
		"subscriber_id", entry.SubscriberID,
		"day", entry.Day.Format("2006-01-02"),
		"source", entry.Source,
	)

	resp := dto.NewAttendanceResponse(entry)
	resp.SubscriberName = sub.Name
	resp.SubscriberPhone = sub.Phone
	return resp, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, id string) (*dto.AttendanceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("attendance id is required").
			WithHint("Attendance ID is required").
			Mark(ierr.ErrValidation)
	}

	entry, err := s.AttendanceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.CheckOut != nil {
		return nil, ierr.NewError("attendance entry is already checked out").
			WithHint("This entry already has a check-out time").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrInvalidOperation)
	}

	entry.CheckOut = lo.ToPtr(time.Now().UTC())
	if err := s.AttendanceRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscriber checked out",
		"attendance_id", entry.ID,
		"subscriber_id", entry.SubscriberID,
	)
	return dto.NewAttendanceResponse(entry), nil
}

func (s *attendanceService) ListAttendance(ctx context.Context, req *dto.ListAttendanceRequest) (*dto.ListAttendanceResponse, error) {
	if req == nil {
		req = &dto.ListAttendanceRequest{QueryFilter: *types.NewDefaultQueryFilter()}
	}
	if err := req.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	entries, err := s.AttendanceRepo.List(ctx, req.ToFilter())
	if err != nil {
		return nil, err
	}

	subs, err := s.subscribersFor(ctx, entries)
	if err != nil {
		return nil, err
	}

	items := lo.Map(entries, func(e *attendance.Entry, _ int) *dto.AttendanceResponse {
		resp := dto.NewAttendanceResponse(e)
		if sub, ok := subs[e.SubscriberID]; ok {
			resp.SubscriberName = sub.Name
			resp.SubscriberPhone = sub.Phone
		}
		return resp
	})

	return &dto.ListAttendanceResponse{Items: items, Total: len(items)}, nil
}

func (s *attendanceService) subscribersFor(ctx context.Context, entries []*attendance.Entry) (map[string]*subscriber.Subscriber, error) {
	ids := lo.Uniq(lo.Map(entries, func(e *attendance.Entry, _ int) string {
		return e.SubscriberID
	}))
	if len(ids) == 0 {
		return map[string]*subscriber.Subscriber{}, nil
	}

	subs, err := s.SubRepo.List(ctx, &subscriber.Filter{
		QueryFilter:   types.NewNoLimitQueryFilter(),
		SubscriberIDs: ids,
	})
	if err != nil {
		return nil, err
	}

	return lo.KeyBy(subs, func(sub *subscriber.Subscriber) string { return sub.ID }), nil
}
