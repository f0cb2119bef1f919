package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/domain/attendance"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// InMemoryAttendanceStore implements attendance.Repository
type InMemoryAttendanceStore struct {
	*InMemoryStore[*attendance.Entry]
}

// NewInMemoryAttendanceStore creates a new in-memory attendance store
func NewInMemoryAttendanceStore() *InMemoryAttendanceStore {
	return &InMemoryAttendanceStore{
		InMemoryStore: NewInMemoryStore[*attendance.Entry](),
	}
}

func copyAttendance(e *attendance.Entry) *attendance.Entry {
	if e == nil {
		return nil
	}
	copied := *e
	if e.CheckOut != nil {
		out := *e.CheckOut
		copied.CheckOut = &out
	}
	return &copied
}

func (s *InMemoryAttendanceStore) Create(ctx context.Context, e *attendance.Entry) error {
	if e == nil {
		return ierr.NewError("attendance entry cannot be nil").
			WithHint("Attendance entry cannot be nil").
			Mark(ierr.ErrValidation)
	}

	// Enforce the unique (subscriber, day) pair the SQL schema guarantees.
	dayStr := e.Day.Format("2006-01-02")
	matches, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, existing *attendance.Entry, _ interface{}) bool {
		return existing.TenantID == types.GetTenantID(ctx) &&
			existing.SubscriberID == e.SubscriberID &&
			existing.Day.Format("2006-01-02") == dayStr
	}, nil)
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		return ierr.NewError("attendance already marked").
			WithHint("Attendance is already marked for this subscriber today").
			WithReportableDetails(map[string]any{"subscriber_id": e.SubscriberID}).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, e.ID, copyAttendance(e))
}

func (s *InMemoryAttendanceStore) Get(ctx context.Context, id string) (*attendance.Entry, error) {
	e, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || e.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("attendance entry not found").
			WithHint("Attendance entry not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyAttendance(e), nil
}

func (s *InMemoryAttendanceStore) Update(ctx context.Context, e *attendance.Entry) error {
	if _, err := s.Get(ctx, e.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, e.ID, copyAttendance(e))
}

func (s *InMemoryAttendanceStore) List(ctx context.Context, filter *attendance.Filter) ([]*attendance.Entry, error) {
	if filter == nil {
		filter = &attendance.Filter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	entries, err := s.InMemoryStore.List(ctx, filter, attendanceFilterFn, attendanceSortFn)
	if err != nil {
		return nil, err
	}

	result := lo.Map(entries, func(e *attendance.Entry, _ int) *attendance.Entry {
		return copyAttendance(e)
	})

	if filter.QueryFilter != nil && !filter.QueryFilter.IsUnlimited() {
		offset := filter.QueryFilter.GetOffset()
		limit := filter.QueryFilter.GetLimit()
		if offset >= len(result) {
			return []*attendance.Entry{}, nil
		}
		end := offset + limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, nil
}

func attendanceFilterFn(ctx context.Context, e *attendance.Entry, filter interface{}) bool {
	if e == nil || e.TenantID != types.GetTenantID(ctx) {
		return false
	}

	f, ok := filter.(*attendance.Filter)
	if !ok || f == nil {
		return true
	}
	if len(f.SubscriberIDs) > 0 && !lo.Contains(f.SubscriberIDs, e.SubscriberID) {
		return false
	}
	if f.Day != nil && e.Day.Format("2006-01-02") != f.Day.Format("2006-01-02") {
		return false
	}
	return true
}

// Newest first by day then check-in, matching the SQL repository ordering.
func attendanceSortFn(a, b *attendance.Entry) bool {
	if !a.Day.Equal(b.Day) {
		return a.Day.After(b.Day)
	}
	return a.CheckIn.After(b.CheckIn)
}
