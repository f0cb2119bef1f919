package types

import (
	"github.com/samber/lo"

	ierr "github.com/nextstep/nextstep/internal/errors"
)

const (
	FilterDefaultLimit  = 50
	FilterMaxLimit      = 1000
	FilterDefaultOffset = 0
	FilterDefaultSort   = "created_at"
	FilterDefaultOrder  = "desc"
)

// QueryFilter carries pagination and ordering for list operations.
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit"`
	Offset *int    `json:"offset,omitempty" form:"offset"`
	Status *Status `json:"status,omitempty" form:"status"`
	Sort   *string `json:"sort,omitempty" form:"sort"`
	Order  *string `json:"order,omitempty" form:"order"`
}

// NewDefaultQueryFilter returns a filter with the default pagination values.
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FilterDefaultLimit),
		Offset: lo.ToPtr(FilterDefaultOffset),
		Status: lo.ToPtr(StatusPublished),
		Sort:   lo.ToPtr(FilterDefaultSort),
		Order:  lo.ToPtr(FilterDefaultOrder),
	}
}

// NewNoLimitQueryFilter returns a filter without pagination, for sweeps and
// exports that must see every matching row.
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Status: lo.ToPtr(StatusPublished),
		Sort:   lo.ToPtr(FilterDefaultSort),
		Order:  lo.ToPtr(FilterDefaultOrder),
	}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return FilterDefaultLimit
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return FilterDefaultOffset
	}
	return *f.Offset
}

func (f *QueryFilter) GetSort() string {
	if f == nil || f.Sort == nil {
		return FilterDefaultSort
	}
	return *f.Sort
}

func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil {
		return FilterDefaultOrder
	}
	return *f.Order
}

func (f *QueryFilter) GetStatus() Status {
	if f == nil || f.Status == nil {
		return StatusPublished
	}
	return *f.Status
}

// IsUnlimited reports whether the filter skips pagination entirely.
func (f *QueryFilter) IsUnlimited() bool {
	return f != nil && f.Limit == nil
}

// Validate bounds the pagination values.
func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > FilterMaxLimit) {
		return ierr.NewErrorf("limit must be between 1 and %d", FilterMaxLimit).
			WithHint("Invalid pagination limit").
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("offset must not be negative").
			WithHint("Invalid pagination offset").
			Mark(ierr.ErrValidation)
	}
	return nil
}
