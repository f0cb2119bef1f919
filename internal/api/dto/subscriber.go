package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nextstep/nextstep/internal/domain/subscriber"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
	"github.com/nextstep/nextstep/internal/validator"
)

// CreateSubscriberRequest represents the request to enroll a new subscriber
type CreateSubscriberRequest struct {
	Name        string          `json:"name" validate:"required"`
	Email       string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string          `json:"phone,omitempty"`
	Plan        types.PlanType  `json:"plan" validate:"required"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	FeesPaid    decimal.Decimal `json:"fees_paid"`
	PendingFees decimal.Decimal `json:"pending_fees"`
}

// Validate validates the create subscriber request
func (r *CreateSubscriberRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Phone == "" && r.Email == "" {
		return ierr.NewError("at least one contact method is required").
			WithHint("Provide an email address or a phone number").
			Mark(ierr.ErrValidation)
	}
	if err := r.Plan.Validate(); err != nil {
		return err
	}
	if r.FeesPaid.IsNegative() || r.PendingFees.IsNegative() {
		return ierr.NewError("fee balances must not be negative").
			WithHint("fees_paid and pending_fees must be 0 or greater").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToSubscriber converts the request to a subscriber domain model. The expiry
// date and lifecycle status are derived, never taken from the caller.
func (r *CreateSubscriberRequest) ToSubscriber(ctx context.Context) *subscriber.Subscriber {
	start := time.Now().UTC()
	if r.StartDate != nil {
		start = r.StartDate.UTC()
	}

	s := &subscriber.Subscriber{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIBER),
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Plan:        r.Plan,
		StartDate:   start,
		FeesPaid:    r.FeesPaid,
		PendingFees: r.PendingFees,
		Version:     1,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.RecomputeExpiry()
	return s
}

// UpdateSubscriberRequest represents the request to update a subscriber.
// Nil fields are left unchanged.
type UpdateSubscriberRequest struct {
	Name      *string         `json:"name,omitempty"`
	Email     *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string         `json:"phone,omitempty"`
	Plan      *types.PlanType `json:"plan,omitempty"`
	StartDate *time.Time      `json:"start_date,omitempty"`
}

func (r *UpdateSubscriberRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Plan != nil {
		if err := r.Plan.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RenewSubscriberRequest represents the request to renew a subscription.
// An omitted start date renews from today.
type RenewSubscriberRequest struct {
	Plan      types.PlanType `json:"plan" validate:"required"`
	StartDate *time.Time     `json:"start_date,omitempty"`
}

func (r *RenewSubscriberRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Plan.Validate()
}

// ListSubscribersRequest represents the query parameters for listing subscribers
type ListSubscribersRequest struct {
	types.QueryFilter

	SubscriberIDs []string                  `form:"subscriber_id"`
	Plans         []types.PlanType          `form:"plan"`
	SubStatus     *types.SubscriptionStatus `form:"subscription_status"`
	ExpiryBefore  *time.Time                `form:"expiry_before" time_format:"2006-01-02"`
	ExpiryAfter   *time.Time                `form:"expiry_after" time_format:"2006-01-02"`
}

func (r *ListSubscribersRequest) ToFilter() *subscriber.Filter {
	qf := r.QueryFilter
	return &subscriber.Filter{
		QueryFilter:   &qf,
		SubscriberIDs: r.SubscriberIDs,
		Plans:         r.Plans,
		SubStatus:     r.SubStatus,
		ExpiryBefore:  r.ExpiryBefore,
		ExpiryAfter:   r.ExpiryAfter,
	}
}

// SubscriberResponse represents the response for subscriber operations
type SubscriberResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Email       string                   `json:"email,omitempty"`
	Phone       string                   `json:"phone,omitempty"`
	Plan        types.PlanType           `json:"plan"`
	StartDate   time.Time                `json:"start_date"`
	ExpiryDate  time.Time                `json:"expiry_date"`
	SubStatus   types.SubscriptionStatus `json:"subscription_status"`
	FeesPaid    decimal.Decimal          `json:"fees_paid"`
	PendingFees decimal.Decimal          `json:"pending_fees"`
	TenantID    string                   `json:"tenant_id"`
	Status      types.Status             `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// NewSubscriberResponse creates a response from a subscriber domain model
func NewSubscriberResponse(s *subscriber.Subscriber) *SubscriberResponse {
	if s == nil {
		return nil
	}
	return &SubscriberResponse{
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		Phone:       s.Phone,
		Plan:        s.Plan,
		StartDate:   s.StartDate,
		ExpiryDate:  s.ExpiryDate,
		SubStatus:   s.SubStatus,
		FeesPaid:    s.FeesPaid,
		PendingFees: s.PendingFees,
		TenantID:    s.TenantID,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ListSubscribersResponse is a paginated list of subscribers
type ListSubscribersResponse struct {
	Items []*SubscriberResponse `json:"items"`
	Total int                   `json:"total"`
}
