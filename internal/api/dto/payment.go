package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nextstep/nextstep/internal/domain/payment"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
	"github.com/nextstep/nextstep/internal/validator"
)

// RecordPaymentRequest represents the request to record a payment against a
// subscriber's ledger
type RecordPaymentRequest struct {
	SubscriberID  string            `json:"subscriber_id" validate:"required"`
	Amount        decimal.Decimal   `json:"amount" validate:"required"`
	Mode          types.PaymentMode `json:"mode" validate:"required"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Remarks       string            `json:"remarks,omitempty"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`

	// IdempotencyKey lets callers replay the request safely. When empty a
	// key is derived from the payment attributes.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Validate validates the record payment request
func (r *RecordPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{"amount": r.Amount}).
			Mark(ierr.ErrValidation)
	}
	return r.Mode.Validate()
}

// ToPayment converts the request to a payment domain model
func (r *RecordPaymentRequest) ToPayment(ctx context.Context, idempotencyKey string) *payment.Payment {
	paidAt := time.Now().UTC()
	if r.PaidAt != nil {
		paidAt = r.PaidAt.UTC()
	}
	return &payment.Payment{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		IdempotencyKey: idempotencyKey,
		SubscriberID:   r.SubscriberID,
		Amount:         r.Amount,
		Mode:           r.Mode,
		PaymentStatus:  types.PaymentStatusSuccess,
		TransactionID:  r.TransactionID,
		Remarks:        r.Remarks,
		PaidAt:         paidAt,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

// ListPaymentsRequest represents the query parameters for listing payments
type ListPaymentsRequest struct {
	types.QueryFilter

	SubscriberIDs []string            `form:"subscriber_id"`
	Modes         []types.PaymentMode `form:"mode"`
}

func (r *ListPaymentsRequest) ToFilter() *payment.Filter {
	qf := r.QueryFilter
	return &payment.Filter{
		QueryFilter:   &qf,
		SubscriberIDs: r.SubscriberIDs,
		Modes:         r.Modes,
	}
}

// PaymentResponse represents the response for payment operations
type PaymentResponse struct {
	ID             string              `json:"id"`
	IdempotencyKey string              `json:"idempotency_key"`
	SubscriberID   string              `json:"subscriber_id"`
	Amount         decimal.Decimal     `json:"amount"`
	Mode           types.PaymentMode   `json:"mode"`
	PaymentStatus  types.PaymentStatus `json:"payment_status"`
	TransactionID  string              `json:"transaction_id,omitempty"`
	Remarks        string              `json:"remarks,omitempty"`
	PaidAt         time.Time           `json:"paid_at"`
	CreatedAt      time.Time           `json:"created_at"`

	// Replayed is true when this response was served from a previously
	// recorded payment with the same idempotency key.
	Replayed bool `json:"replayed,omitempty"`

	// Subscriber carries the post-payment ledger balances.
	Subscriber *SubscriberResponse `json:"subscriber,omitempty"`
}

// NewPaymentResponse creates a response from a payment domain model
func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:             p.ID,
		IdempotencyKey: p.IdempotencyKey,
		SubscriberID:   p.SubscriberID,
		Amount:         p.Amount,
		Mode:           p.Mode,
		PaymentStatus:  p.PaymentStatus,
		TransactionID:  p.TransactionID,
		Remarks:        p.Remarks,
		PaidAt:         p.PaidAt,
		CreatedAt:      p.CreatedAt,
	}
}

// ListPaymentsResponse is a paginated list of payments
type ListPaymentsResponse struct {
	Items []*PaymentResponse `json:"items"`
	Total int                `json:"total"`
}
