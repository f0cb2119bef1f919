package payment

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// Payment is an immutable record of one collected payment. Once created it is
// never mutated; the subscriber's ledger is updated in the same transaction
// that persists the payment.
type Payment struct {
	ID             string              `json:"id"`
	IdempotencyKey string              `json:"idempotency_key"`
	SubscriberID   string              `json:"subscriber_id"`
	Amount         decimal.Decimal     `json:"amount"`
	Mode           types.PaymentMode   `json:"mode"`
	PaymentStatus  types.PaymentStatus `json:"payment_status"`
	TransactionID  string              `json:"transaction_id,omitempty"`
	Remarks        string              `json:"remarks,omitempty"`
	PaidAt         time.Time           `json:"paid_at"`

	types.BaseModel
}

// Validate checks the payment's structural invariants.
func (p *Payment) Validate() error {
	if p.SubscriberID == "" {
		return ierr.NewError("subscriber_id is required").
			WithHint("Payment must reference a subscriber").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{"amount": p.Amount}).
			Mark(ierr.ErrValidation)
	}
	if err := p.Mode.Validate(); err != nil {
		return err
	}
	return nil
}
