package subscriber

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// Subscriber is a member of a tenant's library with a running subscription.
// The fee columns form the subscriber's ledger account and are owned
// exclusively by this record.
type Subscriber struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Email       string                   `json:"email,omitempty"`
	Phone       string                   `json:"phone"`
	Plan        types.PlanType           `json:"plan"`
	StartDate   time.Time                `json:"start_date"`
	ExpiryDate  time.Time                `json:"expiry_date"`
	SubStatus   types.SubscriptionStatus `json:"subscription_status"`
	FeesPaid    decimal.Decimal          `json:"fees_paid"`
	PendingFees decimal.Decimal          `json:"pending_fees"`

	// Version supports optimistic concurrency on ledger updates. Two
	// concurrent payments for the same subscriber cannot both commit
	// against the same version.
	Version int `json:"version"`

	types.BaseModel
}

// Validate checks the structural invariants of a subscriber record.
func (s *Subscriber) Validate() error {
	if s.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Subscriber name is required").
			Mark(ierr.ErrValidation)
	}
	if s.Phone == "" && s.Email == "" {
		return ierr.NewError("at least one contact method is required").
			WithHint("Provide an email address or a phone number").
			Mark(ierr.ErrValidation)
	}
	if err := s.Plan.Validate(); err != nil {
		return err
	}
	if s.StartDate.IsZero() {
		return ierr.NewError("start_date is required").
			WithHint("Subscription start date is required").
			Mark(ierr.ErrValidation)
	}
	if s.FeesPaid.IsNegative() || s.PendingFees.IsNegative() {
		return ierr.NewError("fee balances must not be negative").
			WithHint("fees_paid and pending_fees must be 0 or greater").
			WithReportableDetails(map[string]any{
				"fees_paid":    s.FeesPaid,
				"pending_fees": s.PendingFees,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ApplyPayment applies one payment amount to the subscriber's ledger:
// fees_paid grows by the amount and pending_fees shrinks toward zero, never
// below it. Rejects non-positive amounts. Application order does not affect
// the final balances.
func (s *Subscriber) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{"amount": amount}).
			Mark(ierr.ErrValidation)
	}

	s.FeesPaid = s.FeesPaid.Add(amount)
	s.PendingFees = decimal.Max(s.PendingFees.Sub(amount), decimal.Zero)
	return nil
}

// RecomputeExpiry re-derives the expiry date from the plan and start date.
// Called whenever either changes.
func (s *Subscriber) RecomputeExpiry() {
	s.ExpiryDate = s.Plan.ExpiryFrom(s.StartDate)
}

// RefreshSubscriptionStatus re-runs the lifecycle transition rule against
// now. EXPIRED iff the expiry day is strictly before today's day in loc.
// Returns true when the status changed.
func (s *Subscriber) RefreshSubscriptionStatus(now time.Time, loc *time.Location) bool {
	next := types.SubscriptionStatusFor(s.ExpiryDate, now, loc)
	if next == s.SubStatus {
		return false
	}
	s.SubStatus = next
	return true
}

// ContactFor returns the destination for a channel and whether one exists.
func (s *Subscriber) ContactFor(channel types.NotificationChannel) (string, bool) {
	switch channel {
	case types.ChannelEmail:
		return s.Email, s.Email != ""
	case types.ChannelWhatsApp:
		return s.Phone, s.Phone != ""
	default:
		return "", false
	}
}
