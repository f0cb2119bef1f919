package types

import (
	ierr "github.com/nextstep/nextstep/internal/errors"
)

// PaymentMode is how a payment was collected. Modes are recorded as-is;
// this system never initiates charges against a provider.
type PaymentMode string

const (
	PaymentModeCash       PaymentMode = "CASH"
	PaymentModeUPI        PaymentMode = "UPI"
	PaymentModeCard       PaymentMode = "CARD"
	PaymentModeNetBanking PaymentMode = "NETBANKING"
)

func (m PaymentMode) Validate() error {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeNetBanking:
		return nil
	default:
		return ierr.NewErrorf("invalid payment mode: %s", m).
			WithHint("Payment mode must be one of: CASH, UPI, CARD, NETBANKING").
			WithReportableDetails(map[string]any{"mode": m}).
			Mark(ierr.ErrValidation)
	}
}

// PaymentStatus is the settlement state of a recorded payment.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)
