package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/payment"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/idempotency"
	"github.com/nextstep/nextstep/internal/types"
)

// PaymentService defines the interface for payment operations
type PaymentService interface {
	// RecordPayment persists a payment and applies it to the subscriber's
	// ledger in one transaction. Replaying the same idempotency key returns
	// the original payment without touching the ledger.
	RecordPayment(ctx context.Context, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error)

	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, req *dto.ListPaymentsRequest) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
}

// NewPaymentService creates a new payment service
func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := req.IdempotencyKey
	if key == "" {
		key = s.IdempGen.GenerateKey(idempotency.ScopePayment, map[string]interface{}{
			"tenant_id":      types.GetTenantID(ctx),
			"subscriber_id":  req.SubscriberID,
			"amount":         req.Amount.String(),
			"mode":           req.Mode,
			"transaction_id": req.TransactionID,
		})
	}

	// Fast path: a previously recorded payment with this key is a replay.
	if existing, err := s.PaymentRepo.GetByIdempotencyKey(ctx, key); err == nil {
		return s.replayResponse(ctx, existing)
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	p := req.ToPayment(ctx, key)
	var resp *dto.PaymentResponse

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		// Serialize ledger writes per subscriber. Concurrent payments for
		// the same subscriber queue behind this lock.
		if err := s.DB.LockSubscriber(txCtx, req.SubscriberID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to lock subscriber for payment").
				Mark(ierr.ErrDatabase)
		}

		sub, err := s.SubRepo.Get(txCtx, req.SubscriberID)
		if err != nil {
			return err
		}

		if err := s.PaymentRepo.Create(txCtx, p); err != nil {
			return err
		}

		if err := sub.ApplyPayment(p.Amount); err != nil {
			return err
		}
		if err := s.SubRepo.Update(txCtx, sub); err != nil {
			return err
		}

		resp = dto.NewPaymentResponse(p)
		resp.Subscriber = dto.NewSubscriberResponse(sub)
		return nil
	})
	if err != nil {
		// A concurrent writer may have claimed the key between our fast-path
		// read and the insert. Treat it as a replay.
		if ierr.IsAlreadyExists(err) {
			if existing, getErr := s.PaymentRepo.GetByIdempotencyKey(ctx, key); getErr == nil {
				return s.replayResponse(ctx, existing)
			}
		}
		return nil, err
	}

	s.Logger.Infow("payment recorded",
		"payment_id", p.ID,
		"subscriber_id", p.SubscriberID,
		"amount", p.Amount,
		"mode", p.Mode,
	)
	return resp, nil
}

func (s *paymentService) replayResponse(ctx context.Context, p *payment.Payment) (*dto.PaymentResponse, error) {
	resp := dto.NewPaymentResponse(p)
	resp.Replayed = true

	sub, err := s.SubRepo.Get(ctx, p.SubscriberID)
	if err == nil {
		resp.Subscriber = dto.NewSubscriberResponse(sub)
	}

	s.Logger.Infow("payment replayed from idempotency key",
		"payment_id", p.ID,
		"subscriber_id", p.SubscriberID,
	)
	return resp, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	if id == "" {
		return nil, ierr.NewError("payment id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation)
	}
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(p), nil
}

func (s *paymentService) ListPayments(ctx context.Context, req *dto.ListPaymentsRequest) (*dto.ListPaymentsResponse, error) {
	if req == nil {
		req = &dto.ListPaymentsRequest{QueryFilter: *types.NewDefaultQueryFilter()}
	}
	if err := req.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.List(ctx, req.ToFilter())
	if err != nil {
		return nil, err
	}

	return &dto.ListPaymentsResponse{
		Items: lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
			return dto.NewPaymentResponse(p)
		}),
		Total: len(payments),
	}, nil
}
