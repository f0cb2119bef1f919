package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/config"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/pubsub"
	"github.com/nextstep/nextstep/internal/pubsub/kafka"
	pubsubRouter "github.com/nextstep/nextstep/internal/pubsub/router"
	"github.com/nextstep/nextstep/internal/types"
)

// PaymentEventConsumerService consumes payment events from Kafka and records
// them through the payment service. Duplicate deliveries are absorbed by the
// payment idempotency key, so at-least-once delivery is safe.
type PaymentEventConsumerService interface {
	RegisterHandler(router *pubsubRouter.Router, cfg *config.Configuration)
}

type paymentEventConsumerService struct {
	ServiceParams
	pubSub         pubsub.PubSub
	paymentService PaymentService
}

// PaymentEvent is the wire format of one collected payment on the payment
// events topic.
type PaymentEvent struct {
	TenantID       string            `json:"tenant_id"`
	SubscriberID   string            `json:"subscriber_id"`
	Amount         decimal.Decimal   `json:"amount"`
	Mode           types.PaymentMode `json:"mode"`
	TransactionID  string            `json:"transaction_id,omitempty"`
	Remarks        string            `json:"remarks,omitempty"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// NewPaymentEventConsumerService creates a new payment event consumer
func NewPaymentEventConsumerService(params ServiceParams) PaymentEventConsumerService {
	svc := &paymentEventConsumerService{
		ServiceParams:  params,
		paymentService: NewPaymentService(params),
	}

	pubSub, err := kafka.NewPubSubFromConfig(
		params.Config,
		params.Logger,
		params.Config.Kafka.ConsumerGroup,
	)
	if err != nil {
		params.Logger.Fatalw("failed to create pubsub for payment events", "error", err)
		return nil
	}
	svc.pubSub = pubSub

	return svc
}

// RegisterHandler registers the payment event handler with the router
func (s *paymentEventConsumerService) RegisterHandler(
	router *pubsubRouter.Router,
	cfg *config.Configuration,
) {
	if !cfg.Kafka.Enabled {
		s.Logger.Infow("payment event consumer disabled by configuration")
		return
	}

	router.AddNoPublishHandler(
		"payment_event_handler",
		cfg.Kafka.PaymentTopic,
		s.pubSub,
		s.processMessage,
	)

	s.Logger.Infow("registered payment event handler",
		"topic", cfg.Kafka.PaymentTopic,
		"consumer_group", cfg.Kafka.ConsumerGroup,
	)
}

// processMessage handles one payment event. Malformed payloads are dropped;
// transient database errors are retried with exponential backoff before the
// message is handed back to the router.
func (s *paymentEventConsumerService) processMessage(msg *message.Message) error {
	var event PaymentEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.Logger.Errorw("failed to unmarshal payment event, dropping",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil
	}

	if event.TenantID == "" || event.SubscriberID == "" {
		s.Logger.Errorw("payment event missing tenant or subscriber, dropping",
			"message_uuid", msg.UUID,
		)
		return nil
	}

	ctx := types.SetTenantID(context.Background(), event.TenantID)
	ctx = types.SetRequestID(ctx, msg.UUID)

	req := &dto.RecordPaymentRequest{
		SubscriberID:   event.SubscriberID,
		Amount:         event.Amount,
		Mode:           event.Mode,
		TransactionID:  event.TransactionID,
		Remarks:        event.Remarks,
		PaidAt:         event.PaidAt,
		IdempotencyKey: event.IdempotencyKey,
	}

	operation := func() error {
		_, err := s.paymentService.RecordPayment(ctx, req)
		if err == nil {
			return nil
		}
		// Validation failures will never succeed on retry.
		if ierr.IsValidation(err) || ierr.IsNotFound(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		if ierr.IsValidation(err) || ierr.IsNotFound(err) {
			s.Logger.Errorw("payment event rejected, dropping",
				"error", err,
				"subscriber_id", event.SubscriberID,
				"message_uuid", msg.UUID,
			)
			return nil
		}
		return err
	}

	s.Logger.Infow("payment event processed",
		"subscriber_id", event.SubscriberID,
		"amount", event.Amount,
		"message_uuid", msg.UUID,
	)
	return nil
}
