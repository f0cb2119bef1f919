package kafka

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	wmkafka "github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/nextstep/nextstep/internal/config"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/kafka"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/pubsub"
)

type pubSub struct {
	publisher  *wmkafka.Publisher
	subscriber *wmkafka.Subscriber
	logger     *logger.Logger
}

// NewPubSubFromConfig builds a kafka-backed PubSub for one consumer group.
func NewPubSubFromConfig(cfg *config.Configuration, log *logger.Logger, consumerGroup string) (pubsub.PubSub, error) {
	saramaConfig := kafka.GetSaramaConfig(cfg)
	wmLogger := watermill.NewStdLogger(false, false)

	publisher, err := wmkafka.NewPublisher(
		wmkafka.PublisherConfig{
			Brokers:               cfg.Kafka.Brokers,
			Marshaler:             wmkafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
		},
		wmLogger,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create kafka publisher").
			Mark(ierr.ErrSystem)
	}

	subscriber, err := wmkafka.NewSubscriber(
		wmkafka.SubscriberConfig{
			Brokers:               cfg.Kafka.Brokers,
			Unmarshaler:           wmkafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
			ConsumerGroup:         consumerGroup,
		},
		wmLogger,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create kafka subscriber").
			Mark(ierr.ErrSystem)
	}

	return &pubSub{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     log,
	}, nil
}

func (p *pubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish message").
			WithReportableDetails(map[string]any{"topic": topic}).
			Mark(ierr.ErrSystem)
	}
	return nil
}

func (p *pubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := p.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to subscribe to topic").
			WithReportableDetails(map[string]any{"topic": topic}).
			Mark(ierr.ErrSystem)
	}
	return ch, nil
}

func (p *pubSub) Close() error {
	if err := p.publisher.Close(); err != nil {
		p.logger.Errorw("failed to close kafka publisher", "error", err)
	}
	return p.subscriber.Close()
}
