package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// PubSub combines a watermill publisher and subscriber over one transport.
type PubSub interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}
