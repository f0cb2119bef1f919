package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/pubsub"
)

// Router wraps the watermill message router with our standard middleware.
type Router struct {
	router *message.Router
	logger *logger.Logger
}

func NewRouter(log *logger.Logger) (*Router, error) {
	wmLogger := watermill.NewStdLogger(false, false)

	r, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create message router").
			Mark(ierr.ErrSystem)
	}

	r.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
		}.Middleware,
	)

	return &Router{router: r, logger: log}, nil
}

// AddNoPublishHandler registers a consume-only handler for a topic.
func (r *Router) AddNoPublishHandler(
	name string,
	topic string,
	ps pubsub.PubSub,
	handler message.NoPublishHandlerFunc,
	middlewares ...message.HandlerMiddleware,
) {
	h := r.router.AddNoPublisherHandler(name, topic, subscriberAdapter{ps}, handler)
	for _, m := range middlewares {
		h.AddMiddleware(m)
	}
}

// Run starts the router and blocks until the context is cancelled.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

func (r *Router) Close() error {
	return r.router.Close()
}

// subscriberAdapter exposes a PubSub as a watermill message.Subscriber.
type subscriberAdapter struct {
	ps pubsub.PubSub
}

func (a subscriberAdapter) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return a.ps.Subscribe(ctx, topic)
}

func (a subscriberAdapter) Close() error {
	return a.ps.Close()
}
