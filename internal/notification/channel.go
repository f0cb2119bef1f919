package notification

import (
	"context"

	"github.com/nextstep/nextstep/internal/types"
)

// Message is a channel-agnostic reminder payload. Channels pick the body
// variant they can carry.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Channel is one outbound delivery binding. Transport-level retries stay
// inside the channel; once Send returns, the outcome is final for this
// attempt and the sweep's dedup ledger decides whether another attempt runs.
type Channel interface {
	Kind() types.NotificationChannel
	Send(ctx context.Context, destination string, msg Message) error
}
