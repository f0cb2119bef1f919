package testutil

import (
	"context"
	"sync"
	"time"

	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/notification"
	"github.com/nextstep/nextstep/internal/types"
)

// SentMessage captures one delivery through a FakeChannel.
type SentMessage struct {
	Destination string
	Message     notification.Message
}

// FakeChannel is a notification channel that records sends and can be told
// to fail, per destination or entirely. An OnSend hook runs before each
// delivery is recorded so tests can interleave with an in-flight send.
type FakeChannel struct {
	mu       sync.Mutex
	kind     types.NotificationChannel
	sent     []SentMessage
	failAll  bool
	failDest map[string]bool
	delay    time.Duration
	onSend   func(destination string)
}

func NewFakeChannel(kind types.NotificationChannel) *FakeChannel {
	return &FakeChannel{
		kind:     kind,
		failDest: make(map[string]bool),
	}
}

func (c *FakeChannel) Kind() types.NotificationChannel {
	return c.kind
}

func (c *FakeChannel) Send(ctx context.Context, destination string, msg notification.Message) error {
	c.mu.Lock()
	delay := c.delay
	hook := c.onSend
	c.mu.Unlock()

	if hook != nil {
		hook(destination)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failAll || c.failDest[destination] {
		return ierr.NewError("send failed").
			WithHint("Simulated delivery failure").
			WithReportableDetails(map[string]any{"destination": destination}).
			Mark(ierr.ErrHTTPClient)
	}

	c.sent = append(c.sent, SentMessage{Destination: destination, Message: msg})
	return nil
}

// FailAll makes every send fail until reset.
func (c *FakeChannel) FailAll(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAll = fail
}

// FailDestination makes sends to one destination fail.
func (c *FakeChannel) FailDestination(destination string, fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failDest[destination] = fail
}

// SetDelay makes every send block for d before completing.
func (c *FakeChannel) SetDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = d
}

// SetOnSend installs a hook invoked at the start of every send.
func (c *FakeChannel) SetOnSend(fn func(destination string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSend = fn
}

// Sent returns the recorded deliveries.
func (c *FakeChannel) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage{}, c.sent...)
}

// Reset clears recorded deliveries and failure settings.
func (c *FakeChannel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
	c.failAll = false
	c.failDest = make(map[string]bool)
	c.delay = 0
	c.onSend = nil
}
