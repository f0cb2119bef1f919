package notification

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/nextstep/nextstep/internal/config"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/types"
)

// EmailChannel delivers reminders through the Resend API.
type EmailChannel struct {
	client      *resend.Client
	fromAddress string
	enabled     bool
	logger      *logger.Logger
}

func NewEmailChannel(cfg *config.Configuration, log *logger.Logger) *EmailChannel {
	var client *resend.Client
	if cfg.Email.Enabled && cfg.Email.APIKey != "" {
		client = resend.NewClient(cfg.Email.APIKey)
	}
	return &EmailChannel{
		client:      client,
		fromAddress: cfg.Email.FromAddress,
		enabled:     cfg.Email.Enabled && cfg.Email.APIKey != "",
		logger:      log,
	}
}

func (c *EmailChannel) Kind() types.NotificationChannel {
	return types.ChannelEmail
}

func (c *EmailChannel) Send(ctx context.Context, destination string, msg Message) error {
	if !c.enabled {
		return ierr.NewError("email channel is disabled").
			WithHint("Configure email.api_key to enable the email channel").
			Mark(ierr.ErrInvalidOperation)
	}

	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.fromAddress,
		To:      []string{destination},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Email provider rejected the send").
			WithReportableDetails(map[string]any{"to": destination}).
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Debugw("email sent", "to", destination, "message_id", sent.Id)
	return nil
}
