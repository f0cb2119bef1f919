package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nextstep/nextstep/internal/config"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/types"
)

// WhatsAppChannel delivers reminders through a WhatsApp messaging gateway.
// The gateway API is a single POST /messages with a bearer token.
type WhatsAppChannel struct {
	client  *retryablehttp.Client
	baseURL string
	apiKey  string
	enabled bool
	logger  *logger.Logger
}

type whatsAppSendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func NewWhatsAppChannel(cfg *config.Configuration, log *logger.Logger) *WhatsAppChannel {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = log.GetRetryableHTTPLogger()

	return &WhatsAppChannel{
		client:  client,
		baseURL: cfg.WhatsApp.BaseURL,
		apiKey:  cfg.WhatsApp.APIKey,
		enabled: cfg.WhatsApp.Enabled && cfg.WhatsApp.BaseURL != "",
		logger:  log,
	}
}

func (c *WhatsAppChannel) Kind() types.NotificationChannel {
	return types.ChannelWhatsApp
}

func (c *WhatsAppChannel) Send(ctx context.Context, destination string, msg Message) error {
	if !c.enabled {
		return ierr.NewError("whatsapp channel is disabled").
			WithHint("Configure whatsapp.base_url to enable the whatsapp channel").
			Mark(ierr.ErrInvalidOperation)
	}

	payload, err := json.Marshal(whatsAppSendRequest{
		To:      destination,
		Message: msg.Text,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode whatsapp message").
			Mark(ierr.ErrInternal)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to build whatsapp request").
			Mark(ierr.ErrInternal)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return ierr.WithError(err).
			WithHint("WhatsApp gateway unreachable").
			WithReportableDetails(map[string]any{"to": destination}).
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ierr.NewErrorf("whatsapp gateway returned %d", resp.StatusCode).
			WithHint(fmt.Sprintf("WhatsApp gateway rejected the send: %s", string(body))).
			WithReportableDetails(map[string]any{"to": destination, "status": resp.StatusCode}).
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Debugw("whatsapp message sent", "to", destination)
	return nil
}
