package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstep/nextstep/internal/config"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
)

func testExpiry() time.Time {
	return time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC)
}

func whatsAppTestChannel(t *testing.T, baseURL string) *WhatsAppChannel {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.WhatsApp.Enabled = true
	cfg.WhatsApp.BaseURL = baseURL
	cfg.WhatsApp.APIKey = "test-key"
	return NewWhatsAppChannel(cfg, logger.GetLogger())
}

func TestWhatsAppSend(t *testing.T) {
	var got whatsAppSendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := whatsAppTestChannel(t, srv.URL)
	msg := BuildReminderMessage("Asha", testExpiry(), 1)

	err := ch.Send(context.Background(), "+911234567890", msg)
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "+911234567890", got.To)
	assert.Equal(t, msg.Text, got.Message)
}

func TestWhatsAppSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid recipient", http.StatusBadRequest)
	}))
	defer srv.Close()

	ch := whatsAppTestChannel(t, srv.URL)
	err := ch.Send(context.Background(), "not-a-number", BuildReminderMessage("Asha", testExpiry(), 1))
	require.Error(t, err)
	assert.True(t, ierr.IsHTTPClient(err))
}

func TestWhatsAppSendDisabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.WhatsApp.Enabled = false
	ch := NewWhatsAppChannel(cfg, logger.GetLogger())

	err := ch.Send(context.Background(), "+911234567890", BuildReminderMessage("Asha", testExpiry(), 1))
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
}
