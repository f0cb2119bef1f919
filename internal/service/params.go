package service

import (
	"github.com/nextstep/nextstep/internal/cache"
	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/domain/attendance"
	"github.com/nextstep/nextstep/internal/domain/payment"
	"github.com/nextstep/nextstep/internal/domain/reminder"
	"github.com/nextstep/nextstep/internal/domain/settings"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	"github.com/nextstep/nextstep/internal/idempotency"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/notification"
	"github.com/nextstep/nextstep/internal/postgres"
)

// ServiceParams carries the shared dependencies injected into every service.
// Services embed it and pick what they need.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	SubRepo        subscriber.Repository
	PaymentRepo    payment.Repository
	ReminderRepo   reminder.Repository
	AttendanceRepo attendance.Repository
	SettingsRepo   settings.Repository

	Channels []notification.Channel

	IdempGen *idempotency.Generator
}
