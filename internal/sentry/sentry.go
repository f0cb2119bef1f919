package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/logger"
)

// Service owns the sentry SDK lifecycle. A disabled config yields a no-op
// service so callers never have to branch.
type Service struct {
	cfg *config.Configuration
	log *logger.Logger
}

func NewService(cfg *config.Configuration, log *logger.Logger) (*Service, error) {
	s := &Service{cfg: cfg, log: log}
	if !cfg.Sentry.Enabled {
		return s, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return s, nil
}

func (s *Service) CaptureException(err error) {
	if !s.cfg.Sentry.Enabled || err == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush drains buffered events, called on shutdown.
func (s *Service) Flush() {
	if !s.cfg.Sentry.Enabled {
		return
	}
	sentry.Flush(2 * time.Second)
}
