package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/nextstep/nextstep/internal/domain/settings"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// InMemorySettingsStore implements settings.Repository
type InMemorySettingsStore struct {
	mu      sync.Mutex
	configs map[string]*settings.ReminderConfig
	audits  []*settings.ReminderConfigAudit
}

// NewInMemorySettingsStore creates a new in-memory settings store
func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{
		configs: make(map[string]*settings.ReminderConfig),
	}
}

func configKey(tenantID, key string) string {
	return fmt.Sprintf("%s:%s", tenantID, key)
}

func (s *InMemorySettingsStore) GetConfig(ctx context.Context, key string) (*settings.ReminderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, exists := s.configs[configKey(types.GetTenantID(ctx), key)]
	if !exists {
		return nil, ierr.NewError("config not found").
			WithHint("No configuration stored for this key").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrNotFound)
	}
	copied := *cfg
	return &copied, nil
}

func (s *InMemorySettingsStore) SetConfig(ctx context.Context, config *settings.ReminderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *config
	s.configs[configKey(types.GetTenantID(ctx), config.Key)] = &copied
	return nil
}

func (s *InMemorySettingsStore) CreateConfigAudit(ctx context.Context, audit *settings.ReminderConfigAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *audit
	s.audits = append(s.audits, &copied)
	return nil
}

// Audits returns the recorded audit entries, for assertions.
func (s *InMemorySettingsStore) Audits() []*settings.ReminderConfigAudit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*settings.ReminderConfigAudit{}, s.audits...)
}

// Clear removes every config and audit entry, used between tests.
func (s *InMemorySettingsStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = make(map[string]*settings.ReminderConfig)
	s.audits = nil
}
