package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/nextstep/nextstep/internal/cache"
	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/types"
)

// Stores groups every in-memory repository for a test run.
type Stores struct {
	SubscriberRepo *InMemorySubscriberStore
	PaymentRepo    *InMemoryPaymentStore
	ReminderRepo   *InMemoryReminderStore
	AttendanceRepo *InMemoryAttendanceStore
	SettingsRepo   *InMemorySettingsStore
}

// BaseServiceTestSuite provides common setup for service tests: fresh stores,
// a test tenant context, config defaults and a quiet logger.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     *FakeDB
	logger *logger.Logger
	config *config.Configuration
}

// SetupTest initializes the suite before each test.
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = types.SetTenantID(context.Background(), types.DefaultTenantID)
	s.ctx = types.SetUserID(s.ctx, "user_test")

	s.stores = Stores{
		SubscriberRepo: NewInMemorySubscriberStore(),
		PaymentRepo:    NewInMemoryPaymentStore(),
		ReminderRepo:   NewInMemoryReminderStore(),
		AttendanceRepo: NewInMemoryAttendanceStore(),
		SettingsRepo:   NewInMemorySettingsStore(),
	}
	s.db = NewFakeDB()
	s.logger = logger.GetLogger()
	s.config = config.GetDefaultConfig()
}

// TearDownTest cleans up after each test.
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.SubscriberRepo.Clear()
	s.stores.PaymentRepo.Clear()
	s.stores.ReminderRepo.Clear()
	s.stores.AttendanceRepo.Clear()
	s.stores.SettingsRepo.Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetDB() *FakeDB {
	return s.db
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetCache returns a fresh in-memory cache.
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return cache.NewInMemoryCache()
}
