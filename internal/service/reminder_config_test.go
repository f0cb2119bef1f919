package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/settings"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/testutil"
	"github.com/nextstep/nextstep/internal/types"
)

type ReminderConfigServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	service ReminderConfigService
}

func TestReminderConfigService(t *testing.T) {
	suite.Run(t, new(ReminderConfigServiceTestSuite))
}

func (s *ReminderConfigServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewReminderConfigService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		DB:           s.GetDB(),
		Cache:        s.GetCache(),
		SubRepo:      s.GetStores().SubscriberRepo,
		PaymentRepo:  s.GetStores().PaymentRepo,
		ReminderRepo: s.GetStores().ReminderRepo,
		SettingsRepo: s.GetStores().SettingsRepo,
	})
}

func (s *ReminderConfigServiceTestSuite) TestDefaultsWithoutOverrides() {
	resp, err := s.service.GetConfig(s.GetContext())
	s.NoError(err)
	s.Equal(types.DefaultReminderThresholdDays, resp.ThresholdDays)
	s.Equal(settings.DefaultDayTimezone, resp.DayTimezone)
}

func (s *ReminderConfigServiceTestSuite) TestUpdateThresholdsSortsAndDedupes() {
	resp, err := s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		ThresholdDays: []int{0, 7, 3, 7, -1},
	})
	s.NoError(err)
	s.Equal([]int{7, 3, 0, -1}, resp.ThresholdDays)

	days, err := s.service.ThresholdDays(s.GetContext())
	s.NoError(err)
	s.Equal([]int{7, 3, 0, -1}, days)
}

func (s *ReminderConfigServiceTestSuite) TestUpdateTimezoneResolvesAbbreviation() {
	resp, err := s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		DayTimezone: lo.ToPtr("IST"),
	})
	s.NoError(err)
	s.Equal("Asia/Kolkata", resp.DayTimezone)

	loc, err := s.service.DayLocation(s.GetContext())
	s.NoError(err)
	s.Equal("Asia/Kolkata", loc.String())
}

func (s *ReminderConfigServiceTestSuite) TestUpdateRejectsUnknownTimezone() {
	_, err := s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		DayTimezone: lo.ToPtr("Mars/Olympus"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ReminderConfigServiceTestSuite) TestUpdateRejectsEmptyRequest() {
	_, err := s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ReminderConfigServiceTestSuite) TestUpdateWritesAuditTrail() {
	_, err := s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		ThresholdDays: []int{5, 1},
	})
	s.NoError(err)

	_, err = s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		ThresholdDays: []int{3, 1, 0},
	})
	s.NoError(err)

	audits := s.GetStores().SettingsRepo.Audits()
	s.Len(audits, 2)
	s.Equal(settings.ConfigKeyThresholdDays, audits[0].Key)
	s.Equal("", audits[0].PreviousValue)
	s.Equal("5,1", audits[0].NewValue)
	s.Equal("5,1", audits[1].PreviousValue)
	s.Equal("3,1,0", audits[1].NewValue)
}

func (s *ReminderConfigServiceTestSuite) TestUnchangedValueSkipsAudit() {
	_, err := s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		ThresholdDays: []int{3, 1},
	})
	s.NoError(err)

	_, err = s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		ThresholdDays: []int{3, 1},
	})
	s.NoError(err)

	s.Len(s.GetStores().SettingsRepo.Audits(), 1)
}

func (s *ReminderConfigServiceTestSuite) TestUpdateInvalidatesThresholdCache() {
	// Prime the cache with the defaults.
	days, err := s.service.ThresholdDays(s.GetContext())
	s.NoError(err)
	s.Equal(types.DefaultReminderThresholdDays, days)

	_, err = s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		ThresholdDays: []int{10, 5},
	})
	s.NoError(err)

	days, err = s.service.ThresholdDays(s.GetContext())
	s.NoError(err)
	s.Equal([]int{10, 5}, days)
}

func (s *ReminderConfigServiceTestSuite) TestThresholdCacheServesRepeatReads() {
	_, err := s.service.UpdateConfig(s.GetContext(), &dto.UpdateReminderConfigRequest{
		ThresholdDays: []int{4, 2},
	})
	s.NoError(err)

	days, err := s.service.ThresholdDays(s.GetContext())
	s.NoError(err)
	s.Equal([]int{4, 2}, days)

	// A direct store mutation is invisible until the cache entry is dropped.
	s.NoError(s.GetStores().SettingsRepo.SetConfig(s.GetContext(), &settings.ReminderConfig{
		ID:       types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SETTINGS),
		TenantID: types.GetTenantID(s.GetContext()),
		Key:      settings.ConfigKeyThresholdDays,
		Value:    "9",
		Status:   string(types.StatusPublished),
	}))

	days, err = s.service.ThresholdDays(s.GetContext())
	s.NoError(err)
	s.Equal([]int{4, 2}, days)
}

func (s *ReminderConfigServiceTestSuite) TestDayLocationFallsBackToUTC() {
	loc, err := s.service.DayLocation(s.GetContext())
	s.NoError(err)
	s.Equal(time.UTC, loc)
}
