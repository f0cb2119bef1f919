package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/testutil"
	"github.com/nextstep/nextstep/internal/types"
)

type AttendanceServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	service      AttendanceService
	subscriberID string
}

func TestAttendanceService(t *testing.T) {
	suite.Run(t, new(AttendanceServiceTestSuite))
}

func (s *AttendanceServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewAttendanceService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		Cache:          s.GetCache(),
		SubRepo:        s.GetStores().SubscriberRepo,
		PaymentRepo:    s.GetStores().PaymentRepo,
		ReminderRepo:   s.GetStores().ReminderRepo,
		AttendanceRepo: s.GetStores().AttendanceRepo,
		SettingsRepo:   s.GetStores().SettingsRepo,
	})

	sub := &subscriber.Subscriber{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIBER),
		Name:       "Asha",
		Email:      "asha@example.com",
		Phone:      "+911234567890",
		Plan:       types.Plan1Month,
		StartDate:  time.Now().UTC(),
		ExpiryDate: time.Now().UTC().AddDate(0, 1, 0),
		SubStatus:  types.SubscriptionStatusActive,
		Version:    1,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriberRepo.Create(s.GetContext(), sub))
	s.subscriberID = sub.ID
}

func (s *AttendanceServiceTestSuite) TestCheckInCreatesEntry() {
	resp, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{
		SubscriberID: s.subscriberID,
	})
	s.NoError(err)
	s.Equal(s.subscriberID, resp.SubscriberID)
	s.Equal(types.AttendanceSourceManual, resp.Source)
	s.False(resp.CheckIn.IsZero())
	s.Nil(resp.CheckOut)
	s.Equal("Asha", resp.SubscriberName)
	s.Equal("+911234567890", resp.SubscriberPhone)
}

func (s *AttendanceServiceTestSuite) TestCheckInKeepsExplicitSource() {
	resp, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{
		SubscriberID: s.subscriberID,
		Source:       types.AttendanceSourceQR,
	})
	s.NoError(err)
	s.Equal(types.AttendanceSourceQR, resp.Source)
}

func (s *AttendanceServiceTestSuite) TestCheckInRejectsInvalidSource() {
	_, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{
		SubscriberID: s.subscriberID,
		Source:       types.AttendanceSource("CARRIER_PIGEON"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *AttendanceServiceTestSuite) TestSecondCheckInSameDayRejected() {
	_, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{SubscriberID: s.subscriberID})
	s.NoError(err)

	_, err = s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{SubscriberID: s.subscriberID})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *AttendanceServiceTestSuite) TestCheckInUnknownSubscriber() {
	_, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{SubscriberID: "subs_missing"})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttendanceServiceTestSuite) TestCheckOutClosesEntry() {
	entry, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{SubscriberID: s.subscriberID})
	s.NoError(err)

	resp, err := s.service.CheckOut(s.GetContext(), entry.ID)
	s.NoError(err)
	s.NotNil(resp.CheckOut)
	s.False(resp.CheckOut.Before(resp.CheckIn))
}

func (s *AttendanceServiceTestSuite) TestCheckOutTwiceRejected() {
	entry, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{SubscriberID: s.subscriberID})
	s.NoError(err)

	_, err = s.service.CheckOut(s.GetContext(), entry.ID)
	s.NoError(err)

	_, err = s.service.CheckOut(s.GetContext(), entry.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *AttendanceServiceTestSuite) TestCheckOutUnknownEntry() {
	_, err := s.service.CheckOut(s.GetContext(), "att_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttendanceServiceTestSuite) TestListAttendanceResolvesSubscriber() {
	_, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{SubscriberID: s.subscriberID})
	s.NoError(err)

	resp, err := s.service.ListAttendance(s.GetContext(), &dto.ListAttendanceRequest{
		QueryFilter: *types.NewNoLimitQueryFilter(),
	})
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal("Asha", resp.Items[0].SubscriberName)
	s.Equal("+911234567890", resp.Items[0].SubscriberPhone)
}

func (s *AttendanceServiceTestSuite) TestListAttendanceFiltersBySubscriber() {
	other := &subscriber.Subscriber{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIBER),
		Name:       "Ravi",
		Phone:      "+919999999999",
		Plan:       types.Plan1Month,
		StartDate:  time.Now().UTC(),
		ExpiryDate: time.Now().UTC().AddDate(0, 1, 0),
		SubStatus:  types.SubscriptionStatusActive,
		Version:    1,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriberRepo.Create(s.GetContext(), other))

	_, err := s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{SubscriberID: s.subscriberID})
	s.NoError(err)
	_, err = s.service.CheckIn(s.GetContext(), &dto.CheckInRequest{SubscriberID: other.ID})
	s.NoError(err)

	resp, err := s.service.ListAttendance(s.GetContext(), &dto.ListAttendanceRequest{
		QueryFilter:   *types.NewNoLimitQueryFilter(),
		SubscriberIDs: []string{other.ID},
	})
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal(other.ID, resp.Items[0].SubscriberID)
}
