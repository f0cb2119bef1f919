package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nextstep/nextstep/internal/domain/subscriber"
	"github.com/nextstep/nextstep/internal/testutil"
	"github.com/nextstep/nextstep/internal/types"
)

type NotificationFeedTestSuite struct {
	testutil.BaseServiceTestSuite
	service NotificationFeedService
}

func TestNotificationFeedService(t *testing.T) {
	suite.Run(t, new(NotificationFeedTestSuite))
}

func (s *NotificationFeedTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewNotificationFeedService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		DB:           s.GetDB(),
		Cache:        s.GetCache(),
		SubRepo:      s.GetStores().SubscriberRepo,
		SettingsRepo: s.GetStores().SettingsRepo,
	})
}

func (s *NotificationFeedTestSuite) seedExpiring(name string, expiry time.Time) *subscriber.Subscriber {
	sub := &subscriber.Subscriber{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIBER),
		Name:       name,
		Phone:      "+911234567890",
		Plan:       types.Plan1Month,
		StartDate:  expiry.AddDate(0, -1, 0),
		ExpiryDate: expiry,
		SubStatus:  types.SubscriptionStatusActive,
		Version:    1,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriberRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *NotificationFeedTestSuite) TestExpiringSoonCoversThreeDayWindow() {
	today := types.DayOf(time.Now(), time.UTC)

	s.seedExpiring("Today", today.Add(6*time.Hour))
	s.seedExpiring("In Two Days", today.AddDate(0, 0, 2))
	s.seedExpiring("On The Edge", today.AddDate(0, 0, 3))
	s.seedExpiring("Too Far", today.AddDate(0, 0, 5))
	s.seedExpiring("Already Past", today.AddDate(0, 0, -1))

	resp, err := s.service.ExpiringSoon(s.GetContext())
	s.NoError(err)
	s.Equal(3, resp.Total)

	for _, item := range resp.Items {
		s.Equal("Subscription Expiring", item.Title)
		s.Equal("warning", item.Type)
		s.Contains(item.Message, "subscription expires on")
	}
}

func (s *NotificationFeedTestSuite) TestExpiringSoonEmptyWhenNothingDue() {
	today := types.DayOf(time.Now(), time.UTC)
	s.seedExpiring("Far Future", today.AddDate(0, 1, 0))

	resp, err := s.service.ExpiringSoon(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.Total)
	s.Empty(resp.Items)
}

func (s *NotificationFeedTestSuite) TestExpiringSoonMessageNamesSubscriber() {
	today := types.DayOf(time.Now(), time.UTC)
	sub := s.seedExpiring("Asha", today.AddDate(0, 0, 1))

	resp, err := s.service.ExpiringSoon(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal(sub.ID, resp.Items[0].ID)
	s.Contains(resp.Items[0].Message, "Asha's subscription expires on")
}
