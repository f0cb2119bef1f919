package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/nextstep/nextstep/internal/api/dto"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/testutil"
	"github.com/nextstep/nextstep/internal/types"
)

type SubscriberServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriberService
}

func TestSubscriberService(t *testing.T) {
	suite.Run(t, new(SubscriberServiceTestSuite))
}

func (s *SubscriberServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriberService(s.serviceParams())
}

func (s *SubscriberServiceTestSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		DB:           s.GetDB(),
		Cache:        s.GetCache(),
		SubRepo:      s.GetStores().SubscriberRepo,
		PaymentRepo:  s.GetStores().PaymentRepo,
		ReminderRepo: s.GetStores().ReminderRepo,
		SettingsRepo: s.GetStores().SettingsRepo,
	}
}

func (s *SubscriberServiceTestSuite) TestCreateSubscriberDerivesExpiry() {
	start := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	resp, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:      "Asha Verma",
		Email:     "asha@example.com",
		Phone:     "+911234567890",
		Plan:      types.Plan1Month,
		StartDate: lo.ToPtr(start),
	})
	s.NoError(err)
	s.Equal("2024-02-15", resp.ExpiryDate.Format("2006-01-02"))
	s.Equal(types.SubscriptionStatusExpired, resp.SubStatus) // expiry long past

	future := time.Now().UTC()
	resp2, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:      "Ravi Kumar",
		Phone:     "+919876543210",
		Plan:      types.Plan12Month,
		StartDate: lo.ToPtr(future),
	})
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp2.SubStatus)
}

func (s *SubscriberServiceTestSuite) TestCreateSubscriberMonthEndClamp() {
	start := time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC)
	resp, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:      "Meera Iyer",
		Phone:     "+911112223334",
		Plan:      types.Plan1Month,
		StartDate: lo.ToPtr(start),
	})
	s.NoError(err)
	s.Equal("2023-02-28", resp.ExpiryDate.Format("2006-01-02"))
}

func (s *SubscriberServiceTestSuite) TestCreateSubscriberRequiresContact() {
	_, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name: "No Contact",
		Plan: types.Plan1Month,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriberServiceTestSuite) TestUpdatePlanRecomputesExpiry() {
	start := time.Now().UTC()
	created, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:      "Asha Verma",
		Phone:     "+911234567890",
		Plan:      types.Plan1Month,
		StartDate: lo.ToPtr(start),
	})
	s.NoError(err)

	updated, err := s.service.UpdateSubscriber(s.GetContext(), created.ID, &dto.UpdateSubscriberRequest{
		Plan: lo.ToPtr(types.Plan6Month),
	})
	s.NoError(err)
	s.Equal(types.Plan6Month, updated.Plan)
	s.Equal(types.Plan6Month.ExpiryFrom(start).Format("2006-01-02"), updated.ExpiryDate.Format("2006-01-02"))
}

func (s *SubscriberServiceTestSuite) TestUpdateContactKeepsExpiry() {
	start := time.Now().UTC()
	created, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:      "Asha Verma",
		Phone:     "+911234567890",
		Plan:      types.Plan3Month,
		StartDate: lo.ToPtr(start),
	})
	s.NoError(err)

	updated, err := s.service.UpdateSubscriber(s.GetContext(), created.ID, &dto.UpdateSubscriberRequest{
		Email: lo.ToPtr("asha.new@example.com"),
	})
	s.NoError(err)
	s.Equal(created.ExpiryDate, updated.ExpiryDate)
	s.Equal("asha.new@example.com", updated.Email)
}

func (s *SubscriberServiceTestSuite) TestRenewReactivatesExpiredSubscriber() {
	past := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	created, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:        "Lapsed Member",
		Phone:       "+911234567890",
		Plan:        types.Plan1Month,
		StartDate:   lo.ToPtr(past),
		PendingFees: decimal.NewFromInt(500),
	})
	s.NoError(err)
	s.Equal(types.SubscriptionStatusExpired, created.SubStatus)

	renewed, err := s.service.RenewSubscriber(s.GetContext(), created.ID, &dto.RenewSubscriberRequest{
		Plan: types.Plan3Month,
	})
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, renewed.SubStatus)
	s.Equal(types.Plan3Month, renewed.Plan)
	s.True(renewed.ExpiryDate.After(time.Now().UTC()))
	// Renewal does not touch the ledger.
	s.True(renewed.PendingFees.Equal(decimal.NewFromInt(500)))
}

func (s *SubscriberServiceTestSuite) TestGetUnknownSubscriber() {
	_, err := s.service.GetSubscriber(s.GetContext(), "subs_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriberServiceTestSuite) TestListFiltersByPlan() {
	now := time.Now().UTC()
	for _, plan := range []types.PlanType{types.Plan1Month, types.Plan3Month, types.Plan3Month} {
		_, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
			Name:      "Member " + string(plan),
			Phone:     "+91000000000" + string(plan[0]),
			Plan:      plan,
			StartDate: lo.ToPtr(now),
		})
		s.NoError(err)
	}

	resp, err := s.service.ListSubscribers(s.GetContext(), &dto.ListSubscribersRequest{
		QueryFilter: *types.NewNoLimitQueryFilter(),
		Plans:       []types.PlanType{types.Plan3Month},
	})
	s.NoError(err)
	s.Equal(2, resp.Total)
}

func (s *SubscriberServiceTestSuite) TestListFiltersBySubscriberIDs() {
	now := time.Now().UTC()
	var ids []string
	for _, name := range []string{"Asha", "Ravi", "Meena"} {
		resp, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
			Name:      name,
			Phone:     "+9100000000" + name[:1],
			Plan:      types.Plan1Month,
			StartDate: lo.ToPtr(now),
		})
		s.NoError(err)
		ids = append(ids, resp.ID)
	}

	resp, err := s.service.ListSubscribers(s.GetContext(), &dto.ListSubscribersRequest{
		QueryFilter:   *types.NewNoLimitQueryFilter(),
		SubscriberIDs: []string{ids[0], ids[2]},
	})
	s.NoError(err)
	s.Equal(2, resp.Total)
	for _, item := range resp.Items {
		s.Contains([]string{ids[0], ids[2]}, item.ID)
	}
}
