package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/nextstep/nextstep/internal/api/dto"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/idempotency"
	"github.com/nextstep/nextstep/internal/testutil"
	"github.com/nextstep/nextstep/internal/types"
)

type PaymentServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	service           PaymentService
	subscriberService SubscriberService
	subscriberID      string
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		DB:           s.GetDB(),
		Cache:        s.GetCache(),
		SubRepo:      s.GetStores().SubscriberRepo,
		PaymentRepo:  s.GetStores().PaymentRepo,
		ReminderRepo: s.GetStores().ReminderRepo,
		SettingsRepo: s.GetStores().SettingsRepo,
		IdempGen:     idempotency.NewGenerator(),
	}
	s.service = NewPaymentService(params)
	s.subscriberService = NewSubscriberService(params)

	created, err := s.subscriberService.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:        "Asha Verma",
		Phone:       "+911234567890",
		Plan:        types.Plan3Month,
		StartDate:   lo.ToPtr(time.Now().UTC()),
		PendingFees: decimal.NewFromInt(1000),
	})
	s.NoError(err)
	s.subscriberID = created.ID
}

func (s *PaymentServiceTestSuite) TestRecordPaymentUpdatesLedger() {
	resp, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
		SubscriberID: s.subscriberID,
		Amount:       decimal.NewFromInt(400),
		Mode:         types.PaymentModeCash,
	})
	s.NoError(err)
	s.False(resp.Replayed)
	s.NotNil(resp.Subscriber)
	s.True(resp.Subscriber.FeesPaid.Equal(decimal.NewFromInt(400)))
	s.True(resp.Subscriber.PendingFees.Equal(decimal.NewFromInt(600)))
}

func (s *PaymentServiceTestSuite) TestPendingFeesFloorAtZero() {
	resp, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
		SubscriberID: s.subscriberID,
		Amount:       decimal.NewFromInt(1500),
		Mode:         types.PaymentModeUPI,
	})
	s.NoError(err)
	s.True(resp.Subscriber.FeesPaid.Equal(decimal.NewFromInt(1500)))
	s.True(resp.Subscriber.PendingFees.IsZero())
}

func (s *PaymentServiceTestSuite) TestApplicationOrderDoesNotMatter() {
	// 300 then 800 must land on the same balances as 800 then 300.
	for _, amount := range []int64{300, 800} {
		_, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
			SubscriberID:  s.subscriberID,
			Amount:        decimal.NewFromInt(amount),
			Mode:          types.PaymentModeCard,
			TransactionID: "txn_" + decimal.NewFromInt(amount).String(),
		})
		s.NoError(err)
	}

	sub, err := s.subscriberService.GetSubscriber(s.GetContext(), s.subscriberID)
	s.NoError(err)
	s.True(sub.FeesPaid.Equal(decimal.NewFromInt(1100)))
	s.True(sub.PendingFees.IsZero())
}

func (s *PaymentServiceTestSuite) TestReplaySameIdempotencyKeyIsNoOp() {
	req := &dto.RecordPaymentRequest{
		SubscriberID:   s.subscriberID,
		Amount:         decimal.NewFromInt(250),
		Mode:           types.PaymentModeUPI,
		IdempotencyKey: "evt_12345",
	}

	first, err := s.service.RecordPayment(s.GetContext(), req)
	s.NoError(err)
	s.False(first.Replayed)

	second, err := s.service.RecordPayment(s.GetContext(), req)
	s.NoError(err)
	s.True(second.Replayed)
	s.Equal(first.ID, second.ID)

	// The ledger moved exactly once.
	sub, err := s.subscriberService.GetSubscriber(s.GetContext(), s.subscriberID)
	s.NoError(err)
	s.True(sub.FeesPaid.Equal(decimal.NewFromInt(250)))
	s.True(sub.PendingFees.Equal(decimal.NewFromInt(750)))
}

func (s *PaymentServiceTestSuite) TestDerivedKeyAbsorbsDuplicateEvents() {
	req := &dto.RecordPaymentRequest{
		SubscriberID:  s.subscriberID,
		Amount:        decimal.NewFromInt(100),
		Mode:          types.PaymentModeNetBanking,
		TransactionID: "txn_abc",
	}

	first, err := s.service.RecordPayment(s.GetContext(), req)
	s.NoError(err)
	second, err := s.service.RecordPayment(s.GetContext(), req)
	s.NoError(err)
	s.True(second.Replayed)
	s.Equal(first.ID, second.ID)
}

func (s *PaymentServiceTestSuite) TestRejectsNonPositiveAmounts() {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
		_, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
			SubscriberID: s.subscriberID,
			Amount:       amount,
			Mode:         types.PaymentModeCash,
		})
		s.Error(err)
		s.True(ierr.IsValidation(err))
	}
}

func (s *PaymentServiceTestSuite) TestRejectsUnknownSubscriber() {
	_, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
		SubscriberID: "subs_missing",
		Amount:       decimal.NewFromInt(100),
		Mode:         types.PaymentModeCash,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceTestSuite) TestListPaymentsNewestFirst() {
	base := time.Now().UTC()
	for i, amount := range []int64{100, 200, 300} {
		_, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
			SubscriberID:  s.subscriberID,
			Amount:        decimal.NewFromInt(amount),
			Mode:          types.PaymentModeCash,
			TransactionID: "txn_" + decimal.NewFromInt(amount).String(),
			PaidAt:        lo.ToPtr(base.Add(time.Duration(i) * time.Hour)),
		})
		s.NoError(err)
	}

	resp, err := s.service.ListPayments(s.GetContext(), &dto.ListPaymentsRequest{
		QueryFilter:   *types.NewNoLimitQueryFilter(),
		SubscriberIDs: []string{s.subscriberID},
	})
	s.NoError(err)
	s.Equal(3, resp.Total)
	s.True(resp.Items[0].Amount.Equal(decimal.NewFromInt(300)))
	s.True(resp.Items[2].Amount.Equal(decimal.NewFromInt(100)))
}

func (s *PaymentServiceTestSuite) TestListPaymentsFiltersByMode() {
	for _, p := range []struct {
		amount int64
		mode   types.PaymentMode
	}{
		{100, types.PaymentModeCash},
		{200, types.PaymentModeUPI},
		{300, types.PaymentModeCash},
	} {
		_, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
			SubscriberID:  s.subscriberID,
			Amount:        decimal.NewFromInt(p.amount),
			Mode:          p.mode,
			TransactionID: "txn_" + decimal.NewFromInt(p.amount).String(),
		})
		s.NoError(err)
	}

	resp, err := s.service.ListPayments(s.GetContext(), &dto.ListPaymentsRequest{
		QueryFilter: *types.NewNoLimitQueryFilter(),
		Modes:       []types.PaymentMode{types.PaymentModeUPI},
	})
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal(types.PaymentModeUPI, resp.Items[0].Mode)

	resp, err = s.service.ListPayments(s.GetContext(), &dto.ListPaymentsRequest{
		QueryFilter: *types.NewNoLimitQueryFilter(),
		Modes:       []types.PaymentMode{types.PaymentModeCash, types.PaymentModeUPI},
	})
	s.NoError(err)
	s.Equal(3, resp.Total)
}
