package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	"github.com/nextstep/nextstep/internal/notification"
	"github.com/nextstep/nextstep/internal/testutil"
	"github.com/nextstep/nextstep/internal/types"
)

type SweepServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	service  SweepService
	email    *testutil.FakeChannel
	whatsapp *testutil.FakeChannel
}

func TestSweepService(t *testing.T) {
	suite.Run(t, new(SweepServiceTestSuite))
}

func (s *SweepServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.email = testutil.NewFakeChannel(types.ChannelEmail)
	s.whatsapp = testutil.NewFakeChannel(types.ChannelWhatsApp)
	s.service = NewSweepService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		DB:           s.GetDB(),
		Cache:        s.GetCache(),
		SubRepo:      s.GetStores().SubscriberRepo,
		PaymentRepo:  s.GetStores().PaymentRepo,
		ReminderRepo: s.GetStores().ReminderRepo,
		SettingsRepo: s.GetStores().SettingsRepo,
		Channels:     []notification.Channel{s.email, s.whatsapp},
	})
}

// seedSubscriber creates a subscriber with a given expiry date directly in
// the store so sweeps see exact day offsets.
func (s *SweepServiceTestSuite) seedSubscriber(name, email, phone string, expiry time.Time) *subscriber.Subscriber {
	sub := &subscriber.Subscriber{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIBER),
		Name:       name,
		Email:      email,
		Phone:      phone,
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

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *SweepServiceTestSuite) runAsOf(asOf time.Time) *dto.SweepRunResponse {
	resp, err := s.service.Run(s.GetContext(), &dto.RunSweepRequest{AsOf: lo.ToPtr(asOf)})
	s.NoError(err)
	return resp
}

func (s *SweepServiceTestSuite) TestSweepSendsTieredReminders() {
	now := day(2024, time.January, 15)

	s.seedSubscriber("Three Days", "three@example.com", "+911", day(2024, time.January, 18))
	s.seedSubscriber("One Day", "one@example.com", "+912", day(2024, time.January, 16))
	s.seedSubscriber("Today", "today@example.com", "+913", day(2024, time.January, 15))
	s.seedSubscriber("Yesterday", "past@example.com", "+914", day(2024, time.January, 14))
	s.seedSubscriber("Far Future", "future@example.com", "+915", day(2024, time.February, 20))

	resp := s.runAsOf(now)

	s.Equal(4, resp.Evaluated)
	// Both channels fired for each due subscriber.
	s.Equal(8, resp.Sent)
	s.Equal(0, resp.Failed)
	s.Len(s.email.Sent(), 4)
	s.Len(s.whatsapp.Sent(), 4)

	// The expired subscriber got the post-expiry wording.
	found := false
	for _, m := range s.whatsapp.Sent() {
		if m.Destination == "+914" {
			found = true
			s.Contains(m.Message.Text, "expired on")
		}
	}
	s.True(found)
}

func (s *SweepServiceTestSuite) TestSecondRunSameDaySkipsDuplicates() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("Asha", "asha@example.com", "+911234567890", day(2024, time.January, 16))

	first := s.runAsOf(now)
	s.Equal(2, first.Sent)

	second := s.runAsOf(now)
	s.Equal(0, second.Sent)
	s.Equal(2, second.SkippedDuplicate)
	s.Len(s.email.Sent(), 1)
	s.Len(s.whatsapp.Sent(), 1)
}

func (s *SweepServiceTestSuite) TestChannelFailureIsIsolated() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("Asha", "asha@example.com", "+911234567890", day(2024, time.January, 16))
	s.email.FailAll(true)

	resp := s.runAsOf(now)
	s.Equal(1, resp.Sent)
	s.Equal(1, resp.Failed)
	s.Len(s.whatsapp.Sent(), 1)
	s.Len(s.email.Sent(), 0)
}

func (s *SweepServiceTestSuite) TestFailedSendRetriesNextRun() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("Asha", "asha@example.com", "+911234567890", day(2024, time.January, 16))

	s.email.FailAll(true)
	first := s.runAsOf(now)
	s.Equal(1, first.Failed)

	// The failure row does not block a later success on the same day.
	s.email.FailAll(false)
	second := s.runAsOf(now)
	s.Equal(1, second.Sent)
	s.Equal(1, second.SkippedDuplicate) // whatsapp already succeeded
	s.Len(s.email.Sent(), 1)
}

func (s *SweepServiceTestSuite) TestMissingContactSkipsChannelOnly() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("Email Only", "only@example.com", "", day(2024, time.January, 16))

	resp := s.runAsOf(now)
	s.Equal(1, resp.Sent)
	s.Equal(1, resp.NoContact)
	s.Equal(0, resp.Failed)
	s.Len(s.email.Sent(), 1)
	s.Len(s.whatsapp.Sent(), 0)
}

func (s *SweepServiceTestSuite) TestMissingContactsAreCounted() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("No Contacts", "", "", day(2024, time.January, 16))
	s.seedSubscriber("Phone Only", "", "+911234567890", day(2024, time.January, 16))

	resp := s.runAsOf(now)
	s.Equal(2, resp.Evaluated)
	// Two channels missing on the first subscriber, one on the second.
	s.Equal(3, resp.NoContact)
	s.Equal(1, resp.Sent)
	s.Equal(0, resp.Failed)
	s.Equal(0, resp.SkippedDuplicate)
}

func (s *SweepServiceTestSuite) TestSweepExpiresOverdueSubscribers() {
	now := day(2024, time.January, 15)
	overdue := s.seedSubscriber("Overdue", "", "+911", day(2024, time.January, 14))
	active := s.seedSubscriber("Active", "", "+912", day(2024, time.January, 15))

	// Expiry transition happens even when every send fails.
	s.whatsapp.FailAll(true)
	resp := s.runAsOf(now)
	s.Equal(1, resp.Expired)

	got, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), overdue.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusExpired, got.SubStatus)

	got, err = s.GetStores().SubscriberRepo.Get(s.GetContext(), active.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, got.SubStatus)
}

func (s *SweepServiceTestSuite) TestSweepIsIdempotentAcrossExpiry() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("Overdue", "", "+911", day(2024, time.January, 14))

	first := s.runAsOf(now)
	s.Equal(1, first.Expired)

	second := s.runAsOf(now)
	s.Equal(0, second.Expired)
}

func (s *SweepServiceTestSuite) TestDryRunSendsNothing() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("Asha", "asha@example.com", "+911", day(2024, time.January, 16))

	resp, err := s.service.Run(s.GetContext(), &dto.RunSweepRequest{
		AsOf:   lo.ToPtr(now),
		DryRun: true,
	})
	s.NoError(err)
	s.Equal(1, resp.Evaluated)
	s.Equal(0, resp.Sent)
	s.Equal(0, resp.Expired)
	s.Len(s.email.Sent(), 0)

	ledger, err := s.GetStores().ReminderRepo.ListForDay(s.GetContext(), now)
	s.NoError(err)
	s.Len(ledger, 0)
}

func (s *SweepServiceTestSuite) TestLedgerRecordsTierAndChannel() {
	now := day(2024, time.January, 15)
	sub := s.seedSubscriber("Asha", "asha@example.com", "", day(2024, time.January, 18))

	s.runAsOf(now)

	ledger, err := s.GetStores().ReminderRepo.ListForDay(s.GetContext(), now)
	s.NoError(err)
	s.Len(ledger, 1)
	s.Equal(sub.ID, ledger[0].SubscriberID)
	s.Equal(types.ChannelEmail, ledger[0].Channel)
	s.Equal(types.ReminderTier3Day, ledger[0].Tier)
	s.Equal(types.ReminderDeliverySent, ledger[0].Delivery)
}

func (s *SweepServiceTestSuite) TestConcurrentRunsSendOnce() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("Asha", "asha@example.com", "+911234567890", day(2024, time.January, 16))

	// Keep sends in flight long enough for the runs to overlap. Whichever
	// run claims a key first owns its send; the other must skip.
	s.email.SetDelay(50 * time.Millisecond)
	s.whatsapp.SetDelay(50 * time.Millisecond)

	var wg sync.WaitGroup
	responses := make([]*dto.SweepRunResponse, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.service.Run(s.GetContext(), &dto.RunSweepRequest{AsOf: lo.ToPtr(now)})
			s.NoError(err)
			responses[i] = resp
		}(i)
	}
	wg.Wait()

	s.Len(s.email.Sent(), 1)
	s.Len(s.whatsapp.Sent(), 1)
	s.Equal(2, responses[0].Sent+responses[1].Sent)
	s.Equal(2, responses[0].SkippedDuplicate+responses[1].SkippedDuplicate)

	ledger, err := s.GetStores().ReminderRepo.ListForDay(s.GetContext(), now)
	s.NoError(err)
	s.Len(ledger, 2)
	for _, rec := range ledger {
		s.Equal(types.ReminderDeliverySent, rec.Delivery)
	}
}

func (s *SweepServiceTestSuite) TestCancelAfterSendStillRecordsOutcome() {
	now := day(2024, time.January, 15)
	s.seedSubscriber("Asha", "asha@example.com", "", day(2024, time.January, 16))

	ctx, cancel := context.WithCancel(s.GetContext())
	defer cancel()

	// Cancel while the send is in flight. The message still goes out, so
	// the ledger must end up SENT or the next run would deliver it twice.
	s.email.SetOnSend(func(string) { cancel() })

	_, err := s.service.Run(ctx, &dto.RunSweepRequest{AsOf: lo.ToPtr(now)})
	s.Error(err)
	s.Len(s.email.Sent(), 1)

	ledger, lerr := s.GetStores().ReminderRepo.ListForDay(s.GetContext(), now)
	s.NoError(lerr)
	s.Len(ledger, 1)
	s.Equal(types.ReminderDeliverySent, ledger[0].Delivery)

	// A later run on the same day must not resend.
	s.email.SetOnSend(nil)
	second := s.runAsOf(now)
	s.Equal(0, second.Sent)
	s.Equal(1, second.SkippedDuplicate)
	s.Len(s.email.Sent(), 1)
}
