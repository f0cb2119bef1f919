package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/reminder"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/notification"
	"github.com/nextstep/nextstep/internal/types"
)

// SweepService runs the daily reminder sweep: it loads every subscriber whose
// expiry falls inside the reminder window, dispatches tiered reminders over
// all configured channels with per-day dedup, and transitions overdue
// subscribers to EXPIRED.
type SweepService interface {
	Run(ctx context.Context, req *dto.RunSweepRequest) (*dto.SweepRunResponse, error)
}

type sweepService struct {
	ServiceParams
}

// NewSweepService creates a new sweep service
func NewSweepService(params ServiceParams) SweepService {
	return &sweepService{
		ServiceParams: params,
	}
}

// sweepCounters accumulates results across workers.
type sweepCounters struct {
	mu               sync.Mutex
	evaluated        int
	sent             int
	failed           int
	skippedDuplicate int
	noContact        int
	errors           []string
}

func (c *sweepCounters) addError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, msg)
}

func (s *sweepService) Run(ctx context.Context, req *dto.RunSweepRequest) (*dto.SweepRunResponse, error) {
	if req == nil {
		req = &dto.RunSweepRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfgService := NewReminderConfigService(s.ServiceParams)
	thresholds, err := cfgService.ThresholdDays(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := cfgService.DayLocation(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if req.AsOf != nil {
		now = *req.AsOf
	}
	runDay := types.DayOf(now, loc)

	window := subscriber.SweepWindow{
		From: runDay.AddDate(0, 0, -s.Config.Sweep.LookbackDays),
		To:   runDay.AddDate(0, 0, s.Config.Sweep.LookaheadDays),
	}

	subs, err := s.SubRepo.ListDueForSweep(ctx, window)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("reminder sweep started",
		"run_day", runDay.Format("2006-01-02"),
		"candidates", len(subs),
		"thresholds", thresholds,
		"dry_run", req.DryRun,
	)

	counters := &sweepCounters{}
	limiter := rate.NewLimiter(rate.Limit(s.Config.Sweep.RatePerSecond), s.Config.Sweep.WorkerPoolSize)

	p := pool.New().WithMaxGoroutines(s.Config.Sweep.WorkerPoolSize)
	for _, sub := range subs {
		sub := sub
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			s.processSubscriber(ctx, sub, now, loc, thresholds, runDay, req.DryRun, limiter, counters)
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Reminder sweep was cancelled").
			Mark(ierr.ErrSystem)
	}

	// Expiry transitions do not depend on delivery outcomes. A subscriber
	// whose reminders all failed still expires.
	expired := 0
	if !req.DryRun {
		expired, err = s.SubRepo.MarkExpiredBefore(ctx, runDay)
		if err != nil {
			return nil, err
		}
	}

	resp := &dto.SweepRunResponse{
		RunDay:           runDay.Format("2006-01-02"),
		Evaluated:        counters.evaluated,
		Sent:             counters.sent,
		Failed:           counters.failed,
		SkippedDuplicate: counters.skippedDuplicate,
		NoContact:        counters.noContact,
		Expired:          expired,
		Errors:           counters.errors,
	}

	s.Logger.Infow("reminder sweep finished",
		"run_day", resp.RunDay,
		"evaluated", resp.Evaluated,
		"sent", resp.Sent,
		"failed", resp.Failed,
		"skipped_duplicate", resp.SkippedDuplicate,
		"no_contact", resp.NoContact,
		"expired", resp.Expired,
	)
	return resp, nil
}

// processSubscriber evaluates one subscriber against the reminder window and
// dispatches to each channel independently. A failure on one channel never
// blocks the other.
func (s *sweepService) processSubscriber(
	ctx context.Context,
	sub *subscriber.Subscriber,
	now time.Time,
	loc *time.Location,
	thresholds []int,
	runDay time.Time,
	dryRun bool,
	limiter *rate.Limiter,
	counters *sweepCounters,
) {
	tier, daysLeft, due := types.EvaluateReminder(sub.ExpiryDate, now, loc, thresholds)
	if !due {
		return
	}

	counters.mu.Lock()
	counters.evaluated++
	counters.mu.Unlock()

	if dryRun {
		return
	}

	msg := notification.BuildReminderMessage(sub.Name, sub.ExpiryDate, daysLeft)

	for _, ch := range s.Channels {
		destination, ok := sub.ContactFor(ch.Kind())
		if !ok {
			counters.mu.Lock()
			counters.noContact++
			counters.mu.Unlock()
			s.Logger.Warnw("subscriber has no contact for channel",
				"subscriber_id", sub.ID,
				"channel", ch.Kind(),
				"tier", tier,
			)
			continue
		}
		s.dispatch(ctx, sub, ch, destination, msg, tier, runDay, limiter, counters)
	}
}

func (s *sweepService) dispatch(
	ctx context.Context,
	sub *subscriber.Subscriber,
	ch notification.Channel,
	destination string,
	msg notification.Message,
	tier types.ReminderTier,
	runDay time.Time,
	limiter *rate.Limiter,
	counters *sweepCounters,
) {
	record := &reminder.Record{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REMINDER_RECORD),
		SubscriberID: sub.ID,
		SendDay:      runDay,
		Channel:      ch.Kind(),
		Tier:         tier,
		Delivery:     types.ReminderDeliveryPending,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}

	// Claim the key before touching the channel. Only the worker that wins
	// the claim sends; a concurrent run landing on the same key sees the
	// PENDING entry and skips. A claim older than twice the send timeout
	// belongs to a crashed worker and is taken over.
	reclaimBefore := time.Now().UTC().Add(-2 * s.Config.Sweep.SendTimeout)
	claimed, err := s.ReminderRepo.ClaimSend(ctx, record, reclaimBefore)
	if err != nil {
		counters.addError(fmt.Sprintf("%s/%s: ledger claim failed: %v", sub.ID, ch.Kind(), err))
		return
	}
	if !claimed {
		counters.mu.Lock()
		counters.skippedDuplicate++
		counters.mu.Unlock()
		return
	}

	if err := limiter.Wait(ctx); err != nil {
		s.finalize(ctx, record.LedgerKey(), types.ReminderDeliveryFailed, err.Error(), sub, ch, counters)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.Config.Sweep.SendTimeout)
	sendErr := ch.Send(sendCtx, destination, msg)
	cancel()

	if sendErr != nil {
		s.finalize(ctx, record.LedgerKey(), types.ReminderDeliveryFailed, sendErr.Error(), sub, ch, counters)
		counters.mu.Lock()
		counters.errors = append(counters.errors, fmt.Sprintf("%s/%s: send failed: %v", sub.ID, ch.Kind(), sendErr))
		counters.mu.Unlock()
		s.Logger.Warnw("reminder send failed",
			"subscriber_id", sub.ID,
			"channel", ch.Kind(),
			"tier", tier,
			"error", sendErr,
		)
		return
	}

	s.finalize(ctx, record.LedgerKey(), types.ReminderDeliverySent, "", sub, ch, counters)
}

// finalize resolves a claimed ledger key and bumps the matching counter. The
// message already left (or definitively failed) by the time this runs, so the
// write must survive a caller cancellation; otherwise a delivered reminder
// would be resent on the next run.
func (s *sweepService) finalize(
	ctx context.Context,
	key reminder.Key,
	delivery types.ReminderDeliveryState,
	failureReason string,
	sub *subscriber.Subscriber,
	ch notification.Channel,
	counters *sweepCounters,
) {
	err := s.ReminderRepo.FinalizeSend(context.WithoutCancel(ctx), key, delivery, failureReason, time.Now().UTC())
	if err != nil {
		counters.addError(fmt.Sprintf("%s/%s: ledger finalize failed: %v", sub.ID, ch.Kind(), err))
		return
	}

	counters.mu.Lock()
	defer counters.mu.Unlock()
	if delivery == types.ReminderDeliverySent {
		counters.sent++
	} else {
		counters.failed++
	}
}
