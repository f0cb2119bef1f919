package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	"github.com/nextstep/nextstep/internal/types"
)

// expiringSoonDays is how far ahead the dashboard feed looks for
// subscriptions about to lapse.
const expiringSoonDays = 3

// NotificationFeedService builds the admin dashboard alert feed.
type NotificationFeedService interface {
	// ExpiringSoon returns one warning per subscriber whose expiry falls
	// within the next expiringSoonDays calendar days, today included.
	ExpiringSoon(ctx context.Context) (*dto.ListNotificationsResponse, error)
}

type notificationFeedService struct {
	ServiceParams
}

// NewNotificationFeedService creates a new notification feed service
func NewNotificationFeedService(params ServiceParams) NotificationFeedService {
	return &notificationFeedService{
		ServiceParams: params,
	}
}

func (s *notificationFeedService) ExpiringSoon(ctx context.Context) (*dto.ListNotificationsResponse, error) {
	loc, err := NewReminderConfigService(s.ServiceParams).DayLocation(ctx)
	if err != nil {
		return nil, err
	}

	today := types.DayOf(time.Now(), loc)
	subs, err := s.SubRepo.ListDueForSweep(ctx, subscriber.SweepWindow{
		From: today,
		To:   today.AddDate(0, 0, expiringSoonDays),
	})
	if err != nil {
		return nil, err
	}

	items := lo.Map(subs, func(sub *subscriber.Subscriber, _ int) *dto.NotificationItem {
		return &dto.NotificationItem{
			ID:      sub.ID,
			Title:   "Subscription Expiring",
			Message: fmt.Sprintf("%s's subscription expires on %s", sub.Name, sub.ExpiryDate.Format("Mon Jan 2 2006")),
			Type:    "warning",
		}
	})

	return &dto.ListNotificationsResponse{Items: items, Total: len(items)}, nil
}
