package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// SubscriberService defines the interface for subscriber lifecycle operations
type SubscriberService interface {
	CreateSubscriber(ctx context.Context, req *dto.CreateSubscriberRequest) (*dto.SubscriberResponse, error)
	GetSubscriber(ctx context.Context, id string) (*dto.SubscriberResponse, error)
	ListSubscribers(ctx context.Context, req *dto.ListSubscribersRequest) (*dto.ListSubscribersResponse, error)
	UpdateSubscriber(ctx context.Context, id string, req *dto.UpdateSubscriberRequest) (*dto.SubscriberResponse, error)
	RenewSubscriber(ctx context.Context, id string, req *dto.RenewSubscriberRequest) (*dto.SubscriberResponse, error)
	DeleteSubscriber(ctx context.Context, id string) error
}

type subscriberService struct {
	ServiceParams
}

// NewSubscriberService creates a new subscriber service
func NewSubscriberService(params ServiceParams) SubscriberService {
	return &subscriberService{
		ServiceParams: params,
	}
}

func (s *subscriberService) CreateSubscriber(ctx context.Context, req *dto.CreateSubscriberRequest) (*dto.SubscriberResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := req.ToSubscriber(ctx)
	loc, err := s.dayLocation(ctx)
	if err != nil {
		return nil, err
	}
	sub.RefreshSubscriptionStatus(time.Now(), loc)

	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscriber enrolled",
		"subscriber_id", sub.ID,
		"plan", sub.Plan,
		"expiry_date", sub.ExpiryDate,
	)
	return dto.NewSubscriberResponse(sub), nil
}

func (s *subscriberService) GetSubscriber(ctx context.Context, id string) (*dto.SubscriberResponse, error) {
	if id == "" {
		return nil, ierr.NewError("subscriber id is required").
			WithHint("Subscriber ID is required").
			Mark(ierr.ErrValidation)
	}
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriberResponse(sub), nil
}

func (s *subscriberService) ListSubscribers(ctx context.Context, req *dto.ListSubscribersRequest) (*dto.ListSubscribersResponse, error) {
	if req == nil {
		req = &dto.ListSubscribersRequest{QueryFilter: *types.NewDefaultQueryFilter()}
	}
	if err := req.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	subs, err := s.SubRepo.List(ctx, req.ToFilter())
	if err != nil {
		return nil, err
	}

	return &dto.ListSubscribersResponse{
		Items: lo.Map(subs, func(sub *subscriber.Subscriber, _ int) *dto.SubscriberResponse {
			return dto.NewSubscriberResponse(sub)
		}),
		Total: len(subs),
	}, nil
}

// UpdateSubscriber applies partial updates. Changing the plan or start date
// re-derives the expiry date and lifecycle status; they are never set
// directly.
func (s *subscriberService) UpdateSubscriber(ctx context.Context, id string, req *dto.UpdateSubscriberRequest) (*dto.SubscriberResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Email != nil {
		sub.Email = *req.Email
	}
	if req.Phone != nil {
		sub.Phone = *req.Phone
	}

	recompute := false
	if req.Plan != nil && *req.Plan != sub.Plan {
		sub.Plan = *req.Plan
		recompute = true
	}
	if req.StartDate != nil && !req.StartDate.Equal(sub.StartDate) {
		sub.StartDate = req.StartDate.UTC()
		recompute = true
	}
	if recompute {
		sub.RecomputeExpiry()
	}

	loc, err := s.dayLocation(ctx)
	if err != nil {
		return nil, err
	}
	sub.RefreshSubscriptionStatus(time.Now(), loc)

	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return dto.NewSubscriberResponse(sub), nil
}

// RenewSubscriber starts a fresh subscription term. The new start date
// defaults to today and the expiry is derived from the chosen plan, which
// reactivates an expired subscriber.
func (s *subscriberService) RenewSubscriber(ctx context.Context, id string, req *dto.RenewSubscriberRequest) (*dto.SubscriberResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}

	sub.Plan = req.Plan
	sub.StartDate = start
	sub.RecomputeExpiry()

	loc, err := s.dayLocation(ctx)
	if err != nil {
		return nil, err
	}
	sub.RefreshSubscriptionStatus(time.Now(), loc)

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription renewed",
		"subscriber_id", sub.ID,
		"plan", sub.Plan,
		"expiry_date", sub.ExpiryDate,
	)
	return dto.NewSubscriberResponse(sub), nil
}

func (s *subscriberService) DeleteSubscriber(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("subscriber id is required").
			WithHint("Subscriber ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.SubRepo.Delete(ctx, id)
}

// dayLocation resolves the tenant's day-boundary timezone through the
// reminder configuration.
func (s *subscriberService) dayLocation(ctx context.Context) (*time.Location, error) {
	cfg := NewReminderConfigService(s.ServiceParams)
	return cfg.DayLocation(ctx)
}
