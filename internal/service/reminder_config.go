package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/cache"
	"github.com/nextstep/nextstep/internal/domain/settings"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

const (
	reminderConfigCachePrefix = "reminder_config"
	reminderConfigCacheTTL    = 5 * time.Minute
)

// ReminderConfigService resolves and mutates per-tenant reminder
// configuration: the threshold days driving the reminder window and the
// timezone defining the tenant's calendar day.
type ReminderConfigService interface {
	GetConfig(ctx context.Context) (*dto.ReminderConfigResponse, error)
	UpdateConfig(ctx context.Context, req *dto.UpdateReminderConfigRequest) (*dto.ReminderConfigResponse, error)

	// ThresholdDays returns the tenant's effective reminder thresholds.
	ThresholdDays(ctx context.Context) ([]int, error)

	// DayLocation returns the tenant's day-boundary timezone.
	DayLocation(ctx context.Context) (*time.Location, error)
}

type reminderConfigService struct {
	ServiceParams
}

func NewReminderConfigService(params ServiceParams) ReminderConfigService {
	return &reminderConfigService{
		ServiceParams: params,
	}
}

func (s *reminderConfigService) GetConfig(ctx context.Context) (*dto.ReminderConfigResponse, error) {
	days, err := s.ThresholdDays(ctx)
	if err != nil {
		return nil, err
	}
	tz, err := s.dayTimezoneName(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ReminderConfigResponse{
		ThresholdDays: days,
		DayTimezone:   tz,
	}, nil
}

func (s *reminderConfigService) UpdateConfig(ctx context.Context, req *dto.UpdateReminderConfigRequest) (*dto.ReminderConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if len(req.ThresholdDays) > 0 {
		days := lo.Uniq(req.ThresholdDays)
		sort.Sort(sort.Reverse(sort.IntSlice(days)))
		value := strings.Join(lo.Map(days, func(d int, _ int) string {
			return strconv.Itoa(d)
		}), ",")
		if err := s.setConfig(ctx, settings.ConfigKeyThresholdDays, value); err != nil {
			return nil, err
		}
	}

	if req.DayTimezone != nil {
		resolved := types.ResolveTimezone(*req.DayTimezone)
		if err := s.setConfig(ctx, settings.ConfigKeyDayTimezone, resolved); err != nil {
			return nil, err
		}
	}

	s.invalidateCache(ctx)
	return s.GetConfig(ctx)
}

func (s *reminderConfigService) ThresholdDays(ctx context.Context) ([]int, error) {
	if days, ok := s.cachedThresholds(ctx); ok {
		return days, nil
	}

	value, err := s.configValue(ctx, settings.ConfigKeyThresholdDays)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return types.DefaultReminderThresholdDays, nil
	}

	parts := strings.Split(value, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored reminder thresholds are malformed").
				WithReportableDetails(map[string]any{"value": value}).
				Mark(ierr.ErrInternal)
		}
		days = append(days, d)
	}

	s.cacheThresholds(ctx, days)
	return days, nil
}

func (s *reminderConfigService) DayLocation(ctx context.Context) (*time.Location, error) {
	tz, err := s.dayTimezoneName(ctx)
	if err != nil {
		return nil, err
	}
	return types.LocationFor(tz), nil
}

func (s *reminderConfigService) dayTimezoneName(ctx context.Context) (string, error) {
	value, err := s.configValue(ctx, settings.ConfigKeyDayTimezone)
	if err != nil {
		return "", err
	}
	if value == "" {
		return settings.DefaultDayTimezone, nil
	}
	return value, nil
}

// configValue returns the tenant's override for key, or "" when none exists.
func (s *reminderConfigService) configValue(ctx context.Context, key string) (string, error) {
	cfg, err := s.SettingsRepo.GetConfig(ctx, key)
	if err != nil {
		if ierr.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return cfg.Value, nil
}

// setConfig upserts a config row and appends an audit entry capturing the
// previous value.
func (s *reminderConfigService) setConfig(ctx context.Context, key, value string) error {
	previous := ""
	existing, err := s.SettingsRepo.GetConfig(ctx, key)
	if err != nil && !ierr.IsNotFound(err) {
		return err
	}
	if existing != nil {
		previous = existing.Value
		if previous == value {
			return nil
		}
	}

	now := time.Now().UTC()
	cfg := &settings.ReminderConfig{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SETTINGS),
		TenantID:  types.GetTenantID(ctx),
		Key:       key,
		Value:     value,
		CreatedAt: now,
		CreatedBy: types.GetUserID(ctx),
		UpdatedAt: now,
		UpdatedBy: types.GetUserID(ctx),
		Status:    string(types.StatusPublished),
	}
	if existing != nil {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
		cfg.CreatedBy = existing.CreatedBy
	}

	if err := s.SettingsRepo.SetConfig(ctx, cfg); err != nil {
		return err
	}

	audit := &settings.ReminderConfigAudit{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SETTINGS),
		TenantID:      types.GetTenantID(ctx),
		ConfigID:      cfg.ID,
		Key:           key,
		PreviousValue: previous,
		NewValue:      value,
		ChangedAt:     now,
		ChangedBy:     types.GetUserID(ctx),
	}
	if err := s.SettingsRepo.CreateConfigAudit(ctx, audit); err != nil {
		s.Logger.Errorw("failed to write config audit entry", "error", err, "key", key)
	}

	s.Logger.Infow("reminder config updated", "key", key, "value", value)
	return nil
}

func (s *reminderConfigService) thresholdsCacheKey(ctx context.Context) string {
	return fmt.Sprintf("%s:%s:%s", reminderConfigCachePrefix, types.GetTenantID(ctx), settings.ConfigKeyThresholdDays)
}

func (s *reminderConfigService) cachedThresholds(ctx context.Context) ([]int, bool) {
	if s.Cache == nil {
		return nil, false
	}
	value, found := s.Cache.Get(ctx, s.thresholdsCacheKey(ctx))
	if !found {
		return nil, false
	}
	days, ok := cache.UnmarshalValue[[]int](value)
	if !ok {
		return nil, false
	}
	return *days, true
}

func (s *reminderConfigService) cacheThresholds(ctx context.Context, days []int) {
	if s.Cache == nil {
		return
	}
	s.Cache.Set(ctx, s.thresholdsCacheKey(ctx), days, reminderConfigCacheTTL)
}

func (s *reminderConfigService) invalidateCache(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	s.Cache.Delete(ctx, s.thresholdsCacheKey(ctx))
}
