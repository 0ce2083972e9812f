package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/domain/repositories"
)

// UsageStatus is a point-in-time view of a caller's allowance. Limit and
// Remaining are models.UnlimitedGenerations for uncapped tiers.
type UsageStatus struct {
	Tier      models.UserTier `json:"tier"`
	Limit     int64           `json:"limit"`
	Used      int64           `json:"used"`
	Remaining int64           `json:"remaining"`
	ResetsAt  time.Time       `json:"resets_at"`
}

// UsageService enforces the freemium quota policy: per-caller daily counters
// with tier-dependent caps, reset lazily at the UTC day boundary. Admission is
// reserve-first: the slot is claimed atomically up front and handed back if
// the request fails before any expensive work, so two concurrent requests can
// never both claim the last slot.
type UsageService struct {
	store   repositories.UsageStore
	subRepo repositories.SubscriptionRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewUsageService(store repositories.UsageStore, subRepo repositories.SubscriptionRepository, logger *slog.Logger) *UsageService {
	return &UsageService{
		store:   store,
		subRepo: subRepo,
		logger:  logger,
		now:     time.Now,
	}
}

// TierFor resolves the caller's effective tier. Anonymous callers and callers
// without an active pro subscription are free tier; a subscription lookup
// failure degrades to free rather than failing the request.
func (s *UsageService) TierFor(ctx context.Context, caller models.Caller) models.UserTier {
	if !caller.Authenticated() {
		return models.TierFree
	}

	sub, err := s.subRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return models.TierFree
	}
	if sub.IsPro() {
		return models.TierPro
	}
	return models.TierFree
}

// Status reads the caller's current consumption without mutating it.
func (s *UsageService) Status(ctx context.Context, caller models.Caller) (*UsageStatus, error) {
	tier := s.TierFor(ctx, caller)
	limits := models.LimitsForTier(tier)
	now := s.now().UTC()

	used, err := s.store.Get(ctx, caller.Identity(), now)
	if err != nil {
		return nil, err
	}

	status := &UsageStatus{
		Tier:     tier,
		Limit:    limits.DailyLimit,
		Used:     used,
		ResetsAt: startOfNextDay(now),
	}
	if limits.DailyLimit == models.UnlimitedGenerations {
		status.Remaining = models.UnlimitedGenerations
	} else {
		status.Remaining = limits.DailyLimit - used
		if status.Remaining < 0 {
			status.Remaining = 0
		}
	}
	return status, nil
}

// Reserve atomically claims one generation slot before any expensive work
// runs. The increment-then-check keeps two in-flight requests from both
// passing on the last slot: whoever increments past the cap is rolled back
// and denied. The returned status already accounts for this request.
func (s *UsageService) Reserve(ctx context.Context, caller models.Caller) (*UsageStatus, error) {
	tier := s.TierFor(ctx, caller)
	limits := models.LimitsForTier(tier)
	now := s.now().UTC()

	count, err := s.store.Increment(ctx, caller.Identity(), now)
	if err != nil {
		return nil, err
	}

	status := &UsageStatus{
		Tier:     tier,
		Limit:    limits.DailyLimit,
		Used:     count,
		ResetsAt: startOfNextDay(now),
	}

	if limits.DailyLimit == models.UnlimitedGenerations {
		status.Remaining = models.UnlimitedGenerations
		return status, nil
	}

	if count > limits.DailyLimit {
		s.release(ctx, caller, now)
		status.Used = limits.DailyLimit
		status.Remaining = 0
		return status, models.ErrQuotaExceeded
	}

	status.Remaining = limits.DailyLimit - count
	return status, nil
}

// Release hands a reserved slot back. Called when a request fails after
// admission but before generation ran; failed validation or extraction never
// consumes quota.
func (s *UsageService) Release(ctx context.Context, caller models.Caller) {
	s.release(ctx, caller, s.now().UTC())
}

func (s *UsageService) release(ctx context.Context, caller models.Caller, day time.Time) {
	if err := s.store.Decrement(ctx, caller.Identity(), day); err != nil {
		s.logger.Error("failed to release usage reservation",
			slog.String("identity", caller.Identity()),
			slog.String("error", err.Error()),
		)
	}
}

// LimitPlatforms silently truncates the requested platform list to the tier's
// cap, keeping the caller-submitted order. No error for the excess.
func (s *UsageService) LimitPlatforms(tier models.UserTier, platforms []models.Platform) []models.Platform {
	limits := models.LimitsForTier(tier)
	if len(platforms) <= limits.MaxPlatforms {
		return platforms
	}
	return platforms[:limits.MaxPlatforms]
}

func startOfNextDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
