package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/showscribe/showscribe/internal/errors"
	"github.com/showscribe/showscribe/internal/model"
	"github.com/showscribe/showscribe/internal/repository"
)

// UsageAction identifies a quota-limited operation.
type UsageAction string

const (
	ActionProcessAudio UsageAction = "processAudio"
	ActionUseGpt       UsageAction = "useGpt"
)

// ActionCheck is the result of a pre-flight quota check for a generic action.
type ActionCheck struct {
	CanPerform bool   `json:"canPerform"`
	Reason     string `json:"reason,omitempty"`
}

// ProcessCheck is the result of the YouTube-specific pre-flight check.
type ProcessCheck struct {
	CanProcess       bool   `json:"canProcess"`
	Reason           string `json:"reason,omitempty"`
	EstimatedMinutes int    `json:"estimatedDuration"`
}

// UsageService tracks per-user monthly usage against plan limits.
//
// Enforcement fails open: an internal error in a pre-flight check allows
// the action rather than blocking a paying user over a bug. Usage updates
// are best-effort for the same reason; callers must not fail the primary
// user action because tracking failed.
type UsageService interface {
	GetCurrentUsage(ctx context.Context, userID string) *model.UsageLedgerEntry
	CanPerformAction(ctx context.Context, userID string, action UsageAction, amount int) ActionCheck
	CanProcessYouTubeVideo(ctx context.Context, userID string, durationSeconds int) ProcessCheck
	UpdateUsage(ctx context.Context, userID string, delta model.UsageDelta) bool
	UpdateUsageAfterYouTubeVideo(ctx context.Context, userID string, durationSeconds int) bool
}

// usageService implements UsageService
type usageService struct {
	usageRepo        repository.UsageRepository
	subscriptionRepo repository.SubscriptionRepository
	episodeRepo      repository.EpisodeRepository
	cache            *UsageCache
	logger           *zap.Logger
	now              func() time.Time
}

// NewUsageService creates a new UsageService. Any repository may be nil, in
// which case the service degrades to safe defaults (zero usage, Free-plan
// limits, updates reported as successful).
func NewUsageService(
	usageRepo repository.UsageRepository,
	subscriptionRepo repository.SubscriptionRepository,
	episodeRepo repository.EpisodeRepository,
	cache *UsageCache,
	logger *zap.Logger,
) UsageService {
	if cache == nil {
		cache = NewUsageCache(time.Minute)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &usageService{
		usageRepo:        usageRepo,
		subscriptionRepo: subscriptionRepo,
		episodeRepo:      episodeRepo,
		cache:            cache,
		logger:           logger,
		now:              time.Now,
	}
}

// monthKey returns the calendar-month key for a point in time, in UTC.
func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// GetCurrentUsage reads the current month's usage merged with plan limits.
// It never fails: persistence errors degrade to zero usage on Free-plan
// limits so a tracking outage cannot lock users out of the product.
func (s *usageService) GetCurrentUsage(ctx context.Context, userID string) *model.UsageLedgerEntry {
	entry, err := s.computeUsage(ctx, userID)
	if err != nil {
		s.logger.Warn("usage read degraded to defaults",
			zap.String("user_id", userID),
			zap.Error(err))
		limits := model.LimitsForPlan(model.PlanFree)
		return &model.UsageLedgerEntry{
			PlanName:      limits.Name,
			MaxMinutes:    limits.MaxMinutes,
			MaxGptPrompts: limits.MaxGptPrompts,
		}
	}
	return entry
}

// computeUsage builds the ledger entry for the current month. Displayed
// usage takes the max of the durable counters and the value recomputed
// from locally stored episodes: episode deletion must never make usage
// appear to shrink within a billing period.
func (s *usageService) computeUsage(ctx context.Context, userID string) (*model.UsageLedgerEntry, error) {
	month := monthKey(s.now())

	if cached, ok := s.cache.Get(userID, month); ok {
		return &cached, nil
	}

	limits := s.planLimits(ctx, userID)

	var durableMinutes, durablePrompts int
	if s.usageRepo != nil {
		row, err := s.usageRepo.GetForMonth(ctx, userID, month)
		switch {
		case err == nil:
			durableMinutes = row.Minutes
			durablePrompts = row.GptPrompts
		case apperrors.CodeOf(err) == apperrors.CodeNotFound:
			// First observation of this month: zero usage
		default:
			return nil, err
		}
	}

	localMinutes, localPrompts := 0, 0
	if s.episodeRepo != nil {
		minutes, prompts, err := s.episodeRepo.MonthlyUsage(ctx, userID, month)
		if err == nil {
			localMinutes = minutes
			localPrompts = prompts
		}
		// The episode recompute is an extra consistency check; when it
		// fails the durable counters stand on their own.
	}

	entry := model.UsageLedgerEntry{
		PlanName:          limits.Name,
		MaxMinutes:        limits.MaxMinutes,
		MaxGptPrompts:     limits.MaxGptPrompts,
		CurrentMinutes:    maxInt(durableMinutes, localMinutes),
		CurrentGptPrompts: maxInt(durablePrompts, localPrompts),
	}

	s.cache.Set(userID, month, entry)
	return &entry, nil
}

// planLimits resolves the user's plan, degrading to Free when the
// subscription lookup is unavailable or fails.
func (s *usageService) planLimits(ctx context.Context, userID string) model.PlanLimits {
	if s.subscriptionRepo == nil {
		return model.LimitsForPlan(model.PlanFree)
	}

	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return model.LimitsForPlan(model.PlanFree)
	}
	return model.LimitsForPlan(sub.PlanName)
}

// CanPerformAction checks whether the user's remaining quota covers amount
// units of the given action. The boundary is inclusive: an action that
// lands exactly on the limit is allowed.
func (s *usageService) CanPerformAction(ctx context.Context, userID string, action UsageAction, amount int) ActionCheck {
	entry := s.GetCurrentUsage(ctx, userID)

	var current, max int
	switch action {
	case ActionProcessAudio:
		current, max = entry.CurrentMinutes, entry.MaxMinutes
	case ActionUseGpt:
		current, max = entry.CurrentGptPrompts, entry.MaxGptPrompts
	default:
		return ActionCheck{CanPerform: true}
	}

	if max == model.UnlimitedQuota {
		return ActionCheck{CanPerform: true}
	}

	if current+amount > max {
		return ActionCheck{CanPerform: false, Reason: quotaReason(action, max-current, max)}
	}

	return ActionCheck{CanPerform: true}
}

func quotaReason(action UsageAction, remaining, max int) string {
	if remaining < 0 {
		remaining = 0
	}
	switch action {
	case ActionUseGpt:
		if remaining == 0 {
			return fmt.Sprintf("You've used all %d GPT prompts for this month. Upgrade your plan for more.", max)
		}
		return fmt.Sprintf("You have %d GPT prompts remaining this month. Upgrade your plan for more.", remaining)
	default:
		return fmt.Sprintf("You have %d minutes remaining this month. Upgrade your plan for more.", remaining)
	}
}

// CanProcessYouTubeVideo checks whether processing a video of the given
// duration fits the user's remaining minutes. Negative durations are
// clamped to zero minutes. Internal errors fail open: blocking legitimate
// usage over a bug is worse than occasional overage.
func (s *usageService) CanProcessYouTubeVideo(ctx context.Context, userID string, durationSeconds int) ProcessCheck {
	minutes := minutesFromSeconds(durationSeconds)

	entry, err := s.computeUsage(ctx, userID)
	if err != nil {
		s.logger.Warn("usage pre-check failed open",
			zap.String("user_id", userID),
			zap.Error(err))
		return ProcessCheck{CanProcess: true, EstimatedMinutes: minutes}
	}

	if entry.MaxMinutes == model.UnlimitedQuota {
		return ProcessCheck{CanProcess: true, EstimatedMinutes: minutes}
	}

	if entry.CurrentMinutes+minutes > entry.MaxMinutes {
		remaining := entry.MaxMinutes - entry.CurrentMinutes
		if remaining < 0 {
			remaining = 0
		}
		return ProcessCheck{
			CanProcess:       false,
			Reason:           fmt.Sprintf("You have %d minutes remaining this month, but this video requires %d minutes. Upgrade your plan for more.", remaining, minutes),
			EstimatedMinutes: minutes,
		}
	}

	return ProcessCheck{CanProcess: true, EstimatedMinutes: minutes}
}

// UpdateUsage additively records usage for the current month. Returns false
// on persistence failure without surfacing an error; with no persistence
// configured, tracking is a no-op that reports success.
func (s *usageService) UpdateUsage(ctx context.Context, userID string, delta model.UsageDelta) bool {
	if s.usageRepo == nil {
		return true
	}

	month := monthKey(s.now())
	if err := s.usageRepo.AddUsage(ctx, userID, month, delta); err != nil {
		s.logger.Error("failed to record usage",
			zap.String("user_id", userID),
			zap.String("month", month),
			zap.Int("minutes", delta.MinutesUsed),
			zap.Int("gpt_prompts", delta.GptPromptsUsed),
			zap.Error(err))
		return false
	}

	s.cache.Invalidate(userID, month)
	return true
}

// UpdateUsageAfterYouTubeVideo records the minutes consumed by a processed
// video, rounding partial minutes up.
func (s *usageService) UpdateUsageAfterYouTubeVideo(ctx context.Context, userID string, durationSeconds int) bool {
	return s.UpdateUsage(ctx, userID, model.UsageDelta{
		MinutesUsed: minutesFromSeconds(durationSeconds),
	})
}

// minutesFromSeconds converts a duration to billing minutes, rounding up.
// Negative input is treated as zero.
func minutesFromSeconds(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 59) / 60
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
