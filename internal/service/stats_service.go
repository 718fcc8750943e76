package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

const (
	statsCacheKey           = "stats:suggestions"
	topContributorsCacheKey = "stats:top_contributors:%d"
)

type statsSuggestionStore interface {
	CountByStatus(ctx context.Context) (map[models.SuggestionStatus]int, error)
	CountBySubmitter(ctx context.Context, userIDs []string) (map[string]int, error)
}

type statsRewardStore interface {
	TotalAmount(ctx context.Context) (int, error)
	TopContributors(ctx context.Context, limit int) ([]models.Contributor, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// StatsService serves read-side workflow projections with a short
// Redis cache in front of the count queries.
type StatsService struct {
	suggestions statsSuggestionStore
	rewards     statsRewardStore
	cache       statsCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(suggestions statsSuggestionStore, rewards statsRewardStore, cache statsCache, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		suggestions: suggestions,
		rewards:     rewards,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// SuggestionStats aggregates workflow counters across all suggestions.
func (s *StatsService) SuggestionStats(ctx context.Context) (*dto.SuggestionStats, error) {
	var cached dto.SuggestionStats
	if s.cacheGet(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	counts, err := s.suggestions.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count suggestions")
	}
	totalReward, err := s.rewards.TotalAmount(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum rewards")
	}

	stats := &dto.SuggestionStats{TotalRewardAmount: totalReward}
	for status, count := range counts {
		stats.Total += count
		switch status {
		case models.StatusNew, models.StatusDepartmentReview, models.StatusFeasibilityAssessment,
			models.StatusSolutionIdentified, models.StatusCostAssessment, models.StatusExecutiveReview:
			stats.PendingReview += count
		case models.StatusApproved, models.StatusInProgress:
			stats.Approved += count
		case models.StatusCompleted, models.StatusReported, models.StatusEvaluated, models.StatusRewarded:
			stats.Implemented += count
		case models.StatusRejected, models.StatusFeasibilityRejected, models.StatusCostRejected:
			stats.Rejected += count
		}
		if status == models.StatusRewarded {
			stats.Rewarded += count
		}
	}

	s.cacheSet(ctx, statsCacheKey, stats)
	return stats, nil
}

// TopContributors ranks users by accumulated points and annotates each
// with their suggestion count.
func (s *StatsService) TopContributors(ctx context.Context, limit int) ([]dto.TopContributor, error) {
	key := fmt.Sprintf(topContributorsCacheKey, limit)
	var cached []dto.TopContributor
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	contributors, err := s.rewards.TopContributors(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank contributors")
	}
	if len(contributors) == 0 {
		return []dto.TopContributor{}, nil
	}

	ids := make([]string, len(contributors))
	for i, contributor := range contributors {
		ids[i] = contributor.UserID
	}
	counts, err := s.suggestions.CountBySubmitter(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions")
	}

	result := make([]dto.TopContributor, len(contributors))
	for i, contributor := range contributors {
		result[i] = dto.TopContributor{
			User:            contributor,
			SuggestionCount: counts[contributor.UserID],
		}
	}

	s.cacheSet(ctx, key, result)
	return result, nil
}

func (s *StatsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) || appErr.Code != appErrors.ErrCacheMiss.Code {
		s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *StatsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
