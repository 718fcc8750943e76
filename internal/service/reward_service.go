package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/models"
	"github.com/lavideas/kaizen-api/internal/workflow"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

type rewardStore interface {
	Create(ctx context.Context, reward *models.Reward) error
	ExistsForSuggestion(ctx context.Context, suggestionID string) (bool, error)
	ListBySuggestion(ctx context.Context, suggestionID string) ([]models.Reward, error)
	ListByUser(ctx context.Context, userID string) ([]models.Reward, error)
	CreditPoints(ctx context.Context, userID string, amount int) error
}

type rewardMetrics interface {
	ObserveReward()
}

// RewardService is the reward ledger: the only writer of reward rows
// and user point balances.
type RewardService struct {
	repo          rewardStore
	audit         auditLogger
	metrics       rewardMetrics
	validator     *validator.Validate
	logger        *zap.Logger
	allowMultiple bool
}

// NewRewardService constructs the ledger.
func NewRewardService(repo rewardStore, audit auditLogger, metrics rewardMetrics, validate *validator.Validate, logger *zap.Logger, allowMultiple bool) *RewardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RewardService{
		repo:          repo,
		audit:         audit,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		allowMultiple: allowMultiple,
	}
}

// Grant creates a reward for a suggestion. Unless the multi-reward
// policy is enabled, a second grant for the same suggestion fails with
// a duplicate error. Point-type rewards also credit the recipient's
// balance.
func (s *RewardService) Grant(ctx context.Context, req dto.GrantRewardRequest, actorID string) (*models.Reward, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reward payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown reward type")
	}

	if !s.allowMultiple {
		exists, err := s.repo.ExistsForSuggestion(ctx, req.SuggestionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing rewards")
		}
		if exists {
			return nil, appErrors.ErrDuplicateReward
		}
	}

	reward := &models.Reward{
		SuggestionID: req.SuggestionID,
		UserID:       req.UserID,
		Amount:       req.Amount,
		Type:         req.Type,
		AssignedBy:   actorID,
	}
	if err := s.repo.Create(ctx, reward); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reward")
	}
	if s.metrics != nil {
		s.metrics.ObserveReward()
	}

	if reward.Type == models.RewardTypePoints {
		if err := s.repo.CreditPoints(ctx, reward.UserID, reward.Amount); err != nil {
			s.logger.Error("reward created but points credit failed",
				zap.String("reward_id", reward.ID),
				zap.String("user_id", reward.UserID),
				zap.Error(err),
			)
		}
	}

	s.emitAudit(ctx, actorID, models.AuditActionRewardGrant, reward.SuggestionID, reward)
	return reward, nil
}

// CreditPoints increments a user's point balance. Amounts must be
// positive; the balance is additive only.
func (s *RewardService) CreditPoints(ctx context.Context, userID string, amount int, reason string) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	if amount <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "points amount must be positive")
	}
	if err := s.repo.CreditPoints(ctx, userID, amount); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to credit points")
	}
	s.emitAudit(ctx, userID, models.AuditActionPointsCredit, userID, map[string]interface{}{
		"points": amount,
		"reason": reason,
	})
	return nil
}

// ListBySuggestion returns rewards granted for a suggestion.
func (s *RewardService) ListBySuggestion(ctx context.Context, suggestionID string) ([]models.Reward, error) {
	rewards, err := s.repo.ListBySuggestion(ctx, suggestionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rewards")
	}
	return rewards, nil
}

// ListByUser returns rewards granted to a user.
func (s *RewardService) ListByUser(ctx context.Context, userID string) ([]models.Reward, error) {
	rewards, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rewards")
	}
	return rewards, nil
}

// ApplyRewardEffect executes a reward side-effect produced by the
// workflow engine.
func (s *RewardService) ApplyRewardEffect(ctx context.Context, eff workflow.RewardEffect) error {
	_, err := s.Grant(ctx, dto.GrantRewardRequest{
		SuggestionID: eff.SuggestionID,
		UserID:       eff.UserID,
		Amount:       eff.Amount,
		Type:         eff.Type,
	}, eff.AssignedBy)
	return err
}

func (s *RewardService) emitAudit(ctx context.Context, userID, action, resourceID string, values interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(values)
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "reward",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "reward-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
