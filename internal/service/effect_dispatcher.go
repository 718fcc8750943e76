package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/workflow"
)

// EffectDispatcher routes workflow side-effect descriptors to their
// executors. Effects run after the suggestion snapshot committed, so a
// failing effect is logged and retried by its executor, never bubbled
// back into the transition.
type EffectDispatcher struct {
	rewards       *RewardService
	notifications *NotificationService
	logger        *zap.Logger
}

// NewEffectDispatcher constructs the dispatcher.
func NewEffectDispatcher(rewards *RewardService, notifications *NotificationService, logger *zap.Logger) *EffectDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EffectDispatcher{rewards: rewards, notifications: notifications, logger: logger}
}

// Dispatch executes the effects in order.
func (d *EffectDispatcher) Dispatch(ctx context.Context, effects []workflow.Effect) {
	for _, effect := range effects {
		switch effect.Kind {
		case workflow.EffectNotify:
			if d.notifications == nil || effect.Notification == nil {
				continue
			}
			if err := d.notifications.Publish(ctx, *effect.Notification); err != nil {
				d.logger.Error("failed to publish notification",
					zap.String("event", string(effect.Notification.Event)),
					zap.Error(err),
				)
			}
		case workflow.EffectGrantReward:
			if d.rewards == nil || effect.Reward == nil {
				continue
			}
			if err := d.rewards.ApplyRewardEffect(ctx, *effect.Reward); err != nil {
				d.logger.Error("failed to apply reward effect",
					zap.String("suggestion_id", effect.Reward.SuggestionID),
					zap.Error(err),
				)
			}
		case workflow.EffectCreditPoints:
			if d.rewards == nil || effect.Points == nil {
				continue
			}
			if err := d.rewards.CreditPoints(ctx, effect.Points.UserID, effect.Points.Points, effect.Points.Reason); err != nil {
				d.logger.Error("failed to credit points",
					zap.String("user_id", effect.Points.UserID),
					zap.Error(err),
				)
			}
		default:
			d.logger.Warn("unknown effect kind", zap.String("kind", string(effect.Kind)))
		}
	}
}
