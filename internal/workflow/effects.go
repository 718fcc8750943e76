package workflow

import "github.com/lavideas/kaizen-api/internal/models"

// EffectKind discriminates side-effect descriptors.
type EffectKind string

const (
	EffectNotify       EffectKind = "notify"
	EffectGrantReward  EffectKind = "grant_reward"
	EffectCreditPoints EffectKind = "credit_points"
)

// NotificationEvent identifies the transition that triggered a
// notification. Template content and delivery are out of scope here.
type NotificationEvent string

const (
	EventDepartmentReviewed NotificationEvent = "suggestion.department_reviewed"
	EventFeasibilityOutcome NotificationEvent = "suggestion.feasibility_outcome"
	EventSolutionProposed   NotificationEvent = "suggestion.solution_proposed"
	EventCostEscalated      NotificationEvent = "suggestion.cost_escalated"
	EventExecutiveDecision  NotificationEvent = "suggestion.executive_decision"
	EventRewarded           NotificationEvent = "suggestion.rewarded"
)

// RecipientGroup names an audience resolved by the notification
// collaborator, never by the engine.
type RecipientGroup string

const (
	RecipientSubmitter            RecipientGroup = "submitter"
	RecipientManagers             RecipientGroup = "managers"
	RecipientFeasibilityReviewers RecipientGroup = "feasibility_reviewers"
	RecipientCostReviewers        RecipientGroup = "cost_reviewers"
	RecipientExecutives           RecipientGroup = "executives"
)

// Effect is a side-effect descriptor emitted by the engine and executed
// by collaborators only after the suggestion snapshot has been
// committed. Exactly one of the payload fields is set.
type Effect struct {
	Kind         EffectKind          `json:"kind"`
	Notification *NotificationEffect `json:"notification,omitempty"`
	Reward       *RewardEffect       `json:"reward,omitempty"`
	Points       *PointsEffect       `json:"points,omitempty"`
}

// NotificationEffect describes a notification trigger.
type NotificationEffect struct {
	Event        NotificationEvent `json:"event"`
	SuggestionID string            `json:"suggestionId"`
	Recipients   []RecipientGroup  `json:"recipients"`
}

// RewardEffect describes a reward to be created through the ledger.
type RewardEffect struct {
	SuggestionID string            `json:"suggestionId"`
	UserID       string            `json:"userId"`
	Amount       int               `json:"amount"`
	Type         models.RewardType `json:"type"`
	AssignedBy   string            `json:"assignedBy"`
}

// PointsEffect describes a points credit for a user.
type PointsEffect struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

func notifyEffect(event NotificationEvent, suggestionID string, recipients ...RecipientGroup) Effect {
	return Effect{
		Kind: EffectNotify,
		Notification: &NotificationEffect{
			Event:        event,
			SuggestionID: suggestionID,
			Recipients:   recipients,
		},
	}
}

func pointsEffect(userID string, points int, reason string) Effect {
	return Effect{
		Kind:   EffectCreditPoints,
		Points: &PointsEffect{UserID: userID, Points: points, Reason: reason},
	}
}

func rewardEffect(r RewardEffect) Effect {
	reward := r
	return Effect{Kind: EffectGrantReward, Reward: &reward}
}
