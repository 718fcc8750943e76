package models

import "time"

// RewardType enumerates supported reward categories.
type RewardType string

const (
	RewardTypeMoney  RewardType = "money"
	RewardTypePoints RewardType = "points"
	RewardTypeGift   RewardType = "gift"
)

// Valid reports whether the reward type is a known enum value.
func (t RewardType) Valid() bool {
	switch t {
	case RewardTypeMoney, RewardTypePoints, RewardTypeGift:
		return true
	}
	return false
}

// Reward is an immutable grant created once per reward event, owned by
// the reward ledger and foreign-keyed to its suggestion.
type Reward struct {
	ID           string     `db:"id" json:"id"`
	SuggestionID string     `db:"suggestion_id" json:"suggestionId"`
	UserID       string     `db:"user_id" json:"userId"`
	Amount       int        `db:"amount" json:"amount"`
	Type         RewardType `db:"type" json:"type"`
	AssignedBy   string     `db:"assigned_by" json:"assignedBy"`
	AssignedAt   time.Time  `db:"assigned_at" json:"assignedAt"`
}
