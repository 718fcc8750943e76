package dto

import "github.com/lavideas/kaizen-api/internal/models"

// GrantRewardRequest is the payload for POST /rewards.
type GrantRewardRequest struct {
	SuggestionID string            `json:"suggestionId" validate:"required"`
	UserID       string            `json:"userId" validate:"required"`
	Amount       int               `json:"amount" validate:"gt=0"`
	Type         models.RewardType `json:"type" validate:"required,oneof=money points gift"`
}

// CreditPointsRequest is the payload for crediting points directly.
type CreditPointsRequest struct {
	UserID string `json:"userId" validate:"required"`
	Amount int    `json:"amount" validate:"gt=0"`
	Reason string `json:"reason"`
}
