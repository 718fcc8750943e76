package dto

import "github.com/lavideas/kaizen-api/internal/models"

// SuggestionStats aggregates read-side workflow counters.
type SuggestionStats struct {
	Total             int `json:"total"`
	PendingReview     int `json:"pendingReview"`
	Approved          int `json:"approved"`
	Implemented       int `json:"implemented"`
	Rejected          int `json:"rejected"`
	Rewarded          int `json:"rewarded"`
	TotalRewardAmount int `json:"totalRewardAmount"`
}

// TopContributor pairs a user with their suggestion count and points.
type TopContributor struct {
	User            models.Contributor `json:"user"`
	SuggestionCount int                `json:"suggestionCount"`
}
