package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lavideas/kaizen-api/internal/models"
)

// RewardRepository persists reward grants and user point balances.
type RewardRepository struct {
	db *sqlx.DB
}

// NewRewardRepository constructs the repository.
func NewRewardRepository(db *sqlx.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// Create inserts a new reward row. Rewards are never updated or
// deleted afterwards.
func (r *RewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	if reward.ID == "" {
		reward.ID = uuid.NewString()
	}
	if reward.AssignedAt.IsZero() {
		reward.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO rewards (id, suggestion_id, user_id, amount, type, assigned_by, assigned_at)
	VALUES (:id, :suggestion_id, :user_id, :amount, :type, :assigned_by, :assigned_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reward); err != nil {
		return fmt.Errorf("create reward: %w", err)
	}
	return nil
}

// ExistsForSuggestion reports whether a reward row already references
// the suggestion. Backs the at-most-one-reward policy.
func (r *RewardRepository) ExistsForSuggestion(ctx context.Context, suggestionID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM rewards WHERE suggestion_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, suggestionID); err != nil {
		return false, fmt.Errorf("check reward existence: %w", err)
	}
	return exists, nil
}

// ListBySuggestion returns rewards for a suggestion, newest first.
func (r *RewardRepository) ListBySuggestion(ctx context.Context, suggestionID string) ([]models.Reward, error) {
	const query = `SELECT id, suggestion_id, user_id, amount, type, assigned_by, assigned_at
	FROM rewards WHERE suggestion_id = $1 ORDER BY assigned_at DESC`
	var rewards []models.Reward
	if err := r.db.SelectContext(ctx, &rewards, query, suggestionID); err != nil {
		return nil, fmt.Errorf("list rewards by suggestion: %w", err)
	}
	return rewards, nil
}

// ListByUser returns rewards granted to a user, newest first.
func (r *RewardRepository) ListByUser(ctx context.Context, userID string) ([]models.Reward, error) {
	const query = `SELECT id, suggestion_id, user_id, amount, type, assigned_by, assigned_at
	FROM rewards WHERE user_id = $1 ORDER BY assigned_at DESC`
	var rewards []models.Reward
	if err := r.db.SelectContext(ctx, &rewards, query, userID); err != nil {
		return nil, fmt.Errorf("list rewards by user: %w", err)
	}
	return rewards, nil
}

// TotalAmount returns the sum of all reward amounts.
func (r *RewardRepository) TotalAmount(ctx context.Context) (int, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM rewards`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("total reward amount: %w", err)
	}
	return total, nil
}

// CreditPoints atomically increments a user's point balance.
func (r *RewardRepository) CreditPoints(ctx context.Context, userID string, amount int) error {
	const query = `UPDATE users SET points = points + $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, amount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("credit points: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit points rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("credit points: user %s not found", userID)
	}
	return nil
}

// TopContributors returns users ranked by accumulated points.
func (r *RewardRepository) TopContributors(ctx context.Context, limit int) ([]models.Contributor, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	const query = `SELECT id, full_name, role, points FROM users WHERE active = TRUE ORDER BY points DESC, full_name ASC LIMIT $1`
	var contributors []models.Contributor
	if err := r.db.SelectContext(ctx, &contributors, query, limit); err != nil {
		return nil, fmt.Errorf("top contributors: %w", err)
	}
	return contributors, nil
}
