package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/models"
	"github.com/lavideas/kaizen-api/internal/workflow"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

type stubRewardStore struct {
	existing bool

	created []*models.Reward
	credits map[string]int
	byUser  []models.Reward
	bySugg  []models.Reward
}

func (s *stubRewardStore) Create(ctx context.Context, reward *models.Reward) error {
	reward.ID = "rew-1"
	s.created = append(s.created, reward)
	return nil
}

func (s *stubRewardStore) ExistsForSuggestion(ctx context.Context, suggestionID string) (bool, error) {
	return s.existing, nil
}

func (s *stubRewardStore) ListBySuggestion(ctx context.Context, suggestionID string) ([]models.Reward, error) {
	return s.bySugg, nil
}

func (s *stubRewardStore) ListByUser(ctx context.Context, userID string) ([]models.Reward, error) {
	return s.byUser, nil
}

func (s *stubRewardStore) CreditPoints(ctx context.Context, userID string, amount int) error {
	if s.credits == nil {
		s.credits = make(map[string]int)
	}
	s.credits[userID] += amount
	return nil
}

func grantRequest(rewardType models.RewardType) dto.GrantRewardRequest {
	return dto.GrantRewardRequest{
		SuggestionID: "sug-1",
		UserID:       "emp-1",
		Amount:       250,
		Type:         rewardType,
	}
}

func TestRewardServiceGrant(t *testing.T) {
	repo := &stubRewardStore{}
	audit := &stubAuditLogger{}
	svc := NewRewardService(repo, audit, nil, nil, zap.NewNop(), false)

	reward, err := svc.Grant(context.Background(), grantRequest(models.RewardTypeMoney), "exec-1")
	require.NoError(t, err)
	require.Equal(t, "exec-1", reward.AssignedBy)
	require.Len(t, repo.created, 1)
	require.Empty(t, repo.credits, "money rewards do not touch the point balance")

	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionRewardGrant, audit.logs[0].Action)
}

func TestRewardServiceGrantDuplicate(t *testing.T) {
	repo := &stubRewardStore{existing: true}
	svc := NewRewardService(repo, nil, nil, nil, zap.NewNop(), false)

	_, err := svc.Grant(context.Background(), grantRequest(models.RewardTypeMoney), "exec-1")
	requireServiceErr(t, err, appErrors.ErrDuplicateReward.Code)
	require.Empty(t, repo.created)
}

func TestRewardServiceGrantMultipleAllowed(t *testing.T) {
	repo := &stubRewardStore{existing: true}
	svc := NewRewardService(repo, nil, nil, nil, zap.NewNop(), true)

	_, err := svc.Grant(context.Background(), grantRequest(models.RewardTypeGift), "exec-1")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}

func TestRewardServiceGrantPointsCreditsBalance(t *testing.T) {
	repo := &stubRewardStore{}
	svc := NewRewardService(repo, nil, nil, nil, zap.NewNop(), false)

	_, err := svc.Grant(context.Background(), grantRequest(models.RewardTypePoints), "exec-1")
	require.NoError(t, err)
	require.Equal(t, 250, repo.credits["emp-1"])
}

func TestRewardServiceGrantRecordsMetric(t *testing.T) {
	repo := &stubRewardStore{}
	metrics := &stubWorkflowMetrics{}
	svc := NewRewardService(repo, nil, metrics, nil, zap.NewNop(), false)

	_, err := svc.Grant(context.Background(), grantRequest(models.RewardTypeMoney), "exec-1")
	require.NoError(t, err)
	require.Equal(t, 1, metrics.rewards)

	repo.existing = true
	_, err = svc.Grant(context.Background(), grantRequest(models.RewardTypeMoney), "exec-1")
	requireServiceErr(t, err, appErrors.ErrDuplicateReward.Code)
	require.Equal(t, 1, metrics.rewards, "rejected grants are not counted")
}

func TestRewardServiceGrantValidation(t *testing.T) {
	repo := &stubRewardStore{}
	svc := NewRewardService(repo, nil, nil, nil, zap.NewNop(), false)

	req := grantRequest(models.RewardTypeMoney)
	req.Amount = 0
	_, err := svc.Grant(context.Background(), req, "exec-1")
	requireServiceErr(t, err, appErrors.ErrValidation.Code)
}

func TestRewardServiceCreditPoints(t *testing.T) {
	repo := &stubRewardStore{}
	audit := &stubAuditLogger{}
	svc := NewRewardService(repo, audit, nil, nil, zap.NewNop(), false)

	require.NoError(t, svc.CreditPoints(context.Background(), "emp-1", 20, "suggestion approved"))
	require.Equal(t, 20, repo.credits["emp-1"])
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionPointsCredit, audit.logs[0].Action)

	err := svc.CreditPoints(context.Background(), "emp-1", 0, "noop")
	requireServiceErr(t, err, appErrors.ErrValidation.Code)

	err = svc.CreditPoints(context.Background(), "", 10, "missing user")
	requireServiceErr(t, err, appErrors.ErrValidation.Code)
}

func TestRewardServiceApplyRewardEffect(t *testing.T) {
	repo := &stubRewardStore{}
	svc := NewRewardService(repo, nil, nil, nil, zap.NewNop(), false)

	err := svc.ApplyRewardEffect(context.Background(), workflow.RewardEffect{
		SuggestionID: "sug-1",
		UserID:       "emp-1",
		Amount:       100,
		Type:         models.RewardTypePoints,
		AssignedBy:   "exec-1",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Equal(t, "exec-1", repo.created[0].AssignedBy)
	require.Equal(t, 100, repo.credits["emp-1"])
}
