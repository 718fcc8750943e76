package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

var testClock = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(defaultWorkflowConfig(), zap.NewNop(), WithClock(func() time.Time { return testClock }))
	require.NoError(t, err)
	return engine
}

func newSuggestion(status models.SuggestionStatus) *models.Suggestion {
	return &models.Suggestion{
		ID:          "sug-1",
		Title:       "Reduce changeover time",
		Status:      status,
		Type:        models.SuggestionTypeKaizen,
		SubmittedBy: "emp-1",
		Version:     1,
	}
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code)
}

func feasibilityRequest(scores ComponentScores) *Request {
	return &Request{
		Action:    ActionSubmitFeasibility,
		ActorID:   "mgr-1",
		ActorRole: models.RoleManager,
		Feasibility: &FeasibilityPayload{
			Innovation:                 scores.Innovation,
			Safety:                     scores.Safety,
			Environment:                scores.Environment,
			EmployeeSatisfaction:       scores.EmployeeSatisfaction,
			TechnologicalCompatibility: scores.TechnologicalCompatibility,
			ImplementationEase:         scores.ImplementationEase,
			CostBenefit:                scores.CostBenefit,
		},
	}
}

func TestEngineFullApprovalPath(t *testing.T) {
	engine := newTestEngine(t)
	s := newSuggestion(models.StatusNew)

	s, effects, err := engine.Apply(s, &Request{Action: ActionDepartmentReview, ActorID: "mgr-1", ActorRole: models.RoleManager})
	require.NoError(t, err)
	require.Equal(t, models.StatusDepartmentReview, s.Status)
	require.Len(t, effects, 1)
	require.Equal(t, EffectNotify, effects[0].Kind)

	s, _, err = engine.Apply(s, feasibilityRequest(ComponentScores{4, 4, 4, 4, 4, 4, 4}))
	require.NoError(t, err)
	require.Equal(t, models.StatusFeasibilityAssessment, s.Status)

	s, _, err = engine.Apply(s, &Request{Action: ActionEvaluateFeasibility, ActorID: "mgr-1", ActorRole: models.RoleManager})
	require.NoError(t, err)
	require.Equal(t, models.StatusSolutionIdentified, s.Status)
	require.NotNil(t, s.FeasibilityScore)
	require.InDelta(t, 4.0, *s.FeasibilityScore, 1e-9)

	s, _, err = engine.Apply(s, &Request{
		Action: ActionProposeSolution, ActorID: "mgr-1", ActorRole: models.RoleManager,
		Solution: &SolutionPayload{Description: "install quick-release fixtures"},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusCostAssessment, s.Status)

	s, effects, err = engine.Apply(s, &Request{
		Action: ActionEvaluateCost, ActorID: "mgr-1", ActorRole: models.RoleManager,
		Cost: &CostPayload{Score: 4, Details: "tooling only"},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusExecutiveReview, s.Status)
	require.Empty(t, effects, "a passing cost score does not escalate")

	s, effects, err = engine.Apply(s, &Request{
		Action: ActionDecide, ActorID: "exec-1", ActorRole: models.RoleExecutive,
		Decision: &DecisionPayload{Decision: DecisionApprove, Feedback: "proceed"},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, s.Status)
	require.Len(t, effects, 2)
	require.Equal(t, EffectCreditPoints, effects[1].Kind)
	require.Equal(t, 20, effects[1].Points.Points)
	require.Equal(t, "emp-1", effects[1].Points.UserID)

	s, _, err = engine.Apply(s, &Request{Action: ActionStartImplementation, ActorID: "mgr-1", ActorRole: models.RoleManager})
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, s.Status)

	s, effects, err = engine.Apply(s, &Request{Action: ActionCompleteImplementation, ActorID: "mgr-1", ActorRole: models.RoleManager})
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, s.Status)
	require.Len(t, effects, 1)
	require.Equal(t, 50, effects[0].Points.Points)

	s, _, err = engine.Apply(s, &Request{
		Action: ActionReport, ActorID: "mgr-1", ActorRole: models.RoleManager,
		Report: &ReportPayload{Details: "changeover time cut from 40 to 12 minutes"},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusReported, s.Status)

	s, _, err = engine.Apply(s, &Request{
		Action: ActionEvaluate, ActorID: "mgr-1", ActorRole: models.RoleManager,
		Evaluation: &EvaluationPayload{Score: 5},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusEvaluated, s.Status)

	s, effects, err = engine.Apply(s, &Request{
		Action: ActionReward, ActorID: "exec-1", ActorRole: models.RoleExecutive,
		Reward: &RewardPayload{Amount: 500, Type: models.RewardTypeMoney},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusRewarded, s.Status)
	require.True(t, s.Status.IsTerminal())
	require.Len(t, effects, 2)
	require.Equal(t, EffectGrantReward, effects[0].Kind)
	require.Equal(t, "emp-1", effects[0].Reward.UserID, "reward defaults to the submitter")
	require.Equal(t, "exec-1", effects[0].Reward.AssignedBy)
}

func TestEngineFeasibilityRouting(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("high scores with one weak criterion still pass", func(t *testing.T) {
		s := newSuggestion(models.StatusDepartmentReview)
		s, _, err := engine.Apply(s, feasibilityRequest(ComponentScores{5, 5, 5, 5, 5, 5, 1}))
		require.NoError(t, err)
		s, _, err = engine.Apply(s, &Request{Action: ActionEvaluateFeasibility, ActorID: "mgr-1", ActorRole: models.RoleManager})
		require.NoError(t, err)
		require.Equal(t, models.StatusSolutionIdentified, s.Status)
		require.InDelta(t, 4.4, *s.FeasibilityScore, 1e-9)
	})

	t.Run("uniformly low scores reject", func(t *testing.T) {
		s := newSuggestion(models.StatusDepartmentReview)
		s, _, err := engine.Apply(s, feasibilityRequest(ComponentScores{1, 1, 1, 1, 1, 1, 1}))
		require.NoError(t, err)
		s, _, err = engine.Apply(s, &Request{Action: ActionEvaluateFeasibility, ActorID: "mgr-1", ActorRole: models.RoleManager})
		require.NoError(t, err)
		require.Equal(t, models.StatusFeasibilityRejected, s.Status)
		require.True(t, s.Status.IsTerminal())
		require.InDelta(t, 1.0, *s.FeasibilityScore, 1e-9)
	})

	t.Run("score exactly at the threshold passes", func(t *testing.T) {
		s := newSuggestion(models.StatusFeasibilityAssessment)
		// 2*85 + 5*15 = 245 -> 2.45 rounds to 2.5 at one decimal place.
		s.InnovationScore = intPtr(2)
		s.SafetyScore = intPtr(2)
		s.EnvironmentScore = intPtr(2)
		s.EmployeeSatisfactionScore = intPtr(2)
		s.TechnologicalCompatibilityScore = intPtr(2)
		s.ImplementationEaseScore = intPtr(2)
		s.CostBenefitScore = intPtr(5)
		s, _, err := engine.Apply(s, &Request{Action: ActionEvaluateFeasibility, ActorID: "mgr-1", ActorRole: models.RoleManager})
		require.NoError(t, err)
		require.InDelta(t, 2.5, *s.FeasibilityScore, 1e-9)
		require.Equal(t, models.StatusSolutionIdentified, s.Status)
	})
}

func TestEngineCostRouting(t *testing.T) {
	engine := newTestEngine(t)

	costRequest := func(score int) *Request {
		return &Request{
			Action: ActionEvaluateCost, ActorID: "mgr-1", ActorRole: models.RoleManager,
			Cost: &CostPayload{Score: score},
		}
	}

	t.Run("low score escalates to executive review", func(t *testing.T) {
		s := newSuggestion(models.StatusCostAssessment)
		s, effects, err := engine.Apply(s, costRequest(2))
		require.NoError(t, err)
		require.Equal(t, models.StatusExecutiveReview, s.Status)
		require.Len(t, effects, 1)
		require.Equal(t, EventCostEscalated, effects[0].Notification.Event)
	})

	t.Run("passing score advances without escalation", func(t *testing.T) {
		s := newSuggestion(models.StatusCostAssessment)
		s, effects, err := engine.Apply(s, costRequest(3))
		require.NoError(t, err)
		require.Equal(t, models.StatusExecutiveReview, s.Status)
		require.Empty(t, effects)
	})

	t.Run("out of range score is rejected by the guard", func(t *testing.T) {
		s := newSuggestion(models.StatusCostAssessment)
		_, _, err := engine.Apply(s, costRequest(6))
		requireErrCode(t, err, appErrors.ErrValidation.Code)
	})
}

func TestEngineExecutiveRejection(t *testing.T) {
	engine := newTestEngine(t)
	s := newSuggestion(models.StatusExecutiveReview)

	s, effects, err := engine.Apply(s, &Request{
		Action: ActionDecide, ActorID: "exec-1", ActorRole: models.RoleExecutive,
		Decision: &DecisionPayload{Decision: DecisionReject, Feedback: "budget freeze"},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, s.Status)
	require.True(t, s.Status.IsTerminal())
	require.Len(t, effects, 1, "rejection credits no points")
	require.Equal(t, "budget freeze", *s.ExecutiveFeedback)
}

func TestEngineUndefinedTransition(t *testing.T) {
	engine := newTestEngine(t)

	s := newSuggestion(models.StatusNew)
	_, _, err := engine.Apply(s, &Request{Action: ActionDecide, ActorID: "exec-1", ActorRole: models.RoleExecutive, Decision: &DecisionPayload{Decision: DecisionApprove}})
	requireErrCode(t, err, appErrors.ErrInvalidTransition.Code)

	// Terminal statuses define no outgoing edges.
	s = newSuggestion(models.StatusRejected)
	_, _, err = engine.Apply(s, &Request{Action: ActionStartImplementation, ActorID: "mgr-1", ActorRole: models.RoleManager})
	requireErrCode(t, err, appErrors.ErrInvalidTransition.Code)
}

func TestEngineRepeatedActionFailsAfterMove(t *testing.T) {
	engine := newTestEngine(t)
	s := newSuggestion(models.StatusNew)

	req := &Request{Action: ActionDepartmentReview, ActorID: "mgr-1", ActorRole: models.RoleManager}
	moved, _, err := engine.Apply(s, req)
	require.NoError(t, err)

	_, _, err = engine.Apply(moved, req)
	requireErrCode(t, err, appErrors.ErrInvalidTransition.Code)
}

func TestEngineRoleAuthorization(t *testing.T) {
	engine := newTestEngine(t)

	s := newSuggestion(models.StatusExecutiveReview)
	_, _, err := engine.Apply(s, &Request{
		Action: ActionDecide, ActorID: "mgr-1", ActorRole: models.RoleManager,
		Decision: &DecisionPayload{Decision: DecisionApprove},
	})
	requireErrCode(t, err, appErrors.ErrForbidden.Code)

	s = newSuggestion(models.StatusNew)
	_, _, err = engine.Apply(s, &Request{Action: ActionDepartmentReview, ActorID: "emp-1", ActorRole: models.RoleEmployee})
	requireErrCode(t, err, appErrors.ErrForbidden.Code)
}

func TestEngineGuardFailureLeavesInputUntouched(t *testing.T) {
	engine := newTestEngine(t)
	s := newSuggestion(models.StatusDepartmentReview)

	req := feasibilityRequest(ComponentScores{0, 5, 5, 5, 5, 5, 9})
	_, _, err := engine.Apply(s, req)
	requireErrCode(t, err, appErrors.ErrValidation.Code)
	require.Contains(t, err.Error(), "costBenefitScore")
	require.Contains(t, err.Error(), "innovationScore")
	require.Equal(t, models.StatusDepartmentReview, s.Status)
	require.Nil(t, s.InnovationScore)
}

func TestEngineApplyDoesNotMutateInput(t *testing.T) {
	engine := newTestEngine(t)
	s := newSuggestion(models.StatusNew)

	snapshot, _, err := engine.Apply(s, &Request{Action: ActionDepartmentReview, ActorID: "mgr-1", ActorRole: models.RoleManager})
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, s.Status)
	require.Nil(t, s.DepartmentReviewAt)
	require.Equal(t, models.StatusDepartmentReview, snapshot.Status)
	require.Equal(t, testClock, *snapshot.DepartmentReviewAt)
}
