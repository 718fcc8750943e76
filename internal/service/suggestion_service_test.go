package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/models"
	"github.com/lavideas/kaizen-api/internal/workflow"
	"github.com/lavideas/kaizen-api/pkg/config"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

type stubSuggestionStore struct {
	byID       map[string]*models.Suggestion
	getErr     error
	createErr  error
	storeErr   error
	listResult []models.Suggestion
	listErr    error

	created       []*models.Suggestion
	lastFilter    models.SuggestionFilter
	stored        *models.Suggestion
	storedVersion int
	storeCalls    int
}

func (s *stubSuggestionStore) Create(ctx context.Context, suggestion *models.Suggestion) error {
	if s.createErr != nil {
		return s.createErr
	}
	suggestion.ID = "sug-new"
	suggestion.Status = models.StatusNew
	suggestion.Version = 1
	s.created = append(s.created, suggestion)
	return nil
}

func (s *stubSuggestionStore) GetByID(ctx context.Context, id string) (*models.Suggestion, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	suggestion, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return suggestion.Clone(), nil
}

func (s *stubSuggestionStore) List(ctx context.Context, filter models.SuggestionFilter) ([]models.Suggestion, error) {
	s.lastFilter = filter
	return s.listResult, s.listErr
}

func (s *stubSuggestionStore) Store(ctx context.Context, suggestion *models.Suggestion, expectedVersion int) error {
	s.storeCalls++
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stored = suggestion
	s.storedVersion = expectedVersion
	return nil
}

type stubEffectSink struct {
	dispatched [][]workflow.Effect
}

func (s *stubEffectSink) Dispatch(ctx context.Context, effects []workflow.Effect) {
	s.dispatched = append(s.dispatched, effects)
}

func (s *stubEffectSink) all() []workflow.Effect {
	var out []workflow.Effect
	for _, batch := range s.dispatched {
		out = append(out, batch...)
	}
	return out
}

type stubAuditLogger struct {
	logs []*models.AuditLog
}

func (s *stubAuditLogger) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func workflowTestConfig() config.WorkflowConfig {
	return config.WorkflowConfig{
		MinFeasibilityScore: 2.5,
		MinCostScore:        3,
		EscalationCostScore: 2,
		Weights: config.FeasibilityWeights{
			Innovation:                 15,
			Safety:                     15,
			Environment:                15,
			EmployeeSatisfaction:       10,
			TechnologicalCompatibility: 15,
			ImplementationEase:         15,
			CostBenefit:                15,
		},
		SubmissionPoints: 10,
		ApprovalPoints:   20,
		CompletionPoints: 50,
	}
}

func newTestSuggestionService(t *testing.T, repo *stubSuggestionStore) (*SuggestionService, *stubEffectSink, *stubAuditLogger) {
	t.Helper()
	engine, err := workflow.NewEngine(workflowTestConfig(), zap.NewNop())
	require.NoError(t, err)
	sink := &stubEffectSink{}
	audit := &stubAuditLogger{}
	svc := NewSuggestionService(repo, engine, sink, audit, nil, nil, zap.NewNop(), 10)
	return svc, sink, audit
}

type stubWorkflowMetrics struct {
	transitions []string
	conflicts   int
	rewards     int
}

func (s *stubWorkflowMetrics) ObserveTransition(action, to string) {
	s.transitions = append(s.transitions, action+"->"+to)
}

func (s *stubWorkflowMetrics) ObserveVersionConflict() { s.conflicts++ }

func (s *stubWorkflowMetrics) ObserveReward() { s.rewards++ }

func requireServiceErr(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code)
}

func employeeClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "emp-1", Role: models.RoleEmployee, Username: "ayse.demir"}
}

func managerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "mgr-1", Role: models.RoleManager, Username: "murat.kaya"}
}

func validCreateRequest() dto.CreateSuggestionRequest {
	return dto.CreateSuggestionRequest{
		Title:       "Reuse cooling water",
		Description: "Route condenser discharge back to the wash line.",
		Category:    "environment",
		Benefits:    "Cuts fresh water intake by 30 percent.",
		Type:        models.SuggestionTypeKaizen,
	}
}

func TestSuggestionServiceCreate(t *testing.T) {
	repo := &stubSuggestionStore{}
	svc, sink, audit := newTestSuggestionService(t, repo)

	suggestion, err := svc.Create(context.Background(), validCreateRequest(), employeeClaims())
	require.NoError(t, err)
	require.Equal(t, "emp-1", suggestion.SubmittedBy)
	require.Equal(t, models.StatusNew, suggestion.Status)
	require.Len(t, repo.created, 1)

	effects := sink.all()
	require.Len(t, effects, 1)
	require.Equal(t, workflow.EffectCreditPoints, effects[0].Kind)
	require.Equal(t, 10, effects[0].Points.Points)
	require.Equal(t, "emp-1", effects[0].Points.UserID)

	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionSuggestionCreate, audit.logs[0].Action)
}

func TestSuggestionServiceCreateValidation(t *testing.T) {
	repo := &stubSuggestionStore{}
	svc, sink, _ := newTestSuggestionService(t, repo)

	req := validCreateRequest()
	req.Title = ""
	_, err := svc.Create(context.Background(), req, employeeClaims())
	requireServiceErr(t, err, appErrors.ErrValidation.Code)
	require.Empty(t, repo.created)
	require.Empty(t, sink.dispatched)
}

func TestSuggestionServiceCreateRevision(t *testing.T) {
	priorID := "sug-old"

	t.Run("revision of a closed suggestion is accepted", func(t *testing.T) {
		repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
			priorID: {ID: priorID, Status: models.StatusRejected, Version: 4},
		}}
		svc, _, _ := newTestSuggestionService(t, repo)

		req := validCreateRequest()
		req.RevisionOf = &priorID
		suggestion, err := svc.Create(context.Background(), req, employeeClaims())
		require.NoError(t, err)
		require.Equal(t, &priorID, suggestion.RevisionOf)
	})

	t.Run("revision of an open suggestion is rejected", func(t *testing.T) {
		repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
			priorID: {ID: priorID, Status: models.StatusExecutiveReview, Version: 4},
		}}
		svc, _, _ := newTestSuggestionService(t, repo)

		req := validCreateRequest()
		req.RevisionOf = &priorID
		_, err := svc.Create(context.Background(), req, employeeClaims())
		requireServiceErr(t, err, appErrors.ErrValidation.Code)
	})
}

func TestSuggestionServiceGet(t *testing.T) {
	repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
		"sug-1": {ID: "sug-1", Status: models.StatusNew, SubmittedBy: "emp-1", Version: 1},
	}}
	svc, _, _ := newTestSuggestionService(t, repo)

	t.Run("submitter reads own suggestion", func(t *testing.T) {
		suggestion, err := svc.Get(context.Background(), "sug-1", employeeClaims())
		require.NoError(t, err)
		require.Equal(t, "sug-1", suggestion.ID)
	})

	t.Run("another employee is refused", func(t *testing.T) {
		other := &models.JWTClaims{UserID: "emp-2", Role: models.RoleEmployee}
		_, err := svc.Get(context.Background(), "sug-1", other)
		requireServiceErr(t, err, appErrors.ErrForbidden.Code)
	})

	t.Run("managers read any suggestion", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "sug-1", managerClaims())
		require.NoError(t, err)
	})

	t.Run("missing suggestion maps to not found", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "sug-404", managerClaims())
		requireServiceErr(t, err, appErrors.ErrNotFound.Code)
	})
}

func TestSuggestionServiceList(t *testing.T) {
	repo := &stubSuggestionStore{listResult: []models.Suggestion{{ID: "sug-1"}}}
	svc, _, _ := newTestSuggestionService(t, repo)

	t.Run("employees are scoped to their own submissions", func(t *testing.T) {
		_, err := svc.List(context.Background(), dto.SuggestionQuery{SubmittedBy: "someone-else"}, employeeClaims())
		require.NoError(t, err)
		require.Equal(t, "emp-1", repo.lastFilter.SubmittedBy)
	})

	t.Run("managers keep the requested filter", func(t *testing.T) {
		_, err := svc.List(context.Background(), dto.SuggestionQuery{SubmittedBy: "emp-9"}, managerClaims())
		require.NoError(t, err)
		require.Equal(t, "emp-9", repo.lastFilter.SubmittedBy)
	})

	t.Run("unknown status filter is rejected", func(t *testing.T) {
		query := dto.SuggestionQuery{Status: []models.SuggestionStatus{"archived"}}
		_, err := svc.List(context.Background(), query, managerClaims())
		requireServiceErr(t, err, appErrors.ErrValidation.Code)
	})
}

func TestSuggestionServiceTransition(t *testing.T) {
	repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
		"sug-1": {ID: "sug-1", Status: models.StatusNew, SubmittedBy: "emp-1", Version: 3},
	}}
	svc, sink, audit := newTestSuggestionService(t, repo)

	req := dto.TransitionRequest{
		Action:           string(workflow.ActionDepartmentReview),
		DepartmentReview: &dto.DepartmentReviewPayload{Feedback: "worth assessing"},
	}
	suggestion, err := svc.Transition(context.Background(), "sug-1", req, managerClaims())
	require.NoError(t, err)
	require.Equal(t, models.StatusDepartmentReview, suggestion.Status)

	require.NotNil(t, repo.stored)
	require.Equal(t, 3, repo.storedVersion)
	require.Equal(t, models.StatusDepartmentReview, repo.stored.Status)

	require.Len(t, sink.all(), 1)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionTransition, audit.logs[0].Action)
}

func TestSuggestionServiceTransitionConflict(t *testing.T) {
	repo := &stubSuggestionStore{
		byID: map[string]*models.Suggestion{
			"sug-1": {ID: "sug-1", Status: models.StatusNew, SubmittedBy: "emp-1", Version: 3},
		},
		storeErr: appErrors.ErrConcurrentModification,
	}
	svc, sink, _ := newTestSuggestionService(t, repo)

	req := dto.TransitionRequest{Action: string(workflow.ActionDepartmentReview)}
	_, err := svc.Transition(context.Background(), "sug-1", req, managerClaims())
	requireServiceErr(t, err, appErrors.ErrConcurrentModification.Code)
	require.Empty(t, sink.dispatched, "effects must not run when the store loses the race")
}

func TestSuggestionServiceTransitionRecordsMetrics(t *testing.T) {
	engine, err := workflow.NewEngine(workflowTestConfig(), zap.NewNop())
	require.NoError(t, err)

	t.Run("successful transition is observed", func(t *testing.T) {
		repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
			"sug-1": {ID: "sug-1", Status: models.StatusNew, SubmittedBy: "emp-1", Version: 3},
		}}
		metrics := &stubWorkflowMetrics{}
		svc := NewSuggestionService(repo, engine, &stubEffectSink{}, &stubAuditLogger{}, metrics, nil, zap.NewNop(), 10)

		req := dto.TransitionRequest{Action: string(workflow.ActionDepartmentReview)}
		_, err := svc.Transition(context.Background(), "sug-1", req, managerClaims())
		require.NoError(t, err)
		require.Equal(t, []string{"departmentReview->department_review"}, metrics.transitions)
		require.Zero(t, metrics.conflicts)
	})

	t.Run("lost write race is observed as a conflict", func(t *testing.T) {
		repo := &stubSuggestionStore{
			byID: map[string]*models.Suggestion{
				"sug-1": {ID: "sug-1", Status: models.StatusNew, SubmittedBy: "emp-1", Version: 3},
			},
			storeErr: appErrors.ErrConcurrentModification,
		}
		metrics := &stubWorkflowMetrics{}
		svc := NewSuggestionService(repo, engine, &stubEffectSink{}, &stubAuditLogger{}, metrics, nil, zap.NewNop(), 10)

		req := dto.TransitionRequest{Action: string(workflow.ActionDepartmentReview)}
		_, err := svc.Transition(context.Background(), "sug-1", req, managerClaims())
		requireServiceErr(t, err, appErrors.ErrConcurrentModification.Code)
		require.Empty(t, metrics.transitions)
		require.Equal(t, 1, metrics.conflicts)
	})

	t.Run("combined feasibility write observes both steps", func(t *testing.T) {
		repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
			"sug-1": {ID: "sug-1", Status: models.StatusDepartmentReview, SubmittedBy: "emp-1", Version: 2},
		}}
		metrics := &stubWorkflowMetrics{}
		svc := NewSuggestionService(repo, engine, &stubEffectSink{}, &stubAuditLogger{}, metrics, nil, zap.NewNop(), 10)

		payload := dto.FeasibilityPayload{
			InnovationScore:                 4,
			SafetyScore:                     4,
			EnvironmentScore:                4,
			EmployeeSatisfactionScore:       4,
			TechnologicalCompatibilityScore: 4,
			ImplementationEaseScore:         4,
			CostBenefitScore:                4,
		}
		_, err := svc.SubmitAndEvaluateFeasibility(context.Background(), "sug-1", payload, managerClaims())
		require.NoError(t, err)
		require.Equal(t, []string{
			"submitFeasibility->feasibility_assessment",
			"evaluateFeasibility->solution_identified",
		}, metrics.transitions)
	})
}

func TestSuggestionServiceTransitionInvalidAction(t *testing.T) {
	repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
		"sug-1": {ID: "sug-1", Status: models.StatusNew, SubmittedBy: "emp-1", Version: 1},
	}}
	svc, _, _ := newTestSuggestionService(t, repo)

	req := dto.TransitionRequest{Action: "promote"}
	_, err := svc.Transition(context.Background(), "sug-1", req, managerClaims())
	requireServiceErr(t, err, appErrors.ErrValidation.Code)
}

func TestSuggestionServiceSubmitAndEvaluateFeasibility(t *testing.T) {
	repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
		"sug-1": {ID: "sug-1", Status: models.StatusDepartmentReview, SubmittedBy: "emp-1", Version: 2},
	}}
	svc, _, _ := newTestSuggestionService(t, repo)

	payload := dto.FeasibilityPayload{
		InnovationScore:                 4,
		SafetyScore:                     4,
		EnvironmentScore:                4,
		EmployeeSatisfactionScore:       4,
		TechnologicalCompatibilityScore: 4,
		ImplementationEaseScore:         4,
		CostBenefitScore:                4,
	}
	suggestion, err := svc.SubmitAndEvaluateFeasibility(context.Background(), "sug-1", payload, managerClaims())
	require.NoError(t, err)
	require.Equal(t, models.StatusSolutionIdentified, suggestion.Status)
	require.NotNil(t, suggestion.FeasibilityScore)
	require.InDelta(t, 4.0, *suggestion.FeasibilityScore, 1e-9)

	require.Equal(t, 1, repo.storeCalls, "both steps persist as one write")
	require.Equal(t, 2, repo.storedVersion)
}

func TestSuggestionServiceUpdate(t *testing.T) {
	repo := &stubSuggestionStore{byID: map[string]*models.Suggestion{
		"sug-1": {ID: "sug-1", Status: models.StatusNew, SubmittedBy: "emp-1", Version: 1},
	}}
	svc, _, _ := newTestSuggestionService(t, repo)

	t.Run("non-executives are refused", func(t *testing.T) {
		status := models.StatusApproved
		_, err := svc.Update(context.Background(), "sug-1", dto.UpdateSuggestionRequest{Status: &status}, managerClaims())
		requireServiceErr(t, err, appErrors.ErrForbidden.Code)
	})

	t.Run("executive writes status directly", func(t *testing.T) {
		exec := &models.JWTClaims{UserID: "exec-1", Role: models.RoleExecutive}
		status := models.StatusApproved
		suggestion, err := svc.Update(context.Background(), "sug-1", dto.UpdateSuggestionRequest{Status: &status}, exec)
		require.NoError(t, err)
		require.Equal(t, models.StatusApproved, suggestion.Status)
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		exec := &models.JWTClaims{UserID: "exec-1", Role: models.RoleExecutive}
		_, err := svc.Update(context.Background(), "sug-1", dto.UpdateSuggestionRequest{}, exec)
		requireServiceErr(t, err, appErrors.ErrValidation.Code)
	})
}

func TestSuggestionServiceRequiresActor(t *testing.T) {
	repo := &stubSuggestionStore{}
	svc, _, _ := newTestSuggestionService(t, repo)

	_, err := svc.Create(context.Background(), validCreateRequest(), nil)
	requireServiceErr(t, err, appErrors.ErrUnauthorized.Code)

	_, err = svc.Get(context.Background(), "sug-1", nil)
	requireServiceErr(t, err, appErrors.ErrUnauthorized.Code)
}
