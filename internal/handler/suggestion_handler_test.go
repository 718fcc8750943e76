package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/middleware"
	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGinContext(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, recorder
}

func withClaims(c *gin.Context, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: role, Username: "tester"})
}

type mockSuggestionService struct {
	createFn      func(ctx context.Context, req dto.CreateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
	getFn         func(ctx context.Context, id string, actor *models.JWTClaims) (*models.Suggestion, error)
	listFn        func(ctx context.Context, query dto.SuggestionQuery, actor *models.JWTClaims) ([]models.Suggestion, error)
	transitionFn  func(ctx context.Context, id string, req dto.TransitionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
	feasibilityFn func(ctx context.Context, id string, payload dto.FeasibilityPayload, actor *models.JWTClaims) (*models.Suggestion, error)
	updateFn      func(ctx context.Context, id string, req dto.UpdateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
}

func (m *mockSuggestionService) Create(ctx context.Context, req dto.CreateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	return m.createFn(ctx, req, actor)
}

func (m *mockSuggestionService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Suggestion, error) {
	return m.getFn(ctx, id, actor)
}

func (m *mockSuggestionService) List(ctx context.Context, query dto.SuggestionQuery, actor *models.JWTClaims) ([]models.Suggestion, error) {
	return m.listFn(ctx, query, actor)
}

func (m *mockSuggestionService) Transition(ctx context.Context, id string, req dto.TransitionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	return m.transitionFn(ctx, id, req, actor)
}

func (m *mockSuggestionService) SubmitAndEvaluateFeasibility(ctx context.Context, id string, payload dto.FeasibilityPayload, actor *models.JWTClaims) (*models.Suggestion, error) {
	return m.feasibilityFn(ctx, id, payload, actor)
}

func (m *mockSuggestionService) Update(ctx context.Context, id string, req dto.UpdateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	return m.updateFn(ctx, id, req, actor)
}

func TestSuggestionHandlerCreate(t *testing.T) {
	svc := &mockSuggestionService{
		createFn: func(ctx context.Context, req dto.CreateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
			require.Equal(t, "Reuse cooling water", req.Title)
			require.Equal(t, "user-1", actor.UserID)
			return &models.Suggestion{ID: "sug-1", Title: req.Title, Status: models.StatusNew}, nil
		},
	}
	h := NewSuggestionHandler(svc)

	c, recorder := newGinContext(t, http.MethodPost, "/suggestions", dto.CreateSuggestionRequest{
		Title:       "Reuse cooling water",
		Description: "Route condenser discharge back to the wash line.",
		Category:    "environment",
		Benefits:    "Less fresh water intake.",
	})
	withClaims(c, models.RoleEmployee)
	h.Create(c)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Contains(t, recorder.Body.String(), "sug-1")
}

func TestSuggestionHandlerCreateUnauthenticated(t *testing.T) {
	h := NewSuggestionHandler(&mockSuggestionService{})

	c, recorder := newGinContext(t, http.MethodPost, "/suggestions", dto.CreateSuggestionRequest{Title: "x"})
	h.Create(c)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSuggestionHandlerCreateBadBody(t *testing.T) {
	h := NewSuggestionHandler(&mockSuggestionService{})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/suggestions", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c, models.RoleEmployee)
	h.Create(c)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSuggestionHandlerGet(t *testing.T) {
	svc := &mockSuggestionService{
		getFn: func(ctx context.Context, id string, actor *models.JWTClaims) (*models.Suggestion, error) {
			require.Equal(t, "sug-1", id)
			return &models.Suggestion{ID: id, Status: models.StatusApproved}, nil
		},
	}
	h := NewSuggestionHandler(svc)

	c, recorder := newGinContext(t, http.MethodGet, "/suggestions/sug-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "sug-1"}}
	withClaims(c, models.RoleManager)
	h.Get(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "approved")
}

func TestSuggestionHandlerGetNotFound(t *testing.T) {
	svc := &mockSuggestionService{
		getFn: func(ctx context.Context, id string, actor *models.JWTClaims) (*models.Suggestion, error) {
			return nil, appErrors.ErrNotFound
		},
	}
	h := NewSuggestionHandler(svc)

	c, recorder := newGinContext(t, http.MethodGet, "/suggestions/sug-404", nil)
	c.Params = gin.Params{{Key: "id", Value: "sug-404"}}
	withClaims(c, models.RoleManager)
	h.Get(c)

	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestSuggestionHandlerListParsesQuery(t *testing.T) {
	var captured dto.SuggestionQuery
	svc := &mockSuggestionService{
		listFn: func(ctx context.Context, query dto.SuggestionQuery, actor *models.JWTClaims) ([]models.Suggestion, error) {
			captured = query
			return []models.Suggestion{}, nil
		},
	}
	h := NewSuggestionHandler(svc)

	c, recorder := newGinContext(t, http.MethodGet, "/suggestions?status=new,approved&type=kaizen&limit=10&offset=20", nil)
	withClaims(c, models.RoleManager)
	h.List(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, []models.SuggestionStatus{models.StatusNew, models.StatusApproved}, captured.Status)
	require.Equal(t, models.SuggestionTypeKaizen, captured.Type)
	require.Equal(t, 10, captured.Limit)
	require.Equal(t, 20, captured.Offset)
}

func TestSuggestionHandlerListByStatus(t *testing.T) {
	var captured dto.SuggestionQuery
	svc := &mockSuggestionService{
		listFn: func(ctx context.Context, query dto.SuggestionQuery, actor *models.JWTClaims) ([]models.Suggestion, error) {
			captured = query
			return []models.Suggestion{}, nil
		},
	}
	h := NewSuggestionHandler(svc)

	c, recorder := newGinContext(t, http.MethodGet, "/suggestions/status/executive_review", nil)
	c.Params = gin.Params{{Key: "status", Value: "executive_review"}}
	withClaims(c, models.RoleExecutive)
	h.ListByStatus(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, []models.SuggestionStatus{models.StatusExecutiveReview}, captured.Status)
}

func TestSuggestionHandlerTransition(t *testing.T) {
	svc := &mockSuggestionService{
		transitionFn: func(ctx context.Context, id string, req dto.TransitionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
			require.Equal(t, "sug-1", id)
			require.Equal(t, "departmentReview", req.Action)
			return &models.Suggestion{ID: id, Status: models.StatusDepartmentReview}, nil
		},
	}
	h := NewSuggestionHandler(svc)

	c, recorder := newGinContext(t, http.MethodPost, "/suggestions/sug-1/transitions", dto.TransitionRequest{
		Action: "departmentReview",
	})
	c.Params = gin.Params{{Key: "id", Value: "sug-1"}}
	withClaims(c, models.RoleManager)
	h.Transition(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "department_review")
}

func TestSuggestionHandlerTransitionConflict(t *testing.T) {
	svc := &mockSuggestionService{
		transitionFn: func(ctx context.Context, id string, req dto.TransitionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
			return nil, appErrors.ErrConcurrentModification
		},
	}
	h := NewSuggestionHandler(svc)

	c, recorder := newGinContext(t, http.MethodPost, "/suggestions/sug-1/transitions", dto.TransitionRequest{
		Action: "departmentReview",
	})
	c.Params = gin.Params{{Key: "id", Value: "sug-1"}}
	withClaims(c, models.RoleManager)
	h.Transition(c)

	require.Equal(t, http.StatusConflict, recorder.Code)
	require.Contains(t, recorder.Body.String(), appErrors.ErrConcurrentModification.Code)
}

func TestSuggestionHandlerSubmitFeasibility(t *testing.T) {
	svc := &mockSuggestionService{
		feasibilityFn: func(ctx context.Context, id string, payload dto.FeasibilityPayload, actor *models.JWTClaims) (*models.Suggestion, error) {
			require.Equal(t, 4, payload.InnovationScore)
			score := 4.0
			return &models.Suggestion{ID: id, Status: models.StatusSolutionIdentified, FeasibilityScore: &score}, nil
		},
	}
	h := NewSuggestionHandler(svc)

	c, recorder := newGinContext(t, http.MethodPatch, "/suggestions/sug-1/feasibility", dto.FeasibilityPayload{
		InnovationScore:                 4,
		SafetyScore:                     4,
		EnvironmentScore:                4,
		EmployeeSatisfactionScore:       4,
		TechnologicalCompatibilityScore: 4,
		ImplementationEaseScore:         4,
		CostBenefitScore:                4,
	})
	c.Params = gin.Params{{Key: "id", Value: "sug-1"}}
	withClaims(c, models.RoleManager)
	h.SubmitFeasibility(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "solution_identified")
}

func TestSuggestionHandlerUpdateForbidden(t *testing.T) {
	svc := &mockSuggestionService{
		updateFn: func(ctx context.Context, id string, req dto.UpdateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
			return nil, appErrors.ErrForbidden
		},
	}
	h := NewSuggestionHandler(svc)

	status := models.StatusApproved
	c, recorder := newGinContext(t, http.MethodPatch, "/suggestions/sug-1", dto.UpdateSuggestionRequest{Status: &status})
	c.Params = gin.Params{{Key: "id", Value: "sug-1"}}
	withClaims(c, models.RoleManager)
	h.Update(c)

	require.Equal(t, http.StatusForbidden, recorder.Code)
}
