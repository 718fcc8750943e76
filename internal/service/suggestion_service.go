package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/models"
	"github.com/lavideas/kaizen-api/internal/workflow"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

type suggestionStore interface {
	Create(ctx context.Context, suggestion *models.Suggestion) error
	GetByID(ctx context.Context, id string) (*models.Suggestion, error)
	List(ctx context.Context, filter models.SuggestionFilter) ([]models.Suggestion, error)
	Store(ctx context.Context, suggestion *models.Suggestion, expectedVersion int) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type transitionEngine interface {
	Apply(suggestion *models.Suggestion, req *workflow.Request) (*models.Suggestion, []workflow.Effect, error)
}

type effectSink interface {
	Dispatch(ctx context.Context, effects []workflow.Effect)
}

type transitionMetrics interface {
	ObserveTransition(action, to string)
	ObserveVersionConflict()
}

// SuggestionService orchestrates suggestion lifecycle operations: it
// loads aggregates, runs the workflow engine, persists snapshots with
// optimistic concurrency, and hands side-effects to the dispatcher only
// after a successful store.
type SuggestionService struct {
	repo             suggestionStore
	engine           transitionEngine
	effects          effectSink
	audit            auditLogger
	metrics          transitionMetrics
	validator        *validator.Validate
	logger           *zap.Logger
	submissionPoints int
}

// NewSuggestionService constructs the service.
func NewSuggestionService(repo suggestionStore, engine transitionEngine, effects effectSink, audit auditLogger, metrics transitionMetrics, validate *validator.Validate, logger *zap.Logger, submissionPoints int) *SuggestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		repo:             repo,
		engine:           engine,
		effects:          effects,
		audit:            audit,
		metrics:          metrics,
		validator:        validate,
		logger:           logger,
		submissionPoints: submissionPoints,
	}
}

// Create stores a new suggestion in the initial status and credits the
// submitter's participation points.
func (s *SuggestionService) Create(ctx context.Context, req dto.CreateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}

	if req.RevisionOf != nil {
		prior, err := s.loadSuggestion(ctx, *req.RevisionOf)
		if err != nil {
			return nil, err
		}
		if !prior.Status.IsTerminal() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "revisionOf must reference a closed suggestion")
		}
	}

	suggestion := &models.Suggestion{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Benefits:    req.Benefits,
		Type:        req.Type,
		RevisionOf:  req.RevisionOf,
		SubmittedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, suggestion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create suggestion")
	}

	if s.effects != nil && s.submissionPoints > 0 {
		s.effects.Dispatch(ctx, []workflow.Effect{{
			Kind: workflow.EffectCreditPoints,
			Points: &workflow.PointsEffect{
				UserID: actor.UserID,
				Points: s.submissionPoints,
				Reason: "suggestion submitted",
			},
		}})
	}

	s.emitAudit(ctx, actor, models.AuditActionSuggestionCreate, suggestion.ID, map[string]interface{}{
		"title":  suggestion.Title,
		"type":   suggestion.Type,
		"status": suggestion.Status,
	})
	return suggestion, nil
}

// Get returns a suggestion enforcing role scope: employees may only
// read their own submissions.
func (s *SuggestionService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Suggestion, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	suggestion, err := s.loadSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleEmployee && suggestion.SubmittedBy != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return suggestion, nil
}

// List returns suggestions matching the query respecting actor role.
func (s *SuggestionService) List(ctx context.Context, query dto.SuggestionQuery, actor *models.JWTClaims) ([]models.Suggestion, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	for _, status := range query.Status {
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
		}
	}
	filter := models.SuggestionFilter{
		Status:      query.Status,
		Type:        query.Type,
		SubmittedBy: query.SubmittedBy,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}
	if actor.Role == models.RoleEmployee {
		filter.SubmittedBy = actor.UserID
	}
	suggestions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list suggestions")
	}
	return suggestions, nil
}

// Transition applies a single workflow action. The snapshot is stored
// with a compare-and-swap on the version read during load; effects are
// dispatched only after the store succeeds.
func (s *SuggestionService) Transition(ctx context.Context, id string, req dto.TransitionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}

	suggestion, err := s.loadSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}

	wfReq, err := req.ToWorkflowRequest(actor.UserID, actor.Role)
	if err != nil {
		return nil, err
	}

	snapshot, effects, err := s.engine.Apply(suggestion, wfReq)
	if err != nil {
		return nil, err
	}

	if err := s.storeSnapshot(ctx, snapshot, suggestion.Version); err != nil {
		return nil, err
	}
	s.observeTransition(wfReq.Action, snapshot.Status)

	if s.effects != nil && len(effects) > 0 {
		s.effects.Dispatch(ctx, effects)
	}

	s.emitAudit(ctx, actor, models.AuditActionTransition, snapshot.ID, map[string]interface{}{
		"action": wfReq.Action,
		"from":   suggestion.Status,
		"to":     snapshot.Status,
	})
	return snapshot, nil
}

// SubmitAndEvaluateFeasibility runs submitFeasibility followed by
// evaluateFeasibility as one logical step, persisting once. The
// original review client records scores and routes in a single call.
func (s *SuggestionService) SubmitAndEvaluateFeasibility(ctx context.Context, id string, payload dto.FeasibilityPayload, actor *models.JWTClaims) (*models.Suggestion, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feasibility payload")
	}

	suggestion, err := s.loadSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}

	submit := dto.TransitionRequest{Action: string(workflow.ActionSubmitFeasibility), Feasibility: &payload}
	submitReq, err := submit.ToWorkflowRequest(actor.UserID, actor.Role)
	if err != nil {
		return nil, err
	}
	scored, scoreEffects, err := s.engine.Apply(suggestion, submitReq)
	if err != nil {
		return nil, err
	}

	evaluated, routeEffects, err := s.engine.Apply(scored, &workflow.Request{
		Action:    workflow.ActionEvaluateFeasibility,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
	})
	if err != nil {
		return nil, err
	}

	if err := s.storeSnapshot(ctx, evaluated, suggestion.Version); err != nil {
		return nil, err
	}
	s.observeTransition(workflow.ActionSubmitFeasibility, scored.Status)
	s.observeTransition(workflow.ActionEvaluateFeasibility, evaluated.Status)

	effects := append(scoreEffects, routeEffects...)
	if s.effects != nil && len(effects) > 0 {
		s.effects.Dispatch(ctx, effects)
	}

	s.emitAudit(ctx, actor, models.AuditActionTransition, evaluated.ID, map[string]interface{}{
		"action": "submitFeasibility+evaluateFeasibility",
		"from":   suggestion.Status,
		"to":     evaluated.Status,
		"score":  evaluated.FeasibilityScore,
	})
	return evaluated, nil
}

// Update is the deprecated generic patch surface kept for legacy
// clients. It writes status and department feedback directly without
// running the transition table and is restricted to executives.
func (s *SuggestionService) Update(ctx context.Context, id string, req dto.UpdateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleExecutive {
		return nil, appErrors.ErrForbidden
	}
	if req.Status == nil && req.Feedback == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}

	suggestion, err := s.loadSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := suggestion.Clone()
	if req.Status != nil {
		snapshot.Status = *req.Status
	}
	if req.Feedback != nil {
		snapshot.DepartmentFeedback = req.Feedback
	}

	if err := s.storeSnapshot(ctx, snapshot, suggestion.Version); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, actor, models.AuditActionSuggestionUpdate, snapshot.ID, map[string]interface{}{
		"from": suggestion.Status,
		"to":   snapshot.Status,
	})
	s.logger.Warn("legacy suggestion update applied",
		zap.String("suggestion_id", snapshot.ID),
		zap.String("updated_by", actor.UserID),
	)
	return snapshot, nil
}

func (s *SuggestionService) storeSnapshot(ctx context.Context, snapshot *models.Suggestion, expectedVersion int) error {
	err := s.repo.Store(ctx, snapshot, expectedVersion)
	if err != nil && s.metrics != nil && errors.Is(err, appErrors.ErrConcurrentModification) {
		s.metrics.ObserveVersionConflict()
	}
	return err
}

func (s *SuggestionService) observeTransition(action workflow.Action, to models.SuggestionStatus) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveTransition(string(action), string(to))
}

func (s *SuggestionService) loadSuggestion(ctx context.Context, id string) (*models.Suggestion, error) {
	suggestion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "suggestion not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suggestion")
	}
	return suggestion, nil
}

func (s *SuggestionService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(values)
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "suggestion",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "suggestion-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
