package workflow

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/models"
	"github.com/lavideas/kaizen-api/pkg/config"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

// Engine validates transition requests against the table and produces
// new suggestion snapshots plus side-effect descriptors. It holds no
// per-suggestion state; persistence and effect execution belong to the
// caller.
type Engine struct {
	table     *Table
	evaluator *ScoreEvaluator
	logger    *zap.Logger
	now       func() time.Time
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine constructs the engine from workflow configuration.
func NewEngine(cfg config.WorkflowConfig, logger *zap.Logger, opts ...EngineOption) (*Engine, error) {
	evaluator, err := NewScoreEvaluator(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		table:     NewTable(evaluator, PointsPolicy{Approval: cfg.ApprovalPoints, Completion: cfg.CompletionPoints}),
		evaluator: evaluator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	return engine, nil
}

// Evaluator exposes the score evaluator for read-side consumers.
func (e *Engine) Evaluator() *ScoreEvaluator {
	return e.evaluator
}

// Apply validates the request and returns an updated snapshot together
// with the ordered side-effects to dispatch after the snapshot commits.
// The input suggestion is never mutated; on any error nothing changes.
func (e *Engine) Apply(suggestion *models.Suggestion, req *Request) (*models.Suggestion, []Effect, error) {
	if suggestion == nil {
		return nil, nil, appErrors.ErrNotFound
	}
	if req == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "transition request is required")
	}

	transition, ok := e.table.Lookup(suggestion.Status, req.Action)
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("action %q is not allowed while suggestion is %q", req.Action, suggestion.Status))
	}

	if !transition.Allows(req.ActorRole) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("role %q may not perform %q", req.ActorRole, req.Action))
	}

	if err := transition.Guard(suggestion, req); err != nil {
		return nil, nil, err
	}

	snapshot := suggestion.Clone()
	next, effects, err := transition.Apply(snapshot, req, e.now())
	if err != nil {
		return nil, nil, err
	}
	snapshot.Status = next

	e.logger.Debug("transition applied",
		zap.String("suggestion_id", suggestion.ID),
		zap.String("action", string(req.Action)),
		zap.String("from", string(suggestion.Status)),
		zap.String("to", string(next)),
		zap.Int("effects", len(effects)),
	)
	return snapshot, effects, nil
}
