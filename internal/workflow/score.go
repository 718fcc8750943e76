package workflow

import (
	"math"

	"github.com/lavideas/kaizen-api/pkg/config"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

// ComponentScores holds the seven feasibility criterion scores, each an
// integer in [1,5]. Range enforcement belongs to the transition guard;
// the evaluator itself is a total function.
type ComponentScores struct {
	Innovation                 int
	Safety                     int
	Environment                int
	EmployeeSatisfaction       int
	TechnologicalCompatibility int
	ImplementationEase         int
	CostBenefit                int
}

// ScoreEvaluator computes pass/fail/escalate outcomes from numeric
// criterion scores. Stateless and safe for concurrent use.
type ScoreEvaluator struct {
	weights             config.FeasibilityWeights
	minFeasibilityScore float64
	minCostScore        int
	escalationCostScore int
}

// NewScoreEvaluator validates the configured weights and thresholds.
func NewScoreEvaluator(cfg config.WorkflowConfig) (*ScoreEvaluator, error) {
	if cfg.Weights.Sum() <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "feasibility weights must sum to a positive value")
	}
	// A negative component weight could push the weighted average
	// outside [1,5] even when the sum is positive.
	for _, w := range []int{
		cfg.Weights.Innovation, cfg.Weights.Safety, cfg.Weights.Environment,
		cfg.Weights.EmployeeSatisfaction, cfg.Weights.TechnologicalCompatibility,
		cfg.Weights.ImplementationEase, cfg.Weights.CostBenefit,
	} {
		if w < 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "feasibility weights must not be negative")
		}
	}
	if cfg.MinFeasibilityScore < 1 || cfg.MinFeasibilityScore > 5 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minimum feasibility score must be within [1,5]")
	}
	return &ScoreEvaluator{
		weights:             cfg.Weights,
		minFeasibilityScore: cfg.MinFeasibilityScore,
		minCostScore:        cfg.MinCostScore,
		escalationCostScore: cfg.EscalationCostScore,
	}, nil
}

// FeasibilityScore returns the weighted average of the seven component
// scores rounded to two decimal places.
func (e *ScoreEvaluator) FeasibilityScore(c ComponentScores) float64 {
	w := e.weights
	weightedSum := float64(c.Innovation*w.Innovation +
		c.Safety*w.Safety +
		c.Environment*w.Environment +
		c.EmployeeSatisfaction*w.EmployeeSatisfaction +
		c.TechnologicalCompatibility*w.TechnologicalCompatibility +
		c.ImplementationEase*w.ImplementationEase +
		c.CostBenefit*w.CostBenefit)
	return round(weightedSum/float64(w.Sum()), 2)
}

// FeasibilityPasses reports whether the score clears the configured
// minimum. A tie at the threshold counts as passing.
func (e *ScoreEvaluator) FeasibilityPasses(score float64) bool {
	return score >= e.minFeasibilityScore
}

// NeedsExecutiveApproval reports whether a cost score routes the
// suggestion to executive review. The boundary is inclusive.
func (e *ScoreEvaluator) NeedsExecutiveApproval(costScore int) bool {
	return costScore <= e.escalationCostScore
}

// CostPasses reports whether the cost score clears the configured
// minimum. A tie at the threshold counts as passing.
func (e *ScoreEvaluator) CostPasses(costScore int) bool {
	return costScore >= e.minCostScore
}

// round truncates v to the given number of decimal places using
// half-away-from-zero rounding.
func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
