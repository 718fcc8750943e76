package dto

import (
	"github.com/lavideas/kaizen-api/internal/models"
	"github.com/lavideas/kaizen-api/internal/workflow"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

// CreateSuggestionRequest is the payload for submitting a suggestion.
type CreateSuggestionRequest struct {
	Title       string                `json:"title" validate:"required,min=3,max=200"`
	Description string                `json:"description" validate:"required"`
	Category    string                `json:"category" validate:"required"`
	Benefits    string                `json:"benefits" validate:"required"`
	Type        models.SuggestionType `json:"suggestionType" validate:"omitempty,oneof=kaizen kivilcim"`
	RevisionOf  *string               `json:"revisionOf,omitempty"`
}

// DepartmentReviewPayload mirrors workflow.DepartmentReviewPayload.
type DepartmentReviewPayload struct {
	Feedback string `json:"feedback"`
}

// FeasibilityPayload carries the seven component scores.
type FeasibilityPayload struct {
	InnovationScore                 int    `json:"innovationScore" validate:"min=1,max=5"`
	SafetyScore                     int    `json:"safetyScore" validate:"min=1,max=5"`
	EnvironmentScore                int    `json:"environmentScore" validate:"min=1,max=5"`
	EmployeeSatisfactionScore       int    `json:"employeeSatisfactionScore" validate:"min=1,max=5"`
	TechnologicalCompatibilityScore int    `json:"technologicalCompatibilityScore" validate:"min=1,max=5"`
	ImplementationEaseScore         int    `json:"implementationEaseScore" validate:"min=1,max=5"`
	CostBenefitScore                int    `json:"costBenefitScore" validate:"min=1,max=5"`
	Feedback                        string `json:"feedback"`
}

func (p *FeasibilityPayload) toWorkflow() *workflow.FeasibilityPayload {
	return &workflow.FeasibilityPayload{
		Innovation:                 p.InnovationScore,
		Safety:                     p.SafetyScore,
		Environment:                p.EnvironmentScore,
		EmployeeSatisfaction:       p.EmployeeSatisfactionScore,
		TechnologicalCompatibility: p.TechnologicalCompatibilityScore,
		ImplementationEase:         p.ImplementationEaseScore,
		CostBenefit:                p.CostBenefitScore,
		Feedback:                   p.Feedback,
	}
}

// SolutionPayload carries the proposed solution.
type SolutionPayload struct {
	Description string `json:"solutionDescription" validate:"required"`
}

// CostPayload carries the cost assessment.
type CostPayload struct {
	Score   int    `json:"costScore" validate:"min=1,max=5"`
	Details string `json:"costDetails"`
}

// DecisionPayload carries the executive decision.
type DecisionPayload struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Feedback string `json:"feedback"`
}

// ImplementationPayload carries optional implementation notes.
type ImplementationPayload struct {
	Notes string `json:"implementationNotes"`
}

// ReportPayload carries the implementation report.
type ReportPayload struct {
	Details string `json:"reportDetails" validate:"required"`
}

// EvaluationPayload carries the final evaluation.
type EvaluationPayload struct {
	Score int    `json:"evaluationScore" validate:"min=1,max=5"`
	Notes string `json:"evaluationNotes"`
}

// RewardPayload carries the reward grant issued by the reward action.
type RewardPayload struct {
	UserID string            `json:"userId"`
	Amount int               `json:"amount" validate:"gt=0"`
	Type   models.RewardType `json:"type" validate:"required,oneof=money points gift"`
}

// TransitionRequest is the HTTP shape of a workflow transition. Action
// selects which payload section applies; unknown actions are rejected
// before reaching the engine.
type TransitionRequest struct {
	Action string `json:"action" validate:"required"`

	DepartmentReview *DepartmentReviewPayload `json:"departmentReview,omitempty"`
	Feasibility      *FeasibilityPayload      `json:"feasibility,omitempty"`
	Solution         *SolutionPayload         `json:"solution,omitempty"`
	Cost             *CostPayload             `json:"cost,omitempty"`
	Decision         *DecisionPayload         `json:"decision,omitempty"`
	Implementation   *ImplementationPayload   `json:"implementation,omitempty"`
	Report           *ReportPayload           `json:"report,omitempty"`
	Evaluation       *EvaluationPayload       `json:"evaluation,omitempty"`
	Reward           *RewardPayload           `json:"reward,omitempty"`
}

// ToWorkflowRequest converts the HTTP payload into the engine's typed
// request for the given actor.
func (r *TransitionRequest) ToWorkflowRequest(actorID string, role models.UserRole) (*workflow.Request, error) {
	req := &workflow.Request{
		Action:    workflow.Action(r.Action),
		ActorID:   actorID,
		ActorRole: role,
	}

	switch req.Action {
	case workflow.ActionDepartmentReview:
		if r.DepartmentReview != nil {
			req.DepartmentReview = &workflow.DepartmentReviewPayload{Feedback: r.DepartmentReview.Feedback}
		}
	case workflow.ActionSubmitFeasibility:
		if r.Feasibility != nil {
			req.Feasibility = r.Feasibility.toWorkflow()
		}
	case workflow.ActionEvaluateFeasibility:
		// No payload: the engine evaluates the stored component scores.
	case workflow.ActionProposeSolution:
		if r.Solution != nil {
			req.Solution = &workflow.SolutionPayload{Description: r.Solution.Description}
		}
	case workflow.ActionEvaluateCost:
		if r.Cost != nil {
			req.Cost = &workflow.CostPayload{Score: r.Cost.Score, Details: r.Cost.Details}
		}
	case workflow.ActionDecide:
		if r.Decision != nil {
			req.Decision = &workflow.DecisionPayload{Decision: r.Decision.Decision, Feedback: r.Decision.Feedback}
		}
	case workflow.ActionStartImplementation:
		// No payload.
	case workflow.ActionCompleteImplementation:
		if r.Implementation != nil {
			req.Implementation = &workflow.ImplementationPayload{Notes: r.Implementation.Notes}
		}
	case workflow.ActionReport:
		if r.Report != nil {
			req.Report = &workflow.ReportPayload{Details: r.Report.Details}
		}
	case workflow.ActionEvaluate:
		if r.Evaluation != nil {
			req.Evaluation = &workflow.EvaluationPayload{Score: r.Evaluation.Score, Notes: r.Evaluation.Notes}
		}
	case workflow.ActionReward:
		if r.Reward != nil {
			req.Reward = &workflow.RewardPayload{UserID: r.Reward.UserID, Amount: r.Reward.Amount, Type: r.Reward.Type}
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown transition action")
	}

	return req, nil
}

// UpdateSuggestionRequest is the deprecated generic update surface kept
// for legacy clients. Prefer explicit transition actions.
type UpdateSuggestionRequest struct {
	Status   *models.SuggestionStatus `json:"status,omitempty"`
	Feedback *string                  `json:"feedback,omitempty"`
}

// SuggestionQuery mirrors supported listing filters.
type SuggestionQuery struct {
	Status      []models.SuggestionStatus
	Type        models.SuggestionType
	SubmittedBy string
	Limit       int
	Offset      int
}
