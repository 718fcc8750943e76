package workflow

import "github.com/lavideas/kaizen-api/internal/models"

// Action identifies a workflow transition request.
type Action string

const (
	ActionDepartmentReview       Action = "departmentReview"
	ActionSubmitFeasibility      Action = "submitFeasibility"
	ActionEvaluateFeasibility    Action = "evaluateFeasibility"
	ActionProposeSolution        Action = "proposeSolution"
	ActionEvaluateCost           Action = "evaluateCost"
	ActionDecide                 Action = "decide"
	ActionStartImplementation    Action = "startImplementation"
	ActionCompleteImplementation Action = "completeImplementation"
	ActionReport                 Action = "report"
	ActionEvaluate               Action = "evaluate"
	ActionReward                 Action = "reward"
)

// Decision values accepted by the executive decide action.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Request is the tagged-union transition request. Action selects which
// payload pointer must be populated; each payload carries only the
// fields its guard requires.
type Request struct {
	Action    Action
	ActorID   string
	ActorRole models.UserRole

	DepartmentReview *DepartmentReviewPayload
	Feasibility      *FeasibilityPayload
	Solution         *SolutionPayload
	Cost             *CostPayload
	Decision         *DecisionPayload
	Implementation   *ImplementationPayload
	Report           *ReportPayload
	Evaluation       *EvaluationPayload
	Reward           *RewardPayload
}

// DepartmentReviewPayload is carried by the departmentReview action.
type DepartmentReviewPayload struct {
	Feedback string
}

// FeasibilityPayload carries the seven component scores submitted for
// assessment.
type FeasibilityPayload struct {
	Innovation                 int
	Safety                     int
	Environment                int
	EmployeeSatisfaction       int
	TechnologicalCompatibility int
	ImplementationEase         int
	CostBenefit                int
	Feedback                   string
}

// Components converts the payload to evaluator input.
func (p *FeasibilityPayload) Components() ComponentScores {
	return ComponentScores{
		Innovation:                 p.Innovation,
		Safety:                     p.Safety,
		Environment:                p.Environment,
		EmployeeSatisfaction:       p.EmployeeSatisfaction,
		TechnologicalCompatibility: p.TechnologicalCompatibility,
		ImplementationEase:         p.ImplementationEase,
		CostBenefit:                p.CostBenefit,
	}
}

// SolutionPayload is carried by the proposeSolution action.
type SolutionPayload struct {
	Description string
}

// CostPayload is carried by the evaluateCost action.
type CostPayload struct {
	Score   int
	Details string
}

// DecisionPayload is carried by the executive decide action.
type DecisionPayload struct {
	Decision string
	Feedback string
}

// ImplementationPayload is carried by completeImplementation.
type ImplementationPayload struct {
	Notes string
}

// ReportPayload is carried by the report action.
type ReportPayload struct {
	Details string
}

// EvaluationPayload is carried by the evaluate action.
type EvaluationPayload struct {
	Score int
	Notes string
}

// RewardPayload is carried by the reward action. UserID defaults to the
// suggestion submitter when empty.
type RewardPayload struct {
	UserID string
	Amount int
	Type   models.RewardType
}
