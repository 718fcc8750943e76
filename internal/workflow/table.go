package workflow

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

// PointsPolicy holds the point amounts credited by transition
// side-effects.
type PointsPolicy struct {
	Approval   int
	Completion int
}

// Transition defines one legal (status, action) edge: who may take it,
// what the payload must carry, and how the snapshot and side-effects
// are produced.
type Transition struct {
	From   models.SuggestionStatus
	Action Action
	Roles  []models.UserRole

	// Guard validates the request payload against the current
	// suggestion. It must not mutate anything.
	Guard func(s *models.Suggestion, req *Request) error

	// Apply mutates the provided snapshot clone, returning the
	// destination status and ordered side-effect descriptors.
	Apply func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error)
}

// Allows reports whether the role may take this transition.
func (t *Transition) Allows(role models.UserRole) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type transitionKey struct {
	From   models.SuggestionStatus
	Action Action
}

// Table is the static transition table. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	transitions map[transitionKey]*Transition
}

// Lookup returns the transition for (status, action), if defined.
func (t *Table) Lookup(status models.SuggestionStatus, action Action) (*Transition, bool) {
	tr, ok := t.transitions[transitionKey{From: status, Action: action}]
	return tr, ok
}

var reviewerRoles = []models.UserRole{models.RoleManager, models.RoleExecutive}
var executiveOnly = []models.UserRole{models.RoleExecutive}

// NewTable builds the detailed suggestion state machine. The evaluator
// drives the scoring branches; the points policy sizes point credits.
func NewTable(ev *ScoreEvaluator, points PointsPolicy) *Table {
	table := &Table{transitions: make(map[transitionKey]*Transition)}

	add := func(tr *Transition) {
		table.transitions[transitionKey{From: tr.From, Action: tr.Action}] = tr
	}

	add(&Transition{
		From:   models.StatusNew,
		Action: ActionDepartmentReview,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			s.DepartmentManagerID = &req.ActorID
			s.DepartmentReviewAt = &now
			if req.DepartmentReview != nil && req.DepartmentReview.Feedback != "" {
				feedback := req.DepartmentReview.Feedback
				s.DepartmentFeedback = &feedback
			}
			effects := []Effect{
				notifyEffect(EventDepartmentReviewed, s.ID, RecipientFeasibilityReviewers),
			}
			return models.StatusDepartmentReview, effects, nil
		},
	})

	add(&Transition{
		From:   models.StatusDepartmentReview,
		Action: ActionSubmitFeasibility,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			if req.Feasibility == nil {
				return validationError("feasibility scores are required")
			}
			return validateComponentScores(req.Feasibility)
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			p := req.Feasibility
			s.InnovationScore = intPtr(p.Innovation)
			s.SafetyScore = intPtr(p.Safety)
			s.EnvironmentScore = intPtr(p.Environment)
			s.EmployeeSatisfactionScore = intPtr(p.EmployeeSatisfaction)
			s.TechnologicalCompatibilityScore = intPtr(p.TechnologicalCompatibility)
			s.ImplementationEaseScore = intPtr(p.ImplementationEase)
			s.CostBenefitScore = intPtr(p.CostBenefit)
			if p.Feedback != "" {
				feedback := p.Feedback
				s.FeasibilityFeedback = &feedback
			}
			return models.StatusFeasibilityAssessment, nil, nil
		},
	})

	add(&Transition{
		From:   models.StatusFeasibilityAssessment,
		Action: ActionEvaluateFeasibility,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			if !hasComponentScores(s) {
				return validationError("component scores have not been submitted")
			}
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			score := ev.FeasibilityScore(storedComponents(s))
			// Persisted at one decimal place; routing compares what is
			// persisted so the stored value and the outcome agree.
			persisted := round(score, 1)
			s.FeasibilityScore = &persisted
			s.FeasibilityReviewedBy = &req.ActorID
			s.FeasibilityReviewedAt = &now

			effects := []Effect{
				notifyEffect(EventFeasibilityOutcome, s.ID, RecipientSubmitter),
			}
			if ev.FeasibilityPasses(persisted) {
				return models.StatusSolutionIdentified, effects, nil
			}
			return models.StatusFeasibilityRejected, effects, nil
		},
	})

	add(&Transition{
		From:   models.StatusSolutionIdentified,
		Action: ActionProposeSolution,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			if req.Solution == nil || strings.TrimSpace(req.Solution.Description) == "" {
				return validationError("solutionDescription must not be empty")
			}
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			description := req.Solution.Description
			s.SolutionDescription = &description
			s.SolutionProposedBy = &req.ActorID
			s.SolutionProposedAt = &now
			effects := []Effect{
				notifyEffect(EventSolutionProposed, s.ID, RecipientCostReviewers),
			}
			return models.StatusCostAssessment, effects, nil
		},
	})

	add(&Transition{
		From:   models.StatusCostAssessment,
		Action: ActionEvaluateCost,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			if req.Cost == nil {
				return validationError("cost payload is required")
			}
			if req.Cost.Score < 1 || req.Cost.Score > 5 {
				return validationError("costScore must be within [1,5]")
			}
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			score := req.Cost.Score
			s.CostScore = &score
			if req.Cost.Details != "" {
				details := req.Cost.Details
				s.CostDetails = &details
			}
			s.CostReviewedBy = &req.ActorID
			s.CostReviewedAt = &now

			// Low scores escalate, passing scores advance; both land in
			// executive review. Only a score in the gap between the two
			// inclusive boundaries is rejected outright.
			escalated := ev.NeedsExecutiveApproval(score)
			if escalated || ev.CostPasses(score) {
				var effects []Effect
				if escalated {
					effects = append(effects, notifyEffect(EventCostEscalated, s.ID, RecipientExecutives))
				}
				return models.StatusExecutiveReview, effects, nil
			}
			return models.StatusCostRejected, nil, nil
		},
	})

	add(&Transition{
		From:   models.StatusExecutiveReview,
		Action: ActionDecide,
		Roles:  executiveOnly,
		Guard: func(s *models.Suggestion, req *Request) error {
			if req.Decision == nil {
				return validationError("decision payload is required")
			}
			if req.Decision.Decision != DecisionApprove && req.Decision.Decision != DecisionReject {
				return validationError(fmt.Sprintf("decision must be %q or %q", DecisionApprove, DecisionReject))
			}
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			s.ExecutiveReviewedBy = &req.ActorID
			s.ExecutiveReviewedAt = &now
			if req.Decision.Feedback != "" {
				feedback := req.Decision.Feedback
				s.ExecutiveFeedback = &feedback
			}

			effects := []Effect{
				notifyEffect(EventExecutiveDecision, s.ID, RecipientSubmitter, RecipientManagers),
			}
			if req.Decision.Decision == DecisionApprove {
				if points.Approval > 0 {
					effects = append(effects, pointsEffect(s.SubmittedBy, points.Approval, "suggestion approved"))
				}
				return models.StatusApproved, effects, nil
			}
			return models.StatusRejected, effects, nil
		},
	})

	add(&Transition{
		From:   models.StatusApproved,
		Action: ActionStartImplementation,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			s.ImplementationStartedAt = &now
			return models.StatusInProgress, nil, nil
		},
	})

	add(&Transition{
		From:   models.StatusInProgress,
		Action: ActionCompleteImplementation,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			s.ImplementationCompletedAt = &now
			if req.Implementation != nil && req.Implementation.Notes != "" {
				notes := req.Implementation.Notes
				s.ImplementationNotes = &notes
			}
			var effects []Effect
			if points.Completion > 0 {
				effects = append(effects, pointsEffect(s.SubmittedBy, points.Completion, "implementation completed"))
			}
			return models.StatusCompleted, effects, nil
		},
	})

	add(&Transition{
		From:   models.StatusCompleted,
		Action: ActionReport,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			if req.Report == nil || strings.TrimSpace(req.Report.Details) == "" {
				return validationError("reportDetails must not be empty")
			}
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			details := req.Report.Details
			s.ReportDetails = &details
			s.ReportedBy = &req.ActorID
			s.ReportedAt = &now
			return models.StatusReported, nil, nil
		},
	})

	add(&Transition{
		From:   models.StatusReported,
		Action: ActionEvaluate,
		Roles:  reviewerRoles,
		Guard: func(s *models.Suggestion, req *Request) error {
			if req.Evaluation == nil {
				return validationError("evaluation payload is required")
			}
			if req.Evaluation.Score < 1 || req.Evaluation.Score > 5 {
				return validationError("evaluationScore must be within [1,5]")
			}
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			score := req.Evaluation.Score
			s.EvaluationScore = &score
			if req.Evaluation.Notes != "" {
				notes := req.Evaluation.Notes
				s.EvaluationNotes = &notes
			}
			s.EvaluatedBy = &req.ActorID
			s.EvaluatedAt = &now
			return models.StatusEvaluated, nil, nil
		},
	})

	add(&Transition{
		From:   models.StatusEvaluated,
		Action: ActionReward,
		Roles:  executiveOnly,
		Guard: func(s *models.Suggestion, req *Request) error {
			if req.Reward == nil {
				return validationError("reward payload is required")
			}
			if req.Reward.Amount <= 0 {
				return validationError("reward amount must be positive")
			}
			if !req.Reward.Type.Valid() {
				return validationError("reward type must be money, points or gift")
			}
			return nil
		},
		Apply: func(s *models.Suggestion, req *Request, now time.Time) (models.SuggestionStatus, []Effect, error) {
			beneficiary := req.Reward.UserID
			if beneficiary == "" {
				beneficiary = s.SubmittedBy
			}
			effects := []Effect{
				rewardEffect(RewardEffect{
					SuggestionID: s.ID,
					UserID:       beneficiary,
					Amount:       req.Reward.Amount,
					Type:         req.Reward.Type,
					AssignedBy:   req.ActorID,
				}),
				notifyEffect(EventRewarded, s.ID, RecipientSubmitter),
			}
			return models.StatusRewarded, effects, nil
		},
	})

	return table
}

func validationError(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func validateComponentScores(p *FeasibilityPayload) error {
	components := map[string]int{
		"innovationScore":                 p.Innovation,
		"safetyScore":                     p.Safety,
		"environmentScore":                p.Environment,
		"employeeSatisfactionScore":       p.EmployeeSatisfaction,
		"technologicalCompatibilityScore": p.TechnologicalCompatibility,
		"implementationEaseScore":         p.ImplementationEase,
		"costBenefitScore":                p.CostBenefit,
	}
	var invalid []string
	for name, score := range components {
		if score < 1 || score > 5 {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return validationError(fmt.Sprintf("component scores out of range [1,5]: %s", strings.Join(invalid, ", ")))
	}
	return nil
}

func hasComponentScores(s *models.Suggestion) bool {
	return s.InnovationScore != nil &&
		s.SafetyScore != nil &&
		s.EnvironmentScore != nil &&
		s.EmployeeSatisfactionScore != nil &&
		s.TechnologicalCompatibilityScore != nil &&
		s.ImplementationEaseScore != nil &&
		s.CostBenefitScore != nil
}

func storedComponents(s *models.Suggestion) ComponentScores {
	return ComponentScores{
		Innovation:                 *s.InnovationScore,
		Safety:                     *s.SafetyScore,
		Environment:                *s.EnvironmentScore,
		EmployeeSatisfaction:       *s.EmployeeSatisfactionScore,
		TechnologicalCompatibility: *s.TechnologicalCompatibilityScore,
		ImplementationEase:         *s.ImplementationEaseScore,
		CostBenefit:                *s.CostBenefitScore,
	}
}

func intPtr(v int) *int {
	return &v
}
