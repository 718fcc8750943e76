package models

import "time"

// SuggestionType distinguishes comprehensive Kaizen submissions from
// lightweight fast-track Kıvılcım ones.
type SuggestionType string

const (
	SuggestionTypeKaizen   SuggestionType = "kaizen"
	SuggestionTypeKivilcim SuggestionType = "kivilcim"
)

// SuggestionStatus enumerates the detailed workflow states. The status
// column is the single source of truth for the current stage; stage
// field presence is a derived invariant, never a dispatch key.
type SuggestionStatus string

const (
	StatusNew                   SuggestionStatus = "new"
	StatusDepartmentReview      SuggestionStatus = "department_review"
	StatusFeasibilityAssessment SuggestionStatus = "feasibility_assessment"
	StatusFeasibilityRejected   SuggestionStatus = "feasibility_rejected"
	StatusSolutionIdentified    SuggestionStatus = "solution_identified"
	StatusCostAssessment        SuggestionStatus = "cost_assessment"
	StatusCostRejected          SuggestionStatus = "cost_rejected"
	StatusExecutiveReview       SuggestionStatus = "executive_review"
	StatusApproved              SuggestionStatus = "approved"
	StatusRejected              SuggestionStatus = "rejected"
	StatusInProgress            SuggestionStatus = "in_progress"
	StatusCompleted             SuggestionStatus = "completed"
	StatusReported              SuggestionStatus = "reported"
	StatusEvaluated             SuggestionStatus = "evaluated"
	StatusRewarded              SuggestionStatus = "rewarded"
)

// AllStatuses lists every known status, useful for query validation.
var AllStatuses = []SuggestionStatus{
	StatusNew, StatusDepartmentReview, StatusFeasibilityAssessment,
	StatusFeasibilityRejected, StatusSolutionIdentified, StatusCostAssessment,
	StatusCostRejected, StatusExecutiveReview, StatusApproved, StatusRejected,
	StatusInProgress, StatusCompleted, StatusReported, StatusEvaluated,
	StatusRewarded,
}

// IsTerminal reports whether no further transitions are possible.
func (s SuggestionStatus) IsTerminal() bool {
	switch s {
	case StatusFeasibilityRejected, StatusCostRejected, StatusRejected, StatusRewarded:
		return true
	}
	return false
}

// Valid reports whether the status is a known enum value.
func (s SuggestionStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Suggestion is the workflow aggregate. Stage fields are nullable until
// their stage is reached and immutable once written; a resubmission
// after rejection creates a new suggestion referencing RevisionOf.
type Suggestion struct {
	ID          string           `db:"id" json:"id"`
	Title       string           `db:"title" json:"title"`
	Description string           `db:"description" json:"description"`
	Category    string           `db:"category" json:"category"`
	Benefits    string           `db:"benefits" json:"benefits"`
	Status      SuggestionStatus `db:"status" json:"status"`
	Type        SuggestionType   `db:"suggestion_type" json:"suggestionType"`
	RevisionOf  *string          `db:"revision_of" json:"revisionOf,omitempty"`
	SubmittedBy string           `db:"submitted_by" json:"submittedBy"`
	SubmittedAt time.Time        `db:"submitted_at" json:"submittedAt"`
	Version     int              `db:"version" json:"version"`

	// Department stage.
	DepartmentManagerID *string    `db:"department_manager_id" json:"departmentManagerId,omitempty"`
	DepartmentReviewAt  *time.Time `db:"department_review_at" json:"departmentReviewAt,omitempty"`
	DepartmentFeedback  *string    `db:"department_feedback" json:"departmentFeedback,omitempty"`

	// Feasibility stage.
	FeasibilityScore                *float64   `db:"feasibility_score" json:"feasibilityScore,omitempty"`
	InnovationScore                 *int       `db:"innovation_score" json:"innovationScore,omitempty"`
	SafetyScore                     *int       `db:"safety_score" json:"safetyScore,omitempty"`
	EnvironmentScore                *int       `db:"environment_score" json:"environmentScore,omitempty"`
	EmployeeSatisfactionScore       *int       `db:"employee_satisfaction_score" json:"employeeSatisfactionScore,omitempty"`
	TechnologicalCompatibilityScore *int       `db:"technological_compatibility_score" json:"technologicalCompatibilityScore,omitempty"`
	ImplementationEaseScore         *int       `db:"implementation_ease_score" json:"implementationEaseScore,omitempty"`
	CostBenefitScore                *int       `db:"cost_benefit_score" json:"costBenefitScore,omitempty"`
	FeasibilityFeedback             *string    `db:"feasibility_feedback" json:"feasibilityFeedback,omitempty"`
	FeasibilityReviewedBy           *string    `db:"feasibility_reviewed_by" json:"feasibilityReviewedBy,omitempty"`
	FeasibilityReviewedAt           *time.Time `db:"feasibility_reviewed_at" json:"feasibilityReviewedAt,omitempty"`

	// Solution stage.
	SolutionDescription *string    `db:"solution_description" json:"solutionDescription,omitempty"`
	SolutionProposedBy  *string    `db:"solution_proposed_by" json:"solutionProposedBy,omitempty"`
	SolutionProposedAt  *time.Time `db:"solution_proposed_at" json:"solutionProposedAt,omitempty"`

	// Cost stage.
	CostScore      *int       `db:"cost_score" json:"costScore,omitempty"`
	CostDetails    *string    `db:"cost_details" json:"costDetails,omitempty"`
	CostReviewedBy *string    `db:"cost_reviewed_by" json:"costReviewedBy,omitempty"`
	CostReviewedAt *time.Time `db:"cost_reviewed_at" json:"costReviewedAt,omitempty"`

	// Executive stage.
	ExecutiveReviewedBy *string    `db:"executive_reviewed_by" json:"executiveReviewedBy,omitempty"`
	ExecutiveReviewedAt *time.Time `db:"executive_reviewed_at" json:"executiveReviewedAt,omitempty"`
	ExecutiveFeedback   *string    `db:"executive_feedback" json:"executiveFeedback,omitempty"`

	// Implementation stage.
	ImplementationStartedAt   *time.Time `db:"implementation_started_at" json:"implementationStartedAt,omitempty"`
	ImplementationCompletedAt *time.Time `db:"implementation_completed_at" json:"implementationCompletedAt,omitempty"`
	ImplementationNotes       *string    `db:"implementation_notes" json:"implementationNotes,omitempty"`

	// Reporting stage.
	ReportedAt    *time.Time `db:"reported_at" json:"reportedAt,omitempty"`
	ReportDetails *string    `db:"report_details" json:"reportDetails,omitempty"`
	ReportedBy    *string    `db:"reported_by" json:"reportedBy,omitempty"`

	// Evaluation stage.
	EvaluationScore *int       `db:"evaluation_score" json:"evaluationScore,omitempty"`
	EvaluationNotes *string    `db:"evaluation_notes" json:"evaluationNotes,omitempty"`
	EvaluatedBy     *string    `db:"evaluated_by" json:"evaluatedBy,omitempty"`
	EvaluatedAt     *time.Time `db:"evaluated_at" json:"evaluatedAt,omitempty"`
}

// Clone returns a deep-enough copy for snapshot building: value fields
// are copied and pointer fields are re-pointed to fresh values.
func (s *Suggestion) Clone() *Suggestion {
	if s == nil {
		return nil
	}
	clone := *s
	clone.RevisionOf = cloneString(s.RevisionOf)
	clone.DepartmentManagerID = cloneString(s.DepartmentManagerID)
	clone.DepartmentReviewAt = cloneTime(s.DepartmentReviewAt)
	clone.DepartmentFeedback = cloneString(s.DepartmentFeedback)
	clone.FeasibilityScore = cloneFloat(s.FeasibilityScore)
	clone.InnovationScore = cloneInt(s.InnovationScore)
	clone.SafetyScore = cloneInt(s.SafetyScore)
	clone.EnvironmentScore = cloneInt(s.EnvironmentScore)
	clone.EmployeeSatisfactionScore = cloneInt(s.EmployeeSatisfactionScore)
	clone.TechnologicalCompatibilityScore = cloneInt(s.TechnologicalCompatibilityScore)
	clone.ImplementationEaseScore = cloneInt(s.ImplementationEaseScore)
	clone.CostBenefitScore = cloneInt(s.CostBenefitScore)
	clone.FeasibilityFeedback = cloneString(s.FeasibilityFeedback)
	clone.FeasibilityReviewedBy = cloneString(s.FeasibilityReviewedBy)
	clone.FeasibilityReviewedAt = cloneTime(s.FeasibilityReviewedAt)
	clone.SolutionDescription = cloneString(s.SolutionDescription)
	clone.SolutionProposedBy = cloneString(s.SolutionProposedBy)
	clone.SolutionProposedAt = cloneTime(s.SolutionProposedAt)
	clone.CostScore = cloneInt(s.CostScore)
	clone.CostDetails = cloneString(s.CostDetails)
	clone.CostReviewedBy = cloneString(s.CostReviewedBy)
	clone.CostReviewedAt = cloneTime(s.CostReviewedAt)
	clone.ExecutiveReviewedBy = cloneString(s.ExecutiveReviewedBy)
	clone.ExecutiveReviewedAt = cloneTime(s.ExecutiveReviewedAt)
	clone.ExecutiveFeedback = cloneString(s.ExecutiveFeedback)
	clone.ImplementationStartedAt = cloneTime(s.ImplementationStartedAt)
	clone.ImplementationCompletedAt = cloneTime(s.ImplementationCompletedAt)
	clone.ImplementationNotes = cloneString(s.ImplementationNotes)
	clone.ReportedAt = cloneTime(s.ReportedAt)
	clone.ReportDetails = cloneString(s.ReportDetails)
	clone.ReportedBy = cloneString(s.ReportedBy)
	clone.EvaluationScore = cloneInt(s.EvaluationScore)
	clone.EvaluationNotes = cloneString(s.EvaluationNotes)
	clone.EvaluatedBy = cloneString(s.EvaluatedBy)
	clone.EvaluatedAt = cloneTime(s.EvaluatedAt)
	return &clone
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// SuggestionFilter constrains listing queries.
type SuggestionFilter struct {
	Status      []SuggestionStatus
	Type        SuggestionType
	SubmittedBy string
	Limit       int
	Offset      int
}
