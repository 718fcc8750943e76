package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

const suggestionColumns = `id, title, description, category, benefits, status, suggestion_type, revision_of,
       submitted_by, submitted_at, version,
       department_manager_id, department_review_at, department_feedback,
       feasibility_score, innovation_score, safety_score, environment_score, employee_satisfaction_score,
       technological_compatibility_score, implementation_ease_score, cost_benefit_score,
       feasibility_feedback, feasibility_reviewed_by, feasibility_reviewed_at,
       solution_description, solution_proposed_by, solution_proposed_at,
       cost_score, cost_details, cost_reviewed_by, cost_reviewed_at,
       executive_reviewed_by, executive_reviewed_at, executive_feedback,
       implementation_started_at, implementation_completed_at, implementation_notes,
       reported_at, report_details, reported_by,
       evaluation_score, evaluation_notes, evaluated_by, evaluated_at`

// SuggestionRepository persists suggestion aggregates as wide rows with
// nullable per-stage columns and an optimistic concurrency version.
type SuggestionRepository struct {
	db *sqlx.DB
}

// NewSuggestionRepository constructs the repository.
func NewSuggestionRepository(db *sqlx.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// Create inserts a new suggestion row at version 1.
func (r *SuggestionRepository) Create(ctx context.Context, suggestion *models.Suggestion) error {
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}
	if suggestion.Status == "" {
		suggestion.Status = models.StatusNew
	}
	if suggestion.Type == "" {
		suggestion.Type = models.SuggestionTypeKaizen
	}
	if suggestion.SubmittedAt.IsZero() {
		suggestion.SubmittedAt = time.Now().UTC()
	}
	suggestion.Version = 1

	const query = `INSERT INTO suggestions
	(id, title, description, category, benefits, status, suggestion_type, revision_of, submitted_by, submitted_at, version)
	VALUES (:id, :title, :description, :category, :benefits, :status, :suggestion_type, :revision_of, :submitted_by, :submitted_at, :version)`
	if _, err := r.db.NamedExecContext(ctx, query, suggestion); err != nil {
		return fmt.Errorf("create suggestion: %w", err)
	}
	return nil
}

// GetByID fetches a suggestion by identifier. Returns sql.ErrNoRows
// unchanged so callers can map it to a not-found error.
func (r *SuggestionRepository) GetByID(ctx context.Context, id string) (*models.Suggestion, error) {
	query := fmt.Sprintf(`SELECT %s FROM suggestions WHERE id = $1`, suggestionColumns)
	var suggestion models.Suggestion
	if err := r.db.GetContext(ctx, &suggestion, query, id); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// List returns suggestions matching the filter, newest first.
func (r *SuggestionRepository) List(ctx context.Context, filter models.SuggestionFilter) ([]models.Suggestion, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM suggestions", suggestionColumns))

	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("suggestion_type = $%d", len(args)))
	}
	if filter.SubmittedBy != "" {
		args = append(args, filter.SubmittedBy)
		conditions = append(conditions, fmt.Sprintf("submitted_by = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY submitted_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var suggestions []models.Suggestion
	if err := r.db.SelectContext(ctx, &suggestions, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return suggestions, nil
}

// Store persists an updated snapshot using compare-and-swap on the
// version column. The snapshot's Version field must hold the version
// the caller loaded; zero rows affected means a concurrent writer won.
func (r *SuggestionRepository) Store(ctx context.Context, suggestion *models.Suggestion, expectedVersion int) error {
	const query = `UPDATE suggestions SET
	status = :status,
	department_manager_id = :department_manager_id,
	department_review_at = :department_review_at,
	department_feedback = :department_feedback,
	feasibility_score = :feasibility_score,
	innovation_score = :innovation_score,
	safety_score = :safety_score,
	environment_score = :environment_score,
	employee_satisfaction_score = :employee_satisfaction_score,
	technological_compatibility_score = :technological_compatibility_score,
	implementation_ease_score = :implementation_ease_score,
	cost_benefit_score = :cost_benefit_score,
	feasibility_feedback = :feasibility_feedback,
	feasibility_reviewed_by = :feasibility_reviewed_by,
	feasibility_reviewed_at = :feasibility_reviewed_at,
	solution_description = :solution_description,
	solution_proposed_by = :solution_proposed_by,
	solution_proposed_at = :solution_proposed_at,
	cost_score = :cost_score,
	cost_details = :cost_details,
	cost_reviewed_by = :cost_reviewed_by,
	cost_reviewed_at = :cost_reviewed_at,
	executive_reviewed_by = :executive_reviewed_by,
	executive_reviewed_at = :executive_reviewed_at,
	executive_feedback = :executive_feedback,
	implementation_started_at = :implementation_started_at,
	implementation_completed_at = :implementation_completed_at,
	implementation_notes = :implementation_notes,
	reported_at = :reported_at,
	report_details = :report_details,
	reported_by = :reported_by,
	evaluation_score = :evaluation_score,
	evaluation_notes = :evaluation_notes,
	evaluated_by = :evaluated_by,
	evaluated_at = :evaluated_at,
	version = :expected_version + 1
	WHERE id = :id AND version = :expected_version`

	params := map[string]interface{}{
		"id":                                suggestion.ID,
		"status":                            suggestion.Status,
		"department_manager_id":             suggestion.DepartmentManagerID,
		"department_review_at":              suggestion.DepartmentReviewAt,
		"department_feedback":               suggestion.DepartmentFeedback,
		"feasibility_score":                 suggestion.FeasibilityScore,
		"innovation_score":                  suggestion.InnovationScore,
		"safety_score":                      suggestion.SafetyScore,
		"environment_score":                 suggestion.EnvironmentScore,
		"employee_satisfaction_score":       suggestion.EmployeeSatisfactionScore,
		"technological_compatibility_score": suggestion.TechnologicalCompatibilityScore,
		"implementation_ease_score":         suggestion.ImplementationEaseScore,
		"cost_benefit_score":                suggestion.CostBenefitScore,
		"feasibility_feedback":              suggestion.FeasibilityFeedback,
		"feasibility_reviewed_by":           suggestion.FeasibilityReviewedBy,
		"feasibility_reviewed_at":           suggestion.FeasibilityReviewedAt,
		"solution_description":              suggestion.SolutionDescription,
		"solution_proposed_by":              suggestion.SolutionProposedBy,
		"solution_proposed_at":              suggestion.SolutionProposedAt,
		"cost_score":                        suggestion.CostScore,
		"cost_details":                      suggestion.CostDetails,
		"cost_reviewed_by":                  suggestion.CostReviewedBy,
		"cost_reviewed_at":                  suggestion.CostReviewedAt,
		"executive_reviewed_by":             suggestion.ExecutiveReviewedBy,
		"executive_reviewed_at":             suggestion.ExecutiveReviewedAt,
		"executive_feedback":                suggestion.ExecutiveFeedback,
		"implementation_started_at":         suggestion.ImplementationStartedAt,
		"implementation_completed_at":       suggestion.ImplementationCompletedAt,
		"implementation_notes":              suggestion.ImplementationNotes,
		"reported_at":                       suggestion.ReportedAt,
		"report_details":                    suggestion.ReportDetails,
		"reported_by":                       suggestion.ReportedBy,
		"evaluation_score":                  suggestion.EvaluationScore,
		"evaluation_notes":                  suggestion.EvaluationNotes,
		"evaluated_by":                      suggestion.EvaluatedBy,
		"evaluated_at":                      suggestion.EvaluatedAt,
		"expected_version":                  expectedVersion,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return fmt.Errorf("store suggestion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store suggestion rows affected: %w", err)
	}
	if affected == 0 {
		return appErrors.ErrConcurrentModification
	}
	suggestion.Version = expectedVersion + 1
	return nil
}

// CountByStatus returns suggestion counts grouped by status.
func (r *SuggestionRepository) CountByStatus(ctx context.Context) (map[models.SuggestionStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM suggestions GROUP BY status`
	rows := []struct {
		Status models.SuggestionStatus `db:"status"`
		Total  int                     `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count suggestions by status: %w", err)
	}
	counts := make(map[models.SuggestionStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// CountBySubmitter returns per-user suggestion totals for the
// contributor ranking.
func (r *SuggestionRepository) CountBySubmitter(ctx context.Context, userIDs []string) (map[string]int, error) {
	if len(userIDs) == 0 {
		return map[string]int{}, nil
	}
	query, args, err := sqlx.In(`SELECT submitted_by, COUNT(*) AS total FROM suggestions WHERE submitted_by IN (?) GROUP BY submitted_by`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("count suggestions by submitter: %w", err)
	}
	query = r.db.Rebind(query)
	rows := []struct {
		SubmittedBy string `db:"submitted_by"`
		Total       int    `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count suggestions by submitter: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SubmittedBy] = row.Total
	}
	return counts, nil
}
