package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
	"github.com/lavideas/kaizen-api/pkg/export"
)

// Exporter renders a dataset into a downloadable document.
type Exporter interface {
	Render(data export.Dataset) ([]byte, error)
}

type exportSuggestionStore interface {
	List(ctx context.Context, filter models.SuggestionFilter) ([]models.Suggestion, error)
}

// ExportFile is a rendered report ready to stream to the client.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders implementation reports over suggestions that
// reached the execution phase.
type ExportService struct {
	suggestions exportSuggestionStore
	audit       auditLogger
	exporters   map[string]Exporter
	types       map[string]string
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs the service with CSV and PDF renderers.
func NewExportService(suggestions exportSuggestionStore, audit auditLogger, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		suggestions: suggestions,
		audit:       audit,
		exporters: map[string]Exporter{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter("Suggestion Implementation Report"),
		},
		types: map[string]string{
			"csv": "text/csv",
			"pdf": "application/pdf",
		},
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var reportHeaders = []string{
	"ID", "Title", "Category", "Type", "Status",
	"Submitted By", "Submitted At",
	"Feasibility Score", "Cost Score", "Evaluation Score",
}

var reportStatuses = []models.SuggestionStatus{
	models.StatusCompleted, models.StatusReported,
	models.StatusEvaluated, models.StatusRewarded,
}

// SuggestionReport renders the implementation report in the requested
// format. Unknown formats fail validation.
func (s *ExportService) SuggestionReport(ctx context.Context, format string, actor *models.JWTClaims) (*ExportFile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	suggestions, err := s.suggestions.List(ctx, models.SuggestionFilter{
		Status: reportStatuses,
		Limit:  200,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report data")
	}

	dataset := export.Dataset{Headers: reportHeaders, Rows: make([]map[string]string, 0, len(suggestions))}
	for _, suggestion := range suggestions {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":                suggestion.ID,
			"Title":             suggestion.Title,
			"Category":          suggestion.Category,
			"Type":              string(suggestion.Type),
			"Status":            string(suggestion.Status),
			"Submitted By":      suggestion.SubmittedBy,
			"Submitted At":      suggestion.SubmittedAt.Format(time.RFC3339),
			"Feasibility Score": formatFloat(suggestion.FeasibilityScore),
			"Cost Score":        formatInt(suggestion.CostScore),
			"Evaluation Score":  formatInt(suggestion.EvaluationScore),
		})
	}

	content, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	s.emitAudit(ctx, actor, format, len(dataset.Rows))
	return &ExportFile{
		Content:     content,
		ContentType: s.types[format],
		Filename:    fmt.Sprintf("suggestion-report-%s.%s", s.now().Format("2006-01-02"), format),
	}, nil
}

func (s *ExportService) emitAudit(ctx context.Context, actor *models.JWTClaims, format string, rows int) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{"format": format, "rows": rows})
	log := &models.AuditLog{
		UserID:    &actor.UserID,
		Action:    models.AuditActionStatsExport,
		Resource:  "stats",
		NewValues: payload,
		IPAddress: "system",
		UserAgent: "export-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
