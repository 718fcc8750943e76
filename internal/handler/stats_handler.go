package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/models"
	"github.com/lavideas/kaizen-api/internal/service"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
	"github.com/lavideas/kaizen-api/pkg/response"
)

type statsService interface {
	SuggestionStats(ctx context.Context) (*dto.SuggestionStats, error)
	TopContributors(ctx context.Context, limit int) ([]dto.TopContributor, error)
}

type exportService interface {
	SuggestionReport(ctx context.Context, format string, actor *models.JWTClaims) (*service.ExportFile, error)
}

// StatsHandler serves the read-side statistics endpoints.
type StatsHandler struct {
	stats  statsService
	export exportService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(stats statsService, export exportService) *StatsHandler {
	return &StatsHandler{stats: stats, export: export}
}

// Suggestions godoc
// @Summary Aggregated suggestion counters
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/suggestions [get]
func (h *StatsHandler) Suggestions(c *gin.Context) {
	stats, err := h.stats.SuggestionStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// TopContributors godoc
// @Summary Users ranked by accumulated points
// @Tags Statistics
// @Produce json
// @Param limit query int false "Number of contributors"
// @Success 200 {object} response.Envelope
// @Router /stats/top-contributors [get]
func (h *StatsHandler) TopContributors(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	contributors, err := h.stats.TopContributors(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contributors, nil)
}

// Export godoc
// @Summary Download the implementation report
// @Tags Statistics
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /stats/export [get]
func (h *StatsHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	file, err := h.export.SuggestionReport(c.Request.Context(), format, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
