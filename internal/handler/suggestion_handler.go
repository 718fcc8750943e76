package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
	"github.com/lavideas/kaizen-api/pkg/response"
)

type suggestionService interface {
	Create(ctx context.Context, req dto.CreateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Suggestion, error)
	List(ctx context.Context, query dto.SuggestionQuery, actor *models.JWTClaims) ([]models.Suggestion, error)
	Transition(ctx context.Context, id string, req dto.TransitionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
	SubmitAndEvaluateFeasibility(ctx context.Context, id string, payload dto.FeasibilityPayload, actor *models.JWTClaims) (*models.Suggestion, error)
	Update(ctx context.Context, id string, req dto.UpdateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
}

// SuggestionHandler exposes REST endpoints for the suggestion workflow.
type SuggestionHandler struct {
	service suggestionService
}

// NewSuggestionHandler constructs the handler.
func NewSuggestionHandler(service suggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// Create godoc
// @Summary Submit a new suggestion
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSuggestionRequest true "Suggestion payload"
// @Success 201 {object} response.Envelope
// @Router /suggestions [post]
func (h *SuggestionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid suggestion payload"))
		return
	}
	suggestion, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, suggestion, nil)
}

// List godoc
// @Summary List suggestions
// @Tags Suggestions
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param type query string false "Suggestion type"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /suggestions [get]
func (h *SuggestionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := parseSuggestionQuery(c)
	suggestions, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// ListByStatus godoc
// @Summary List suggestions in a given status
// @Tags Suggestions
// @Produce json
// @Param status path string true "Status"
// @Success 200 {object} response.Envelope
// @Router /suggestions/status/{status} [get]
func (h *SuggestionHandler) ListByStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := parseSuggestionQuery(c)
	query.Status = []models.SuggestionStatus{models.SuggestionStatus(c.Param("status"))}
	suggestions, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// ListByUser godoc
// @Summary List suggestions submitted by a user
// @Tags Suggestions
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /suggestions/user/{userId} [get]
func (h *SuggestionHandler) ListByUser(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := parseSuggestionQuery(c)
	query.SubmittedBy = c.Param("userId")
	suggestions, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// Get godoc
// @Summary Get suggestion detail
// @Tags Suggestions
// @Produce json
// @Param id path string true "Suggestion ID"
// @Success 200 {object} response.Envelope
// @Router /suggestions/{id} [get]
func (h *SuggestionHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	suggestion, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}

// Transition godoc
// @Summary Apply a workflow action
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param id path string true "Suggestion ID"
// @Param payload body dto.TransitionRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /suggestions/{id}/transitions [post]
func (h *SuggestionHandler) Transition(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid transition payload"))
		return
	}
	suggestion, err := h.service.Transition(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}

// SubmitFeasibility godoc
// @Summary Submit feasibility scores and evaluate routing
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param id path string true "Suggestion ID"
// @Param payload body dto.FeasibilityPayload true "Component scores"
// @Success 200 {object} response.Envelope
// @Router /suggestions/{id}/feasibility [patch]
func (h *SuggestionHandler) SubmitFeasibility(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.FeasibilityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid feasibility payload"))
		return
	}
	suggestion, err := h.service.SubmitAndEvaluateFeasibility(c.Request.Context(), c.Param("id"), payload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}

// Update godoc
// @Summary Legacy generic suggestion update
// @Description Deprecated: use the transition endpoint instead.
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param id path string true "Suggestion ID"
// @Param payload body dto.UpdateSuggestionRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /suggestions/{id} [patch]
func (h *SuggestionHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid update payload"))
		return
	}
	suggestion, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}

func parseSuggestionQuery(c *gin.Context) dto.SuggestionQuery {
	query := dto.SuggestionQuery{}
	if raw := c.Query("status"); raw != "" {
		parts := strings.Split(raw, ",")
		statuses := make([]models.SuggestionStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			statuses = append(statuses, models.SuggestionStatus(part))
		}
		query.Status = statuses
	}
	if raw := c.Query("type"); raw != "" {
		query.Type = models.SuggestionType(strings.TrimSpace(raw))
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			query.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			query.Offset = offset
		}
	}
	return query
}
