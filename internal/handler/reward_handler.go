package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lavideas/kaizen-api/internal/dto"
	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
	"github.com/lavideas/kaizen-api/pkg/response"
)

type rewardService interface {
	Grant(ctx context.Context, req dto.GrantRewardRequest, actorID string) (*models.Reward, error)
	ListBySuggestion(ctx context.Context, suggestionID string) ([]models.Reward, error)
	ListByUser(ctx context.Context, userID string) ([]models.Reward, error)
}

// RewardHandler exposes the reward ledger endpoints.
type RewardHandler struct {
	service rewardService
}

// NewRewardHandler constructs the handler.
func NewRewardHandler(service rewardService) *RewardHandler {
	return &RewardHandler{service: service}
}

// Grant godoc
// @Summary Grant a reward for a suggestion
// @Tags Rewards
// @Accept json
// @Produce json
// @Param payload body dto.GrantRewardRequest true "Reward payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rewards [post]
func (h *RewardHandler) Grant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.GrantRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reward payload"))
		return
	}
	reward, err := h.service.Grant(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, reward, nil)
}

// ListBySuggestion godoc
// @Summary List rewards for a suggestion
// @Tags Rewards
// @Produce json
// @Param suggestionId path string true "Suggestion ID"
// @Success 200 {object} response.Envelope
// @Router /rewards/suggestion/{suggestionId} [get]
func (h *RewardHandler) ListBySuggestion(c *gin.Context) {
	rewards, err := h.service.ListBySuggestion(c.Request.Context(), c.Param("suggestionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rewards, nil)
}

// ListByUser godoc
// @Summary List rewards granted to a user
// @Tags Rewards
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /rewards/user/{userId} [get]
func (h *RewardHandler) ListByUser(c *gin.Context) {
	rewards, err := h.service.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rewards, nil)
}
