package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ams-api/internal/middleware"
	"github.com/noah-isme/ams-api/internal/models"
	"github.com/noah-isme/ams-api/pkg/response"
)

type matchingService interface {
	OpeningsForStudent(ctx context.Context, email string) ([]models.RankedOpening, bool, error)
	ApplicantsForOpening(ctx context.Context, openingID int64, actor *models.JWTClaims) (*models.Opening, []models.RankedApplicant, error)
}

// MatchingHandler serves ranked lists.
type MatchingHandler struct {
	service matchingService
}

// NewMatchingHandler constructs the handler.
func NewMatchingHandler(svc matchingService) *MatchingHandler {
	return &MatchingHandler{service: svc}
}

// Matches godoc
// @Summary Ranked openings for the current student
// @Description Openings of the student's specialization whose GPA floor the student meets, GPA-priority openings first
// @Tags Matching
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /matches [get]
func (h *MatchingHandler) Matches(c *gin.Context) {
	claims, err := requireClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ranked, cached, err := h.service.OpeningsForStudent(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, ranked, nil, middleware.ExtractMeta(c))
}

// Applicants godoc
// @Summary Ranked applicants of an opening
// @Tags Matching
// @Produce json
// @Param id path int true "Opening ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /openings/{id}/applicants [get]
func (h *MatchingHandler) Applicants(c *gin.Context) {
	claims, err := requireClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := openingIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	opening, ranked, err := h.service.ApplicantsForOpening(c.Request.Context(), id, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranked, nil, map[string]interface{}{
		"opening_id": opening.ID,
		"priority":   opening.Priority,
		"total":      len(ranked),
	})
}
