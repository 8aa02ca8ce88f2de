package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ams-api/internal/models"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
	"github.com/noah-isme/ams-api/pkg/response"
)

type openingService interface {
	List(ctx context.Context, filter models.OpeningFilter, actor *models.JWTClaims) ([]models.Opening, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Opening, error)
	Create(ctx context.Context, req models.OpeningRequest, actor *models.JWTClaims) (*models.Opening, error)
	Update(ctx context.Context, id int64, req models.OpeningRequest, actor *models.JWTClaims) (*models.Opening, error)
	Delete(ctx context.Context, id int64, actor *models.JWTClaims) error
}

// OpeningHandler serves company openings.
type OpeningHandler struct {
	service openingService
}

// NewOpeningHandler constructs the handler.
func NewOpeningHandler(svc openingService) *OpeningHandler {
	return &OpeningHandler{service: svc}
}

// List godoc
// @Summary List openings
// @Description Companies only see their own openings
// @Tags Openings
// @Produce json
// @Param specialization query string false "Specialization"
// @Param location query string false "Location"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /openings [get]
func (h *OpeningHandler) List(c *gin.Context) {
	filter := models.OpeningFilter{
		Specialization: models.Specialization(strings.TrimSpace(c.Query("specialization"))),
		Location:       strings.TrimSpace(c.Query("location")),
		Page:           intQuery(c, "page", 1),
		PageSize:       intQuery(c, "page_size", 20),
	}
	openings, pagination, err := h.service.List(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, openings, pagination)
}

// Get godoc
// @Summary Get opening
// @Tags Openings
// @Produce json
// @Param id path int true "Opening ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /openings/{id} [get]
func (h *OpeningHandler) Get(c *gin.Context) {
	id, err := openingIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	opening, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opening, nil)
}

// Create godoc
// @Summary Publish an opening
// @Description Deadline defaults to seven days from now when omitted
// @Tags Openings
// @Accept json
// @Produce json
// @Param payload body models.OpeningRequest true "Opening"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /openings [post]
func (h *OpeningHandler) Create(c *gin.Context) {
	claims, err := requireClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.OpeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid opening payload"))
		return
	}
	opening, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, opening)
}

// Update godoc
// @Summary Replace an opening
// @Tags Openings
// @Accept json
// @Produce json
// @Param id path int true "Opening ID"
// @Param payload body models.OpeningRequest true "Opening"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /openings/{id} [put]
func (h *OpeningHandler) Update(c *gin.Context) {
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
	var req models.OpeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid opening payload"))
		return
	}
	opening, err := h.service.Update(c.Request.Context(), id, req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opening, nil)
}

// Delete godoc
// @Summary Delete an opening and its applications
// @Tags Openings
// @Param id path int true "Opening ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /openings/{id} [delete]
func (h *OpeningHandler) Delete(c *gin.Context) {
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
	if err := h.service.Delete(c.Request.Context(), id, claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
