package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ams-api/internal/models"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
	"github.com/noah-isme/ams-api/pkg/response"
)

type applicationService interface {
	Apply(ctx context.Context, studentEmail string, openingID int64) (*models.ApplyResult, error)
	Cancel(ctx context.Context, studentEmail string, openingID int64) error
	State(ctx context.Context, studentEmail string, openingID int64) (models.ApplicationState, error)
	ListForStudent(ctx context.Context, studentEmail string) ([]models.StudentApplication, error)
}

// ApplicationHandler exposes the apply / cancel lifecycle to students.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(svc applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

func (h *ApplicationHandler) target(c *gin.Context) (string, int64, bool) {
	claims, err := requireClaims(c)
	if err != nil {
		response.Error(c, err)
		return "", 0, false
	}
	id, err := openingIDParam(c)
	if err != nil {
		response.Error(c, err)
		return "", 0, false
	}
	return claims.Email, id, true
}

// Apply godoc
// @Summary Apply to an opening
// @Description 201 when created, 409 when already applied, 422 once the deadline passed
// @Tags Applications
// @Produce json
// @Param id path int true "Opening ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /openings/{id}/application [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	email, id, ok := h.target(c)
	if !ok {
		return
	}
	result, err := h.service.Apply(c.Request.Context(), email, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Created {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusConflict, response.Envelope{
			Data:  result,
			Error: appErrors.Clone(appErrors.ErrDuplicateApplication, ""),
		})
		return
	}
	response.Created(c, result)
}

// Cancel godoc
// @Summary Withdraw an application
// @Description Always allowed, also after the deadline; withdrawing twice is not an error
// @Tags Applications
// @Param id path int true "Opening ID"
// @Success 204
// @Router /openings/{id}/application [delete]
func (h *ApplicationHandler) Cancel(c *gin.Context) {
	email, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), email, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// State godoc
// @Summary Application state for an opening
// @Tags Applications
// @Produce json
// @Param id path int true "Opening ID"
// @Success 200 {object} response.Envelope
// @Router /openings/{id}/application [get]
func (h *ApplicationHandler) State(c *gin.Context) {
	email, id, ok := h.target(c)
	if !ok {
		return
	}
	state, err := h.service.State(c.Request.Context(), email, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.ApplicationStateResponse{OpeningID: id, State: state}, nil)
}

// Mine godoc
// @Summary Applications of the current student
// @Tags Applications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) Mine(c *gin.Context) {
	claims, err := requireClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.ListForStudent(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
