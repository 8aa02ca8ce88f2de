package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ams-api/internal/models"
	"github.com/noah-isme/ams-api/internal/service"
	"github.com/noah-isme/ams-api/pkg/response"
)

type exportService interface {
	ExportApplicants(ctx context.Context, openingID int64, format string, actor *models.JWTClaims) (*service.ExportFile, error)
}

// ExportHandler streams applicant downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Applicants godoc
// @Summary Download ranked applicants
// @Tags Matching
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Opening ID"
// @Param format query string false "csv|pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /openings/{id}/applicants/export [get]
func (h *ExportHandler) Applicants(c *gin.Context) {
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
	file, err := h.service.ExportApplicants(c.Request.Context(), id, c.Query("format"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
