package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ams-api/internal/models"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
	"github.com/noah-isme/ams-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Get(ctx context.Context, email string) (*models.Student, error)
	Save(ctx context.Context, email string, req models.StudentProfileRequest) (*models.Student, bool, error)
}

// StudentHandler serves student profiles.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// Me godoc
// @Summary Current student profile
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/me [get]
func (h *StudentHandler) Me(c *gin.Context) {
	claims, err := requireClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.service.Get(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// SaveMe godoc
// @Summary Create or replace the current student profile
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.StudentProfileRequest true "Full profile"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/me [put]
func (h *StudentHandler) SaveMe(c *gin.Context) {
	claims, err := requireClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.StudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student profile"))
		return
	}

	student, created, err := h.service.Save(c.Request.Context(), claims.Email, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, student)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// List godoc
// @Summary List student profiles
// @Tags Students
// @Produce json
// @Param q query string false "Search by name, email or student id"
// @Param specialization query string false "Specialization"
// @Param min_gpa query number false "Minimum GPA"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param sort query string false "name|gpa|created_at"
// @Param order query string false "asc|desc"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:         strings.TrimSpace(c.Query("q")),
		Specialization: models.Specialization(strings.TrimSpace(c.Query("specialization"))),
		Page:           intQuery(c, "page", 1),
		PageSize:       intQuery(c, "page_size", 20),
		SortBy:         c.Query("sort"),
		SortOrder:      c.Query("order"),
	}
	if raw := strings.TrimSpace(c.Query("min_gpa")); raw != "" {
		gpa, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "min_gpa must be a number"))
			return
		}
		filter.MinGPA = &gpa
	}

	students, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Specializations godoc
// @Summary Supported specializations
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /specializations [get]
func Specializations(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.Specializations(), nil)
}
