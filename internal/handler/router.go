package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ams-api/internal/middleware"
	"github.com/noah-isme/ams-api/internal/models"
)

// Handlers groups every HTTP handler mounted by the API.
type Handlers struct {
	Auth         *AuthHandler
	Students     *StudentHandler
	Openings     *OpeningHandler
	Matching     *MatchingHandler
	Applications *ApplicationHandler
	Exports      *ExportHandler
	Metrics      *MetricsHandler
}

// RegisterRoutes mounts the public probes at the root and the API under prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, tokens middleware.TokenValidator) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/specializations", Specializations)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))

	student := middleware.RequireRoles(models.RoleStudent)
	company := middleware.RequireRoles(models.RoleCompany, models.RoleAdmin)
	admin := middleware.RequireRoles(models.RoleAdmin)

	secured.GET("/students/me", student, h.Students.Me)
	secured.PUT("/students/me", student, h.Students.SaveMe)
	secured.GET("/students", admin, h.Students.List)

	secured.GET("/openings", h.Openings.List)
	secured.GET("/openings/:id", h.Openings.Get)
	secured.POST("/openings", company, h.Openings.Create)
	secured.PUT("/openings/:id", company, h.Openings.Update)
	secured.DELETE("/openings/:id", company, h.Openings.Delete)

	secured.GET("/matches", student, h.Matching.Matches)
	secured.GET("/openings/:id/applicants", company, h.Matching.Applicants)
	secured.GET("/openings/:id/applicants/export", company, h.Exports.Applicants)

	secured.POST("/openings/:id/application", student, h.Applications.Apply)
	secured.DELETE("/openings/:id/application", student, h.Applications.Cancel)
	secured.GET("/openings/:id/application", student, h.Applications.State)
	secured.GET("/applications", student, h.Applications.Mine)

	secured.GET("/metrics/summary", admin, h.Metrics.Summary)
}
