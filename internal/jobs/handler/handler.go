// Package handler binds the job services to HTTP routes.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/jobs/service"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/net/resp"
	"github.com/skillconnect/jobcore/internal/server/middleware"
)

// Handler aggregates the job handlers.
type Handler struct {
	Job         *JobHandler
	Application *ApplicationHandler
	logger      *logging.Logger
}

// NewHandler creates the handlers for svc.
func NewHandler(svc *service.Service, logger *logging.Logger) *Handler {
	return &Handler{
		Job:         &JobHandler{svc: svc.Job, discovery: svc.Discovery, logger: logger},
		Application: &ApplicationHandler{svc: svc.Application, logger: logger},
		logger:      logger,
	}
}

// RegisterRoutes mounts the job routes on api.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, tokens middleware.TokenDecoder) {
	auth := middleware.Authenticate(tokens, h.logger)
	employer := middleware.RequireRole(structs.RoleEmployer)
	worker := middleware.RequireRole(structs.RoleWorker)

	jobs := api.Group("/jobs")
	{
		jobs.GET("", middleware.OptionalAuth(tokens, h.logger), h.Job.List)
		jobs.GET("/search", h.Job.Search)
		jobs.GET("/applications/me", auth, worker, h.Application.ListMine)
		jobs.GET("/:id", h.Job.Get)
		jobs.POST("", auth, employer, h.Job.Create)
		jobs.PUT("/:id", auth, employer, h.Job.Update)
		jobs.DELETE("/:id", auth, employer, h.Job.Delete)

		jobs.POST("/:id/apply", auth, worker, h.Application.Apply)
		jobs.GET("/:id/applications", auth, employer, h.Application.ListForJob)
		jobs.PUT("/:id/applications/:applicationId", auth, employer, h.Application.SetStatus)
		jobs.DELETE("/:id/applications/:applicationId", auth, worker, h.Application.Withdraw)
	}
}

// fail renders err and records it on the gin context for the request span.
func fail(c *gin.Context, logger *logging.Logger, err error) {
	ex := resp.FromError(err)
	if ex.Status >= 500 {
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	resp.Fail(c.Writer, ex)
}
