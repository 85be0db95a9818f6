package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/jobs/service"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/net/resp"
	"github.com/skillconnect/jobcore/internal/server/middleware"
)

// ApplicationHandler handles application requests.
type ApplicationHandler struct {
	svc    *service.ApplicationService
	logger *logging.Logger
}

// Apply handles a worker applying to a job. The body is optional.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var body structs.ApplyBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn(c.Request.Context(), "invalid request", "error", err)
		resp.Fail(c.Writer, resp.BadRequest("invalid request body"))
		return
	}
	app, err := h.svc.Apply(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), body.CoverLetter)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, app)
}

// ListForJob handles listing the applications of a job.
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	apps, err := h.svc.ListForJob(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, apps)
}

// ListMine handles listing the caller's applications.
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	apps, err := h.svc.ListMine(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, apps)
}

// SetStatus handles an employer moving an application.
func (h *ApplicationHandler) SetStatus(c *gin.Context) {
	var body structs.StatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn(c.Request.Context(), "invalid request", "error", err)
		resp.Fail(c.Writer, resp.BadRequest("invalid request body"))
		return
	}
	app, err := h.svc.SetStatus(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), c.Param("applicationId"), body.Status)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, app)
}

// Withdraw handles a worker withdrawing an application.
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	if err := h.svc.Withdraw(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), c.Param("applicationId")); err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, "application withdrawn")
}
