package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/jobs/service"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/net/resp"
	"github.com/skillconnect/jobcore/internal/server/middleware"
)

// JobHandler handles job and discovery requests.
type JobHandler struct {
	svc       *service.JobService
	discovery *service.Discovery
	logger    *logging.Logger
}

// List handles job listing.
func (h *JobHandler) List(c *gin.Context) {
	status, statusSet := c.GetQuery("status")
	q := structs.ListQuery{
		Category:  c.Query("category"),
		JobType:   c.Query("jobType"),
		Status:    status,
		StatusSet: statusSet,
		City:      c.Query("city"),
		Employer:  c.Query("employer"),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		SortBy:    c.Query("sortBy"),
	}
	page, err := h.discovery.List(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, page)
}

// Search handles proximity search.
func (h *JobHandler) Search(c *gin.Context) {
	q := structs.SearchQuery{
		Lat:      c.Query("lat"),
		Lng:      c.Query("lng"),
		Distance: c.Query("distance"),
		City:     c.Query("city"),
		Category: c.Query("category"),
		JobType:  c.Query("jobType"),
		Skills:   c.Query("skills"),
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
	}
	page, err := h.discovery.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, page)
}

// Get handles job retrieval.
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, job)
}

// Create handles job creation.
func (h *JobHandler) Create(c *gin.Context) {
	var body structs.CreateJobBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn(c.Request.Context(), "invalid request", "error", err)
		resp.Fail(c.Writer, resp.BadRequest("invalid request body"))
		return
	}
	job, err := h.svc.Create(c.Request.Context(), middleware.CallerFrom(c), &body)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, job)
}

// Update handles job updates.
func (h *JobHandler) Update(c *gin.Context) {
	var body structs.UpdateJobBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn(c.Request.Context(), "invalid request", "error", err)
		resp.Fail(c.Writer, resp.BadRequest("invalid request body"))
		return
	}
	job, err := h.svc.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), &body)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, job)
}

// Delete handles job deletion.
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, h.logger, err)
		return
	}
	resp.Success(c.Writer, "job removed")
}
