package handler

import (
	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateJob posts a new job for the authenticated company.
func (h *Handler) CreateJob(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	var req model.CreateJobReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	job, err := h.Jobs.Create(c.Request.Context(), claims.ActorID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, job)
}

// UpdateJobStatus drives the job lifecycle (draft/active/paused/closed/filled).
func (h *Handler) UpdateJobStatus(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		response.BadRequest(c, "invalid job ID")
		return
	}

	var req model.UpdateJobStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	job, err := h.Jobs.UpdateStatus(c.Request.Context(), jobID, claims.ActorID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, job)
}

// GetJob returns a job and records the view; a ref query parameter marks
// the view as referral traffic.
func (h *Handler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		response.BadRequest(c, "invalid job ID")
		return
	}

	ctx := c.Request.Context()
	job, err := h.Repository.GetJob(ctx, jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	viaReferral := c.Query("ref") != ""
	if err := h.Repository.AddJobView(ctx, jobID, viaReferral); err != nil {
		// View counters are best-effort; serving the job matters more.
		h.Logger.Sugar().Warnw("job view tracking failed", "job_id", jobID, "err", err)
	}

	response.OK(c, job)
}

// ListOpenJobs is the public listing of active jobs.
func (h *Handler) ListOpenJobs(c *gin.Context) {
	var q model.ListJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	jobs, total, err := h.Repository.ListOpenJobs(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OKWithMeta(c, jobs, &response.Meta{
		Total:   total,
		HasNext: q.Offset+len(jobs) < total,
	})
}

// ListMyJobs returns the authenticated company's jobs, all statuses.
func (h *Handler) ListMyJobs(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	var q model.ListJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	jobs, total, err := h.Repository.ListCompanyJobs(c.Request.Context(), claims.ActorID, q.Limit, q.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OKWithMeta(c, jobs, &response.Meta{
		Total:   total,
		HasNext: q.Offset+len(jobs) < total,
	})
}
