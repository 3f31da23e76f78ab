package handler

import (
	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubmitApplication creates an application for the authenticated user,
// optionally attributed to a referral code.
func (h *Handler) SubmitApplication(c *gin.Context) {
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

	var req model.SubmitApplicationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	app, err := h.Applications.Submit(c.Request.Context(), jobID, claims.ActorID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, app)
}

// TransitionApplication moves an application forward (or rejects it) on
// behalf of the owning company.
func (h *Handler) TransitionApplication(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	applicationID, err := uuid.Parse(c.Param("application_id"))
	if err != nil {
		response.BadRequest(c, "invalid application ID")
		return
	}

	var req model.TransitionApplicationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	app, err := h.Applications.Transition(c.Request.Context(), applicationID, req.Status, claims.Actor(), req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, app)
}

// WithdrawApplication lets the applicant pull out of the process.
func (h *Handler) WithdrawApplication(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	applicationID, err := uuid.Parse(c.Param("application_id"))
	if err != nil {
		response.BadRequest(c, "invalid application ID")
		return
	}

	var req model.WithdrawApplicationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	app, err := h.Applications.Withdraw(c.Request.Context(), applicationID, claims.ActorID, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, app)
}

// GetApplication returns one application with its status history. Visible
// to the applicant, the owning company, and the credited referrer.
func (h *Handler) GetApplication(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	applicationID, err := uuid.Parse(c.Param("application_id"))
	if err != nil {
		response.BadRequest(c, "invalid application ID")
		return
	}

	app, err := h.Repository.GetApplication(c.Request.Context(), applicationID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	allowed := false
	switch claims.Kind {
	case model.ActorUser:
		allowed = app.ApplicantID == claims.ActorID ||
			(app.ReferredBy != nil && *app.ReferredBy == claims.ActorID)
	case model.ActorCompany:
		allowed = app.CompanyID == claims.ActorID
	}
	if !allowed {
		response.Forbidden(c, "you are not allowed to view this application")
		return
	}
	response.OK(c, app)
}

// ListJobApplications returns the applications for one of the company's
// jobs.
func (h *Handler) ListJobApplications(c *gin.Context) {
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

	ctx := c.Request.Context()
	job, err := h.Repository.GetJob(ctx, jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if job.CompanyID != claims.ActorID {
		response.Forbidden(c, "this job belongs to another company")
		return
	}

	var q model.ListJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	apps, total, err := h.Repository.ListApplicationsByJob(ctx, jobID, q.Limit, q.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OKWithMeta(c, apps, &response.Meta{
		Total:   total,
		HasNext: q.Offset+len(apps) < total,
	})
}

// ListMyApplications returns the authenticated user's own applications.
func (h *Handler) ListMyApplications(c *gin.Context) {
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

	apps, total, err := h.Repository.ListApplicationsByApplicant(c.Request.Context(), claims.ActorID, q.Limit, q.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OKWithMeta(c, apps, &response.Meta{
		Total:   total,
		HasNext: q.Offset+len(apps) < total,
	})
}
