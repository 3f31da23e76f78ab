package handler

import (
	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MyReferralStats returns the authenticated user's referral counters and
// earnings ledger.
func (h *Handler) MyReferralStats(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	user, err := h.Repository.GetUserByID(c.Request.Context(), claims.ActorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, gin.H{
		"referral_code":  user.ReferralCode,
		"referral_stats": user.ReferralStats,
	})
}

// ListMyReferrals returns applications credited to the authenticated user
// as referrer.
func (h *Handler) ListMyReferrals(c *gin.Context) {
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

	apps, total, err := h.Repository.ListReferralsByReferrer(c.Request.Context(), claims.ActorID, q.Limit, q.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OKWithMeta(c, apps, &response.Meta{
		Total:   total,
		HasNext: q.Offset+len(apps) < total,
	})
}

// UpdateReferralPaymentStatus is the internal endpoint the payment gateway
// calls to report payout progress (processing, paid, failed).
func (h *Handler) UpdateReferralPaymentStatus(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("application_id"))
	if err != nil {
		response.BadRequest(c, "invalid application ID")
		return
	}

	var req model.UpdatePaymentStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	app, err := h.Referrals.UpdatePaymentStatus(c.Request.Context(), applicationID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, app.ReferralPayment)
}
