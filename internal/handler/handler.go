package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/PyNerdAlfaiz/referd-backend/internal/auth"
	"github.com/PyNerdAlfaiz/referd-backend/internal/repository"
	"github.com/PyNerdAlfaiz/referd-backend/internal/service"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	Logger       *zap.Logger
	Repository   *repository.Repository
	Applications *service.ApplicationService
	Referrals    *service.ReferralService
	Jobs         *service.JobService
	TokenMaker   *auth.JWTMaker
	AccessTTL    time.Duration
}

// GetClaimsFromContext retrieves the verified actor claims set by the auth
// middleware.
func (h *Handler) GetClaimsFromContext(c *gin.Context) *auth.ActorClaims {
	contextClaims, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := contextClaims.(*auth.ActorClaims)
	if !ok {
		return nil
	}
	return claims
}

// respondError maps domain sentinel errors to stable client-facing codes;
// anything unexpected is logged and hidden behind a 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		response.NotFound(c, "")
	case errors.Is(err, model.ErrDuplicateApplication):
		response.Error(c, http.StatusConflict, "DUPLICATE_APPLICATION", "you have already applied to this job")
	case errors.Is(err, model.ErrJobNotAcceptingApplications):
		response.Error(c, http.StatusConflict, "JOB_NOT_ACCEPTING_APPLICATIONS", "this job is not accepting applications")
	case errors.Is(err, model.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "the requested status change is not allowed")
	case errors.Is(err, model.ErrUnauthorized):
		response.Forbidden(c, "you are not allowed to perform this action")
	case errors.Is(err, model.ErrEmailTaken):
		response.Error(c, http.StatusConflict, "EMAIL_TAKEN", "an account with this email already exists")
	case errors.Is(err, model.ErrPaymentIneligible):
		response.Error(c, http.StatusConflict, "PAYMENT_INELIGIBLE", "this application has no eligible referral payment")
	default:
		h.Logger.Sugar().Errorw("request failed", "path", c.FullPath(), "err", err)
		response.InternalError(c, "")
	}
}
