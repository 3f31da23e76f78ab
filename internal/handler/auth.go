package handler

import (
	"github.com/PyNerdAlfaiz/referd-backend/pkg"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// SignUpUser registers a job seeker and generates their referral code.
func (h *Handler) SignUpUser(c *gin.Context) {
	var req model.SignUpUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	pwHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		h.Logger.Sugar().Errorw("failed to hash password", "err", err)
		response.InternalError(c, "")
		return
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
	}
	if err := h.Repository.CreateUser(ctx, user); err != nil {
		h.respondError(c, err)
		return
	}

	response.Created(c, model.UserRes{
		UserID:       user.UserID,
		Name:         user.Name,
		Email:        user.Email,
		ReferralCode: user.ReferralCode,
	})
}

// SignUpCompany registers an employer account.
func (h *Handler) SignUpCompany(c *gin.Context) {
	var req model.SignUpCompanyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	pwHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		h.Logger.Sugar().Errorw("failed to hash password", "err", err)
		response.InternalError(c, "")
		return
	}

	company := &model.Company{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Description:  req.Description,
		Website:      req.Website,
	}
	if err := h.Repository.CreateCompany(ctx, company); err != nil {
		h.respondError(c, err)
		return
	}

	response.Created(c, model.CompanyRes{
		CompanyID: company.CompanyID,
		Name:      company.Name,
		Email:     company.Email,
	})
}

// Login authenticates either account kind through the shared identity
// lookup and issues a token tagged with the actor kind.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	ident, err := h.Repository.FindIdentityByEmail(ctx, req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}
	if err := pkg.ComparePassword(ident.PasswordHash, req.Password); err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	token, claims, err := h.TokenMaker.GenerateToken(ident.ID, ident.Kind, ident.Email, h.AccessTTL)
	if err != nil {
		h.Logger.Sugar().Errorw("error creating token", "err", err)
		response.InternalError(c, "")
		return
	}

	response.OK(c, model.LoginRes{
		AccessToken: token,
		ExpiresAt:   claims.RegisteredClaims.ExpiresAt.Time,
		ActorKind:   ident.Kind,
		ActorID:     ident.ID,
	})
}

// Me returns the caller's own record.
func (h *Handler) Me(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	ctx := c.Request.Context()
	switch claims.Kind {
	case model.ActorUser:
		user, err := h.Repository.GetUserByID(ctx, claims.ActorID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		response.OK(c, user)
	case model.ActorCompany:
		company, err := h.Repository.GetCompanyByID(ctx, claims.ActorID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		response.OK(c, company)
	default:
		response.Unauthorized(c, "")
	}
}
