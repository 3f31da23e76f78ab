package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (app *application) routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	// simple logger middleware that uses zap
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		app.Logger.Sugar().Infow("http", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "duration", time.Since(start))
	})

	// CORS Middleware
	trustedOrigins := app.Config.GetCORSOrigins()
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		for _, trusted := range trustedOrigins {
			if origin == trusted {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/users/signup", app.Handler.SignUpUser)
		v1.POST("/companies/signup", app.Handler.SignUpCompany)
		v1.POST("/login", app.Handler.Login)

		// public job browsing
		v1.GET("/jobs", app.Handler.ListOpenJobs)
		v1.GET("/jobs/:job_id", app.Handler.GetJob)
	}

	protected := v1.Group("/")
	protected.Use(app.AuthMiddleware())
	{
		protected.GET("/me", app.Handler.Me)
		protected.GET("/applications/:application_id", app.Handler.GetApplication)
	}

	users := v1.Group("/")
	users.Use(app.UserAuthMiddleware())
	{
		users.POST("/jobs/:job_id/applications", app.Handler.SubmitApplication)
		users.POST("/applications/:application_id/withdraw", app.Handler.WithdrawApplication)
		users.GET("/me/applications", app.Handler.ListMyApplications)
		users.GET("/me/referrals", app.Handler.ListMyReferrals)
		users.GET("/me/referral-stats", app.Handler.MyReferralStats)
	}

	companies := v1.Group("/")
	companies.Use(app.CompanyAuthMiddleware())
	{
		companies.POST("/jobs", app.Handler.CreateJob)
		companies.PATCH("/jobs/:job_id/status", app.Handler.UpdateJobStatus)
		companies.GET("/companies/me/jobs", app.Handler.ListMyJobs)
		companies.GET("/jobs/:job_id/applications", app.Handler.ListJobApplications)
		companies.PATCH("/applications/:application_id/status", app.Handler.TransitionApplication)
	}

	// payment gateway callbacks
	internal := r.Group("/internal")
	internal.Use(app.InternalAuthMiddleware())
	{
		internal.PATCH("/referral-payments/:application_id/status", app.Handler.UpdateReferralPaymentStatus)
	}

	return r
}
