package main

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/PyNerdAlfaiz/referd-backend/internal/auth"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/gin-gonic/gin"
)

func (app *application) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifyClaimsFromAuthHeader(c, app.Handler.TokenMaker)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// UserAuthMiddleware admits only job-seeker tokens.
func (app *application) UserAuthMiddleware() gin.HandlerFunc {
	return app.actorAuthMiddleware(model.ActorUser)
}

// CompanyAuthMiddleware admits only company tokens.
func (app *application) CompanyAuthMiddleware() gin.HandlerFunc {
	return app.actorAuthMiddleware(model.ActorCompany)
}

func (app *application) actorAuthMiddleware(kind model.ActorKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifyClaimsFromAuthHeader(c, app.Handler.TokenMaker)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if claims.Kind != kind {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("this endpoint requires a %s account", kind)})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// InternalAuthMiddleware guards the payment gateway callbacks with a shared
// token.
func (app *application) InternalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Internal-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(app.Config.Internal.Token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid internal token"})
			return
		}
		c.Next()
	}
}

func verifyClaimsFromAuthHeader(c *gin.Context, tokenMaker *auth.JWTMaker) (*auth.ActorClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header is missing")
	}

	fields := strings.Fields(authHeader)
	if len(fields) != 2 || fields[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header")
	}

	token := fields[1]
	claims, err := tokenMaker.VerifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	return claims, nil
}
