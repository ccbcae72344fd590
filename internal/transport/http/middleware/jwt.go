package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chacha-backend/internal/pkg/jwtutil"
	"chacha-backend/internal/transport/http/response"
)

// Context keys set by the auth middlewares.
const (
	CtxEmail = "auth_email"
	CtxName  = "auth_name"
	CtxAge   = "auth_age"
)

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, secret)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "missing or invalid token")
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches identity when a valid token is present and lets
// anonymous requests through. The mascot endpoints personalize when they
// can but never demand login.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, secret); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, secret string) (*jwtutil.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	claims, err := jwtutil.ParseToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *jwtutil.Claims) {
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxName, claims.Name)
	if claims.Age != nil {
		c.Set(CtxAge, *claims.Age)
	}
}

// Email returns the authenticated email, empty for anonymous requests.
func Email(c *gin.Context) string {
	return c.GetString(CtxEmail)
}

// Name returns the authenticated display name, empty for anonymous requests.
func Name(c *gin.Context) string {
	return c.GetString(CtxName)
}
