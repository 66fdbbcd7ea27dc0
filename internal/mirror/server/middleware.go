package server

import (
	"net/http"
	"strings"

	"github.com/alexanderramin/riff/internal/apperrors"
	"github.com/alexanderramin/riff/internal/mirror/auth"
	"github.com/gin-gonic/gin"
)

const principalContextKey = "principal"

// CORS allows browser clients from the configured origins.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimSpace(origin)] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed["*"]; ok {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization,Content-Type")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Auth requires a valid bearer token and stores the caller's Principal.
func Auth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, apperrors.Unauthorized("missing authorization header"))
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			abortWithError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		principal, apiErr := svc.ParseToken(token)
		if apiErr != nil {
			abortWithError(c, apiErr)
			return
		}
		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// OwnerOnly rejects requests whose :userID is not the caller.
func OwnerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("userID") != CurrentPrincipal(c).UserID {
			abortWithError(c, apperrors.Forbidden("document belongs to another user"))
			return
		}
		c.Next()
	}
}

func CurrentPrincipal(c *gin.Context) auth.Principal {
	value, ok := c.Get(principalContextKey)
	if !ok {
		return auth.Principal{}
	}
	p, _ := value.(auth.Principal)
	return p
}
