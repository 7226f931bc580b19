package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/motorhub/go-marketplace-backend/internal/auth"
)

// Context keys populated by RequireAuth for downstream handlers.
const (
	CtxKeyUserID = "userID"
	CtxKeyRole   = "userRole"
)

// UserID returns the authenticated account id stored by RequireAuth.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Role returns the authenticated account role stored by RequireAuth.
func Role(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequireAuth verifies a Bearer access token and stashes the caller's
// identity in the Gin context. Requests without a valid token are rejected
// with 401 before reaching the handler.
func RequireAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := bearerToken(header)
		if !ok {
			unauthorized(c, "missing or malformed Authorization header")
			return
		}
		claims, err := issuer.ParseAccess(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(CtxKeyUserID, claims.UserID)
		c.Set(CtxKeyRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a valid Bearer token is
// present but never rejects the request. It runs ahead of the idempotency
// and rate-limit middleware so their (user, scope) keys see the real
// account rather than falling back to the anonymous/IP scope; RequireAuth
// still gates the private routes.
func OptionalAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := issuer.ParseAccess(token); err == nil {
				c.Set(CtxKeyUserID, claims.UserID)
				c.Set(CtxKeyRole, claims.Role)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "unauthorized",
		"message": msg,
	})
}
