package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"selambus/internal/auth"
)

const claimsKey = "auth_claims"

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Auth reads the bearer token when present. With required set, a missing
// or invalid token ends the request with 401.
func Auth(p TokenParser, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" {
			if required {
				abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			c.Next()
			return
		}

		claims, err := p.Parse(raw)
		if err != nil {
			if required {
				abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			c.Next()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin allows only tokens issued to the admin email.
func RequireAdmin(adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		if !claims.Admin || !strings.EqualFold(claims.Email, adminEmail) {
			abort(c, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if cl, ok := v.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}

func bearer(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}
