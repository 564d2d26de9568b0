package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malikarslanasif131/hackathon-backend/internal/auth"
)

// BearerToken extracts the raw token from the Authorization header. Returns
// the empty string when the header is missing or not a Bearer scheme.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth authenticates the request with the portal authorizer (no role
// requirement beyond a valid session) and stores the resolved caller in the
// context under "caller".
func RequireAuth(authz auth.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := authz.Authenticate(c.Request.Context(), BearerToken(c), nil)
		if v.Status != http.StatusOK {
			c.AbortWithStatusJSON(v.Status, gin.H{"message": "Authentication Error: " + v.Message})
			return
		}
		c.Set("caller", v.User)
		c.Next()
	}
}

// Caller returns the authenticated user set by RequireAuth, or nil.
func Caller(c *gin.Context) *auth.User {
	v, ok := c.Get("caller")
	if !ok {
		return nil
	}
	u, _ := v.(*auth.User)
	return u
}
