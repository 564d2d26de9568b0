package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/malikarslanasif131/hackathon-backend/internal/auth"
	"github.com/malikarslanasif131/hackathon-backend/internal/schema"
)

type stubAuthorizer struct {
	verdict auth.Verdict
	token   string
}

func (s *stubAuthorizer) Authenticate(_ context.Context, token string, _ schema.AllowList) auth.Verdict {
	s.token = token
	return s.verdict
}

func newAuthedRouter(authz auth.Authorizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireAuth(authz), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": Caller(c).ID})
	})
	return r
}

func TestRequireAuthPassesCallerThrough(t *testing.T) {
	authz := &stubAuthorizer{verdict: auth.Verdict{
		Status: http.StatusOK,
		User:   &auth.User{ID: "user-1"},
	}}
	r := newAuthedRouter(authz)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "token-abc", authz.token)
	require.Contains(t, w.Body.String(), "user-1")
}

func TestRequireAuthRejectsWithEnvelope(t *testing.T) {
	authz := &stubAuthorizer{verdict: auth.Verdict{
		Status:  http.StatusUnauthorized,
		Message: "invalid session token",
	}}
	r := newAuthedRouter(authz)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Authentication Error: invalid session token")
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			c.Request.Header.Set("Authorization", tc.header)
		}
		require.Equal(t, tc.want, BearerToken(c), "header %q", tc.header)
	}
}
