package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/malikarslanasif131/hackathon-backend/internal/config"
	"github.com/malikarslanasif131/hackathon-backend/internal/models"
	"github.com/malikarslanasif131/hackathon-backend/internal/oidc"
	"github.com/malikarslanasif131/hackathon-backend/internal/sessions"
	"github.com/malikarslanasif131/hackathon-backend/internal/tokens"
	"github.com/malikarslanasif131/hackathon-backend/internal/users"
)

type fakeToken struct {
	claims map[string]interface{}
}

func (t fakeToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

type fakeVerifier struct {
	claims map[string]interface{}
}

func (f fakeVerifier) Verify(_ context.Context, raw string) (oidc.Token, error) {
	if raw != "good-id-token" {
		return nil, errors.New("bad token")
	}
	return fakeToken{claims: f.claims}, nil
}

type fakeUserRepo struct {
	bySub map[string]*models.User
}

func (r *fakeUserRepo) UpsertBySub(_ context.Context, u *models.User) (*models.User, error) {
	if existing, ok := r.bySub[u.Sub]; ok {
		existing.Email, existing.Name = u.Email, u.Name
		return existing, nil
	}
	u.ID = "uid-" + u.Sub
	u.Roles = map[string]int{}
	r.bySub[u.Sub] = u
	return u, nil
}

func (r *fakeUserRepo) GetBySub(_ context.Context, sub string) (*models.User, error) {
	return r.bySub[sub], nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range r.bySub {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type fakeSessionRepo struct {
	byRefresh map[string]*sessions.Session
}

func (r *fakeSessionRepo) Create(_ context.Context, s *sessions.Session) error {
	r.byRefresh[s.RefreshToken] = s
	return nil
}

func (r *fakeSessionRepo) GetByRefresh(_ context.Context, refresh string) (*sessions.Session, error) {
	return r.byRefresh[refresh], nil
}

func (r *fakeSessionRepo) DeleteByRefresh(_ context.Context, refresh string) error {
	delete(r.byRefresh, refresh)
	return nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *fakeSessionRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour

	sessRepo := &fakeSessionRepo{byRefresh: map[string]*sessions.Session{}}
	h := NewAuthHandler(
		fakeVerifier{claims: map[string]interface{}{"sub": "g-123", "email": "ada@example.com", "name": "Ada"}},
		users.NewService(&fakeUserRepo{bySub: map[string]*models.User{}}),
		sessions.NewService(sessRepo),
		cfg,
	)
	r := gin.New()
	h.RegisterRoutes(r)
	return r, sessRepo
}

func TestLoginIssuesTokenPair(t *testing.T) {
	r, sessRepo := newAuthRouter(t)

	w := serve(r, http.MethodPost, "/api/auth/login", `{"idToken":"good-id-token"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		ExpiresIn    int         `json:"expiresIn"`
		User         models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "uid-g-123", resp.User.ID)
	require.Equal(t, 900, resp.ExpiresIn)

	claims, err := tokens.ParseAccessToken("test-secret", resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "uid-g-123", claims.UID)
	require.Contains(t, sessRepo.byRefresh, resp.RefreshToken)
}

func TestLoginRejectsInvalidIDToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := serve(r, http.MethodPost, "/api/auth/login", `{"idToken":"forged"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Authentication Error")
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := serve(r, http.MethodPost, "/api/auth/login", `{"idToken":"good-id-token"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = serve(r, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"`+login.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var refresh struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refresh))
	claims, err := tokens.ParseAccessToken("test-secret", refresh.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "uid-g-123", claims.UID)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := serve(r, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutBlacklistsForRemainingLifetime(t *testing.T) {
	mr := miniredis.RunT(t)
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { sessions.SetBlacklistClient(nil) })

	r, _ := newAuthRouter(t)
	w := serve(r, http.MethodPost, "/api/auth/login", `{"idToken":"good-id-token"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout",
		strings.NewReader(`{"refreshToken":"`+login.RefreshToken+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	key := "blacklist:access:" + login.AccessToken
	require.True(t, mr.Exists(key))
	// entry lives as long as the token, not a fixed window
	require.Greater(t, mr.TTL(key), 14*time.Minute)
	require.LessOrEqual(t, mr.TTL(key), 15*time.Minute)
}

func TestLogoutDeletesRefreshSession(t *testing.T) {
	r, sessRepo := newAuthRouter(t)

	w := serve(r, http.MethodPost, "/api/auth/login", `{"idToken":"good-id-token"}`)
	var login struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = serve(r, http.MethodPost, "/api/auth/logout", `{"refreshToken":"`+login.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, sessRepo.byRefresh, login.RefreshToken)
}
