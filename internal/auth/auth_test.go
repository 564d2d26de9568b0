package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/malikarslanasif131/hackathon-backend/internal/models"
	"github.com/malikarslanasif131/hackathon-backend/internal/schema"
	"github.com/malikarslanasif131/hackathon-backend/internal/sessions"
	"github.com/malikarslanasif131/hackathon-backend/internal/store"
	"github.com/malikarslanasif131/hackathon-backend/internal/tokens"
)

const secret = "test-secret"

func seedCaller(t *testing.T, m *store.MemoryStore, roles map[string]any) (string, string) {
	t.Helper()
	uid, err := m.Add(context.Background(), store.Users, map[string]any{
		"name":    "Ada",
		"email":   "ada@x.com",
		"discord": "ada#1",
		"roles":   roles,
	})
	require.NoError(t, err)
	raw, err := tokens.GenerateAccessToken(secret, &models.User{ID: uid, Name: "Ada", Email: "ada@x.com"}, time.Minute)
	require.NoError(t, err)
	return uid, raw
}

func TestAuthenticate_MissingToken(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), secret)

	v := svc.Authenticate(context.Background(), "", nil)
	require.Equal(t, http.StatusUnauthorized, v.Status)
	require.Nil(t, v.User)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), secret)

	v := svc.Authenticate(context.Background(), "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, v.Status)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	m := store.NewMemoryStore()
	svc := NewService(m, secret)
	raw, err := tokens.GenerateAccessToken(secret, &models.User{ID: "gone"}, time.Minute)
	require.NoError(t, err)

	v := svc.Authenticate(context.Background(), raw, nil)
	require.Equal(t, http.StatusUnauthorized, v.Status)
}

func TestAuthenticate_OpenAllowList(t *testing.T) {
	m := store.NewMemoryStore()
	svc := NewService(m, secret)
	uid, raw := seedCaller(t, m, map[string]any{})

	v := svc.Authenticate(context.Background(), raw, nil)
	require.Equal(t, http.StatusOK, v.Status)
	require.NotNil(t, v.User)
	require.Equal(t, uid, v.User.ID)
	require.Equal(t, "Ada", v.User.Name)
	require.Equal(t, "ada@x.com", v.User.Email)
	require.Equal(t, "ada#1", v.User.Discord)
}

func TestAuthenticate_RoleAllowList(t *testing.T) {
	m := store.NewMemoryStore()
	svc := NewService(m, secret)
	adminAllow := schema.AllowList{"admins": {1}}

	// accepted admin passes
	_, raw := seedCaller(t, m, map[string]any{"admins": 1})
	v := svc.Authenticate(context.Background(), raw, adminAllow)
	require.Equal(t, http.StatusOK, v.Status)

	// pending admin is rejected
	_, raw = seedCaller(t, m, map[string]any{"admins": 0})
	v = svc.Authenticate(context.Background(), raw, adminAllow)
	require.Equal(t, http.StatusForbidden, v.Status)

	// unrelated role is rejected
	_, raw = seedCaller(t, m, map[string]any{"judges": 1})
	v = svc.Authenticate(context.Background(), raw, adminAllow)
	require.Equal(t, http.StatusForbidden, v.Status)
}

func TestAuthenticate_BlacklistedToken(t *testing.T) {
	r, err := mr.Run()
	require.NoError(t, err)
	defer r.Close()
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: r.Addr()}))
	defer sessions.SetBlacklistClient(nil)

	m := store.NewMemoryStore()
	svc := NewService(m, secret)
	_, raw := seedCaller(t, m, map[string]any{"admins": 1})

	ctx := context.Background()
	require.NoError(t, sessions.BlacklistAccessToken(ctx, raw, time.Minute))

	v := svc.Authenticate(ctx, raw, nil)
	require.Equal(t, http.StatusUnauthorized, v.Status)
	require.Equal(t, "session revoked", v.Message)
}
