package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	sessions map[string]*Session
}

func newFakeRepo() *fakeRepo { return &fakeRepo{sessions: map[string]*Session{}} }

func (f *fakeRepo) Create(ctx context.Context, s *Session) error {
	f.sessions[s.RefreshToken] = s
	return nil
}

func (f *fakeRepo) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	return f.sessions[refresh], nil
}

func (f *fakeRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.sessions, refresh)
	return nil
}

func TestCreateAndValidate(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	refresh, err := svc.CreateSession(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, refresh)

	sess, err := svc.ValidateRefresh(ctx, refresh)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "user-1", sess.UID)
}

func TestValidateExpiredCleansUp(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	refresh, err := svc.CreateSession(ctx, "user-1", -time.Minute)
	require.NoError(t, err)

	sess, err := svc.ValidateRefresh(ctx, refresh)
	require.NoError(t, err)
	require.Nil(t, sess)
	require.NotContains(t, repo.sessions, refresh)
}

func TestValidateUnknownToken(t *testing.T) {
	svc := NewService(newFakeRepo())

	sess, err := svc.ValidateRefresh(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, sess)
}
