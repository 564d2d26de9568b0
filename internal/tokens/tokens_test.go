package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/malikarslanasif131/hackathon-backend/internal/models"
)

func TestGenerateAndParse(t *testing.T) {
	u := &models.User{ID: "u1", Name: "Ada", Email: "ada@x.com"}

	raw, err := GenerateAccessToken("secret", u, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := ParseAccessToken("secret", raw)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UID)
	require.Equal(t, "Ada", claims.Name)
	require.Equal(t, "ada@x.com", claims.Email)
}

func TestClaimsCarryRemainingLifetime(t *testing.T) {
	u := &models.User{ID: "u1"}
	raw, err := GenerateAccessToken("secret", u, 15*time.Minute)
	require.NoError(t, err)

	claims, err := ParseAccessToken("secret", raw)
	require.NoError(t, err)
	require.Greater(t, claims.Remaining(), 14*time.Minute)
	require.LessOrEqual(t, claims.Remaining(), 15*time.Minute)

	require.Zero(t, (&Claims{}).Remaining())
	require.Zero(t, (&Claims{ExpiresAt: time.Now().Add(-time.Minute)}).Remaining())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	u := &models.User{ID: "u1"}
	raw, err := GenerateAccessToken("secret", u, time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	u := &models.User{ID: "u1"}
	raw, err := GenerateAccessToken("secret", u, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken("secret", raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken("secret", "not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
