package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yarn-backend/internal/models"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestSessionTokenRoundTrip(t *testing.T) {
	u := &models.User{ID: "u1", Email: "a@example.com"}
	tok, err := GenerateToken(secret, time.Hour, u)
	require.NoError(t, err)

	claims, err := ParseToken(secret, tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "a@example.com", claims.Email)

	_, err = ParseToken("another-secret-another-secret-xx", tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := GenerateToken(secret, -time.Minute, &models.User{ID: "u1"})
	require.NoError(t, err)
	_, err = ParseToken(secret, tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	u := &models.User{ID: "u1", Email: "a@example.com"}

	invite, err := GenerateInviteToken(secret, time.Hour, u)
	require.NoError(t, err)
	_, err = ParseToken(secret, invite)
	require.ErrorIs(t, err, ErrInvalidToken)

	claims, err := ParseInviteToken(secret, invite)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.NotEmpty(t, claims.ID)

	session, err := GenerateToken(secret, time.Hour, u)
	require.NoError(t, err)
	_, err = ParseInviteToken(secret, session)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	require.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "correct horse"))
	require.False(t, CheckPassword(hash, "wrong horse"))
	require.False(t, CheckPassword("", "correct horse"))
}
