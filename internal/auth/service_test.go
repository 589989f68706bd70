package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minilibrary/internal/access"
	"minilibrary/internal/apperr"
	"minilibrary/internal/platform/crypto"
	"minilibrary/internal/testutil"
	"minilibrary/internal/user"
)

type stubUsers map[string]user.User

func (s stubUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	if email == "broken@example.com" {
		return user.User{}, errors.New("connection reset")
	}
	u, ok := s[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func newStubUsers(t *testing.T) stubUsers {
	t.Helper()
	hash, err := crypto.HashPassword("correct-horse1")
	require.NoError(t, err)
	return stubUsers{
		"lib@example.com": {ID: testutil.Librarian.UserID, Email: "lib@example.com", PasswordHash: hash, Role: access.Librarian},
	}
}

func TestLogin(t *testing.T) {
	svc := NewService(testutil.TestSecret, 30*time.Minute, newStubUsers(t), nil)
	ctx := context.Background()

	t.Run("issues a token carrying the role", func(t *testing.T) {
		tok, err := svc.Login(ctx, "lib@example.com", "correct-horse1")
		require.NoError(t, err)
		assert.Equal(t, 1800, tok.ExpiresIn)
		assert.Equal(t, "LIBRARIAN", tok.Role)
		assert.Equal(t, "Bearer", tok.TokenType)

		claims, err := crypto.ParseToken(testutil.TestSecret, tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, testutil.Librarian.UserID, claims.Sub)
		assert.Equal(t, "LIBRARIAN", claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "lib@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		_, err := svc.Login(ctx, "who@example.com", "correct-horse1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("store failure is not a credential error", func(t *testing.T) {
		_, err := svc.Login(ctx, "broken@example.com", "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}
