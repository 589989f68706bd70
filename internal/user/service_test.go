package user

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minilibrary/internal/access"
	"minilibrary/internal/apperr"
	"minilibrary/internal/platform/crypto"
	"minilibrary/internal/testutil"
)

func TestService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil)
	ctx := context.Background()

	t.Run("creates a member with a hashed password", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *User) error {
			assert.Equal(t, "ada@example.com", u.Email)
			assert.Equal(t, "Ada", u.Name)
			assert.Equal(t, access.Member, u.Role)
			assert.True(t, crypto.VerifyPassword(u.PasswordHash, "lovelace1815"))
			u.ID = "u1"
			return nil
		})

		u, err := svc.Register(ctx, RegisterInput{Email: "Ada@Example.com", Name: "  Ada ", Password: "lovelace1815"})
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrAlreadyExists)

		_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Name: "Ada", Password: "lovelace1815"})
		assert.ErrorIs(t, err, ErrAlreadyExists)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Name: "Ada", Password: "short"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestService_UpdateRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil)
	ctx := context.Background()

	t.Run("admin promotes", func(t *testing.T) {
		repo.EXPECT().UpdateRole(gomock.Any(), "u1", access.Librarian).
			Return(User{ID: "u1", Role: access.Librarian}, nil)

		u, err := svc.UpdateRole(ctx, testutil.Admin, RoleUpdate{UserID: "u1", Role: "LIBRARIAN"})
		require.NoError(t, err)
		assert.Equal(t, access.Librarian, u.Role)
	})

	t.Run("invalid role", func(t *testing.T) {
		for _, role := range []string{"USER", "admin", "ROOT"} {
			_, err := svc.UpdateRole(ctx, testutil.Admin, RoleUpdate{UserID: "u1", Role: role})
			assert.ErrorIs(t, err, access.ErrInvalidRole, role)
		}
	})

	t.Run("librarian forbidden", func(t *testing.T) {
		_, err := svc.UpdateRole(ctx, testutil.Librarian, RoleUpdate{UserID: "u1", Role: "ADMIN"})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo.EXPECT().UpdateRole(gomock.Any(), "ghost", access.Member).Return(User{}, ErrNotFound)

		_, err := svc.UpdateRole(ctx, testutil.Admin, RoleUpdate{UserID: "ghost", Role: "MEMBER"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil)

	_, err := svc.List(context.Background(), testutil.Librarian)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	repo.EXPECT().List(gomock.Any()).Return([]Account{{User: User{ID: "u1"}, TransactionCount: 3}}, nil)
	accounts, err := svc.List(context.Background(), testutil.Admin)
	require.NoError(t, err)
	assert.Equal(t, 3, accounts[0].TransactionCount)
}

func TestService_CurrentRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil)

	repo.EXPECT().GetByID(gomock.Any(), "u1").Return(User{ID: "u1", Role: access.Admin}, nil)
	role, err := svc.CurrentRole(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, access.Admin, role)

	repo.EXPECT().GetByID(gomock.Any(), "gone").Return(User{}, ErrNotFound)
	_, err = svc.CurrentRole(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}
