package user

import (
	"context"

	"minilibrary/internal/access"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=user

// Repository defines the contract for user storage.
type Repository interface {
	// Create fails with ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]Account, error)
	UpdateRole(ctx context.Context, id string, role access.Role) (User, error)
}
