package user

import (
	"context"
	"log/slog"

	"minilibrary/internal/access"
	"minilibrary/internal/platform/crypto"
	"minilibrary/internal/validate"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Register creates a MEMBER account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return User{}, err
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	u := User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         access.Member,
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return User{}, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, actor access.Actor) (User, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return User{}, err
	}
	return s.repo.GetByID(ctx, actor.UserID)
}

// GetByEmail is used by login and carries no authorization check.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// CurrentRole returns the stored role of a user.
func (s *Service) CurrentRole(ctx context.Context, userID string) (access.Role, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// List returns every account, newest first.
func (s *Service) List(ctx context.Context, actor access.Actor) ([]Account, error) {
	if err := actor.Authorize(access.MinRole(access.Admin)); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// UpdateRole sets a user's role. Only ADMIN, LIBRARIAN and MEMBER are
// accepted.
func (s *Service) UpdateRole(ctx context.Context, actor access.Actor, in RoleUpdate) (User, error) {
	if err := actor.Authorize(access.MinRole(access.Admin)); err != nil {
		return User{}, err
	}
	if err := validate.Struct(in); err != nil {
		return User{}, err
	}
	role, err := access.ParseRole(in.Role)
	if err != nil {
		return User{}, err
	}

	u, err := s.repo.UpdateRole(ctx, in.UserID, role)
	if err != nil {
		return User{}, err
	}

	s.logger.InfoContext(ctx, "user role changed",
		"user_id", u.ID,
		"role", string(u.Role),
		"actor_id", actor.UserID,
	)
	return u, nil
}
