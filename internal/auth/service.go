// Package auth exchanges credentials for access tokens.
package auth

import (
	"context"
	"log/slog"
	"time"

	"minilibrary/internal/apperr"
	"minilibrary/internal/platform/crypto"
	"minilibrary/internal/user"
)

var ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")

// Users is the part of the user service login needs.
type Users interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

type Service struct {
	secret string
	ttl    time.Duration
	users  Users
	logger *slog.Logger
}

func NewService(secret string, ttl time.Duration, users Users, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{secret: secret, ttl: ttl, users: users, logger: logger}
}

// Login verifies the password and issues an access token carrying the
// user's role. Unknown emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		s.logger.WarnContext(ctx, "login failed", "user_id", u.ID)
		return Token{}, ErrInvalidCredentials
	}

	token, jti, err := crypto.GenerateToken(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return Token{}, err
	}

	s.logger.InfoContext(ctx, "login", "user_id", u.ID, "jti", jti)
	return Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		Role:        string(u.Role),
	}, nil
}
