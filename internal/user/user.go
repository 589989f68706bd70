// Package user manages library accounts and their roles.
package user

import (
	"strings"
	"time"

	"minilibrary/internal/access"
	"minilibrary/internal/apperr"
)

var (
	ErrNotFound      = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrAlreadyExists = apperr.New(apperr.KindConflict, "ALREADY_EXISTS", "email already registered")
)

type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Account is a user as shown to administrators, with activity counts.
type Account struct {
	User
	TransactionCount int `json:"transaction_count"`
	ReviewCount      int `json:"review_count"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Password string `json:"password" validate:"required,password_strength"`
}

func (in *RegisterInput) normalize() {
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
}

type RoleUpdate struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
