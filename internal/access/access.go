// Package access implements the role hierarchy and the per-operation
// authorization requirements every service checks before doing any work.
package access

import (
	"strings"

	"minilibrary/internal/apperr"
)

// Role is a user's authorization level.
type Role string

const (
	Member    Role = "MEMBER"
	Librarian Role = "LIBRARIAN"
	Admin     Role = "ADMIN"
)

var ranks = map[Role]int{
	Member:    1,
	Librarian: 2,
	Admin:     3,
}

// Roles lists the valid roles in ascending order.
func Roles() []Role {
	return []Role{Member, Librarian, Admin}
}

// Rank returns the role's position in the hierarchy; unknown roles rank 0.
func (r Role) Rank() int {
	return ranks[r]
}

func (r Role) Valid() bool {
	_, ok := ranks[r]
	return ok
}

// ErrInvalidRole is returned by ParseRole for values outside the hierarchy.
var ErrInvalidRole = apperr.InvalidField("role", "role must be one of ADMIN, LIBRARIAN, MEMBER")

// ParseRole accepts exactly ADMIN, LIBRARIAN or MEMBER.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// HasMinRole reports whether actual is at least as privileged as required.
func HasMinRole(actual, required Role) bool {
	return actual.Rank() >= required.Rank()
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

// System is the actor used by operator tooling.
var System = Actor{UserID: "system", Role: Admin}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.UserID) != "" && a.Role.Valid()
}

// Requirement is a declarative authorization rule.
type Requirement func(Actor) bool

// MinRole allows actors ranked at or above r.
func MinRole(r Role) Requirement {
	return func(a Actor) bool {
		return HasMinRole(a.Role, r)
	}
}

// SelfOr allows the owner of a resource, or anyone ranked at or above r.
func SelfOr(ownerID string, r Role) Requirement {
	return func(a Actor) bool {
		return a.UserID == ownerID || HasMinRole(a.Role, r)
	}
}

// Authorize checks req against the actor.
func (a Actor) Authorize(req Requirement) error {
	if !a.Authenticated() {
		return apperr.ErrUnauthorized
	}
	if !req(a) {
		return apperr.ErrForbidden
	}
	return nil
}
