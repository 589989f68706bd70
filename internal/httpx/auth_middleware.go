package httpx

import (
	"context"
	"net/http"
	"strings"

	"minilibrary/internal/access"
	"minilibrary/internal/apperr"
	"minilibrary/internal/platform/crypto"
)

// RoleLookup resolves a user's current role. When configured, a role change
// takes effect on the next request instead of at token expiry.
type RoleLookup interface {
	CurrentRole(ctx context.Context, userID string) (access.Role, error)
}

type actorHolderKey struct{}

type actorHolder struct {
	userID string
}

func contextWithActorHolder(ctx context.Context, h *actorHolder) context.Context {
	return context.WithValue(ctx, actorHolderKey{}, h)
}

func AuthMiddleware(secret string, roles RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				WriteError(w, r, apperr.ErrUnauthorized)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				WriteError(w, r, apperr.ErrUnauthorized)
				return
			}

			actor := access.Actor{UserID: claims.Sub, Role: access.Role(claims.Role)}
			if roles != nil {
				role, err := roles.CurrentRole(r.Context(), claims.Sub)
				switch {
				case err == nil:
					actor.Role = role
				case apperr.KindOf(err) == apperr.KindNotFound:
					WriteError(w, r, apperr.ErrUnauthorized)
					return
				default:
					WriteError(w, r, err)
					return
				}
			}
			if !actor.Authenticated() {
				WriteError(w, r, apperr.ErrUnauthorized)
				return
			}

			if h, ok := r.Context().Value(actorHolderKey{}).(*actorHolder); ok {
				h.userID = actor.UserID
			}
			ctx := ContextWithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers ranked below min before the handler runs.
func RequireRole(min access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ActorFrom(r).Authorize(access.MinRole(min)); err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
