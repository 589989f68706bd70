package main

import (
	"context"
	"net/http"
	"time"

	"minilibrary/internal/access"
	"minilibrary/internal/assistant"
	"minilibrary/internal/auth"
	"minilibrary/internal/book"
	"minilibrary/internal/circulation"
	"minilibrary/internal/httpx"
	"minilibrary/internal/review"
	"minilibrary/internal/stats"
	"minilibrary/internal/user"
)

// Pinger reports database readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	auth        *auth.HTTPHandler
	users       *user.HTTPHandler
	books       *book.HTTPHandler
	reviews     *review.HTTPHandler
	circulation *circulation.HTTPHandler
	stats       *stats.HTTPHandler
	assistant   *assistant.HTTPHandler
}

// newRouter registers every route. authn guards everything except the
// probes, registration and login.
func newRouter(h handlers, authn func(http.Handler) http.Handler, db Pinger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("POST /v1/auth/register", h.users.Register)
	mux.HandleFunc("POST /v1/auth/login", h.auth.Login)

	member := func(fn http.HandlerFunc) http.Handler {
		return authn(fn)
	}
	staff := func(min access.Role, fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, authn, httpx.RequireRole(min))
	}

	mux.Handle("GET /v1/me", member(h.users.Me))
	mux.Handle("GET /v1/users", staff(access.Admin, h.users.List))
	mux.Handle("PUT /v1/users", staff(access.Admin, h.users.UpdateRole))

	mux.Handle("GET /v1/books", member(h.books.List))
	mux.Handle("POST /v1/books", staff(access.Librarian, h.books.Create))
	mux.Handle("POST /v1/books/import", staff(access.Librarian, h.books.Import))
	mux.Handle("GET /v1/books/export.csv", staff(access.Librarian, h.books.Export))
	mux.Handle("GET /v1/books/{id}", member(h.books.Get))
	mux.Handle("PUT /v1/books/{id}", staff(access.Librarian, h.books.Update))
	mux.Handle("DELETE /v1/books/{id}", staff(access.Librarian, h.books.Delete))
	mux.Handle("GET /v1/books/{id}/reviews", member(h.reviews.ListByBook))

	mux.Handle("POST /v1/reviews", member(h.reviews.Submit))

	mux.Handle("GET /v1/transactions", member(h.circulation.ListTransactions))
	mux.Handle("POST /v1/transactions", member(h.circulation.Checkout))
	mux.Handle("PUT /v1/transactions/{id}", member(h.circulation.UpdateTransaction))

	mux.Handle("GET /v1/reservations", member(h.circulation.ListReservations))
	mux.Handle("POST /v1/reservations", member(h.circulation.Reserve))
	mux.Handle("POST /v1/reservations/expire", staff(access.Admin, h.circulation.ExpireReservations))
	mux.Handle("DELETE /v1/reservations/{id}", member(h.circulation.CancelReservation))

	mux.Handle("GET /v1/stats", staff(access.Librarian, h.stats.Dashboard))

	mux.Handle("POST /v1/ai/search", member(h.assistant.Search))
	mux.Handle("POST /v1/ai/recommend", member(h.assistant.Recommend))
	mux.Handle("POST /v1/ai/chat", member(h.assistant.Chat))
	mux.Handle("POST /v1/ai/summarize", staff(access.Librarian, h.assistant.Summarize))

	return mux
}
