package circulation

import (
	"context"
	"time"

	"minilibrary/internal/inventory"
)

// Tx is the unit of work a circulation operation runs in. Lock methods take
// a row lock held until the transaction ends.
type Tx interface {
	LockBook(ctx context.Context, bookID string) (inventory.Counts, error)
	SetAvailable(ctx context.Context, bookID string, available int) error
	UserExists(ctx context.Context, userID string) (bool, error)

	HasActiveCheckout(ctx context.Context, bookID, userID string) (bool, error)
	// CountActive is the number of ACTIVE transactions on the book. Callers
	// hold the book lock so the count cannot move underneath them.
	CountActive(ctx context.Context, bookID string) (int, error)
	InsertTransaction(ctx context.Context, t *Transaction) error
	LockTransaction(ctx context.Context, id string) (Transaction, error)
	MarkReturned(ctx context.Context, id string, at time.Time) error

	// ExpireLapsed marks the user's pending reservations for the book that
	// expired at or before now as EXPIRED.
	ExpireLapsed(ctx context.Context, bookID, userID string, now time.Time) (int, error)
	HasPendingReservation(ctx context.Context, bookID, userID string) (bool, error)
	InsertReservation(ctx context.Context, r *Reservation) error
	LockReservation(ctx context.Context, id string) (Reservation, error)
	SetReservationStatus(ctx context.Context, id string, status ReservationStatus) error
}

// Store runs units of work and serves read-only listings.
type Store interface {
	// InTx commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	ExpireReservations(ctx context.Context, now time.Time) (int, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]Transaction, error)
	ListReservations(ctx context.Context, f ReservationFilter) ([]Reservation, error)
}
