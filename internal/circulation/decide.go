package circulation

import (
	"time"

	"minilibrary/internal/access"
	"minilibrary/internal/inventory"
)

// checkoutState is what Checkout reads under the book lock.
type checkoutState struct {
	counts     inventory.Counts
	userExists bool
	hasActive  bool
}

// decideCheckout returns the book's counts after lending one copy.
// The checks run in a fixed order so the reported reason is stable.
func decideCheckout(s checkoutState) (inventory.Counts, error) {
	if !s.userExists {
		return s.counts, ErrUserNotFound
	}
	if s.counts.Available <= 0 {
		return s.counts, ErrNoCopiesAvailable
	}
	if s.hasActive {
		return s.counts, ErrAlreadyCheckedOut
	}
	return inventory.CheckOut(s.counts)
}

// decideReturn checks that t may be returned by actor.
func decideReturn(t Transaction, actor access.Actor) error {
	if t.Status == StatusReturned {
		return ErrAlreadyReturned
	}
	return actor.Authorize(access.SelfOr(t.UserID, access.Librarian))
}

// reserveState is what Reserve reads under the book lock, after the
// caller's own lapsed reservations have been expired.
type reserveState struct {
	counts     inventory.Counts
	hasPending bool
}

func decideReserve(s reserveState) error {
	if s.counts.Available > 0 {
		return ErrCopiesAvailable
	}
	if s.hasPending {
		return ErrAlreadyReserved
	}
	return nil
}

func decideCancel(r Reservation, actor access.Actor, now time.Time) error {
	if err := actor.Authorize(access.SelfOr(r.UserID, access.Librarian)); err != nil {
		return err
	}
	if r.Status != ReservationPending || !now.Before(r.ExpiresAt) {
		return ErrReservationNotPending
	}
	return nil
}
