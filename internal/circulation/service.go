package circulation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"minilibrary/internal/access"
	"minilibrary/internal/inventory"
)

// Service implements the circulation workflow on top of a Store.
type Service struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("circulation: store must not be nil")
	}
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Checkout lends one copy of a book. Staff may check out on behalf of
// another user; members only for themselves.
func (s *Service) Checkout(ctx context.Context, actor access.Actor, cmd CheckoutCmd) (Transaction, error) {
	target := cmd.UserID
	if target == "" {
		target = actor.UserID
	}
	if err := actor.Authorize(access.SelfOr(target, access.Librarian)); err != nil {
		return Transaction{}, err
	}
	now := s.now().UTC()
	if !cmd.DueDate.After(now) {
		return Transaction{}, ErrDueDateNotInFuture
	}

	var out Transaction
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		counts, err := tx.LockBook(ctx, cmd.BookID)
		if err != nil {
			return err
		}
		st := checkoutState{counts: counts}
		if st.userExists, err = tx.UserExists(ctx, target); err != nil {
			return err
		}
		if st.userExists {
			if st.hasActive, err = tx.HasActiveCheckout(ctx, cmd.BookID, target); err != nil {
				return err
			}
		}

		next, err := decideCheckout(st)
		if err != nil {
			return err
		}

		t := Transaction{
			BookID:       cmd.BookID,
			UserID:       target,
			CheckoutDate: now,
			DueDate:      cmd.DueDate.UTC(),
			Status:       StatusActive,
		}
		if err := tx.InsertTransaction(ctx, &t); err != nil {
			return err
		}
		if err := tx.SetAvailable(ctx, cmd.BookID, next.Available); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}

	s.logger.InfoContext(ctx, "book checked out",
		"transaction_id", out.ID,
		"book_id", out.BookID,
		"user_id", out.UserID,
		"actor_id", actor.UserID,
	)
	return out, nil
}

// Return closes an active transaction and puts the copy back on the shelf.
func (s *Service) Return(ctx context.Context, actor access.Actor, transactionID string) (Transaction, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return Transaction{}, err
	}
	now := s.now().UTC()

	var out Transaction
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		t, err := tx.LockTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := decideReturn(t, actor); err != nil {
			return err
		}

		counts, err := tx.LockBook(ctx, t.BookID)
		if err != nil {
			return err
		}
		lent, err := tx.CountActive(ctx, t.BookID)
		if err != nil {
			return err
		}
		next, err := inventory.Return(counts, lent)
		if err != nil {
			return err
		}

		if err := tx.MarkReturned(ctx, t.ID, now); err != nil {
			return err
		}
		if err := tx.SetAvailable(ctx, t.BookID, next.Available); err != nil {
			return err
		}
		t.Status = StatusReturned
		t.ReturnDate = &now
		out = t
		return nil
	})
	if err != nil {
		if errors.Is(err, inventory.ErrOverReturn) {
			s.logger.ErrorContext(ctx, "return found no active loan on the book",
				"transaction_id", transactionID,
			)
		}
		return Transaction{}, err
	}

	s.logger.InfoContext(ctx, "book returned",
		"transaction_id", out.ID,
		"book_id", out.BookID,
		"user_id", out.UserID,
		"actor_id", actor.UserID,
	)
	return out, nil
}

// Reserve puts the caller on the waiting list of a book with no copies on
// the shelf.
func (s *Service) Reserve(ctx context.Context, actor access.Actor, bookID string) (Reservation, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return Reservation{}, err
	}
	now := s.now().UTC()

	var out Reservation
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		counts, err := tx.LockBook(ctx, bookID)
		if err != nil {
			return err
		}
		if _, err := tx.ExpireLapsed(ctx, bookID, actor.UserID, now); err != nil {
			return err
		}
		st := reserveState{counts: counts}
		if st.hasPending, err = tx.HasPendingReservation(ctx, bookID, actor.UserID); err != nil {
			return err
		}
		if err := decideReserve(st); err != nil {
			return err
		}

		r := Reservation{
			BookID:    bookID,
			UserID:    actor.UserID,
			Status:    ReservationPending,
			ExpiresAt: now.Add(ReservationHold),
		}
		if err := tx.InsertReservation(ctx, &r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return Reservation{}, err
	}

	s.logger.InfoContext(ctx, "book reserved",
		"reservation_id", out.ID,
		"book_id", out.BookID,
		"user_id", out.UserID,
	)
	return out, nil
}

// CancelReservation withdraws a pending reservation.
func (s *Service) CancelReservation(ctx context.Context, actor access.Actor, reservationID string) (Reservation, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return Reservation{}, err
	}
	now := s.now().UTC()

	var out Reservation
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := tx.LockReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := decideCancel(r, actor, now); err != nil {
			return err
		}
		if err := tx.SetReservationStatus(ctx, r.ID, ReservationCancelled); err != nil {
			return err
		}
		r.Status = ReservationCancelled
		out = r
		return nil
	})
	if err != nil {
		return Reservation{}, err
	}
	return out, nil
}

// ExpireReservations marks every lapsed pending reservation EXPIRED.
func (s *Service) ExpireReservations(ctx context.Context, actor access.Actor) (int, error) {
	if err := actor.Authorize(access.MinRole(access.Admin)); err != nil {
		return 0, err
	}
	n, err := s.store.ExpireReservations(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "reservations expired", "count", n, "actor_id", actor.UserID)
	return n, nil
}

// ListTransactions returns a user's transactions, newest first. An empty
// userID means the caller.
func (s *Service) ListTransactions(ctx context.Context, actor access.Actor, userID, status string) ([]Transaction, error) {
	if userID == "" {
		userID = actor.UserID
	}
	if err := actor.Authorize(access.SelfOr(userID, access.Librarian)); err != nil {
		return nil, err
	}
	st, err := ParseTransactionStatus(status)
	if err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, TransactionFilter{UserID: userID, Status: st})
}

// ListReservations returns a user's pending, unexpired reservations.
func (s *Service) ListReservations(ctx context.Context, actor access.Actor, userID string) ([]Reservation, error) {
	if userID == "" {
		userID = actor.UserID
	}
	if err := actor.Authorize(access.SelfOr(userID, access.Librarian)); err != nil {
		return nil, err
	}
	return s.store.ListReservations(ctx, ReservationFilter{UserID: userID, Now: s.now().UTC()})
}
