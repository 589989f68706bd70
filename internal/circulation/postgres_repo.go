package circulation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"minilibrary/internal/inventory"
	"minilibrary/internal/platform/postgres"
)

// PostgresStore runs each unit of work in one pgx transaction at the
// database's default isolation; the row locks taken by the Lock methods
// serialize competing decisions on the same book, transaction or
// reservation.
type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ExpireReservations(ctx context.Context, now time.Time) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx,
		`UPDATE reservations SET status = 'EXPIRED' WHERE status = 'PENDING' AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	if !postgres.ValidID(f.UserID) {
		return []Transaction{}, nil
	}
	const query = `
		SELECT t.id, t.book_id, t.user_id, t.checkout_date, t.due_date, t.return_date, t.status, t.created_at,
		       b.title, b.author, b.cover_image,
		       u.name, u.email
		FROM transactions t
		JOIN books b ON b.id = t.book_id
		JOIN users u ON u.id = t.user_id
		WHERE t.user_id = $1 AND ($2::text = '' OR t.status = $2::text)
		ORDER BY t.created_at DESC, t.id`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, query, f.UserID, string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		b := &BookRef{}
		u := &UserRef{}
		if err := rows.Scan(
			&t.ID, &t.BookID, &t.UserID, &t.CheckoutDate, &t.DueDate, &t.ReturnDate, &t.Status, &t.CreatedAt,
			&b.Title, &b.Author, &b.CoverImage,
			&u.Name, &u.Email,
		); err != nil {
			return nil, err
		}
		b.ID, u.ID = t.BookID, t.UserID
		t.Book, t.User = b, u
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListReservations(ctx context.Context, f ReservationFilter) ([]Reservation, error) {
	if !postgres.ValidID(f.UserID) {
		return []Reservation{}, nil
	}
	const query = `
		SELECT r.id, r.book_id, r.user_id, r.status, r.expires_at, r.created_at,
		       b.title, b.author, b.cover_image, b.available_copies
		FROM reservations r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1 AND r.status = 'PENDING' AND r.expires_at > $2
		ORDER BY r.created_at DESC, r.id`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, query, f.UserID, f.Now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Reservation{}
	for rows.Next() {
		var r Reservation
		b := &BookRef{}
		var available int
		if err := rows.Scan(
			&r.ID, &r.BookID, &r.UserID, &r.Status, &r.ExpiresAt, &r.CreatedAt,
			&b.Title, &b.Author, &b.CoverImage, &available,
		); err != nil {
			return nil, err
		}
		b.ID = r.BookID
		b.AvailableCopies = &available
		r.Book = b
		out = append(out, r)
	}
	return out, rows.Err()
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LockBook(ctx context.Context, bookID string) (inventory.Counts, error) {
	if !postgres.ValidID(bookID) {
		return inventory.Counts{}, ErrBookNotFound
	}
	var c inventory.Counts
	err := t.tx.QueryRow(ctx,
		`SELECT total_copies, available_copies FROM books WHERE id = $1 FOR UPDATE`, bookID,
	).Scan(&c.Total, &c.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return inventory.Counts{}, ErrBookNotFound
	}
	return c, err
}

func (t *pgTx) SetAvailable(ctx context.Context, bookID string, available int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE books SET available_copies = $2, updated_at = NOW() WHERE id = $1`, bookID, available)
	return err
}

func (t *pgTx) UserExists(ctx context.Context, userID string) (bool, error) {
	if !postgres.ValidID(userID) {
		return false, nil
	}
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&ok)
	return ok, err
}

func (t *pgTx) HasActiveCheckout(ctx context.Context, bookID, userID string) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE book_id = $1 AND user_id = $2 AND status = 'ACTIVE')`,
		bookID, userID,
	).Scan(&ok)
	return ok, err
}

func (t *pgTx) CountActive(ctx context.Context, bookID string) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE book_id = $1 AND status = 'ACTIVE'`,
		bookID,
	).Scan(&n)
	return n, err
}

func (t *pgTx) InsertTransaction(ctx context.Context, tr *Transaction) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO transactions (book_id, user_id, checkout_date, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		tr.BookID, tr.UserID, tr.CheckoutDate, tr.DueDate, string(tr.Status),
	).Scan(&tr.ID, &tr.CreatedAt)
	if postgres.IsCode(err, postgres.UniqueViolation, "transactions_one_active_idx") {
		return ErrAlreadyCheckedOut
	}
	return err
}

func (t *pgTx) LockTransaction(ctx context.Context, id string) (Transaction, error) {
	if !postgres.ValidID(id) {
		return Transaction{}, ErrTransactionNotFound
	}
	var tr Transaction
	err := t.tx.QueryRow(ctx, `
		SELECT id, book_id, user_id, checkout_date, due_date, return_date, status, created_at
		FROM transactions WHERE id = $1 FOR UPDATE`, id,
	).Scan(&tr.ID, &tr.BookID, &tr.UserID, &tr.CheckoutDate, &tr.DueDate, &tr.ReturnDate, &tr.Status, &tr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	return tr, err
}

func (t *pgTx) MarkReturned(ctx context.Context, id string, at time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE transactions SET status = 'RETURNED', return_date = $2 WHERE id = $1`, id, at)
	return err
}

func (t *pgTx) ExpireLapsed(ctx context.Context, bookID, userID string, now time.Time) (int, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE reservations SET status = 'EXPIRED'
		WHERE book_id = $1 AND user_id = $2 AND status = 'PENDING' AND expires_at <= $3`,
		bookID, userID, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (t *pgTx) HasPendingReservation(ctx context.Context, bookID, userID string) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE book_id = $1 AND user_id = $2 AND status = 'PENDING')`,
		bookID, userID,
	).Scan(&ok)
	return ok, err
}

func (t *pgTx) InsertReservation(ctx context.Context, r *Reservation) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO reservations (book_id, user_id, status, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		r.BookID, r.UserID, string(r.Status), r.ExpiresAt,
	).Scan(&r.ID, &r.CreatedAt)
	switch {
	case postgres.IsCode(err, postgres.UniqueViolation, "reservations_one_pending_idx"):
		return ErrAlreadyReserved
	case postgres.IsCode(err, postgres.ForeignKeyViolation, "reservations_user_id_fkey"):
		return ErrUserNotFound
	}
	return err
}

func (t *pgTx) LockReservation(ctx context.Context, id string) (Reservation, error) {
	if !postgres.ValidID(id) {
		return Reservation{}, ErrReservationNotFound
	}
	var r Reservation
	err := t.tx.QueryRow(ctx, `
		SELECT id, book_id, user_id, status, expires_at, created_at
		FROM reservations WHERE id = $1 FOR UPDATE`, id,
	).Scan(&r.ID, &r.BookID, &r.UserID, &r.Status, &r.ExpiresAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, ErrReservationNotFound
	}
	return r, err
}

func (t *pgTx) SetReservationStatus(ctx context.Context, id string, status ReservationStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE reservations SET status = $2 WHERE id = $1`, id, string(status))
	return err
}
