package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// SQLXRepo reads the dashboard through database/sql so the reporting
// queries can scan straight into tagged structs.
type SQLXRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewSQLXRepo(db *sqlx.DB, timeout time.Duration) *SQLXRepo {
	return &SQLXRepo{db: db, timeout: timeout}
}

// NewSQLXRepoFromPool shares the application's pgx pool.
func NewSQLXRepoFromPool(pool *pgxpool.Pool, timeout time.Duration) *SQLXRepo {
	return NewSQLXRepo(sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"), timeout)
}

func (r *SQLXRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLXRepo) count(ctx context.Context, query string, args ...any) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var n int
	err := r.db.GetContext(ctx, &n, query, args...)
	return n, err
}

func (r *SQLXRepo) CountBooks(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books`)
}

func (r *SQLXRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *SQLXRepo) CountActive(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM transactions WHERE status = 'ACTIVE'`)
}

func (r *SQLXRepo) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM transactions WHERE status = 'ACTIVE' AND due_date < $1`, now)
}

func (r *SQLXRepo) RecentTransactions(ctx context.Context, limit int) ([]RecentTransaction, error) {
	const query = `
		SELECT t.id, t.book_id, b.title AS book_title, t.user_id, u.name AS user_name,
		       t.status, t.checkout_date, t.due_date, t.return_date
		FROM transactions t
		JOIN books b ON b.id = t.book_id
		JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC, t.id
		LIMIT $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	out := []RecentTransaction{}
	err := r.db.SelectContext(ctx, &out, query, limit)
	return out, err
}

func (r *SQLXRepo) GenreCounts(ctx context.Context, limit int) ([]GenreCount, error) {
	const query = `
		SELECT genre, COUNT(*) AS count
		FROM books
		WHERE genre IS NOT NULL
		GROUP BY genre
		ORDER BY count DESC, genre
		LIMIT $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	out := []GenreCount{}
	err := r.db.SelectContext(ctx, &out, query, limit)
	return out, err
}

func (r *SQLXRepo) CheckoutsByMonth(ctx context.Context, since time.Time) ([]MonthBucket, error) {
	const query = `
		SELECT date_trunc('month', checkout_date AT TIME ZONE 'UTC') AS month, COUNT(*) AS count
		FROM transactions
		WHERE checkout_date >= $1
		GROUP BY month
		ORDER BY month`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	out := []MonthBucket{}
	err := r.db.SelectContext(ctx, &out, query, since)
	return out, err
}
