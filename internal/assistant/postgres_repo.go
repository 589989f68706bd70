package assistant

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"minilibrary/internal/platform/postgres"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) ReadingHistory(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if !postgres.ValidID(userID) {
		return []HistoryEntry{}, nil
	}
	const query = `
		SELECT b.title, b.author, b.genre
		FROM transactions t
		JOIN books b ON b.id = t.book_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (HistoryEntry, error) {
		var h HistoryEntry
		err := row.Scan(&h.Title, &h.Author, &h.Genre)
		return h, err
	})
}

func (r *PostgresRepo) AvailableBooks(ctx context.Context, limit int) ([]CatalogEntry, error) {
	return r.entries(ctx, `
		SELECT id, title, author, genre, description, available_copies
		FROM books
		WHERE available_copies > 0
		ORDER BY created_at DESC
		LIMIT $1`, limit)
}

func (r *PostgresRepo) CatalogSnapshot(ctx context.Context, limit int) ([]CatalogEntry, error) {
	return r.entries(ctx, `
		SELECT id, title, author, genre, description, available_copies
		FROM books
		ORDER BY title
		LIMIT $1`, limit)
}

func (r *PostgresRepo) entries(ctx context.Context, query string, limit int) ([]CatalogEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CatalogEntry, error) {
		var c CatalogEntry
		err := row.Scan(&c.ID, &c.Title, &c.Author, &c.Genre, &c.Description, &c.AvailableCopies)
		return c, err
	})
}
