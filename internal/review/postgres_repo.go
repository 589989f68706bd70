package review

import (
	"context"
	"errors"
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

func (repo *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, repo.timeout)
}

func (repo *PostgresRepo) Upsert(ctx context.Context, r *Review) error {
	if !postgres.ValidID(r.BookID) {
		return ErrBookNotFound
	}
	const query = `
		INSERT INTO reviews (book_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (book_id, user_id)
		DO UPDATE SET rating = excluded.rating, comment = excluded.comment, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	err := repo.db.QueryRow(ctx, query, r.BookID, r.UserID, r.Rating, r.Comment).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if postgres.IsCode(err, postgres.ForeignKeyViolation, "reviews_book_id_fkey") {
		return ErrBookNotFound
	}
	return err
}

func (repo *PostgresRepo) ListByBook(ctx context.Context, bookID string) ([]Review, error) {
	if !postgres.ValidID(bookID) {
		return nil, ErrBookNotFound
	}
	const query = `
		SELECT rv.id, rv.book_id, rv.user_id, u.name, rv.rating, rv.comment, rv.created_at, rv.updated_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.book_id = $1
		ORDER BY rv.created_at DESC, rv.id`

	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	if err := repo.bookExists(ctx, bookID); err != nil {
		return nil, err
	}

	rows, err := repo.db.Query(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.BookID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (repo *PostgresRepo) Ratings(ctx context.Context, bookID string) ([]int, error) {
	if !postgres.ValidID(bookID) {
		return nil, ErrBookNotFound
	}

	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	if err := repo.bookExists(ctx, bookID); err != nil {
		return nil, err
	}

	rows, err := repo.db.Query(ctx, `SELECT rating FROM reviews WHERE book_id = $1`, bookID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (repo *PostgresRepo) bookExists(ctx context.Context, bookID string) error {
	var one int
	err := repo.db.QueryRow(ctx, `SELECT 1 FROM books WHERE id = $1`, bookID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrBookNotFound
	}
	return err
}
