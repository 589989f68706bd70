package book

import (
	"context"
	"errors"
	"fmt"
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

const bookSelectList = `
	b.id, b.title, b.author, b.isbn, b.genre, b.publisher, b.published_year,
	b.page_count, b.language, b.description, b.cover_image,
	b.total_copies, b.available_copies, b.created_at, b.updated_at`

func bookDest(b *Book) []any {
	return []any{
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Genre, &b.Publisher, &b.PublishedYear,
		&b.PageCount, &b.Language, &b.Description, &b.CoverImage,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt,
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case postgres.IsCode(err, postgres.UniqueViolation, "books_isbn_key"):
		return ErrDuplicateISBN
	}
	return err
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Listing, int, error) {
	pageSQL, pageArgs, countSQL, countArgs, err := listSQL(q)
	if err != nil {
		return nil, 0, fmt.Errorf("book: build list query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Listing{}
	for rows.Next() {
		var l Listing
		dest := append(bookDest(&l.Book), &l.AverageRating, &l.ReviewCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Listing, error) {
	if !postgres.ValidID(id) {
		return Listing{}, ErrNotFound
	}
	const query = `
		SELECT ` + bookSelectList + `,
		       (SELECT AVG(rating)::float8 FROM reviews WHERE book_id = b.id),
		       (SELECT COUNT(*) FROM reviews WHERE book_id = b.id)
		FROM books b
		WHERE b.id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var l Listing
	dest := append(bookDest(&l.Book), &l.AverageRating, &l.ReviewCount)
	if err := r.db.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		return Listing{}, translate(err)
	}
	return l, nil
}

func (r *PostgresRepo) Reviews(ctx context.Context, bookID string) ([]BookReview, error) {
	const query = `
		SELECT rv.id, rv.user_id, u.name, rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.book_id = $1
		ORDER BY rv.created_at DESC, rv.id`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BookReview{}
	for rows.Next() {
		var rv BookReview
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ActiveLoans(ctx context.Context, bookID string) ([]ActiveLoan, error) {
	const query = `
		SELECT t.id, t.user_id, u.name, t.checkout_date, t.due_date
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		WHERE t.book_id = $1 AND t.status = 'ACTIVE'
		ORDER BY t.due_date`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActiveLoan{}
	for rows.Next() {
		var l ActiveLoan
		if err := rows.Scan(&l.TransactionID, &l.UserID, &l.UserName, &l.CheckoutDate, &l.DueDate); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (title, author, isbn, genre, publisher, published_year, page_count,
		                   language, description, cover_image, total_copies, available_copies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(ctx, query,
		b.Title, b.Author, b.ISBN, b.Genre, b.Publisher, b.PublishedYear, b.PageCount,
		b.Language, b.Description, b.CoverImage, b.TotalCopies, b.AvailableCopies,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return translate(err)
}

func (r *PostgresRepo) Update(ctx context.Context, id string, apply func(Book, int) (Book, error)) (Book, error) {
	if !postgres.ValidID(id) {
		return Book{}, ErrNotFound
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Book{}, err
	}
	defer tx.Rollback(ctx)

	var cur Book
	err = tx.QueryRow(ctx, `SELECT `+bookSelectList+` FROM books b WHERE b.id = $1 FOR UPDATE`, id).
		Scan(bookDest(&cur)...)
	if err != nil {
		return Book{}, translate(err)
	}

	var activeLoans int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE book_id = $1 AND status = 'ACTIVE'`, id,
	).Scan(&activeLoans)
	if err != nil {
		return Book{}, err
	}

	next, err := apply(cur, activeLoans)
	if err != nil {
		return Book{}, err
	}

	const update = `
		UPDATE books SET
			title = $2, author = $3, isbn = $4, genre = $5, publisher = $6,
			published_year = $7, page_count = $8, language = $9, description = $10,
			cover_image = $11, total_copies = $12, available_copies = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err = tx.QueryRow(ctx, update, id,
		next.Title, next.Author, next.ISBN, next.Genre, next.Publisher,
		next.PublishedYear, next.PageCount, next.Language, next.Description,
		next.CoverImage, next.TotalCopies, next.AvailableCopies,
	).Scan(&next.UpdatedAt)
	if err != nil {
		return Book{}, translate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Book{}, err
	}
	return next, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if !postgres.ValidID(id) {
		return ErrNotFound
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked string
	if err := tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		return translate(err)
	}

	var active bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE book_id = $1 AND status = 'ACTIVE')`, id,
	).Scan(&active)
	if err != nil {
		return err
	}
	if active {
		return ErrHasActiveCheckouts
	}

	if _, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepo) All(ctx context.Context) ([]Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+bookSelectList+` FROM books b ORDER BY b.title, b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(bookDest(&b)...); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
