package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"minilibrary/internal/access"
	"minilibrary/internal/circulation"
	"minilibrary/internal/config"
	"minilibrary/internal/platform/postgres"
	"minilibrary/internal/review"
	"minilibrary/internal/user"
)

func main() {
	var (
		count    = flag.Int("books", 200, "Number of generated books on top of the classics")
		password = flag.String("password", "Library123", "Password for the seeded accounts")
		seed     = flag.Int64("seed", 1, "Random seed")
	)
	flag.Parse()

	config.LoadEnvFiles()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(context.Background(), logger, *count, *password, *seed); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

type account struct {
	email, name string
	role        access.Role
}

var accounts = []account{
	{"admin@library.test", "Ada Admin", access.Admin},
	{"librarian@library.test", "Lena Librarian", access.Librarian},
	{"member@library.test", "Milo Member", access.Member},
	{"reader@library.test", "Rita Reader", access.Member},
}

type seedBook struct {
	title, author, isbn, genre string
	year, copies               int
}

var classics = []seedBook{
	{"Pride and Prejudice", "Jane Austen", "9780141439518", "Romance", 1813, 3},
	{"Nineteen Eighty-Four", "George Orwell", "9780451524935", "Dystopian", 1949, 2},
	{"Dune", "Frank Herbert", "9780441013593", "Science Fiction", 1965, 2},
	{"The Hobbit", "J. R. R. Tolkien", "9780547928227", "Fantasy", 1937, 4},
	{"To Kill a Mockingbird", "Harper Lee", "9780061120084", "Fiction", 1960, 2},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "9780441478125", "Science Fiction", 1969, 1},
	{"Beloved", "Toni Morrison", "9781400033416", "Fiction", 1987, 1},
	{"A Brief History of Time", "Stephen Hawking", "9780553380163", "Science", 1988, 2},
	{"Sapiens", "Yuval Noah Harari", "9780062316097", "History", 2011, 3},
	{"The Name of the Rose", "Umberto Eco", "9780156001311", "Mystery", 1980, 1},
}

var (
	genres     = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	publishers = []string{"Penguin", "HarperCollins", "Oxford", "Cambridge", "MIT Press", "Vintage"}
	words      = []string{"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope", "Peace", "Nature", "Future", "Wisdom", "Light", "Time", "Space", "Mind"}
)

func run(ctx context.Context, logger *slog.Logger, count int, password string, seed int64) error {
	pool, err := postgres.Open(ctx, config.LoadDatabaseDSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := user.NewService(user.NewPostgresRepo(pool, 10*time.Second), quiet)

	ids := make(map[access.Role][]string)
	for _, a := range accounts {
		id, err := ensureAccount(ctx, users, a, password)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.email, err)
		}
		ids[a.role] = append(ids[a.role], id)
	}
	logger.Info("accounts ready", "count", len(accounts), "password", password)

	rng := rand.New(rand.NewSource(seed))
	books := append([]seedBook{}, classics...)
	for i := 0; i < count; i++ {
		books = append(books, seedBook{
			title:  fmt.Sprintf("The %s of %s", words[rng.Intn(len(words))], words[rng.Intn(len(words))]),
			author: fmt.Sprintf("Author %03d", rng.Intn(150)+1),
			genre:  genres[rng.Intn(len(genres))],
			year:   1950 + rng.Intn(75),
			copies: 1 + rng.Intn(4),
		})
	}

	n, err := copyBooks(ctx, pool, books, rng)
	if err != nil {
		return err
	}
	logger.Info("books inserted", "count", n)

	return seedActivity(ctx, logger, pool, ids[access.Member])
}

func ensureAccount(ctx context.Context, users *user.Service, a account, password string) (string, error) {
	u, err := users.Register(ctx, user.RegisterInput{Email: a.email, Name: a.name, Password: password})
	if errors.Is(err, user.ErrAlreadyExists) {
		u, err = users.GetByEmail(ctx, a.email)
	}
	if err != nil {
		return "", err
	}
	if u.Role != a.role {
		if _, err := users.UpdateRole(ctx, access.System, user.RoleUpdate{UserID: u.ID, Role: string(a.role)}); err != nil {
			return "", err
		}
	}
	return u.ID, nil
}

// copyBooks bulk loads books, skipping ISBNs already catalogued.
func copyBooks(ctx context.Context, pool *pgxpool.Pool, books []seedBook, rng *rand.Rand) (int64, error) {
	rows, err := pool.Query(ctx, `SELECT isbn FROM books WHERE isbn IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, isbn := range existing {
		have[isbn] = true
	}

	var src [][]any
	for _, b := range books {
		if b.isbn != "" && have[b.isbn] {
			continue
		}
		var isbn *string
		if b.isbn != "" {
			isbn = &b.isbn
		}
		pages := 120 + rng.Intn(700)
		publisher := publishers[rng.Intn(len(publishers))]
		src = append(src, []any{
			b.title, b.author, isbn, b.genre, publisher, b.year, pages, "English",
			fmt.Sprintf("A %s title by %s.", b.genre, b.author), b.copies, b.copies,
		})
	}

	return pool.CopyFrom(ctx,
		pgx.Identifier{"books"},
		[]string{"title", "author", "isbn", "genre", "publisher", "published_year", "page_count",
			"language", "description", "total_copies", "available_copies"},
		pgx.CopyFromRows(src),
	)
}

// seedActivity lends and reviews a few classics through the domain services
// so the dashboard has data.
func seedActivity(ctx context.Context, logger *slog.Logger, pool *pgxpool.Pool, members []string) error {
	circ, err := circulation.NewService(circulation.NewPostgresStore(pool, 10*time.Second), circulation.WithLogger(logger))
	if err != nil {
		return err
	}
	reviews := review.NewService(review.NewPostgresRepo(pool, 10*time.Second))

	rows, err := pool.Query(ctx, `SELECT id FROM books WHERE isbn IS NOT NULL ORDER BY title LIMIT 6`)
	if err != nil {
		return err
	}
	bookIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return err
	}

	due := time.Now().Add(14 * 24 * time.Hour)
	for i, bookID := range bookIDs {
		memberID := members[i%len(members)]
		member := access.Actor{UserID: memberID, Role: access.Member}

		_, err := circ.Checkout(ctx, access.System, circulation.CheckoutCmd{BookID: bookID, UserID: memberID, DueDate: due})
		switch {
		case err == nil, errors.Is(err, circulation.ErrAlreadyCheckedOut), errors.Is(err, circulation.ErrNoCopiesAvailable):
		default:
			return fmt.Errorf("checkout %s: %w", bookID, err)
		}

		if _, err := reviews.Submit(ctx, member, review.Input{BookID: bookID, Rating: 3 + i%3}); err != nil {
			return fmt.Errorf("review %s: %w", bookID, err)
		}
	}
	logger.Info("activity seeded", "books", len(bookIDs))
	return nil
}
