package stats

import (
	"context"
	"time"
)

// Repository runs the dashboard's reporting queries. Each method is one
// independent read.
type Repository interface {
	CountBooks(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)
	CountOverdue(ctx context.Context, now time.Time) (int, error)
	RecentTransactions(ctx context.Context, limit int) ([]RecentTransaction, error)
	// GenreCounts groups books by genre, most common first; books without a
	// genre are excluded.
	GenreCounts(ctx context.Context, limit int) ([]GenreCount, error)
	CheckoutsByMonth(ctx context.Context, since time.Time) ([]MonthBucket, error)
}
