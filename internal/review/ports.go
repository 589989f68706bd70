package review

import "context"

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=review

// Repository defines the contract for review storage.
type Repository interface {
	// Upsert inserts r or overwrites the rating and comment of the existing
	// review for the same book and user. r is filled with the stored row.
	Upsert(ctx context.Context, r *Review) error
	ListByBook(ctx context.Context, bookID string) ([]Review, error)
	Ratings(ctx context.Context, bookID string) ([]int, error)
}
