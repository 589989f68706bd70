package book

import (
	"context"

	"minilibrary/internal/platform/openlibrary"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Listing, int, error)
	GetByID(ctx context.Context, id string) (Listing, error)
	Reviews(ctx context.Context, bookID string) ([]BookReview, error)
	ActiveLoans(ctx context.Context, bookID string) ([]ActiveLoan, error)
	Create(ctx context.Context, b *Book) error
	// Update locks the row, passes it to apply together with the number of
	// ACTIVE transactions on the book and stores the result in one
	// transaction.
	Update(ctx context.Context, id string, apply func(cur Book, activeLoans int) (Book, error)) (Book, error)
	// Delete fails with ErrHasActiveCheckouts while copies are lent out.
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]Book, error)
}

// MetadataSource looks up bibliographic data by ISBN.
type MetadataSource interface {
	LookupISBN(ctx context.Context, isbn string) (*openlibrary.Edition, error)
}
