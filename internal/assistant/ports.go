package assistant

import (
	"context"

	"minilibrary/internal/book"
	"minilibrary/internal/platform/gemini"
)

// TextGenerator produces a model reply for a system prompt and a
// conversation.
type TextGenerator interface {
	Generate(ctx context.Context, system string, messages []gemini.Message) (string, error)
}

// Catalog runs structured book searches.
type Catalog interface {
	Search(ctx context.Context, q book.Query) ([]book.Listing, error)
}

// Library supplies the context the prompts are built from.
type Library interface {
	ReadingHistory(ctx context.Context, userID string, limit int) ([]HistoryEntry, error)
	AvailableBooks(ctx context.Context, limit int) ([]CatalogEntry, error)
	CatalogSnapshot(ctx context.Context, limit int) ([]CatalogEntry, error)
}

type unavailable struct{}

func (unavailable) Generate(context.Context, string, []gemini.Message) (string, error) {
	return "", ErrUnavailable
}
