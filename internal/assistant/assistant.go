// Package assistant offers best-effort AI help over the catalog: search
// from a natural-language query, recommendations, catalog summaries and a
// chat. Model failures and unparseable output degrade to empty results.
package assistant

import (
	"errors"

	"minilibrary/internal/book"
)

// ErrUnavailable is returned by the generator used when no model is
// configured.
var ErrUnavailable = errors.New("assistant: text generation not configured")

const (
	SearchLimit     = 20
	HistoryLimit    = 20
	CandidateLimit  = 50
	ChatCatalogSize = 100
	MaxChatTurns    = 40
)

// Filters is the structured form of a natural-language search.
type Filters struct {
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	Genre         string `json:"genre,omitempty"`
	AvailableOnly bool   `json:"availableOnly,omitempty"`
}

func (f Filters) empty() bool {
	return f.Title == "" && f.Author == "" && f.Genre == "" && !f.AvailableOnly
}

type SearchResult struct {
	Books   []book.Listing `json:"books"`
	Filters Filters        `json:"filters"`
}

type Recommendation struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// HistoryEntry is a book the user has checked out.
type HistoryEntry struct {
	Title  string
	Author string
	Genre  *string
}

// CatalogEntry is a book as described to the model.
type CatalogEntry struct {
	ID              string
	Title           string
	Author          string
	Genre           *string
	Description     *string
	AvailableCopies int
}

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type SummarizeInput struct {
	Title  string `json:"title" validate:"required,notblank"`
	Author string `json:"author" validate:"required,notblank"`
	ISBN   string `json:"isbn"`
}
