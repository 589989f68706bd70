package assistant

import (
	"context"
	"log/slog"
	"strings"

	"minilibrary/internal/access"
	"minilibrary/internal/book"
	"minilibrary/internal/platform/gemini"
	"minilibrary/internal/validate"
)

type Service struct {
	gen     TextGenerator
	catalog Catalog
	library Library
	logger  *slog.Logger
}

// NewService wires the assistant. A nil generator makes every feature fall
// back to its empty result.
func NewService(gen TextGenerator, catalog Catalog, library Library, logger *slog.Logger) *Service {
	if gen == nil {
		gen = unavailable{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, catalog: catalog, library: library, logger: logger}
}

func (s *Service) ask(ctx context.Context, prompt string) (string, error) {
	return s.gen.Generate(ctx, "", []gemini.Message{{Role: "user", Text: prompt}})
}

func (s *Service) degrade(ctx context.Context, feature string, err error) {
	s.logger.WarnContext(ctx, "assistant fell back", "feature", feature, "error", err)
}

// Search turns a natural-language query into catalog filters. When the
// model cannot help it searches title and author for the raw query.
func (s *Service) Search(ctx context.Context, actor access.Actor, query string) (SearchResult, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return SearchResult{}, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{Books: []book.Listing{}}, nil
	}

	text, err := s.ask(ctx, searchPrompt(query))
	var filters Filters
	if err == nil {
		filters, err = parseFilters(text)
	}
	if err != nil {
		s.degrade(ctx, "search", err)
		books, err := s.catalog.Search(ctx, book.Query{Q: query, Limit: SearchLimit})
		if err != nil {
			return SearchResult{}, err
		}
		return SearchResult{Books: books}, nil
	}

	q := book.Query{
		Title:         filters.Title,
		Author:        filters.Author,
		GenreContains: filters.Genre,
		AvailableOnly: filters.AvailableOnly,
		Limit:         SearchLimit,
	}
	if filters.empty() {
		q.Q = query
	}
	books, err := s.catalog.Search(ctx, q)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Books: books, Filters: filters}, nil
}

// Recommend suggests available books based on the caller's checkouts.
func (s *Service) Recommend(ctx context.Context, actor access.Actor) ([]Recommendation, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return nil, err
	}

	history, err := s.library.ReadingHistory(ctx, actor.UserID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	candidates, err := s.library.AvailableBooks(ctx, CandidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Recommendation{}, nil
	}

	text, err := s.ask(ctx, recommendPrompt(history, candidates))
	if err != nil {
		s.degrade(ctx, "recommend", err)
		return []Recommendation{}, nil
	}
	recs, err := parseRecommendations(text, candidates)
	if err != nil {
		s.degrade(ctx, "recommend", err)
		return []Recommendation{}, nil
	}
	return recs, nil
}

// Summarize drafts a catalog description for a book.
func (s *Service) Summarize(ctx context.Context, actor access.Actor, in SummarizeInput) (string, error) {
	if err := actor.Authorize(access.MinRole(access.Librarian)); err != nil {
		return "", err
	}
	if err := validate.Struct(in); err != nil {
		return "", err
	}

	text, err := s.ask(ctx, summaryPrompt(in))
	if err != nil {
		s.degrade(ctx, "summarize", err)
		return "", nil
	}
	return text, nil
}

// Chat answers the latest message of a conversation about the library.
func (s *Service) Chat(ctx context.Context, actor access.Actor, messages []ChatMessage) (string, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return "", err
	}
	if len(messages) > MaxChatTurns {
		messages = messages[len(messages)-MaxChatTurns:]
	}
	if len(messages) == 0 {
		return "", nil
	}

	catalog, err := s.library.CatalogSnapshot(ctx, ChatCatalogSize)
	if err != nil {
		return "", err
	}

	turns := make([]gemini.Message, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, gemini.Message{Role: m.Role, Text: m.Content})
	}
	reply, err := s.gen.Generate(ctx, chatSystemPrompt(catalog), turns)
	if err != nil {
		s.degrade(ctx, "chat", err)
		return "", nil
	}
	return reply, nil
}
