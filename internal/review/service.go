package review

import (
	"context"

	"minilibrary/internal/access"
	"minilibrary/internal/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit records the actor's review of a book, replacing any earlier one.
func (s *Service) Submit(ctx context.Context, actor access.Actor, in Input) (Review, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return Review{}, err
	}
	if err := validate.Struct(in); err != nil {
		return Review{}, err
	}

	r := Review{
		BookID:  in.BookID,
		UserID:  actor.UserID,
		Rating:  in.Rating,
		Comment: in.normalizedComment(),
	}
	if err := s.repo.Upsert(ctx, &r); err != nil {
		return Review{}, err
	}
	return r, nil
}

// ListByBook returns a book's reviews, newest first.
func (s *Service) ListByBook(ctx context.Context, actor access.Actor, bookID string) ([]Review, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return nil, err
	}
	return s.repo.ListByBook(ctx, bookID)
}

// Summary returns the book's average rating and review count.
func (s *Service) Summary(ctx context.Context, actor access.Actor, bookID string) (Summary, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return Summary{}, err
	}
	ratings, err := s.repo.Ratings(ctx, bookID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(ratings), nil
}
