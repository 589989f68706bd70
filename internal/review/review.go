// Package review keeps one rating and comment per (book, user) pair. A
// second submission overwrites the first.
package review

import (
	"strings"
	"time"

	"minilibrary/internal/apperr"
)

var ErrBookNotFound = apperr.New(apperr.KindNotFound, "BOOK_NOT_FOUND", "book not found")

// Review is a member's rating of a book.
type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is a review submission.
type Input struct {
	BookID  string  `json:"book_id" validate:"required"`
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// normalizedComment trims the comment and drops it when blank.
func (in Input) normalizedComment() *string {
	if in.Comment == nil {
		return nil
	}
	c := strings.TrimSpace(*in.Comment)
	if c == "" {
		return nil
	}
	return &c
}

// Summary is a book's rating, derived on read.
type Summary struct {
	Average *float64 `json:"average_rating"`
	Count   int      `json:"review_count"`
}

// Summarize returns the arithmetic mean of ratings. The average of no
// ratings is absent, not zero.
func Summarize(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return Summary{Average: &avg, Count: len(ratings)}
}
