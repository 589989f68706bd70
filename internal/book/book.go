package book

import (
	"strings"
	"time"

	"minilibrary/internal/apperr"
	"minilibrary/internal/inventory"
)

var (
	ErrNotFound           = apperr.New(apperr.KindNotFound, "BOOK_NOT_FOUND", "book not found")
	ErrDuplicateISBN      = apperr.New(apperr.KindConflict, "ISBN_EXISTS", "a book with this ISBN already exists")
	ErrHasActiveCheckouts = apperr.New(apperr.KindConflict, "BOOK_HAS_ACTIVE_CHECKOUTS", "book has copies checked out")
	ErrNoMetadata         = apperr.New(apperr.KindNotFound, "ISBN_NOT_FOUND", "no catalog record found for this ISBN")
)

const DefaultLanguage = "English"

// Book is a catalog entry with its copy counters.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn"`
	Genre           *string   `json:"genre"`
	Publisher       *string   `json:"publisher"`
	PublishedYear   *int      `json:"published_year"`
	PageCount       *int      `json:"page_count"`
	Language        string    `json:"language"`
	Description     *string   `json:"description"`
	CoverImage      *string   `json:"cover_image"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b Book) Counts() inventory.Counts {
	return inventory.Counts{Total: b.TotalCopies, Available: b.AvailableCopies}
}

func (b *Book) setCounts(c inventory.Counts) {
	b.TotalCopies = c.Total
	b.AvailableCopies = c.Available
}

// Listing is a book with its derived rating summary.
type Listing struct {
	Book
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
}

// BookReview is a review as shown on the book page.
type BookReview struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ActiveLoan is a copy currently checked out, visible to staff.
type ActiveLoan struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	CheckoutDate  time.Time `json:"checkout_date"`
	DueDate       time.Time `json:"due_date"`
}

// Detail is the single-book view.
type Detail struct {
	Listing
	Reviews     []BookReview `json:"reviews"`
	ActiveLoans []ActiveLoan `json:"active_loans,omitempty"`
}

// Input is the staff-editable part of a book. Available copies are never
// accepted from clients.
type Input struct {
	Title         string  `json:"title" validate:"required,notblank,max=500"`
	Author        string  `json:"author" validate:"required,notblank,max=300"`
	ISBN          *string `json:"isbn" validate:"omitempty,isbn"`
	Genre         *string `json:"genre" validate:"omitempty,max=100"`
	Publisher     *string `json:"publisher" validate:"omitempty,max=200"`
	PublishedYear *int    `json:"published_year" validate:"omitempty,gte=0,lte=2100"`
	PageCount     *int    `json:"page_count" validate:"omitempty,gte=0"`
	Language      *string `json:"language" validate:"omitempty,max=50"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	CoverImage    *string `json:"cover_image" validate:"omitempty,url"`
	TotalCopies   *int    `json:"total_copies" validate:"omitempty,gte=1"`
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func normalizeISBN(s *string) *string {
	s = trimmed(s)
	if s == nil {
		return nil
	}
	n := strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(*s))
	return &n
}

// apply copies the descriptive fields of in onto b.
func (in Input) apply(b Book) Book {
	b.Title = strings.TrimSpace(in.Title)
	b.Author = strings.TrimSpace(in.Author)
	b.ISBN = normalizeISBN(in.ISBN)
	b.Genre = trimmed(in.Genre)
	b.Publisher = trimmed(in.Publisher)
	b.PublishedYear = in.PublishedYear
	b.PageCount = in.PageCount
	b.Description = trimmed(in.Description)
	b.CoverImage = trimmed(in.CoverImage)
	b.Language = DefaultLanguage
	if l := trimmed(in.Language); l != nil {
		b.Language = *l
	}
	return b
}

// Sort keys accepted by List.
const (
	SortCreatedAt     = "created_at"
	SortTitle         = "title"
	SortAuthor        = "author"
	SortPublishedYear = "published_year"
	SortRating        = "rating"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// Query defines filters and pagination for listing books.
type Query struct {
	Q             string // contains, over title, author, isbn and genre
	Title         string // contains
	Author        string // contains
	Genre         string // case-insensitive equality
	GenreContains string
	AvailableOnly bool
	Sort          string
	Desc          bool
	Page          int
	Limit         int
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	switch q.Sort {
	case SortCreatedAt, SortTitle, SortAuthor, SortPublishedYear, SortRating:
	default:
		q.Sort = SortCreatedAt
	}
	return q
}

func (q Query) offset() int {
	return (q.Page - 1) * q.Limit
}
