package book

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"minilibrary/internal/access"
	"minilibrary/internal/apperr"
	"minilibrary/internal/inventory"
	"minilibrary/internal/platform/openlibrary"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
	meta MetadataSource
}

// NewService creates a new book service. meta may be nil, which disables
// Import.
func NewService(repo Repository, meta MetadataSource) *Service {
	return &Service{repo: repo, meta: meta}
}

// List returns a page of books matching the query and the total match count.
func (s *Service) List(ctx context.Context, actor access.Actor, q Query) ([]Listing, int, Query, error) {
	q = q.normalized()
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return nil, 0, q, err
	}
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, q, err
	}
	return items, total, q, nil
}

// Search runs a catalog query on behalf of an already-authorized caller.
func (s *Service) Search(ctx context.Context, q Query) ([]Listing, error) {
	items, _, err := s.repo.List(ctx, q.normalized())
	return items, err
}

// Get returns the book with its reviews; staff also see who holds copies.
func (s *Service) Get(ctx context.Context, actor access.Actor, id string) (Detail, error) {
	if err := actor.Authorize(access.MinRole(access.Member)); err != nil {
		return Detail{}, err
	}
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	reviews, err := s.repo.Reviews(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Listing: l, Reviews: reviews}
	if access.HasMinRole(actor.Role, access.Librarian) {
		if d.ActiveLoans, err = s.repo.ActiveLoans(ctx, id); err != nil {
			return Detail{}, err
		}
	}
	return d, nil
}

// Create adds a book with every copy on the shelf.
func (s *Service) Create(ctx context.Context, actor access.Actor, in Input) (Book, error) {
	if err := actor.Authorize(access.MinRole(access.Librarian)); err != nil {
		return Book{}, err
	}
	total := 1
	if in.TotalCopies != nil {
		total = *in.TotalCopies
	}
	counts, err := inventory.New(total)
	if err != nil {
		return Book{}, err
	}
	b := in.apply(Book{})
	b.setCounts(counts)
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Update replaces the descriptive fields and resizes the copy count.
func (s *Service) Update(ctx context.Context, actor access.Actor, id string, in Input) (Book, error) {
	if err := actor.Authorize(access.MinRole(access.Librarian)); err != nil {
		return Book{}, err
	}
	return s.repo.Update(ctx, id, func(cur Book, activeLoans int) (Book, error) {
		next := in.apply(cur)
		if in.TotalCopies != nil {
			counts, err := inventory.Resize(cur.Counts(), *in.TotalCopies, activeLoans)
			if err != nil {
				return Book{}, err
			}
			next.setCounts(counts)
		}
		return next, nil
	})
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := actor.Authorize(access.MinRole(access.Librarian)); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

var ErrImportUnavailable = apperr.New(apperr.KindPreconditionFailed, "IMPORT_UNAVAILABLE", "ISBN import is not configured")

// Import creates a book from Open Library metadata.
func (s *Service) Import(ctx context.Context, actor access.Actor, isbn string, totalCopies int) (Book, error) {
	if err := actor.Authorize(access.MinRole(access.Librarian)); err != nil {
		return Book{}, err
	}
	if s.meta == nil {
		return Book{}, ErrImportUnavailable
	}
	n := normalizeISBN(&isbn)
	if n == nil {
		return Book{}, apperr.InvalidField("isbn", "isbn is required")
	}
	isbn = *n

	ed, err := s.meta.LookupISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, openlibrary.ErrNotFound) {
			return Book{}, ErrNoMetadata
		}
		return Book{}, fmt.Errorf("book: lookup isbn %s: %w", isbn, err)
	}

	in := editionInput(ed)
	in.TotalCopies = &totalCopies
	return s.Create(ctx, actor, in)
}

func editionInput(ed *openlibrary.Edition) Input {
	in := Input{
		Title:         ed.Title,
		Author:        strings.Join(ed.Authors, ", "),
		ISBN:          &ed.ISBN,
		PublishedYear: ed.PublishedYear,
		PageCount:     ed.PageCount,
	}
	if in.Title == "" {
		in.Title = ed.ISBN
	}
	if in.Author == "" {
		in.Author = "Unknown"
	}
	if ed.Publisher != "" {
		in.Publisher = &ed.Publisher
	}
	if len(ed.Subjects) > 0 {
		in.Genre = &ed.Subjects[0]
	}
	if ed.Description != "" {
		in.Description = &ed.Description
	}
	if ed.CoverURL != "" {
		in.CoverImage = &ed.CoverURL
	}
	return in
}

var csvHeader = []string{"Title", "Author", "ISBN", "Genre", "Publisher", "Year", "Total Copies", "Available Copies"}

// ExportCSV writes the whole inventory as CSV.
func (s *Service) ExportCSV(ctx context.Context, actor access.Actor, w io.Writer) error {
	if err := actor.Authorize(access.MinRole(access.Librarian)); err != nil {
		return err
	}
	books, err := s.repo.All(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range books {
		year := ""
		if b.PublishedYear != nil {
			year = strconv.Itoa(*b.PublishedYear)
		}
		if err := cw.Write([]string{
			b.Title,
			b.Author,
			deref(b.ISBN),
			deref(b.Genre),
			deref(b.Publisher),
			year,
			strconv.Itoa(b.TotalCopies),
			strconv.Itoa(b.AvailableCopies),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
