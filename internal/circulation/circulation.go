// Package circulation runs the lending lifecycle of a book copy: checkout,
// return and the reservation waiting list.
//
// Every operation reads the rows it decides about under a row lock, decides
// with a pure function and writes inside the same store transaction, so two
// requests racing for the last copy cannot both win.
package circulation

import (
	"time"

	"minilibrary/internal/apperr"
	"minilibrary/internal/inventory"
)

type TransactionStatus string

const (
	StatusActive   TransactionStatus = "ACTIVE"
	StatusReturned TransactionStatus = "RETURNED"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

// ReservationHold is how long a reservation stays pending.
const ReservationHold = 7 * 24 * time.Hour

var (
	ErrBookNotFound          = apperr.New(apperr.KindNotFound, "BOOK_NOT_FOUND", "book not found")
	ErrUserNotFound          = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrTransactionNotFound   = apperr.New(apperr.KindNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	ErrReservationNotFound   = apperr.New(apperr.KindNotFound, "RESERVATION_NOT_FOUND", "reservation not found")
	ErrNoCopiesAvailable     = inventory.ErrNoCopiesAvailable
	ErrAlreadyCheckedOut     = apperr.New(apperr.KindConflict, "ALREADY_CHECKED_OUT", "user already has this book checked out")
	ErrAlreadyReturned       = apperr.New(apperr.KindConflict, "ALREADY_RETURNED", "transaction already returned")
	ErrCopiesAvailable       = apperr.New(apperr.KindPreconditionFailed, "COPIES_AVAILABLE", "book is available, no need to reserve")
	ErrAlreadyReserved       = apperr.New(apperr.KindConflict, "ALREADY_RESERVED", "book already reserved")
	ErrReservationNotPending = apperr.New(apperr.KindConflict, "RESERVATION_NOT_PENDING", "only pending reservations can be cancelled")
	ErrDueDateNotInFuture    = apperr.InvalidField("due_date", "due_date must be in the future")
	ErrUnknownStatus         = apperr.InvalidField("status", "status must be ACTIVE or RETURNED")
)

// BookRef is the book summary embedded in listings.
type BookRef struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	CoverImage      *string `json:"cover_image"`
	AvailableCopies *int    `json:"available_copies,omitempty"`
}

// UserRef is the borrower summary embedded in listings.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Transaction is one checkout of one copy.
type Transaction struct {
	ID           string            `json:"id"`
	BookID       string            `json:"book_id"`
	UserID       string            `json:"user_id"`
	CheckoutDate time.Time         `json:"checkout_date"`
	DueDate      time.Time         `json:"due_date"`
	ReturnDate   *time.Time        `json:"return_date"`
	Status       TransactionStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	Book         *BookRef          `json:"book,omitempty"`
	User         *UserRef          `json:"user,omitempty"`
}

// Overdue reports whether an active loan is past its due date.
func (t Transaction) Overdue(now time.Time) bool {
	return t.Status == StatusActive && now.After(t.DueDate)
}

// Reservation is a place on a book's waiting list.
type Reservation struct {
	ID        string            `json:"id"`
	BookID    string            `json:"book_id"`
	UserID    string            `json:"user_id"`
	Status    ReservationStatus `json:"status"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Book      *BookRef          `json:"book,omitempty"`
}

// CheckoutCmd asks for one copy of a book to be lent to a user. An empty
// UserID means the caller.
type CheckoutCmd struct {
	BookID  string
	UserID  string
	DueDate time.Time
}

// TransactionFilter selects transactions for one user.
type TransactionFilter struct {
	UserID string
	Status TransactionStatus
}

// ReservationFilter selects a user's live reservations.
type ReservationFilter struct {
	UserID string
	Now    time.Time
}

// ParseTransactionStatus accepts "", ACTIVE or RETURNED.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(s) {
	case "", StatusActive, StatusReturned:
		return TransactionStatus(s), nil
	}
	return "", ErrUnknownStatus
}
