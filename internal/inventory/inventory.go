// Package inventory owns the copy counters of a book.
//
// Every function here is pure; callers apply the result inside the same
// database transaction in which they read the counts.
package inventory

import (
	"fmt"

	"minilibrary/internal/apperr"
)

// Counts are a book's copy counters. 0 <= Available <= Total must hold.
type Counts struct {
	Total     int
	Available int
}

var (
	ErrNoCopiesAvailable = apperr.New(apperr.KindPreconditionFailed, "NO_COPIES_AVAILABLE", "no copies available")
	ErrInvalidTotal      = apperr.InvalidField("total_copies", "total_copies must be at least 1")
	// ErrOverReturn means a return found no outstanding loan for the book.
	ErrOverReturn = apperr.New(apperr.KindInternal, "INVENTORY_INCONSISTENT", "return without an outstanding loan")
)

// CheckedOut is the number of copies the counters say are lent out. After a
// shrink it can be lower than the real number of outstanding loans.
func (c Counts) CheckedOut() int {
	return c.Total - c.Available
}

// Validate checks the ledger invariant.
func (c Counts) Validate() error {
	if c.Total < 1 {
		return ErrInvalidTotal
	}
	if c.Available < 0 || c.Available > c.Total {
		return fmt.Errorf("inventory: available %d outside [0, %d]", c.Available, c.Total)
	}
	return nil
}

// New returns the counts of a freshly catalogued book.
func New(total int) (Counts, error) {
	if total < 1 {
		return Counts{}, ErrInvalidTotal
	}
	return Counts{Total: total, Available: total}, nil
}

// CheckOut lends one copy.
func CheckOut(c Counts) (Counts, error) {
	if c.Available <= 0 {
		return c, ErrNoCopiesAvailable
	}
	c.Available--
	return c, nil
}

// Return puts one copy back on the shelf. lent is the number of loans
// outstanding before this return, the returning one included. Available is
// re-derived from the loans that remain, so a return always lands inside
// [0, Total] even after the total was shrunk below the lent-out count.
func Return(c Counts, lent int) (Counts, error) {
	if lent < 1 {
		return c, ErrOverReturn
	}
	return derive(c.Total, lent-1), nil
}

// Resize applies a staff edit of the total copy count. lent is the number of
// loans currently outstanding; available floors at zero when the new total
// is smaller than that.
func Resize(c Counts, newTotal, lent int) (Counts, error) {
	if newTotal < 1 {
		return c, ErrInvalidTotal
	}
	if lent < 0 {
		return c, fmt.Errorf("inventory: negative lent count %d", lent)
	}
	return derive(newTotal, lent), nil
}

func derive(total, lent int) Counts {
	return Counts{Total: total, Available: max(0, total-lent)}
}
