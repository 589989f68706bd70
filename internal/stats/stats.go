// Package stats computes the librarian dashboard.
package stats

import "time"

// Dashboard is the librarian overview of the collection and its use.
type Dashboard struct {
	TotalBooks         int                 `json:"total_books"`
	TotalUsers         int                 `json:"total_users"`
	ActiveCheckouts    int                 `json:"active_checkouts"`
	OverdueCount       int                 `json:"overdue_count"`
	RecentTransactions []RecentTransaction `json:"recent_transactions"`
	GenreCounts        []GenreCount        `json:"genre_counts"`
	MonthlyCheckouts   []MonthCount        `json:"monthly_checkouts"`
}

type RecentTransaction struct {
	ID           string     `json:"id" db:"id"`
	BookID       string     `json:"book_id" db:"book_id"`
	BookTitle    string     `json:"book_title" db:"book_title"`
	UserID       string     `json:"user_id" db:"user_id"`
	UserName     string     `json:"user_name" db:"user_name"`
	Status       string     `json:"status" db:"status"`
	CheckoutDate time.Time  `json:"checkout_date" db:"checkout_date"`
	DueDate      time.Time  `json:"due_date" db:"due_date"`
	ReturnDate   *time.Time `json:"return_date" db:"return_date"`
}

type GenreCount struct {
	Genre string `json:"genre" db:"genre"`
	Count int    `json:"count" db:"count"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthBucket is the number of checkouts in the calendar month starting at
// Start (UTC).
type MonthBucket struct {
	Start time.Time `db:"month"`
	Count int       `db:"count"`
}

const (
	RecentLimit  = 10
	GenreLimit   = 8
	MonthsShown  = 6
	UnknownGenre = "Unknown"
	monthLayout  = "Jan 06"
)

// monthStart truncates t to the first instant of its UTC month.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// WindowStart is the first instant of the oldest month shown on the
// dashboard at now.
func WindowStart(now time.Time) time.Time {
	return monthStart(now).AddDate(0, -(MonthsShown - 1), 0)
}

// MonthlySeries lays buckets out as one entry per month of the window,
// oldest first, with zero for months without checkouts.
func MonthlySeries(buckets []MonthBucket, now time.Time) []MonthCount {
	counts := make(map[time.Time]int, len(buckets))
	for _, b := range buckets {
		counts[monthStart(b.Start)] += b.Count
	}

	out := make([]MonthCount, 0, MonthsShown)
	for m := WindowStart(now); !m.After(monthStart(now)); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthCount{Month: m.Format(monthLayout), Count: counts[m]})
	}
	return out
}
