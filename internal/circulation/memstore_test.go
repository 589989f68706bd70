package circulation

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"minilibrary/internal/inventory"
)

// memState is the whole database of memStore. InTx works on a copy and
// swaps it in on commit.
type memState struct {
	books        map[string]inventory.Counts
	users        map[string]bool
	transactions map[string]Transaction
	reservations map[string]Reservation
}

func (s memState) clone() memState {
	return memState{
		books:        maps.Clone(s.books),
		users:        maps.Clone(s.users),
		transactions: maps.Clone(s.transactions),
		reservations: maps.Clone(s.reservations),
	}
}

// memStore is a serializable in-memory Store. One unit of work runs at a
// time, which is the strongest isolation a database could give us.
type memStore struct {
	mu    sync.Mutex
	state memState
	seq   int
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		books:        map[string]inventory.Counts{},
		users:        map[string]bool{},
		transactions: map[string]Transaction{},
		reservations: map[string]Reservation{},
	}}
}

func (m *memStore) addBook(id string, total, available int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.books[id] = inventory.Counts{Total: total, Available: available}
}

func (m *memStore) addUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.users[id] = true
}

func (m *memStore) counts(bookID string) inventory.Counts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.books[bookID]
}

func (m *memStore) transactionsFor(bookID string, status TransactionStatus) []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transaction
	for _, t := range m.state.transactions {
		if t.BookID == bookID && (status == "" || t.Status == status) {
			out = append(out, t)
		}
	}
	return out
}

func (m *memStore) reservation(id string) Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.reservations[id]
}

func (m *memStore) pendingFor(bookID, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.state.reservations {
		if r.BookID == bookID && r.UserID == userID && r.Status == ReservationPending {
			n++
		}
	}
	return n
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{store: m, state: m.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, c := range tx.state.books {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("book %s: %w", id, err)
		}
	}
	m.state = tx.state
	return nil
}

func (m *memStore) ExpireReservations(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, r := range m.state.reservations {
		if r.Status == ReservationPending && !now.Before(r.ExpiresAt) {
			r.Status = ReservationExpired
			m.state.reservations[id] = r
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListTransactions(_ context.Context, f TransactionFilter) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Transaction{}
	for _, t := range m.state.transactions {
		if t.UserID == f.UserID && (f.Status == "" || t.Status == f.Status) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b Transaction) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *memStore) ListReservations(_ context.Context, f ReservationFilter) ([]Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Reservation{}
	for _, r := range m.state.reservations {
		if r.UserID == f.UserID && r.Status == ReservationPending && f.Now.Before(r.ExpiresAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memTx struct {
	store *memStore
	state memState
}

func (t *memTx) LockBook(_ context.Context, bookID string) (inventory.Counts, error) {
	c, ok := t.state.books[bookID]
	if !ok {
		return inventory.Counts{}, ErrBookNotFound
	}
	return c, nil
}

func (t *memTx) SetAvailable(_ context.Context, bookID string, available int) error {
	c := t.state.books[bookID]
	c.Available = available
	t.state.books[bookID] = c
	return nil
}

func (t *memTx) UserExists(_ context.Context, userID string) (bool, error) {
	return t.state.users[userID], nil
}

func (t *memTx) HasActiveCheckout(_ context.Context, bookID, userID string) (bool, error) {
	for _, tr := range t.state.transactions {
		if tr.BookID == bookID && tr.UserID == userID && tr.Status == StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CountActive(_ context.Context, bookID string) (int, error) {
	n := 0
	for _, tr := range t.state.transactions {
		if tr.BookID == bookID && tr.Status == StatusActive {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertTransaction(_ context.Context, tr *Transaction) error {
	tr.ID = t.store.nextID("tx")
	tr.CreatedAt = tr.CheckoutDate
	t.state.transactions[tr.ID] = *tr
	return nil
}

func (t *memTx) LockTransaction(_ context.Context, id string) (Transaction, error) {
	tr, ok := t.state.transactions[id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return tr, nil
}

func (t *memTx) MarkReturned(_ context.Context, id string, at time.Time) error {
	tr := t.state.transactions[id]
	tr.Status = StatusReturned
	tr.ReturnDate = &at
	t.state.transactions[id] = tr
	return nil
}

func (t *memTx) ExpireLapsed(_ context.Context, bookID, userID string, now time.Time) (int, error) {
	n := 0
	for id, r := range t.state.reservations {
		if r.BookID == bookID && r.UserID == userID && r.Status == ReservationPending && !now.Before(r.ExpiresAt) {
			r.Status = ReservationExpired
			t.state.reservations[id] = r
			n++
		}
	}
	return n, nil
}

func (t *memTx) HasPendingReservation(_ context.Context, bookID, userID string) (bool, error) {
	for _, r := range t.state.reservations {
		if r.BookID == bookID && r.UserID == userID && r.Status == ReservationPending {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertReservation(_ context.Context, r *Reservation) error {
	r.ID = t.store.nextID("res")
	r.CreatedAt = r.ExpiresAt.Add(-ReservationHold)
	t.state.reservations[r.ID] = *r
	return nil
}

func (t *memTx) LockReservation(_ context.Context, id string) (Reservation, error) {
	r, ok := t.state.reservations[id]
	if !ok {
		return Reservation{}, ErrReservationNotFound
	}
	return r, nil
}

func (t *memTx) SetReservationStatus(_ context.Context, id string, status ReservationStatus) error {
	r := t.state.reservations[id]
	r.Status = status
	t.state.reservations[id] = r
	return nil
}
