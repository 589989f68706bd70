package circulation

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minilibrary/internal/access"
	"minilibrary/internal/httpx"
	"minilibrary/internal/testutil"
)

func asActor(r *http.Request, actor access.Actor) *http.Request {
	return r.WithContext(httpx.ContextWithActor(r.Context(), actor))
}

func newTestHandler(t *testing.T) (*HTTPHandler, *fixture) {
	f := newFixture(t)
	return NewHTTPHandler(f.svc), f
}

func TestHTTPHandler_Checkout(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.store.addBook("b1", 1, 1)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/v1/transactions", map[string]any{
			"book_id":  "b1",
			"due_date": f.due().Format(time.RFC3339),
		})
		h.Checkout(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusCreated, w.Code)
		var tx Transaction
		env := testutil.DecodeEnvelope(t, w, &tx)
		assert.True(t, env.Success)
		assert.Equal(t, StatusActive, tx.Status)
		assert.Equal(t, "b1", tx.BookID)
	})

	t.Run("no copies", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.store.addBook("b1", 1, 0)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/v1/transactions", map[string]any{
			"book_id":  "b1",
			"due_date": f.due().Format(time.RFC3339),
		})
		h.Checkout(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "NO_COPIES_AVAILABLE")
	})

	t.Run("on behalf as member", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.store.addBook("b1", 1, 1)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/v1/transactions", map[string]any{
			"book_id":  "b1",
			"user_id":  otherMember.UserID,
			"due_date": f.due().Format(time.RFC3339),
		})
		h.Checkout(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		h, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/v1/transactions", map[string]any{})
		h.Checkout(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "book_id")
	})
}

func TestHTTPHandler_UpdateTransaction(t *testing.T) {
	h, f := newTestHandler(t)
	f.store.addBook("b1", 1, 1)
	tx, err := f.svc.Checkout(t.Context(), testutil.Member, CheckoutCmd{BookID: "b1", DueDate: f.due()})
	require.NoError(t, err)

	put := func(action string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPut, "/v1/transactions/"+tx.ID, map[string]string{"action": action})
		r.SetPathValue("id", tx.ID)
		h.UpdateTransaction(w, asActor(r, testutil.Member))
		return w
	}

	w := put("renew")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "action")

	w = put("return")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.store.counts("b1").Available)

	w = put("return")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_RETURNED")
}

func TestHTTPHandler_Reservations(t *testing.T) {
	h, f := newTestHandler(t)
	f.store.addBook("b1", 1, 0)
	f.store.addBook("b2", 1, 1)

	reserve := func(bookID string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/v1/reservations", map[string]string{"book_id": bookID})
		h.Reserve(w, asActor(r, testutil.Member))
		return w
	}

	w := reserve("b1")
	require.Equal(t, http.StatusCreated, w.Code)
	var res Reservation
	testutil.DecodeEnvelope(t, w, &res)

	assert.Equal(t, http.StatusConflict, reserve("b1").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, reserve("b2").Code)
	assert.Equal(t, http.StatusNotFound, reserve("missing").Code)

	w = httptest.NewRecorder()
	h.ListReservations(w, asActor(httptest.NewRequest(http.MethodGet, "/v1/reservations", nil), testutil.Member))
	assert.Equal(t, http.StatusOK, w.Code)
	var listed []Reservation
	testutil.DecodeEnvelope(t, w, &listed)
	assert.Len(t, listed, 1)

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/v1/reservations/"+res.ID, nil)
	r.SetPathValue("id", res.ID)
	h.CancelReservation(w, asActor(r, testutil.Member))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ReservationCancelled, f.store.reservation(res.ID).Status)
}

func TestHTTPHandler_ExpireReservations(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ExpireReservations(w, asActor(httptest.NewRequest(http.MethodPost, "/v1/reservations/expire", nil), testutil.Librarian))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.ExpireReservations(w, asActor(httptest.NewRequest(http.MethodPost, "/v1/reservations/expire", nil), testutil.Admin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expired":0`)
}

func TestHTTPHandler_ListTransactions(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ListTransactions(w, httptest.NewRequest(http.MethodGet, "/v1/transactions", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/transactions?user_id="+testutil.Librarian.UserID, nil)
	h.ListTransactions(w, asActor(r, testutil.Member))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/v1/transactions?status=ACTIVE", nil)
	h.ListTransactions(w, asActor(r, testutil.Member))
	assert.Equal(t, http.StatusOK, w.Code)
}
