package review

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"minilibrary/internal/access"
	"minilibrary/internal/httpx"
	"minilibrary/internal/testutil"
)

func asActor(r *http.Request, actor access.Actor) *http.Request {
	return r.WithContext(httpx.ContextWithActor(r.Context(), actor))
}

func TestHTTPHandler_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(repo))

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/v1/reviews", map[string]any{"book_id": "b1", "rating": 4})
		handler.Submit(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusOK, w.Code)
		var rv Review
		testutil.DecodeEnvelope(t, w, &rv)
		assert.Equal(t, 4, rv.Rating)
	})

	t.Run("validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/v1/reviews", map[string]any{"book_id": "b1", "rating": 9})
		handler.Submit(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := testutil.DecodeEnvelope(t, w, nil)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Equal(t, "rating", env.Error.Details[0].Field)
	})

	t.Run("book not found", func(t *testing.T) {
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(ErrBookNotFound)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/v1/reviews", map[string]any{"book_id": "b404", "rating": 2})
		handler.Submit(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_ListByBook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(repo))

	repo.EXPECT().ListByBook(gomock.Any(), "b1").Return([]Review{{ID: "rv1", Rating: 5}}, nil)
	repo.EXPECT().Ratings(gomock.Any(), "b1").Return([]int{5}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/books/b1/reviews", nil)
	r.SetPathValue("id", "b1")
	handler.ListByBook(w, asActor(r, testutil.Member))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Reviews       []Review `json:"reviews"`
		AverageRating *float64 `json:"average_rating"`
		ReviewCount   int      `json:"review_count"`
	}
	testutil.DecodeEnvelope(t, w, &body)
	assert.Len(t, body.Reviews, 1)
	assert.Equal(t, 1, body.ReviewCount)
	assert.InDelta(t, 5.0, *body.AverageRating, 1e-9)
}
