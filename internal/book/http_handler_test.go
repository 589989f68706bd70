package book

import (
	"context"
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

func TestHTTPHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	testBook := Listing{Book: Book{ID: "1", Title: "Test"}}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), Query{
			Q:             "dune",
			AvailableOnly: true,
			Sort:          SortTitle,
			Desc:          false,
			Page:          2,
			Limit:         5,
		}).Return([]Listing{testBook}, 6, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books?q=dune&available=true&sort=title&order=asc&page=2&limit=5", nil)

		handler.List(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w, nil)
		assert.EqualValues(t, 2, env.Meta["total_pages"])
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books", nil)

		handler.List(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "123").Return(Listing{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/123", nil)
		r.SetPathValue("id", "123")

		handler.Get(w, asActor(r, testutil.Member))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "BOOK_NOT_FOUND", testutil.DecodeEnvelope(t, w, nil).Error.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	tests := []struct {
		name     string
		actor    access.Actor
		body     any
		setup    func()
		wantCode int
	}{
		{
			name:     "missing title",
			actor:    testutil.Librarian,
			body:     map[string]any{"author": "Someone"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "year out of range",
			actor:    testutil.Librarian,
			body:     map[string]any{"title": "T", "author": "A", "published_year": 2101},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "member forbidden",
			actor:    testutil.Member,
			body:     map[string]any{"title": "T", "author": "A"},
			wantCode: http.StatusForbidden,
		},
		{
			name:  "created",
			actor: testutil.Librarian,
			body:  map[string]any{"title": "T", "author": "A", "total_copies": 2},
			setup: func() {
				mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:  "duplicate isbn",
			actor: testutil.Librarian,
			body:  map[string]any{"title": "T", "author": "A", "isbn": "0141439580"},
			setup: func() {
				mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrDuplicateISBN)
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			w := httptest.NewRecorder()
			r := testutil.NewRequest(http.MethodPost, "/v1/books", tt.body)

			handler.Create(w, asActor(r, tt.actor))

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestHTTPHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	t.Run("active checkouts", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), "b1").Return(ErrHasActiveCheckouts)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/v1/books/b1", nil)
		r.SetPathValue("id", "b1")

		handler.Delete(w, asActor(r, testutil.Admin))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("deleted", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), "b1").Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/v1/books/b1", nil)
		r.SetPathValue("id", "b1")

		handler.Delete(w, asActor(r, testutil.Admin))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestHTTPHandler_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	mockRepo.EXPECT().All(gomock.Any()).Return([]Book{{Title: "Dune", Author: "Frank Herbert", TotalCopies: 1, AvailableCopies: 1}}, nil)

	w := httptest.NewRecorder()
	handler.Export(w, asActor(httptest.NewRequest(http.MethodGet, "/v1/books/export.csv", nil), testutil.Librarian))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "Title,Author,ISBN")
}
