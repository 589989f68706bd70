package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"minilibrary/internal/apperr"
	"minilibrary/internal/testutil"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not found", apperr.New(apperr.KindNotFound, "BOOK_NOT_FOUND", "book not found"), http.StatusNotFound, "BOOK_NOT_FOUND"},
		{"conflict", apperr.New(apperr.KindConflict, "ALREADY_RETURNED", "already returned"), http.StatusConflict, "ALREADY_RETURNED"},
		{"precondition", apperr.New(apperr.KindPreconditionFailed, "NO_COPIES_AVAILABLE", "no copies"), http.StatusUnprocessableEntity, "NO_COPIES_AVAILABLE"},
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"validation", apperr.InvalidField("title", "title is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(ContextWithRequestID(req.Context(), "req-1"))

			WriteError(w, req, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			env := testutil.DecodeEnvelope(t, w, nil)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error.Code)
			assert.Equal(t, "req-1", env.Meta["request_id"])
		})
	}
}

func TestWriteError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))

	assert.False(t, strings.Contains(w.Body.String(), "hunter2"))
}

func TestWriteError_FieldDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodGet, "/", nil), apperr.InvalidField("rating", "rating must be at most 5"))

	env := testutil.DecodeEnvelope(t, w, nil)
	if assert.Len(t, env.Error.Details, 1) {
		assert.Equal(t, "rating", env.Error.Details[0].Field)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"required"`
	}

	t.Run("valid", func(t *testing.T) {
		var p payload
		err := DecodeJSON(testutil.NewRequest(http.MethodPost, "/", `{"title":"Dune"}`), &p)
		assert.NoError(t, err)
		assert.Equal(t, "Dune", p.Title)
	})

	t.Run("malformed", func(t *testing.T) {
		var p payload
		err := DecodeJSON(testutil.NewRequest(http.MethodPost, "/", `{"title":`), &p)
		assert.ErrorIs(t, err, ErrBadBody)
	})

	t.Run("invalid", func(t *testing.T) {
		var p payload
		err := DecodeJSON(testutil.NewRequest(http.MethodPost, "/", `{}`), &p)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestJSONSuccess_PageMeta(t *testing.T) {
	w := httptest.NewRecorder()
	JSONSuccess(w, httptest.NewRequest(http.MethodGet, "/", nil), []string{"a"}, NewPageMeta(2, 10, 25))

	env := testutil.DecodeEnvelope(t, w, nil)
	assert.True(t, env.Success)
	assert.EqualValues(t, 3, env.Meta["total_pages"])
	assert.EqualValues(t, 25, env.Meta["total"])
}
