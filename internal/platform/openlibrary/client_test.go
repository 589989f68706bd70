package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duneJSON = `{
  "ISBN:9780441013593": {
    "title": "Dune",
    "publishers": [{"name": "Ace Books"}],
    "publish_date": "August 2005",
    "number_of_pages": 528,
    "authors": [{"name": "Frank Herbert", "url": "https://openlibrary.org/authors/OL79034A"}],
    "subjects": [{"name": "Science fiction"}, {"name": "Arrakis"}],
    "cover": {"large": "https://covers.openlibrary.org/b/id/1-L.jpg"},
    "notes": {"type": "/type/text", "value": "Reissue."}
  }
}`

func TestLookupISBN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "ISBN:9780441013593", r.URL.Query().Get("bibkeys"))
		assert.Equal(t, "minilibrary-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(duneJSON))
	}))
	defer srv.Close()

	c := NewClient("minilibrary-test", 100, 0, WithBaseURL(srv.URL))
	ed, err := c.LookupISBN(context.Background(), "9780441013593")
	require.NoError(t, err)

	assert.Equal(t, "Dune", ed.Title)
	assert.Equal(t, []string{"Frank Herbert"}, ed.Authors)
	assert.Equal(t, "Ace Books", ed.Publisher)
	require.NotNil(t, ed.PublishedYear)
	assert.Equal(t, 2005, *ed.PublishedYear)
	require.NotNil(t, ed.PageCount)
	assert.Equal(t, 528, *ed.PageCount)
	assert.Equal(t, "Science fiction", ed.Subjects[0])
	assert.Equal(t, "Reissue.", ed.Description)
}

func TestLookupISBN_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("minilibrary-test", 100, 0, WithBaseURL(srv.URL))
	_, err := c.LookupISBN(context.Background(), "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupISBN_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(duneJSON))
	}))
	defer srv.Close()

	c := NewClient("minilibrary-test", 100, 3, WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
	ed, err := c.LookupISBN(context.Background(), "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, "Dune", ed.Title)
	assert.EqualValues(t, 3, calls.Load())
}

func TestLookupISBN_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("minilibrary-test", 100, 3, WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
	_, err := c.LookupISBN(context.Background(), "9780441013593")
	assert.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}
