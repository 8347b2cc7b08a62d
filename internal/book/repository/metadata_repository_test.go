package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"book_exchange_service/internal/book/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLibrarySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "dune", r.URL.Query().Get("title"))
		assert.Equal(t, "9780441013593", r.URL.Query().Get("isbn"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{
			"key":"/works/OL893415W",
			"title":"Dune",
			"author_name":["Frank Herbert"],
			"isbn":["0441013597","9780441013593"],
			"first_publish_year":1965,
			"cover_i":11481354
		},{
			"key":"/works/OL1W",
			"title":"Dune Messiah"
		}]}`))
	}))
	defer srv.Close()

	c := NewOpenLibraryClient(srv.URL+"/", 0)
	got, err := c.Search(context.Background(), domain.MetadataQuery{Title: "dune", ISBN: "978-0441013593", Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Dune", got[0].Title)
	assert.Equal(t, []string{"Frank Herbert"}, got[0].Authors)
	assert.Equal(t, "9780441013593", got[0].ISBN)
	assert.Equal(t, 1965, got[0].Year)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/11481354-M.jpg", got[0].CoverURL)

	assert.Equal(t, []string{}, got[1].Authors)
	assert.Empty(t, got[1].CoverURL)
	assert.Empty(t, got[1].ISBN)
}

func TestOpenLibrarySearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewOpenLibraryClient(srv.URL, 0).Search(context.Background(), domain.MetadataQuery{Author: "herbert"})
	assert.ErrorContains(t, err, "503")
}

func TestPickISBN(t *testing.T) {
	assert.Equal(t, "", pickISBN(nil, ""))
	assert.Equal(t, "9780441013593", pickISBN([]string{"0441013597", "9780441013593"}, ""))
	assert.Equal(t, "0441013597", pickISBN([]string{"0441013597", "9780441013593"}, "0441013597"))
	assert.Equal(t, "0441013597", pickISBN([]string{"0441013597"}, ""))
}
