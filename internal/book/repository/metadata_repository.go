package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"book_exchange_service/internal/book/domain"
)

const (
	defaultMetadataURL = "https://openlibrary.org"
	coverURLFormat     = "https://covers.openlibrary.org/b/id/%d-M.jpg"
	searchFields       = "key,title,author_name,isbn,first_publish_year,cover_i"
)

// MetadataClient definition public book catalogue
type MetadataClient interface {
	Search(ctx context.Context, q domain.MetadataQuery) ([]domain.BookMetadata, error)
}

type openLibraryClient struct {
	baseURL string
	http    *http.Client
}

// NewOpenLibraryClient create a MetadataClient for an Open Library compatible search API
func NewOpenLibraryClient(baseURL string, timeout time.Duration) MetadataClient {
	if baseURL == "" {
		baseURL = defaultMetadataURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &openLibraryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		ISBN             []string `json:"isbn"`
		FirstPublishYear int      `json:"first_publish_year"`
		CoverID          int      `json:"cover_i"`
	} `json:"docs"`
}

func (c *openLibraryClient) Search(ctx context.Context, q domain.MetadataQuery) ([]domain.BookMetadata, error) {
	params := url.Values{}
	if q.Title != "" {
		params.Set("title", q.Title)
	}
	if q.Author != "" {
		params.Set("author", q.Author)
	}
	isbn := strings.ReplaceAll(q.ISBN, "-", "")
	if isbn != "" {
		params.Set("isbn", isbn)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	params.Set("fields", searchFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata search: unexpected status code %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("metadata search: decode: %w", err)
	}

	out := make([]domain.BookMetadata, 0, len(body.Docs))
	for _, d := range body.Docs {
		m := domain.BookMetadata{
			Key:     d.Key,
			Title:   d.Title,
			Authors: d.AuthorName,
			Year:    d.FirstPublishYear,
			ISBN:    pickISBN(d.ISBN, isbn),
		}
		if m.Authors == nil {
			m.Authors = []string{}
		}
		if d.CoverID > 0 {
			m.CoverURL = fmt.Sprintf(coverURLFormat, d.CoverID)
		}
		out = append(out, m)
	}
	return out, nil
}

// pickISBN the searched isbn when the doc carries it, else the first 13 digit one, else the first
func pickISBN(isbns []string, wanted string) string {
	if len(isbns) == 0 {
		return ""
	}
	for _, i := range isbns {
		if wanted != "" && i == wanted {
			return i
		}
	}
	for _, i := range isbns {
		if len(i) == 13 {
			return i
		}
	}
	return isbns[0]
}
