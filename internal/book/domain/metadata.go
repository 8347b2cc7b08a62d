package domain

import (
	"errors"
	"strings"
)

// ErrEmptyMetadataQuery none of title, author or isbn given
var ErrEmptyMetadataQuery = errors.New("title, author or isbn required")

// BookMetadata public catalogue entry
type BookMetadata struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	ISBN     string   `json:"isbn,omitempty"`
	Year     int      `json:"year,omitempty"`
	CoverURL string   `json:"cover_url,omitempty"`
}

// MetadataQuery catalogue search
type MetadataQuery struct {
	Title  string `query:"title" conform:"trim" validate:"max=200"`
	Author string `query:"author" conform:"trim" validate:"max=200"`
	ISBN   string `query:"isbn" conform:"trim" validate:"max=20"`
	Limit  int    `query:"limit" validate:"gte=0,lte=50"`
}

// Empty no search term given
func (q MetadataQuery) Empty() bool {
	return strings.TrimSpace(q.Title+q.Author+q.ISBN) == ""
}

// CacheKey normalized key of the query
func (q MetadataQuery) CacheKey() string {
	return strings.ToLower(strings.Join([]string{q.Title, q.Author, strings.ReplaceAll(q.ISBN, "-", "")}, "|"))
}
