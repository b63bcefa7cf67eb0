package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pmeridian/charta/internal/domain"
)

// BookSearchType selects which index the book catalog search uses.
type BookSearchType string

const (
	BookSearchGeneral BookSearchType = "general"
	BookSearchTitle   BookSearchType = "title"
	BookSearchAuthor  BookSearchType = "author"
	BookSearchISBN    BookSearchType = "isbn"
)

// CatalogBook is a search hit from the book catalog proxy.
type CatalogBook struct {
	Key              string // catalog work key, used for import
	Title            string
	Author           string
	ISBN             string
	FirstPublishYear int
	CoverURL         string
}

func buildCatalogBook(rec Record) CatalogBook {
	book := CatalogBook{
		Key:              ResolveString(rec, "key"),
		Title:            ResolveString(rec, "title"),
		ISBN:             ResolveString(rec, "isbn", "ISBN"),
		FirstPublishYear: ResolveInt(rec, "firstPublishYear", "first_publish_year"),
		CoverURL:         ResolveString(rec, "coverUrl", "cover_url"),
	}
	if names := ResolveNames(rec, "authorName", "author_name", "authors"); len(names) > 0 {
		book.Author = names[0]
	} else {
		book.Author = ResolveString(rec, "author")
	}
	return book
}

// SearchBookCatalog searches the book catalog through the server proxy.
func (c *Client) SearchBookCatalog(ctx context.Context, query string, searchType BookSearchType) ([]CatalogBook, error) {
	if searchType == "" {
		searchType = BookSearchGeneral
	}
	q := url.Values{"query": {query}, "searchType": {string(searchType)}}
	var recs []Record
	if err := c.do(ctx, http.MethodGet, "/book/search-openlibrary", q, nil, &recs); err != nil {
		return nil, err
	}
	books := make([]CatalogBook, 0, len(recs))
	for _, rec := range recs {
		books = append(books, buildCatalogBook(rec))
	}
	return books, nil
}

// ImportBook imports a catalog search hit as a local book and returns the
// new local id, resolved under either id or Id.
func (c *Client) ImportBook(ctx context.Context, book CatalogBook) (string, error) {
	if book.Key == "" && book.ISBN == "" {
		return "", domain.NewValidationError("key", "catalog key or ISBN is required")
	}
	body := Record{
		"key":    nullableString(book.Key),
		"title":  nullableString(book.Title),
		"author": nullableString(book.Author),
		"isbn":   nullableString(book.ISBN),
	}
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/book/import-from-openlibrary", nil, body, &rec); err != nil {
		return "", err
	}
	return ResolveString(rec, "id"), nil
}

// ImportBookByISBN imports directly by ISBN, skipping the search step.
func (c *Client) ImportBookByISBN(ctx context.Context, isbn string) (string, error) {
	return c.ImportBook(ctx, CatalogBook{ISBN: isbn})
}
