package service

import (
	"context"
	"log/slog"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/store"
)

// BookService wraps the external book catalog: searching and importing
// editions into the local library.
type BookService struct {
	client *api.Client
	store  *store.CatalogStore
	logger *slog.Logger
}

func NewBookService(client *api.Client, st *store.CatalogStore, logger *slog.Logger) *BookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookService{client: client, store: st, logger: logger}
}

// SearchCatalog searches the external book catalog by the given search
// type (general, title, author or isbn).
func (s *BookService) SearchCatalog(ctx context.Context, query string, searchType api.BookSearchType) ([]api.CatalogBook, error) {
	return s.client.SearchBookCatalog(ctx, query, searchType)
}

// Import imports a catalog result and returns the new local media id.
func (s *BookService) Import(ctx context.Context, book api.CatalogBook) (string, error) {
	id, err := s.client.ImportBook(ctx, book)
	if err != nil {
		return "", err
	}
	s.store.InvalidateMedia()
	s.logger.Info("imported book", "title", book.Title, "local", id)
	return id, nil
}

// ImportByISBN imports directly by ISBN, skipping the search step.
func (s *BookService) ImportByISBN(ctx context.Context, isbn string) (string, error) {
	if isbn == "" {
		return "", domain.NewValidationError("isbn", "ISBN is required")
	}
	id, err := s.client.ImportBookByISBN(ctx, isbn)
	if err != nil {
		return "", err
	}
	s.store.InvalidateMedia()
	s.logger.Info("imported book by ISBN", "isbn", isbn, "local", id)
	return id, nil
}
