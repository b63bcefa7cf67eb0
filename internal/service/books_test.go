package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/log"
	"github.com/pmeridian/charta/internal/store"
)

func newBookService(t *testing.T, handler http.HandlerFunc) *BookService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, "", log.Null())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	st, err := store.NewCatalogStore("", "")
	if err != nil {
		t.Fatalf("NewCatalogStore() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return NewBookService(client, st, log.Null())
}

func TestSearchCatalogDefaultsSearchType(t *testing.T) {
	svc := newBookService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("searchType"); got != "general" {
			t.Errorf("searchType = %q, want general", got)
		}
		json.NewEncoder(w).Encode([]api.Record{
			{"key": "/works/OL1W", "title": "Dune", "author_name": []any{"Frank Herbert", "co-author"}},
		})
	})

	books, err := svc.SearchCatalog(context.Background(), "dune", "")
	if err != nil {
		t.Fatalf("SearchCatalog: %v", err)
	}
	if len(books) != 1 || books[0].Author != "Frank Herbert" {
		t.Errorf("books = %#v", books)
	}
}

func TestImportBook(t *testing.T) {
	svc := newBookService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book/import-from-openlibrary" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body api.Record
		json.NewDecoder(r.Body).Decode(&body)
		if body["key"] != "/works/OL1W" {
			t.Errorf("body = %#v", body)
		}
		json.NewEncoder(w).Encode(api.Record{"id": "local-b1"})
	})

	id, err := svc.Import(context.Background(), api.CatalogBook{Key: "/works/OL1W", Title: "Dune"})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if id != "local-b1" {
		t.Errorf("local id = %q", id)
	}
}

func TestImportByISBNValidation(t *testing.T) {
	svc := newBookService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for empty ISBN")
	})

	_, err := svc.ImportByISBN(context.Background(), "")
	if !domain.IsValidation(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestImportBookRequiresKeyOrISBN(t *testing.T) {
	svc := newBookService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent with neither key nor ISBN")
	})

	_, err := svc.Import(context.Background(), api.CatalogBook{Title: "Dune"})
	if !domain.IsValidation(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}
