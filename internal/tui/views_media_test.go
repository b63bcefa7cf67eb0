package tui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/log"
	"github.com/pmeridian/charta/internal/service"
	"github.com/pmeridian/charta/internal/store"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
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

	svc := Services{Catalog: service.NewCatalogService(client, st, log.Null())}
	return New(svc, log.Null())
}

// echoUpdates captures every PUT body and echoes it back as the saved item.
func echoUpdates(body *atomic.Value) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			raw, _ := io.ReadAll(r.Body)
			body.Store(raw)
			w.Header().Set("Content-Type", "application/json")
			w.Write(raw)
			return
		}
		w.Write([]byte("{}"))
	}
}

// drain executes a command and any batched sub-commands so their HTTP side
// effects actually run.
func drain(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				c()
			}
		}
	}
}

func decodeUpdate(t *testing.T, body *atomic.Value) map[string]any {
	t.Helper()
	raw, _ := body.Load().([]byte)
	if raw == nil {
		t.Fatal("no update reached the server")
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decoding update: %v", err)
	}
	return rec
}

func hasField(m *Model, name string) bool {
	for _, field := range m.media.form.Fields {
		if field.Name == name {
			return true
		}
	}
	return false
}

func TestEditFormKeepsCreatedType(t *testing.T) {
	var body atomic.Value
	m := newTestModel(t, echoUpdates(&body))

	m.openMediaForm(&domain.MediaItem{
		ID:        "b1",
		Title:     "Dune",
		MediaType: domain.MediaTypeBook,
		Status:    domain.StatusActivelyExploring,
		Book:      &domain.BookPayload{Author: "Frank Herbert"},
	})

	if hasField(m, "mediaType") {
		t.Fatal("edit form offers the type field; the type is fixed at creation")
	}

	// A write to the absent field must stay a no-op.
	m.media.form.SetValue("mediaType", "Movie")
	drain(t, m.submitMediaForm())

	rec := decodeUpdate(t, &body)
	if rec["mediaType"] != "Book" {
		t.Errorf("saved mediaType = %v, want Book", rec["mediaType"])
	}
	if rec["author"] != "Frank Herbert" {
		t.Errorf("saved author = %v, want the book payload carried over", rec["author"])
	}
}

func TestEditFormHidesRatingUntilCompleted(t *testing.T) {
	var body atomic.Value
	m := newTestModel(t, echoUpdates(&body))

	m.openMediaForm(&domain.MediaItem{
		ID:        "b1",
		Title:     "Dune",
		MediaType: domain.MediaTypeBook,
		Status:    domain.StatusActivelyExploring,
		Rating:    domain.RatingLike,
	})

	if hasField(m, "rating") {
		t.Fatal("rating offered while the item is still in progress")
	}

	drain(t, m.submitMediaForm())

	rec := decodeUpdate(t, &body)
	if rec["rating"] != "Like" {
		t.Errorf("saved rating = %v, want the existing Like kept", rec["rating"])
	}
}

func TestEditFormOffersRatingWhenCompleted(t *testing.T) {
	var body atomic.Value
	m := newTestModel(t, echoUpdates(&body))

	m.openMediaForm(&domain.MediaItem{
		ID:        "b1",
		Title:     "Dune",
		MediaType: domain.MediaTypeBook,
		Status:    domain.StatusCompleted,
		Rating:    domain.RatingLike,
	})

	if got := m.media.form.Value("rating"); got != "Like" {
		t.Fatalf("prefilled rating = %q, want Like", got)
	}

	m.media.form.SetValue("rating", "SuperLike")
	drain(t, m.submitMediaForm())

	rec := decodeUpdate(t, &body)
	if rec["rating"] != "SuperLike" {
		t.Errorf("saved rating = %v, want SuperLike", rec["rating"])
	}
}

func TestCreateFormOffersTypeNotRating(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	})

	m.openMediaForm(nil)

	if !hasField(m, "mediaType") {
		t.Error("create form should offer the type field")
	}
	if hasField(m, "rating") {
		t.Error("create form should not offer a rating")
	}
}
