package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/log"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "test-key", log.Null())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "http://localhost:5000", "http://localhost:5000", false},
		{"trailing slash stripped", "http://localhost:5000/", "http://localhost:5000", false},
		{"scheme defaulted", "localhost:5000", "http://localhost:5000", false},
		{"query dropped", "http://localhost:5000/?x=1", "http://localhost:5000", false},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := parseBaseURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBaseURL(%q) error = %v", tt.in, err)
			}
			if err == nil && u.String() != tt.want {
				t.Errorf("parseBaseURL(%q) = %q, want %q", tt.in, u.String(), tt.want)
			}
		})
	}
}

func TestListMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media" {
			t.Errorf("path = %q, want /media", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode([]Record{
			{"Id": "b1", "Title": "Dune", "MediaType": "Book"},
			{"id": "m1", "title": "Arrival", "mediaType": "Movie"},
		})
	})

	items, err := client.ListMedia(context.Background())
	if err != nil {
		t.Fatalf("ListMedia() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "Dune" || items[0].MediaType != domain.MediaTypeBook {
		t.Errorf("items[0] = %#v", items[0])
	}
	if items[1].Movie == nil {
		t.Errorf("movie payload not built: %#v", items[1])
	}
}

func TestSearchMediaQueryEncoding(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		json.NewEncoder(w).Encode([]Record{})
	})

	if _, err := client.SearchMedia(context.Background(), "dune & spice"); err != nil {
		t.Fatalf("SearchMedia() error: %v", err)
	}
	if gotQuery != "dune & spice" {
		t.Errorf("query = %q, want %q", gotQuery, "dune & spice")
	}
}

func TestGetMediaPathEscaping(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(Record{"id": "a/b", "title": "x"})
	})

	if _, err := client.GetMedia(context.Background(), "a/b"); err != nil {
		t.Fatalf("GetMedia() error: %v", err)
	}
	if gotPath != "/media/a%2Fb" {
		t.Errorf("path = %q, want /media/a%%2Fb", gotPath)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"401 maps to auth failure", http.StatusUnauthorized, domain.ErrAuthFailed},
		{"404 maps to not found", http.StatusNotFound, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.GetMedia(context.Background(), "b1")
			if !errors.Is(err, tt.want) {
				t.Errorf("GetMedia() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestServerErrorMessageExtraction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"title is required"}`))
	})

	_, err := client.CreateMedia(context.Background(), domain.MediaItem{MediaType: domain.MediaTypeOther})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if reqErr.Message != "title is required" || reqErr.StatusCode != 400 {
		t.Errorf("reqErr = %#v", reqErr)
	}
}

func TestOfflineMapping(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(server.URL, "", log.Null())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	server.Close() // connection refused from here on

	_, err = client.ListMedia(context.Background())
	if !errors.Is(err, domain.ErrServerOffline) {
		t.Errorf("ListMedia() error = %v, want ErrServerOffline", err)
	}
}

func TestCreateMediaOmitsID(t *testing.T) {
	var idSent bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/media" {
			t.Errorf("%s %s, want POST /media", r.Method, r.URL.Path)
		}
		var body Record
		json.NewDecoder(r.Body).Decode(&body)
		_, idSent = body["id"]
		body["id"] = "assigned-1"
		json.NewEncoder(w).Encode(body)
	})

	created, err := client.CreateMedia(context.Background(), domain.MediaItem{
		ID:        "client-side-id",
		Title:     "Dune",
		MediaType: domain.MediaTypeBook,
		Book:      &domain.BookPayload{Author: "Frank Herbert"},
	})
	if err != nil {
		t.Fatalf("CreateMedia() error: %v", err)
	}
	if idSent {
		t.Error("client-side id was sent to the server")
	}
	if created.ID != "assigned-1" {
		t.Errorf("created.ID = %q, want assigned-1", created.ID)
	}
}

func TestUpdateMediaRequiresID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent despite missing id")
	})

	_, err := client.UpdateMedia(context.Background(), domain.MediaItem{Title: "Dune"})
	if !domain.IsValidation(err) {
		t.Errorf("UpdateMedia() error = %v, want validation error", err)
	}
}

func TestBulkDeleteMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/media/bulk" {
			t.Errorf("%s %s, want DELETE /media/bulk", r.Method, r.URL.Path)
		}
		var body map[string][]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(Record{"deletedCount": len(body["ids"])})
	})

	count, err := client.BulkDeleteMedia(context.Background(), []string{"b1", "m1", "p1"})
	if err != nil {
		t.Fatalf("BulkDeleteMedia() error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestBulkDeleteMediaEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for empty id list")
	})

	count, err := client.BulkDeleteMedia(context.Background(), nil)
	if err != nil || count != 0 {
		t.Errorf("BulkDeleteMedia(nil) = (%d, %v), want (0, nil)", count, err)
	}
}
