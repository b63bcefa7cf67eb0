package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/log"
	"github.com/pmeridian/charta/internal/store"
)

func newCatalogService(t *testing.T, handler http.HandlerFunc) *CatalogService {
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

	return NewCatalogService(client, st, log.Null())
}

func TestGetMediaCacheFirst(t *testing.T) {
	var calls atomic.Int32
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode([]api.Record{{"id": "b1", "title": "Dune", "mediaType": "Book"}})
	})
	ctx := context.Background()

	first, err := svc.GetMedia(ctx, MediaScope{}, false)
	if err != nil || len(first) != 1 {
		t.Fatalf("first load = (%v, %v)", first, err)
	}
	second, err := svc.GetMedia(ctx, MediaScope{}, false)
	if err != nil || len(second) != 1 {
		t.Fatalf("cached load = (%v, %v)", second, err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1 (second read from cache)", got)
	}

	if _, err := svc.GetMedia(ctx, MediaScope{}, true); err != nil {
		t.Fatalf("refresh load: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server hit %d times after refresh, want 2", got)
	}
}

func TestGetMediaScopeRouting(t *testing.T) {
	var gotPath string
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]api.Record{})
	})
	ctx := context.Background()

	tests := []struct {
		name  string
		scope MediaScope
		want  string
	}{
		{"all", MediaScope{}, "/media"},
		{"by type", MediaScope{Type: domain.MediaTypeBook}, "/media/by-type/Book"},
		{"topic wins over type", MediaScope{Type: domain.MediaTypeBook, TopicID: "t1"}, "/media/by-topic/t1"},
		{"by genre", MediaScope{GenreID: "g1"}, "/media/by-genre/g1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.GetMedia(ctx, tt.scope, true); err != nil {
				t.Fatalf("GetMedia: %v", err)
			}
			if gotPath != tt.want {
				t.Errorf("path = %q, want %q", gotPath, tt.want)
			}
		})
	}
}

func TestSearchMediaRanksAndSkipsCache(t *testing.T) {
	var calls atomic.Int32
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Server order is deliberately worst-first.
		json.NewEncoder(w).Encode([]api.Record{
			{"id": "1", "title": "The Dune Encyclopedia"},
			{"id": "2", "title": "Dune"},
		})
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		items, err := svc.SearchMedia(ctx, "dune")
		if err != nil {
			t.Fatalf("SearchMedia: %v", err)
		}
		if items[0].Title != "Dune" {
			t.Errorf("ranking lost: %q first", items[0].Title)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2 (search is never cached)", got)
	}
}

func TestCreateMediaPartialFailure(t *testing.T) {
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/book":
			json.NewEncoder(w).Encode(api.Record{"id": "new-1", "title": "Dune", "mediaType": "Book"})
		case strings.HasPrefix(r.URL.Path, "/mixlist/bad/"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/mixlist/"):
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	created, err := svc.CreateMedia(context.Background(),
		domain.MediaItem{Title: "Dune", MediaType: domain.MediaTypeBook},
		[]string{"good", "bad", "also-good"})

	if created == nil || created.ID != "new-1" {
		t.Fatalf("created item lost on partial failure: %#v", created)
	}
	var partial *domain.PartialActionError
	if !errors.As(err, &partial) {
		t.Fatalf("error = %v, want PartialActionError", err)
	}
	if len(partial.Failures) != 1 || !strings.Contains(partial.Failures[0], "bad") {
		t.Errorf("failures = %v, want one naming the bad mixlist", partial.Failures)
	}
}

func TestCreateMediaAllAttachesSucceed(t *testing.T) {
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/media" {
			json.NewEncoder(w).Encode(api.Record{"id": "new-1", "title": "Dune"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := svc.CreateMedia(context.Background(), domain.MediaItem{Title: "Dune"}, []string{"x1"})
	if err != nil {
		t.Errorf("CreateMedia with good attaches: %v", err)
	}
}

func TestCreateMediaTypedRouting(t *testing.T) {
	tests := []struct {
		name     string
		item     domain.MediaItem
		wantPath string
	}{
		{"book", domain.MediaItem{Title: "Dune", MediaType: domain.MediaTypeBook}, "/book"},
		{"movie", domain.MediaItem{Title: "Arrival", MediaType: domain.MediaTypeMovie}, "/movie"},
		{"tv show", domain.MediaItem{Title: "Severance", MediaType: domain.MediaTypeTVShow}, "/tvshow"},
		{"episode", domain.MediaItem{
			Title:     "Ep 1",
			MediaType: domain.MediaTypePodcast,
			Podcast:   &domain.PodcastPayload{ParentPodcastID: "s1"},
		}, "/podcast/episodes"},
		{"bare podcast", domain.MediaItem{Title: "Untyped", MediaType: domain.MediaTypePodcast}, "/media"},
		{"no type", domain.MediaItem{Title: "Untyped"}, "/media"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath atomic.Value
			svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath.Store(r.URL.Path)
				json.NewEncoder(w).Encode(api.Record{"id": "new-1", "title": tt.item.Title})
			})

			if _, err := svc.CreateMedia(context.Background(), tt.item, nil); err != nil {
				t.Fatalf("CreateMedia: %v", err)
			}
			if got := gotPath.Load(); got != tt.wantPath {
				t.Errorf("posted to %v, want %s", got, tt.wantPath)
			}
		})
	}
}

func TestUpdateMediaInvalidatesCache(t *testing.T) {
	title := atomic.Value{}
	title.Store("old title")
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			title.Store("new title")
			json.NewEncoder(w).Encode(api.Record{"id": "b1", "title": "new title"})
		default:
			json.NewEncoder(w).Encode([]api.Record{{"id": "b1", "title": title.Load().(string)}})
		}
	})
	ctx := context.Background()

	if _, err := svc.GetMedia(ctx, MediaScope{}, false); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if _, err := svc.UpdateMedia(ctx, domain.MediaItem{ID: "b1", Title: "new title"}); err != nil {
		t.Fatalf("UpdateMedia: %v", err)
	}

	items, err := svc.GetMedia(ctx, MediaScope{}, false)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if items[0].Title != "new title" {
		t.Errorf("stale list served after update: %q", items[0].Title)
	}
}

func TestSetThumbnailUploadsThenSaves(t *testing.T) {
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload/thumbnail-from-url":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["url"] != "https://img.example/dune.jpg" {
				t.Errorf("uploaded url = %q", body["url"])
			}
			json.NewEncoder(w).Encode(api.Record{"url": "/uploads/abc.jpg"})
		case "/media/b1":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["thumbnail"] != "/uploads/abc.jpg" {
				t.Errorf("saved thumbnail = %v", body["thumbnail"])
			}
			json.NewEncoder(w).Encode(api.Record{"id": "b1", "title": "Dune", "thumbnail": "/uploads/abc.jpg"})
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})

	updated, err := svc.SetThumbnail(context.Background(), domain.MediaItem{ID: "b1", Title: "Dune"}, "https://img.example/dune.jpg")
	if err != nil {
		t.Fatalf("SetThumbnail: %v", err)
	}
	if updated.Thumbnail != "/uploads/abc.jpg" {
		t.Errorf("Thumbnail = %q, want stored path", updated.Thumbnail)
	}
}

func TestSetThumbnailEmptyURL(t *testing.T) {
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty URL")
	})

	if _, err := svc.SetThumbnail(context.Background(), domain.MediaItem{ID: "b1"}, ""); !domain.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestBulkDeleteInvalidatesMixlists(t *testing.T) {
	var mixlistCalls atomic.Int32
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/media/bulk":
			json.NewEncoder(w).Encode(api.Record{"deletedCount": 2})
		case r.URL.Path == "/mixlist":
			mixlistCalls.Add(1)
			json.NewEncoder(w).Encode([]api.Record{})
		}
	})
	ctx := context.Background()

	if _, err := svc.GetMixlists(ctx, false); err != nil {
		t.Fatalf("prime mixlists: %v", err)
	}
	count, err := svc.BulkDeleteMedia(ctx, []string{"b1", "m1"})
	if err != nil || count != 2 {
		t.Fatalf("BulkDeleteMedia = (%d, %v)", count, err)
	}
	// Mixlists embed media items, so they must refetch.
	if _, err := svc.GetMixlists(ctx, false); err != nil {
		t.Fatalf("reload mixlists: %v", err)
	}
	if got := mixlistCalls.Load(); got != 2 {
		t.Errorf("mixlist fetches = %d, want 2 (cache invalidated by bulk delete)", got)
	}
}

func TestCreateTopicReusesExisting(t *testing.T) {
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/topics/search":
			json.NewEncoder(w).Encode([]api.Record{{"id": "t1", "name": "history"}})
		case r.Method == http.MethodPost:
			t.Error("created a duplicate of an existing topic")
		}
	})

	topic, err := svc.CreateTopic(context.Background(), "History")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	if topic.ID != "t1" {
		t.Errorf("topic = %+v, want the existing one", topic)
	}
}

func TestCreateMixlistNoExactMatch(t *testing.T) {
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/mixlist/search":
			// Substring hit only; not an exact name.
			json.NewEncoder(w).Encode([]api.Record{{"id": "x1", "name": "summer reading 2025"}})
		case r.Method == http.MethodPost && r.URL.Path == "/mixlist":
			json.NewEncoder(w).Encode(api.Record{"id": "x2", "name": "summer reading"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	list, err := svc.CreateMixlist(context.Background(), "summer reading")
	if err != nil {
		t.Fatalf("CreateMixlist: %v", err)
	}
	if list.ID != "x2" {
		t.Errorf("list = %+v, want a fresh one", list)
	}
}

func TestUpdateTopicInvalidatesMedia(t *testing.T) {
	var mediaCalls atomic.Int32
	svc := newCatalogService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/media":
			mediaCalls.Add(1)
			json.NewEncoder(w).Encode([]api.Record{})
		case strings.HasPrefix(r.URL.Path, "/topics"):
			json.NewEncoder(w).Encode(api.Record{"id": "t1", "name": "renamed"})
		}
	})
	ctx := context.Background()

	svc.GetMedia(ctx, MediaScope{}, false)
	if _, err := svc.UpdateTopic(ctx, "t1", "renamed"); err != nil {
		t.Fatalf("UpdateTopic: %v", err)
	}
	svc.GetMedia(ctx, MediaScope{}, false)

	if got := mediaCalls.Load(); got != 2 {
		t.Errorf("media fetches = %d, want 2 (label rename invalidates media)", got)
	}
}
