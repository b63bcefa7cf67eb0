package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/log"
	"github.com/pmeridian/charta/internal/store"
)

func newPodcastService(t *testing.T, handler http.HandlerFunc) *PodcastService {
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

	return NewPodcastService(client, st, log.Null())
}

func TestGetEpisodesBuildsImportedIndex(t *testing.T) {
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]api.Record{
			{"id": "e1", "title": "Pilot", "externalId": "ext-1"},
			{"id": "e2", "title": "Local only"},
		})
	})

	episodes, imported, err := svc.GetEpisodes(context.Background(), "s1", true)
	if err != nil {
		t.Fatalf("GetEpisodes: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("episodes = %v", episodes)
	}
	if id, ok := imported.LocalID("ext-1"); !ok || id != "e1" {
		t.Errorf("imported index = %v", imported)
	}
	if imported.Contains("") {
		t.Error("episode without external id was indexed")
	}

	// Cached read rebuilds the index from the cached list.
	_, imported, err = svc.GetEpisodes(context.Background(), "s1", false)
	if err != nil {
		t.Fatalf("cached GetEpisodes: %v", err)
	}
	if !imported.Contains("ext-1") {
		t.Error("index not rebuilt on cached read")
	}
}

func TestSyncEpisodesInvalidates(t *testing.T) {
	var episodeFetches atomic.Int32
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sync"):
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/episodes"):
			episodeFetches.Add(1)
			json.NewEncoder(w).Encode([]api.Record{{"id": "e1"}})
		}
	})
	ctx := context.Background()

	svc.GetEpisodes(ctx, "s1", false)
	if err := svc.SyncEpisodes(ctx, "s1"); err != nil {
		t.Fatalf("SyncEpisodes: %v", err)
	}
	svc.GetEpisodes(ctx, "s1", false)

	if got := episodeFetches.Load(); got != 2 {
		t.Errorf("episode fetches = %d, want 2 (sync drops the episode cache)", got)
	}
}

func TestSubscribeInvalidatesSeriesList(t *testing.T) {
	var seriesFetches atomic.Int32
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/subscribe"):
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/podcast/series":
			seriesFetches.Add(1)
			json.NewEncoder(w).Encode([]api.Record{{"id": "s1", "title": "Hardcore History"}})
		}
	})
	ctx := context.Background()

	svc.GetSeries(ctx, false)
	if err := svc.Subscribe(ctx, "s1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	svc.GetSeries(ctx, false)

	if got := seriesFetches.Load(); got != 2 {
		t.Errorf("series fetches = %d, want 2 (subscription state lives on the series row)", got)
	}
}

func TestGetSubscriptionsNeverCached(t *testing.T) {
	var calls atomic.Int32
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/podcast/series/subscriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		calls.Add(1)
		json.NewEncoder(w).Encode([]api.Record{{"id": "s1", "isSubscribed": true}})
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		subs, err := svc.GetSubscriptions(ctx)
		if err != nil || len(subs) != 1 || !subs[0].IsSubscribed {
			t.Fatalf("GetSubscriptions = (%v, %v)", subs, err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2", got)
	}
}

func TestImportSeriesByNameValidation(t *testing.T) {
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for empty name")
	})

	_, err := svc.ImportSeriesByName(context.Background(), "")
	if err == nil {
		t.Fatal("empty name accepted")
	}
}

func TestImportEpisode(t *testing.T) {
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/podcast/episodes/from-api/") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("seriesId"); got != "s1" {
			t.Errorf("seriesId = %q", got)
		}
		json.NewEncoder(w).Encode(api.Record{"Id": "local-e1"})
	})

	id, err := svc.ImportEpisode(context.Background(), "ext-1", "s1")
	if err != nil {
		t.Fatalf("ImportEpisode: %v", err)
	}
	if id != "local-e1" {
		t.Errorf("local id = %q, want local-e1", id)
	}
}

func TestGetCatalogEpisodesPaging(t *testing.T) {
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("next_episode_pub_date"); got != "1700000000" {
			t.Errorf("cursor = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"episodes":              []api.Record{{"id": "ext-9", "title": "Older episode"}},
			"next_episode_pub_date": 1690000000,
		})
	})

	episodes, next, err := svc.GetCatalogEpisodes(context.Background(), "pod-1", 1700000000)
	if err != nil {
		t.Fatalf("GetCatalogEpisodes: %v", err)
	}
	if len(episodes) != 1 || next != 1690000000 {
		t.Errorf("page = (%v, %d)", episodes, next)
	}
}

func TestGetSeriesByIDBypassesCache(t *testing.T) {
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/podcast/series/s1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.Record{"id": "s1", "title": "Radiolab", "isSubscribed": true})
	})

	series, err := svc.GetSeriesByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSeriesByID: %v", err)
	}
	if series.Title != "Radiolab" || !series.IsSubscribed {
		t.Errorf("series = %+v", series)
	}
}

func TestGetEpisodeDetail(t *testing.T) {
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/podcast/episodes/e1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.Record{
			"id": "e1", "title": "Pilot", "durationInSeconds": 1800, "episodeNumber": 1,
		})
	})

	ep, err := svc.GetEpisode(context.Background(), "e1")
	if err != nil {
		t.Fatalf("GetEpisode: %v", err)
	}
	if ep.Title != "Pilot" || ep.DurationSeconds != 1800 || ep.EpisodeNumber != 1 {
		t.Errorf("episode = %+v", ep)
	}
}

func TestSearchSeriesNeverCached(t *testing.T) {
	var calls atomic.Int32
	svc := newPodcastService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.URL.Query().Get("query"); got != "radio" {
			t.Errorf("query = %q", got)
		}
		json.NewEncoder(w).Encode([]api.Record{{"id": "s1", "title": "Radiolab"}})
	})

	for i := 0; i < 2; i++ {
		series, err := svc.SearchSeries(context.Background(), "radio")
		if err != nil {
			t.Fatalf("SearchSeries: %v", err)
		}
		if len(series) != 1 || series[0].Title != "Radiolab" {
			t.Errorf("series = %+v", series)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2", got)
	}
}
