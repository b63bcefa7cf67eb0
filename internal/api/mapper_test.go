package api

import (
	"reflect"
	"testing"
	"time"

	"github.com/pmeridian/charta/internal/domain"
)

func TestBuildMediaItemBook(t *testing.T) {
	// Key casing deliberately mixed, as the server emits it.
	rec := Record{
		"Id":        "b1",
		"title":     "Dune",
		"MediaType": "Book",
		"status":    "Completed",
		"Rating":    "SuperLike",
		"author":    "Frank Herbert",
		"ISBN":      "978-0441013593",
		"Topics": []any{
			map[string]any{"name": "Science Fiction"},
			"Politics",
		},
		"dateCompleted":  "2024-03-01T10:00:00Z",
		"serverRevision": "abc123",
	}

	item := BuildMediaItem(rec)

	if item.ID != "b1" || item.Title != "Dune" {
		t.Fatalf("identity fields wrong: %#v", item)
	}
	if item.MediaType != domain.MediaTypeBook {
		t.Errorf("MediaType = %q, want Book", item.MediaType)
	}
	if item.Book == nil {
		t.Fatal("book payload not built")
	}
	if item.Book.Author != "Frank Herbert" || item.Book.ISBN != "978-0441013593" {
		t.Errorf("book payload = %#v", item.Book)
	}
	if item.Movie != nil || item.TVShow != nil || item.Podcast != nil {
		t.Error("non-book payloads populated for a book record")
	}
	wantTopics := []string{"science fiction", "politics"}
	if !reflect.DeepEqual(item.Topics, wantTopics) {
		t.Errorf("Topics = %#v, want %#v", item.Topics, wantTopics)
	}
	if item.DateCompleted == nil || !item.DateCompleted.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("DateCompleted = %v", item.DateCompleted)
	}
	if item.Extra["serverRevision"] != "abc123" {
		t.Errorf("unmodeled field not passed through: %#v", item.Extra)
	}
}

func TestBuildMediaItemUnknownType(t *testing.T) {
	item := BuildMediaItem(Record{"id": "x1", "title": "Mystery", "mediaType": "Hologram"})
	if item.Book != nil || item.Movie != nil || item.TVShow != nil || item.Podcast != nil {
		t.Errorf("payload built for unknown media type: %#v", item)
	}
	if item.Title != "Mystery" {
		t.Errorf("common fields lost: %#v", item)
	}
}

// The canonical record of a built item must rebuild to the same canonical
// record, so edit round trips never drift.
func TestMediaItemRecordIdempotent(t *testing.T) {
	completed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []domain.MediaItem{
		{
			ID:            "b1",
			Title:         "Dune",
			MediaType:     domain.MediaTypeBook,
			Status:        domain.StatusCompleted,
			Rating:        domain.RatingSuperLike,
			DateAdded:     time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
			DateCompleted: &completed,
			Topics:        []string{"science fiction"},
			Book:          &domain.BookPayload{Author: "Frank Herbert", ISBN: "978-0441013593", PartOfSeries: true},
			Extra:         map[string]any{"serverRevision": "abc123"},
		},
		{
			ID:        "m1",
			Title:     "Arrival",
			MediaType: domain.MediaTypeMovie,
			Status:    domain.StatusUncharted,
			Movie:     &domain.MoviePayload{Director: "Denis Villeneuve", ReleaseYear: 2016, TmdbRating: 7.6},
		},
		{
			ID:        "p1",
			Title:     "Episode 42",
			MediaType: domain.MediaTypePodcast,
			Podcast:   &domain.PodcastPayload{PodcastType: domain.PodcastEpisodeType, ExternalID: "ext-42", DurationSeconds: 1800},
		},
	}

	for _, item := range items {
		t.Run(item.Title, func(t *testing.T) {
			first := MediaItemRecord(item)
			rebuilt := BuildMediaItem(first)
			second := MediaItemRecord(rebuilt)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("record drifted on rebuild:\nfirst:  %#v\nsecond: %#v", first, second)
			}
		})
	}
}

// Moving status away from Completed must not drop stored completion fields
// from the update payload.
func TestMediaItemRecordKeepsCompletionFields(t *testing.T) {
	completed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	item := domain.MediaItem{
		ID:            "b1",
		Title:         "Dune",
		MediaType:     domain.MediaTypeBook,
		Status:        domain.StatusActivelyExploring,
		Rating:        domain.RatingLike,
		DateCompleted: &completed,
		Book:          &domain.BookPayload{Author: "Frank Herbert"},
	}

	rec := MediaItemRecord(item)
	if rec["dateCompleted"] == nil {
		t.Error("dateCompleted dropped when status is not Completed")
	}
	if rec["rating"] != "Like" {
		t.Errorf("rating = %v, want Like", rec["rating"])
	}
}

func TestMediaItemRecordNulls(t *testing.T) {
	rec := MediaItemRecord(domain.MediaItem{
		ID:        "b1",
		Title:     "Dune",
		MediaType: domain.MediaTypeBook,
		Book:      &domain.BookPayload{},
	})
	for _, key := range []string{"rating", "link", "dateCompleted", "isbn"} {
		if rec[key] != nil {
			t.Errorf("rec[%q] = %v, want explicit null", key, rec[key])
		}
	}
	// Label arrays are empty arrays, never null.
	if topics, ok := rec["topics"].([]string); !ok || topics == nil {
		t.Errorf("rec[topics] = %#v, want empty []string", rec["topics"])
	}
}

func TestBuildMixlistNestedItems(t *testing.T) {
	rec := Record{
		"id":   "x1",
		"Name": "Rainy Day",
		"mediaItems": []any{
			map[string]any{"id": "b1", "title": "Dune", "mediaType": "Book"},
		},
	}
	list := BuildMixlist(rec)
	if list.Name != "Rainy Day" {
		t.Errorf("Name = %q", list.Name)
	}
	if len(list.Items) != 1 || list.Items[0].Book == nil {
		t.Errorf("nested items not built: %#v", list.Items)
	}
}

func TestBuildNoteLinks(t *testing.T) {
	rec := Record{
		"id":    "n1",
		"title": "Reading log",
		"mediaItems": []any{
			map[string]any{"mediaItemId": "b1", "title": "Dune", "description": "ch. 3 notes"},
		},
	}
	note := BuildNote(rec)
	if len(note.Links) != 1 {
		t.Fatalf("links = %#v", note.Links)
	}
	link := note.Links[0]
	if link.MediaItemID != "b1" || link.Title != "Dune" || link.Description != "ch. 3 notes" {
		t.Errorf("link = %#v", link)
	}
}
