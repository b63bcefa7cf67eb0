package store

import (
	"testing"

	"github.com/pmeridian/charta/internal/domain"
)

func newTestStore(t *testing.T) *CatalogStore {
	t.Helper()
	s, err := NewCatalogStore(t.TempDir(), "http://localhost:5000")
	if err != nil {
		t.Fatalf("NewCatalogStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMediaListRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.GetMediaList(MediaKeyAll); ok {
		t.Fatal("empty store reported a cached list")
	}

	items := []*domain.MediaItem{
		{ID: "b1", Title: "Dune", MediaType: domain.MediaTypeBook, Book: &domain.BookPayload{Author: "Frank Herbert"}},
		{ID: "m1", Title: "Arrival", MediaType: domain.MediaTypeMovie},
	}
	if err := s.SaveMediaList(MediaKeyAll, items); err != nil {
		t.Fatalf("SaveMediaList() error: %v", err)
	}

	got, ok := s.GetMediaList(MediaKeyAll)
	if !ok || len(got) != 2 {
		t.Fatalf("GetMediaList() = (%v, %v)", got, ok)
	}
	if got[0].Book == nil || got[0].Book.Author != "Frank Herbert" {
		t.Errorf("variant payload lost: %#v", got[0])
	}
}

func TestScopedListsAreIndependent(t *testing.T) {
	s := newTestStore(t)
	s.SaveMediaList(MediaKeyByType(domain.MediaTypeBook), []*domain.MediaItem{{ID: "b1"}})
	s.SaveMediaList(MediaKeyByTopic("t1"), []*domain.MediaItem{{ID: "b1"}, {ID: "b2"}})

	byType, _ := s.GetMediaList(MediaKeyByType(domain.MediaTypeBook))
	byTopic, _ := s.GetMediaList(MediaKeyByTopic("t1"))
	if len(byType) != 1 || len(byTopic) != 2 {
		t.Errorf("scopes collided: byType=%d byTopic=%d", len(byType), len(byTopic))
	}
}

func TestInvalidateMedia(t *testing.T) {
	s := newTestStore(t)
	s.SaveMediaList(MediaKeyAll, []*domain.MediaItem{{ID: "b1"}})
	s.SaveMediaItem(&domain.MediaItem{ID: "b1", Title: "Dune"})
	s.SaveTopics([]domain.Topic{{ID: "t1", Name: "history"}})

	s.InvalidateMedia()

	if _, ok := s.GetMediaList(MediaKeyAll); ok {
		t.Error("media list survived invalidation")
	}
	if _, ok := s.GetMediaItem("b1"); ok {
		t.Error("media item survived invalidation")
	}
	if _, ok := s.GetTopics(); !ok {
		t.Error("invalidation crossed buckets into topics")
	}
}

func TestInvalidateMediaItemWipesLists(t *testing.T) {
	s := newTestStore(t)
	s.SaveMediaList(MediaKeyAll, []*domain.MediaItem{{ID: "b1", Title: "old title"}})
	s.SaveMediaItem(&domain.MediaItem{ID: "b1", Title: "old title"})
	s.SaveMediaItem(&domain.MediaItem{ID: "b2", Title: "other"})

	s.InvalidateMediaItem("b1")

	if _, ok := s.GetMediaItem("b1"); ok {
		t.Error("invalidated item still cached")
	}
	// Lists embed item fields, so they must go too.
	if _, ok := s.GetMediaList(MediaKeyAll); ok {
		t.Error("stale list survived item invalidation")
	}
	if _, ok := s.GetMediaItem("b2"); !ok {
		t.Error("unrelated item was invalidated")
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	serverURL := "http://localhost:5000"

	s1, err := NewCatalogStore(dir, serverURL)
	if err != nil {
		t.Fatalf("NewCatalogStore() error: %v", err)
	}
	s1.SaveMediaList(MediaKeyAll, []*domain.MediaItem{{ID: "b1", Title: "Dune"}})
	s1.Close()

	s2, err := NewCatalogStore(dir, serverURL)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s2.Close()

	got, ok := s2.GetMediaList(MediaKeyAll)
	if !ok || len(got) != 1 || got[0].Title != "Dune" {
		t.Errorf("reopened store lost data: (%v, %v)", got, ok)
	}
}

func TestServerURLsDoNotShareCache(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewCatalogStore(dir, "http://server-a:5000")
	if err != nil {
		t.Fatalf("NewCatalogStore() error: %v", err)
	}
	s1.SaveMediaList(MediaKeyAll, []*domain.MediaItem{{ID: "b1"}})
	s1.Close()

	s2, err := NewCatalogStore(dir, "http://server-b:5000")
	if err != nil {
		t.Fatalf("NewCatalogStore() error: %v", err)
	}
	defer s2.Close()

	if _, ok := s2.GetMediaList(MediaKeyAll); ok {
		t.Error("caches for different servers collided")
	}
}

func TestMemoryOnlyMode(t *testing.T) {
	s, err := NewCatalogStore("", "")
	if err != nil {
		t.Fatalf("NewCatalogStore(memory) error: %v", err)
	}
	defer s.Close()

	if err := s.SaveTopics([]domain.Topic{{ID: "t1", Name: "history"}}); err != nil {
		t.Fatalf("SaveTopics() error: %v", err)
	}
	topics, ok := s.GetTopics()
	if !ok || len(topics) != 1 {
		t.Errorf("GetTopics() = (%v, %v)", topics, ok)
	}

	s.InvalidateTopics()
	if _, ok := s.GetTopics(); ok {
		t.Error("invalidation did not reach the memory cache")
	}
}

func TestInvalidateSeries(t *testing.T) {
	s := newTestStore(t)
	s.SavePodcastSeries([]domain.PodcastSeries{{ID: "s1", Title: "Hardcore History"}})
	s.SaveSeriesEpisodes("s1", []domain.PodcastEpisode{{ID: "e1"}})
	s.SaveSeriesEpisodes("s2", []domain.PodcastEpisode{{ID: "e2"}})

	s.InvalidateSeries("s1")

	if _, ok := s.GetSeriesEpisodes("s1"); ok {
		t.Error("invalidated episode list still cached")
	}
	if _, ok := s.GetPodcastSeries(); ok {
		t.Error("series list survived; subscription state lives there")
	}
	if _, ok := s.GetSeriesEpisodes("s2"); !ok {
		t.Error("unrelated series' episodes were invalidated")
	}
}

func TestInvalidateAll(t *testing.T) {
	s := newTestStore(t)
	s.SaveMediaList(MediaKeyAll, []*domain.MediaItem{{ID: "b1"}})
	s.SaveTopics([]domain.Topic{{ID: "t1"}})
	s.SaveMixlists([]domain.Mixlist{{ID: "x1"}})
	s.SaveNotes([]domain.Note{{ID: "n1"}})

	s.InvalidateAll()

	if _, ok := s.GetMediaList(MediaKeyAll); ok {
		t.Error("media survived InvalidateAll")
	}
	if _, ok := s.GetTopics(); ok {
		t.Error("topics survived InvalidateAll")
	}
	if _, ok := s.GetMixlists(); ok {
		t.Error("mixlists survived InvalidateAll")
	}
	if _, ok := s.GetNotes(); ok {
		t.Error("notes survived InvalidateAll")
	}
}
