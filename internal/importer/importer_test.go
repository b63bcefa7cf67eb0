package importer

import (
	"testing"

	"github.com/pmeridian/charta/internal/domain"
)

type result struct{ title string }

func TestSearchImportHappyPath(t *testing.T) {
	f := NewFlow[result]()
	if f.Phase() != SearchIdle {
		t.Fatalf("initial phase = %v", f.Phase())
	}

	if err := f.BeginSearch(); err != nil {
		t.Fatalf("BeginSearch: %v", err)
	}
	hits := []result{{"Hardcore History"}, {"99% Invisible"}}
	if err := f.ShowResults(hits); err != nil {
		t.Fatalf("ShowResults: %v", err)
	}
	if len(f.Results()) != 2 {
		t.Errorf("Results() = %v", f.Results())
	}

	if err := f.BeginImport(); err != nil {
		t.Fatalf("BeginImport: %v", err)
	}
	token, err := f.ImportSucceeded("local-1")
	if err != nil {
		t.Fatalf("ImportSucceeded: %v", err)
	}
	if f.Phase() != Imported || f.LocalID() != "local-1" {
		t.Errorf("after success: phase=%v localID=%q", f.Phase(), f.LocalID())
	}
	if !f.RedirectDue(token) {
		t.Error("scheduled redirect not due")
	}
}

func TestInvalidTransitions(t *testing.T) {
	f := NewFlow[result]()

	if err := f.ShowResults(nil); err == nil {
		t.Error("ShowResults allowed with no search in flight")
	}
	if err := f.BeginImport(); err == nil {
		t.Error("BeginImport allowed with no results")
	}
	if _, err := f.ImportSucceeded("x"); err == nil {
		t.Error("ImportSucceeded allowed with no import in flight")
	}

	f.BeginSearch()
	if err := f.BeginSearch(); err == nil {
		t.Error("BeginSearch allowed while Searching")
	}
	if err := f.BeginDirectImport(); err == nil {
		t.Error("BeginDirectImport allowed while Searching")
	}
}

func TestResearchFromResults(t *testing.T) {
	f := NewFlow[result]()
	f.BeginSearch()
	f.ShowResults([]result{{"a"}})
	if err := f.BeginSearch(); err != nil {
		t.Fatalf("re-search from ResultsShown: %v", err)
	}
	if f.Phase() != Searching {
		t.Errorf("phase = %v", f.Phase())
	}
}

func TestSearchFailedReturnsToIdle(t *testing.T) {
	f := NewFlow[result]()
	f.BeginSearch()
	f.ShowResults([]result{{"a"}})
	f.BeginSearch()
	if err := f.SearchFailed(); err != nil {
		t.Fatalf("SearchFailed: %v", err)
	}
	if f.Phase() != SearchIdle || f.Results() != nil {
		t.Errorf("after SearchFailed: phase=%v results=%v", f.Phase(), f.Results())
	}
}

func TestImportFailedKeepsResults(t *testing.T) {
	f := NewFlow[result]()
	f.BeginSearch()
	f.ShowResults([]result{{"a"}, {"b"}})
	f.BeginImport()
	if err := f.ImportFailed(); err != nil {
		t.Fatalf("ImportFailed: %v", err)
	}
	if f.Phase() != ResultsShown || len(f.Results()) != 2 {
		t.Errorf("after import failure: phase=%v results=%v", f.Phase(), f.Results())
	}
	// The kept list is immediately importable again.
	if err := f.BeginImport(); err != nil {
		t.Errorf("re-import after failure: %v", err)
	}
}

func TestDirectImportFailureFallsToIdle(t *testing.T) {
	f := NewFlow[result]()
	if err := f.BeginDirectImport(); err != nil {
		t.Fatalf("BeginDirectImport: %v", err)
	}
	f.ImportFailed()
	if f.Phase() != SearchIdle {
		t.Errorf("direct import failure fell back to %v, want SearchIdle", f.Phase())
	}
}

func TestDirectImportAfterRedirectDismissal(t *testing.T) {
	f := NewFlow[result]()
	f.BeginDirectImport()
	f.ImportSucceeded("local-1")
	// User stays on the view; a fresh direct import is allowed from Imported.
	if err := f.BeginDirectImport(); err != nil {
		t.Errorf("BeginDirectImport from Imported: %v", err)
	}
}

func TestCancelRedirect(t *testing.T) {
	f := NewFlow[result]()
	f.BeginDirectImport()
	token, _ := f.ImportSucceeded("local-1")

	f.CancelRedirect()
	if f.RedirectDue(token) {
		t.Error("canceled redirect still due")
	}
}

func TestSupersededRedirect(t *testing.T) {
	f := NewFlow[result]()
	f.BeginDirectImport()
	stale, _ := f.ImportSucceeded("local-1")

	f.BeginDirectImport()
	current, _ := f.ImportSucceeded("local-2")

	if f.RedirectDue(stale) {
		t.Error("superseded redirect still due")
	}
	if !f.RedirectDue(current) {
		t.Error("current redirect not due")
	}
}

func TestIndexEpisodes(t *testing.T) {
	episodes := []domain.PodcastEpisode{
		{ID: "e1", ExternalID: "ext-1"},
		{ID: "e2", ExternalID: ""}, // created locally, never indexed
		{ID: "e3", ExternalID: "ext-3"},
	}

	m := IndexEpisodes(episodes)
	if len(m) != 2 {
		t.Fatalf("indexed %d episodes, want 2", len(m))
	}
	if id, ok := m.LocalID("ext-1"); !ok || id != "e1" {
		t.Errorf("LocalID(ext-1) = (%q, %v)", id, ok)
	}
	if m.Contains("ext-2") {
		t.Error("Contains reported an unimported episode")
	}
	if !m.Contains("ext-3") {
		t.Error("Contains missed an imported episode")
	}
}

func TestIndexEpisodesRebuildDropsStale(t *testing.T) {
	m := IndexEpisodes([]domain.PodcastEpisode{{ID: "e1", ExternalID: "ext-1"}})
	if !m.Contains("ext-1") {
		t.Fatal("setup failed")
	}
	// The episode was deleted server-side; a refetch rebuilds from scratch.
	m = IndexEpisodes(nil)
	if m.Contains("ext-1") {
		t.Error("stale entry survived a rebuild")
	}
}
