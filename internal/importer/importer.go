// Package importer models the search-and-import workflows shared by the
// podcast and book import views as an explicit state machine, including the
// de-duplication map that keeps catalog episodes from being imported twice.
package importer

import (
	"fmt"
	"time"

	"github.com/pmeridian/charta/internal/domain"
)

// RedirectDelay is how long the success message stays visible before the
// view navigates to the imported item. The redirect is scheduled and
// cancelable, never immediate: a view that goes away first cancels it.
const RedirectDelay = 1500 * time.Millisecond

// Phase is a step in the import workflow.
type Phase int

const (
	// SearchIdle is the initial phase, before any search has run.
	SearchIdle Phase = iota
	// Searching means a catalog search is in flight.
	Searching
	// ResultsShown means search results (possibly zero) are displayed.
	ResultsShown
	// Importing means one selected result is being imported.
	Importing
	// Imported means the import finished and the local id is available.
	Imported
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case SearchIdle:
		return "idle"
	case Searching:
		return "searching"
	case ResultsShown:
		return "results"
	case Importing:
		return "importing"
	case Imported:
		return "imported"
	default:
		return "unknown"
	}
}

// Flow drives one import workflow over results of type R. Transitions are
// one-directional except ResultsShown → Searching (re-search) and
// Importing → ResultsShown (import failure keeps the result list). Direct
// imports by id/name/ISBN skip the search phases entirely.
type Flow[R any] struct {
	phase   Phase
	results []R
	// direct records that the current import skipped the search phases, so
	// a failure falls back to SearchIdle instead of ResultsShown.
	direct  bool
	localID string

	// redirectToken identifies the currently scheduled post-import
	// redirect. CancelRedirect bumps it so a stale timer fires as a no-op.
	redirectToken int
}

// NewFlow returns a flow in SearchIdle.
func NewFlow[R any]() *Flow[R] {
	return &Flow[R]{}
}

// Phase returns the current workflow step.
func (f *Flow[R]) Phase() Phase {
	return f.phase
}

// Results returns the currently displayed search results.
func (f *Flow[R]) Results() []R {
	return f.results
}

// LocalID returns the imported item's local id; empty before Imported.
func (f *Flow[R]) LocalID() string {
	return f.localID
}

// BeginSearch moves to Searching. Allowed from SearchIdle and from
// ResultsShown (re-search).
func (f *Flow[R]) BeginSearch() error {
	if f.phase != SearchIdle && f.phase != ResultsShown {
		return fmt.Errorf("cannot search while %s", f.phase)
	}
	f.phase = Searching
	return nil
}

// ShowResults settles a search with its hits (possibly none).
func (f *Flow[R]) ShowResults(results []R) error {
	if f.phase != Searching {
		return fmt.Errorf("no search in flight (phase %s)", f.phase)
	}
	f.phase = ResultsShown
	f.results = results
	return nil
}

// SearchFailed returns to SearchIdle so the user can retry.
func (f *Flow[R]) SearchFailed() error {
	if f.phase != Searching {
		return fmt.Errorf("no search in flight (phase %s)", f.phase)
	}
	f.phase = SearchIdle
	f.results = nil
	return nil
}

// BeginImport starts importing one selected search result.
func (f *Flow[R]) BeginImport() error {
	if f.phase != ResultsShown {
		return fmt.Errorf("no results to import from (phase %s)", f.phase)
	}
	f.phase = Importing
	f.direct = false
	return nil
}

// BeginDirectImport starts an import from user input (id, name or ISBN),
// skipping the search phases.
func (f *Flow[R]) BeginDirectImport() error {
	if f.phase == Searching || f.phase == Importing {
		return fmt.Errorf("operation already in flight (phase %s)", f.phase)
	}
	f.phase = Importing
	f.direct = true
	return nil
}

// ImportFailed returns to the prior result list, or to SearchIdle for a
// direct import that had no result list to return to.
func (f *Flow[R]) ImportFailed() error {
	if f.phase != Importing {
		return fmt.Errorf("no import in flight (phase %s)", f.phase)
	}
	if f.direct || len(f.results) == 0 {
		f.phase = SearchIdle
	} else {
		f.phase = ResultsShown
	}
	return nil
}

// ImportSucceeded records the new local id and schedules the redirect,
// returning the token the caller attaches to its delayed navigation.
func (f *Flow[R]) ImportSucceeded(localID string) (int, error) {
	if f.phase != Importing {
		return 0, fmt.Errorf("no import in flight (phase %s)", f.phase)
	}
	f.phase = Imported
	f.localID = localID
	f.redirectToken++
	return f.redirectToken, nil
}

// RedirectDue reports whether a fired timer carrying token should still
// navigate. A canceled or superseded redirect is a silent no-op.
func (f *Flow[R]) RedirectDue(token int) bool {
	return f.phase == Imported && token == f.redirectToken
}

// CancelRedirect invalidates any scheduled redirect. Views call this when
// torn down before the timer fires.
func (f *Flow[R]) CancelRedirect() {
	f.redirectToken++
}

// ImportedEpisodes maps catalog external ids to local episode ids. It is a
// session-local cache: derived from the authoritative episode list and
// recomputed whenever that list is refetched, never trusted across a sync.
type ImportedEpisodes map[string]string

// IndexEpisodes builds the map from a freshly fetched episode list.
// Episodes without an external id (created locally) are skipped.
func IndexEpisodes(episodes []domain.PodcastEpisode) ImportedEpisodes {
	m := make(ImportedEpisodes, len(episodes))
	for _, ep := range episodes {
		if ep.ExternalID != "" {
			m[ep.ExternalID] = ep.ID
		}
	}
	return m
}

// LocalID returns the local id for a catalog external id, if imported.
func (m ImportedEpisodes) LocalID(externalID string) (string, bool) {
	id, ok := m[externalID]
	return id, ok
}

// Contains reports whether the catalog episode is already imported. Import
// views check this before offering an import action and render "go to item"
// instead when it returns true.
func (m ImportedEpisodes) Contains(externalID string) bool {
	_, ok := m[externalID]
	return ok
}
