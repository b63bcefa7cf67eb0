package tui

import (
	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/importer"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
	// Token ties the error to the async operation that produced it;
	// stale errors from superseded operations are dropped.
	Token int
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// MediaLoadedMsg signals that a media list has been loaded
type MediaLoadedMsg struct {
	Items []*domain.MediaItem
	Scope string
	Token int
}

// MediaSearchedMsg signals that server search results are ready
type MediaSearchedMsg struct {
	Items []*domain.MediaItem
	Query string
	Token int
}

// MediaItemLoadedMsg signals that a single item has been loaded
type MediaItemLoadedMsg struct {
	Item *domain.MediaItem
}

// MediaSavedMsg signals a create or update settled
type MediaSavedMsg struct {
	Item    *domain.MediaItem
	Created bool
	// Partial is set when follow-up mixlist attachments failed
	Partial *domain.PartialActionError
	Token   int
}

// MediaDeletedMsg signals that one item was deleted
type MediaDeletedMsg struct {
	ID    string
	Token int
}

// MediaBulkDeletedMsg signals a bulk delete settled
type MediaBulkDeletedMsg struct {
	Count int
	Token int
}

// TopicsLoadedMsg signals that topics have been loaded
type TopicsLoadedMsg struct {
	Topics []domain.Topic
}

// GenresLoadedMsg signals that genres have been loaded
type GenresLoadedMsg struct {
	Genres []domain.Genre
}

// LabelSavedMsg signals a topic or genre create/rename settled
type LabelSavedMsg struct {
	Kind string // "topic" or "genre"
	ID   string
	Name string
}

// LabelDeletedMsg signals a topic or genre was deleted
type LabelDeletedMsg struct {
	Kind string
	ID   string
}

// MixlistsLoadedMsg signals that mixlists have been loaded
type MixlistsLoadedMsg struct {
	Lists []domain.Mixlist
}

// MixlistLoadedMsg signals that one mixlist (with items) has been loaded
type MixlistLoadedMsg struct {
	List *domain.Mixlist
}

// MixlistSavedMsg signals a mixlist create or rename settled
type MixlistSavedMsg struct {
	List *domain.Mixlist
}

// MixlistDeletedMsg signals a mixlist was deleted
type MixlistDeletedMsg struct {
	ID string
}

// MixlistMembershipMsg signals an add/remove of one item settled
type MixlistMembershipMsg struct {
	ListID  string
	MediaID string
	Added   bool
}

// SeriesLoadedMsg signals that podcast series have been loaded
type SeriesLoadedMsg struct {
	Series        []domain.PodcastSeries
	Subscriptions bool
}

// EpisodesLoadedMsg signals that a series' episodes (and the imported
// index derived from the same fetch) have been loaded
type EpisodesLoadedMsg struct {
	SeriesID string
	Episodes []domain.PodcastEpisode
	Imported importer.ImportedEpisodes
}

// SeriesSearchedMsg signals that server-side series search results are ready
type SeriesSearchedMsg struct {
	Series []domain.PodcastSeries
	Query  string
}

// SeriesDetailMsg carries one freshly fetched series, used to open an
// imported series before the list cache catches up
type SeriesDetailMsg struct {
	Series domain.PodcastSeries
}

// EpisodeDetailMsg carries one freshly fetched episode for the detail view
type EpisodeDetailMsg struct {
	Episode domain.PodcastEpisode
}

// SubscriptionChangedMsg signals a subscribe/unsubscribe settled
type SubscriptionChangedMsg struct {
	SeriesID   string
	Subscribed bool
}

// SeriesSyncedMsg signals a server-side episode sync settled
type SeriesSyncedMsg struct {
	SeriesID string
}

// PodcastCatalogMsg signals external podcast directory search results
type PodcastCatalogMsg struct {
	Results []api.CatalogPodcast
	Query   string
	Token   int
}

// CatalogEpisodesMsg signals one page of directory episodes
type CatalogEpisodesMsg struct {
	ExternalID string
	Episodes   []api.CatalogEpisode
	NextCursor int64
}

// BookCatalogMsg signals external book catalog search results
type BookCatalogMsg struct {
	Results []api.CatalogBook
	Query   string
	Token   int
}

// ImportedMsg signals an import settled with the new local id
type ImportedMsg struct {
	Kind    string // "podcast", "episode" or "book"
	LocalID string
	Token   int
}

// RedirectMsg fires after the post-import delay; Token is checked against
// the flow before navigating
type RedirectMsg struct {
	LocalID string
	Token   int
}

// NotesLoadedMsg signals that notes have been loaded
type NotesLoadedMsg struct {
	Notes []domain.Note
	// MediaID is set when this is the per-item note list
	MediaID string
}

// NoteSavedMsg signals a note description update settled
type NoteSavedMsg struct {
	Note *domain.Note
}

// NoteDraftMsg carries a server-generated description draft for review
type NoteDraftMsg struct {
	Note *domain.Note
}

// NoteLinkChangedMsg signals a link/unlink settled
type NoteLinkChangedMsg struct {
	NoteID  string
	MediaID string
	Linked  bool
}

// StatusMsg shows a transient message in the status bar
type StatusMsg struct {
	Text    string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
