package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/importer"
	"github.com/pmeridian/charta/internal/service"
)

// Command factories for async operations

const (
	loadTimeout   = 30 * time.Second
	mutateTimeout = 30 * time.Second
	importTimeout = 60 * time.Second // imports fan out to external catalogs
)

// newMutateCtx is the context for ad-hoc mutation commands built inline.
func newMutateCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), mutateTimeout)
}

// === Media ===

// LoadMediaCmd loads a media list for a scope
func LoadMediaCmd(svc *service.CatalogService, scope service.MediaScope, scopeKey string, refresh bool, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		items, err := svc.GetMedia(ctx, scope, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading media", Token: token}
		}
		return MediaLoadedMsg{Items: items, Scope: scopeKey, Token: token}
	}
}

// SearchMediaCmd runs a server search
func SearchMediaCmd(svc *service.CatalogService, query string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		items, err := svc.SearchMedia(ctx, query)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching media", Token: token}
		}
		return MediaSearchedMsg{Items: items, Query: query, Token: token}
	}
}

// LoadMediaItemCmd loads one item by id
func LoadMediaItemCmd(svc *service.CatalogService, id string, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		item, err := svc.GetMediaItem(ctx, id, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading item"}
		}
		return MediaItemLoadedMsg{Item: item}
	}
}

// CreateMediaCmd creates an item and attaches it to mixlists
func CreateMediaCmd(svc *service.CatalogService, item domain.MediaItem, mixlistIDs []string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		created, err := svc.CreateMedia(ctx, item, mixlistIDs)
		if err != nil {
			var partial *domain.PartialActionError
			if errors.As(err, &partial) {
				// The item exists; only follow-up attachments failed.
				return MediaSavedMsg{Item: created, Created: true, Partial: partial, Token: token}
			}
			return ErrMsg{Err: err, Context: "creating item", Token: token}
		}
		return MediaSavedMsg{Item: created, Created: true, Token: token}
	}
}

// UpdateMediaCmd saves edits to an existing item
func UpdateMediaCmd(svc *service.CatalogService, item domain.MediaItem, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		updated, err := svc.UpdateMedia(ctx, item)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving item", Token: token}
		}
		return MediaSavedMsg{Item: updated, Token: token}
	}
}

// SaveMediaThumbnailCmd uploads a new thumbnail image before saving the item.
func SaveMediaThumbnailCmd(svc *service.CatalogService, item domain.MediaItem, imageURL string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		updated, err := svc.SetThumbnail(ctx, item, imageURL)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving item", Token: token}
		}
		return MediaSavedMsg{Item: updated, Token: token}
	}
}

// DeleteMediaCmd deletes one item
func DeleteMediaCmd(svc *service.CatalogService, id string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		if err := svc.DeleteMedia(ctx, id); err != nil {
			return ErrMsg{Err: err, Context: "deleting item", Token: token}
		}
		return MediaDeletedMsg{ID: id, Token: token}
	}
}

// BulkDeleteMediaCmd deletes the marked items in one request
func BulkDeleteMediaCmd(svc *service.CatalogService, ids []string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		count, err := svc.BulkDeleteMedia(ctx, ids)
		if err != nil {
			return ErrMsg{Err: err, Context: "deleting items", Token: token}
		}
		return MediaBulkDeletedMsg{Count: count, Token: token}
	}
}

// === Topics and genres ===

func LoadTopicsCmd(svc *service.CatalogService, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		topics, err := svc.GetTopics(ctx, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading topics"}
		}
		return TopicsLoadedMsg{Topics: topics}
	}
}

func LoadGenresCmd(svc *service.CatalogService, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		genres, err := svc.GetGenres(ctx, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading genres"}
		}
		return GenresLoadedMsg{Genres: genres}
	}
}

// SaveLabelCmd creates or renames a topic/genre. An empty id creates.
func SaveLabelCmd(svc *service.CatalogService, kind, id, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		switch kind {
		case "topic":
			var (
				topic *domain.Topic
				err   error
			)
			if id == "" {
				topic, err = svc.CreateTopic(ctx, name)
			} else {
				topic, err = svc.UpdateTopic(ctx, id, name)
			}
			if err != nil {
				return ErrMsg{Err: err, Context: "saving topic"}
			}
			return LabelSavedMsg{Kind: kind, ID: topic.ID, Name: topic.Name}
		default:
			var (
				genre *domain.Genre
				err   error
			)
			if id == "" {
				genre, err = svc.CreateGenre(ctx, name)
			} else {
				genre, err = svc.UpdateGenre(ctx, id, name)
			}
			if err != nil {
				return ErrMsg{Err: err, Context: "saving genre"}
			}
			return LabelSavedMsg{Kind: kind, ID: genre.ID, Name: genre.Name}
		}
	}
}

func DeleteLabelCmd(svc *service.CatalogService, kind, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		var err error
		if kind == "topic" {
			err = svc.DeleteTopic(ctx, id)
		} else {
			err = svc.DeleteGenre(ctx, id)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "deleting " + kind}
		}
		return LabelDeletedMsg{Kind: kind, ID: id}
	}
}

// === Mixlists ===

func LoadMixlistsCmd(svc *service.CatalogService, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		lists, err := svc.GetMixlists(ctx, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading mixlists"}
		}
		return MixlistsLoadedMsg{Lists: lists}
	}
}

func LoadMixlistCmd(svc *service.CatalogService, id string, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		list, err := svc.GetMixlist(ctx, id, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading mixlist"}
		}
		return MixlistLoadedMsg{List: list}
	}
}

// SaveMixlistCmd creates or renames a mixlist. An empty id creates.
func SaveMixlistCmd(svc *service.CatalogService, id, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		var (
			list *domain.Mixlist
			err  error
		)
		if id == "" {
			list, err = svc.CreateMixlist(ctx, name)
		} else {
			list, err = svc.RenameMixlist(ctx, id, name)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "saving mixlist"}
		}
		return MixlistSavedMsg{List: list}
	}
}

func DeleteMixlistCmd(svc *service.CatalogService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		if err := svc.DeleteMixlist(ctx, id); err != nil {
			return ErrMsg{Err: err, Context: "deleting mixlist"}
		}
		return MixlistDeletedMsg{ID: id}
	}
}

func AddToMixlistCmd(svc *service.CatalogService, listID, mediaID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		if err := svc.AddToMixlist(ctx, listID, mediaID); err != nil {
			return ErrMsg{Err: err, Context: "adding to mixlist"}
		}
		return MixlistMembershipMsg{ListID: listID, MediaID: mediaID, Added: true}
	}
}

func RemoveFromMixlistCmd(svc *service.CatalogService, listID, mediaID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		if err := svc.RemoveFromMixlist(ctx, listID, mediaID); err != nil {
			return ErrMsg{Err: err, Context: "removing from mixlist"}
		}
		return MixlistMembershipMsg{ListID: listID, MediaID: mediaID, Added: false}
	}
}

// === Podcasts ===

func LoadSeriesCmd(svc *service.PodcastService, subscriptionsOnly, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var (
			series []domain.PodcastSeries
			err    error
		)
		if subscriptionsOnly {
			series, err = svc.GetSubscriptions(ctx)
		} else {
			series, err = svc.GetSeries(ctx, refresh)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "loading podcasts"}
		}
		return SeriesLoadedMsg{Series: series, Subscriptions: subscriptionsOnly}
	}
}

func LoadEpisodesCmd(svc *service.PodcastService, seriesID string, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		episodes, imported, err := svc.GetEpisodes(ctx, seriesID, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading episodes"}
		}
		return EpisodesLoadedMsg{SeriesID: seriesID, Episodes: episodes, Imported: imported}
	}
}

func SearchSeriesCmd(svc *service.PodcastService, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		series, err := svc.SearchSeries(ctx, query)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching series"}
		}
		return SeriesSearchedMsg{Series: series, Query: query}
	}
}

func LoadSeriesDetailCmd(svc *service.PodcastService, seriesID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		series, err := svc.GetSeriesByID(ctx, seriesID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading series"}
		}
		return SeriesDetailMsg{Series: *series}
	}
}

func LoadEpisodeDetailCmd(svc *service.PodcastService, episodeID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		episode, err := svc.GetEpisode(ctx, episodeID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading episode"}
		}
		return EpisodeDetailMsg{Episode: *episode}
	}
}

func SetSubscriptionCmd(svc *service.PodcastService, seriesID string, subscribe bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		var err error
		if subscribe {
			err = svc.Subscribe(ctx, seriesID)
		} else {
			err = svc.Unsubscribe(ctx, seriesID)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "updating subscription"}
		}
		return SubscriptionChangedMsg{SeriesID: seriesID, Subscribed: subscribe}
	}
}

func SyncSeriesCmd(svc *service.PodcastService, seriesID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := svc.SyncEpisodes(ctx, seriesID); err != nil {
			return ErrMsg{Err: err, Context: "syncing episodes"}
		}
		return SeriesSyncedMsg{SeriesID: seriesID}
	}
}

func SearchPodcastCatalogCmd(svc *service.PodcastService, query string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		results, err := svc.SearchCatalog(ctx, query)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching podcast directory", Token: token}
		}
		return PodcastCatalogMsg{Results: results, Query: query, Token: token}
	}
}

func LoadCatalogEpisodesCmd(svc *service.PodcastService, externalID string, cursor int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		episodes, next, err := svc.GetCatalogEpisodes(ctx, externalID, cursor)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading directory episodes"}
		}
		return CatalogEpisodesMsg{ExternalID: externalID, Episodes: episodes, NextCursor: next}
	}
}

func ImportSeriesCmd(svc *service.PodcastService, externalID string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		id, err := svc.ImportSeries(ctx, externalID)
		if err != nil {
			return ErrMsg{Err: err, Context: "importing podcast", Token: token}
		}
		return ImportedMsg{Kind: "podcast", LocalID: id, Token: token}
	}
}

func ImportSeriesByNameCmd(svc *service.PodcastService, name string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		id, err := svc.ImportSeriesByName(ctx, name)
		if err != nil {
			return ErrMsg{Err: err, Context: "importing podcast", Token: token}
		}
		return ImportedMsg{Kind: "podcast", LocalID: id, Token: token}
	}
}

func ImportEpisodeCmd(svc *service.PodcastService, externalEpisodeID, seriesID string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		id, err := svc.ImportEpisode(ctx, externalEpisodeID, seriesID)
		if err != nil {
			return ErrMsg{Err: err, Context: "importing episode", Token: token}
		}
		return ImportedMsg{Kind: "episode", LocalID: id, Token: token}
	}
}

// === Books ===

func SearchBookCatalogCmd(svc *service.BookService, query string, searchType api.BookSearchType, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		results, err := svc.SearchCatalog(ctx, query, searchType)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching book catalog", Token: token}
		}
		return BookCatalogMsg{Results: results, Query: query, Token: token}
	}
}

func ImportBookCmd(svc *service.BookService, book api.CatalogBook, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		id, err := svc.Import(ctx, book)
		if err != nil {
			return ErrMsg{Err: err, Context: "importing book", Token: token}
		}
		return ImportedMsg{Kind: "book", LocalID: id, Token: token}
	}
}

func ImportBookByISBNCmd(svc *service.BookService, isbn string, token int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		id, err := svc.ImportByISBN(ctx, isbn)
		if err != nil {
			return ErrMsg{Err: err, Context: "importing book", Token: token}
		}
		return ImportedMsg{Kind: "book", LocalID: id, Token: token}
	}
}

// RedirectCmd schedules the post-import navigation. The token is checked
// against the flow when the tick fires, so leaving the view cancels it.
func RedirectCmd(localID string, token int) tea.Cmd {
	return tea.Tick(importer.RedirectDelay, func(time.Time) tea.Msg {
		return RedirectMsg{LocalID: localID, Token: token}
	})
}

// === Notes ===

func LoadNotesCmd(svc *service.NotesService, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		notes, err := svc.GetNotes(ctx, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading notes"}
		}
		return NotesLoadedMsg{Notes: notes}
	}
}

func LoadNotesForMediaCmd(svc *service.NotesService, mediaID string, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		notes, err := svc.GetNotesForMedia(ctx, mediaID, refresh)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading notes"}
		}
		return NotesLoadedMsg{Notes: notes, MediaID: mediaID}
	}
}

func SaveNoteDescriptionCmd(svc *service.NotesService, id, description string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		note, err := svc.UpdateDescription(ctx, id, description)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving note"}
		}
		return NoteSavedMsg{Note: note}
	}
}

// GenerateNoteDescriptionCmd asks the server for a draft description. The
// draft is shown for review, not saved.
func GenerateNoteDescriptionCmd(svc *service.NotesService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		note, err := svc.GenerateDescription(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "generating description"}
		}
		return NoteDraftMsg{Note: note}
	}
}

func SetNoteLinkCmd(svc *service.NotesService, noteID, mediaID string, link bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		var err error
		if link {
			err = svc.LinkMedia(ctx, noteID, mediaID, "")
		} else {
			err = svc.UnlinkMedia(ctx, noteID, mediaID)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "updating note link"}
		}
		return NoteLinkChangedMsg{NoteID: noteID, MediaID: mediaID, Linked: link}
	}
}

// ClearStatusCmd clears the status bar after a short delay
func ClearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
