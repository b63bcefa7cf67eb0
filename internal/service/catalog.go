// Package service sits between the API client and the TUI: it serves cached
// lists for instant rendering, refetches on demand, and invalidates the
// cache after every mutation so the next read is authoritative.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/search"
	"github.com/pmeridian/charta/internal/store"
)

// CatalogService handles media, topic, genre and mixlist operations with
// read-through caching.
type CatalogService struct {
	client *api.Client
	store  *store.CatalogStore
	logger *slog.Logger
}

func NewCatalogService(client *api.Client, st *store.CatalogStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{client: client, store: st, logger: logger}
}

// === Media ===

// MediaScope selects which media list to load.
type MediaScope struct {
	Type    domain.MediaType
	TopicID string
	GenreID string
}

func (sc MediaScope) key() string {
	switch {
	case sc.TopicID != "":
		return store.MediaKeyByTopic(sc.TopicID)
	case sc.GenreID != "":
		return store.MediaKeyByGenre(sc.GenreID)
	case sc.Type != "":
		return store.MediaKeyByType(sc.Type)
	default:
		return store.MediaKeyAll
	}
}

// GetMedia returns the media list for a scope, cache-first. With refresh
// set the cache is bypassed and overwritten.
func (s *CatalogService) GetMedia(ctx context.Context, scope MediaScope, refresh bool) ([]*domain.MediaItem, error) {
	key := scope.key()

	if !refresh {
		if items, ok := s.store.GetMediaList(key); ok {
			s.logger.Debug("cache hit", "key", key)
			return items, nil
		}
	}

	var (
		items []*domain.MediaItem
		err   error
	)
	switch {
	case scope.TopicID != "":
		items, err = s.client.ListMediaByTopic(ctx, scope.TopicID)
	case scope.GenreID != "":
		items, err = s.client.ListMediaByGenre(ctx, scope.GenreID)
	case scope.Type != "":
		items, err = s.client.ListMediaByType(ctx, scope.Type)
	default:
		items, err = s.client.ListMedia(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveMediaList(key, items); err != nil {
		s.logger.Warn("failed to cache media list", "key", key, "error", err)
	}
	s.logger.Info("loaded media", "key", key, "count", len(items))
	return items, nil
}

// SearchMedia runs a server search and ranks the hits locally. Search
// results are never cached.
func (s *CatalogService) SearchMedia(ctx context.Context, query string) ([]*domain.MediaItem, error) {
	items, err := s.client.SearchMedia(ctx, query)
	if err != nil {
		return nil, err
	}
	return search.RankMedia(items, query), nil
}

// GetMediaItem returns one item, cache-first.
func (s *CatalogService) GetMediaItem(ctx context.Context, id string, refresh bool) (*domain.MediaItem, error) {
	if !refresh {
		if item, ok := s.store.GetMediaItem(id); ok {
			return item, nil
		}
	}

	item, err := s.client.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveMediaItem(item); err != nil {
		s.logger.Warn("failed to cache media item", "id", id, "error", err)
	}
	return item, nil
}

// CreateMedia creates an item, then attaches it to each requested mixlist.
// Attachment failures are collected into a PartialActionError; the created
// item is never rolled back.
func (s *CatalogService) CreateMedia(ctx context.Context, item domain.MediaItem, mixlistIDs []string) (*domain.MediaItem, error) {
	created, err := s.createTyped(ctx, item)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateMedia()

	var failures []string
	for _, listID := range mixlistIDs {
		if err := s.client.AddToMixlist(ctx, listID, created.ID); err != nil {
			s.logger.Warn("mixlist attach failed", "mixlist", listID, "media", created.ID, "error", err)
			failures = append(failures, fmt.Sprintf("mixlist %s: %v", listID, err))
			continue
		}
		s.store.InvalidateMixlist(listID)
	}

	if len(failures) > 0 {
		return created, &domain.PartialActionError{Action: "create " + created.Title, Failures: failures}
	}
	return created, nil
}

// createTyped routes creation through the server's type-specific endpoints
// where one exists, falling back to the generic media endpoint.
func (s *CatalogService) createTyped(ctx context.Context, item domain.MediaItem) (*domain.MediaItem, error) {
	switch item.MediaType {
	case domain.MediaTypeBook:
		return s.client.CreateBook(ctx, item)
	case domain.MediaTypeMovie:
		return s.client.CreateMovie(ctx, item)
	case domain.MediaTypeTVShow:
		return s.client.CreateTVShow(ctx, item)
	case domain.MediaTypePodcast:
		if item.Podcast != nil && item.Podcast.ParentPodcastID != "" {
			return s.client.CreatePodcastEpisode(ctx, item)
		}
	}
	return s.client.CreateMedia(ctx, item)
}

func (s *CatalogService) UpdateMedia(ctx context.Context, item domain.MediaItem) (*domain.MediaItem, error) {
	updated, err := s.client.UpdateMedia(ctx, item)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateMediaItem(item.ID)
	return updated, nil
}

// SetThumbnail stores an image from a URL server-side and points the item at
// the stored copy, then saves the item.
func (s *CatalogService) SetThumbnail(ctx context.Context, item domain.MediaItem, imageURL string) (*domain.MediaItem, error) {
	stored, err := s.client.UploadThumbnailFromURL(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	item.Thumbnail = stored
	return s.UpdateMedia(ctx, item)
}

func (s *CatalogService) DeleteMedia(ctx context.Context, id string) error {
	if err := s.client.DeleteMedia(ctx, id); err != nil {
		return err
	}
	s.store.InvalidateMedia()
	s.store.InvalidateMixlists()
	return nil
}

// BulkDeleteMedia deletes the given items in one request. The operation is
// all-or-nothing on the server; on success every affected cache goes.
func (s *CatalogService) BulkDeleteMedia(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	count, err := s.client.BulkDeleteMedia(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.store.InvalidateMedia()
	s.store.InvalidateMixlists()
	s.logger.Info("bulk deleted media", "count", count)
	return count, nil
}

// === Topics and genres ===

func (s *CatalogService) GetTopics(ctx context.Context, refresh bool) ([]domain.Topic, error) {
	if !refresh {
		if topics, ok := s.store.GetTopics(); ok {
			return topics, nil
		}
	}
	topics, err := s.client.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveTopics(topics); err != nil {
		s.logger.Warn("failed to cache topics", "error", err)
	}
	return topics, nil
}

// CreateTopic reuses an existing topic of the same name. Names are unique
// server-side, so a duplicate create would only round-trip an error.
func (s *CatalogService) CreateTopic(ctx context.Context, name string) (*domain.Topic, error) {
	if matches, err := s.client.SearchTopics(ctx, name); err == nil {
		for i := range matches {
			if strings.EqualFold(matches[i].Name, name) {
				return &matches[i], nil
			}
		}
	} else {
		s.logger.Warn("topic search failed, creating anyway", "name", name, "error", err)
	}
	topic, err := s.client.CreateTopic(ctx, name)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateTopics()
	return topic, nil
}

func (s *CatalogService) UpdateTopic(ctx context.Context, id, name string) (*domain.Topic, error) {
	topic, err := s.client.UpdateTopic(ctx, id, name)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateTopics()
	s.store.InvalidateMedia()
	return topic, nil
}

func (s *CatalogService) DeleteTopic(ctx context.Context, id string) error {
	if err := s.client.DeleteTopic(ctx, id); err != nil {
		return err
	}
	s.store.InvalidateTopics()
	s.store.InvalidateMedia()
	return nil
}

func (s *CatalogService) GetGenres(ctx context.Context, refresh bool) ([]domain.Genre, error) {
	if !refresh {
		if genres, ok := s.store.GetGenres(); ok {
			return genres, nil
		}
	}
	genres, err := s.client.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveGenres(genres); err != nil {
		s.logger.Warn("failed to cache genres", "error", err)
	}
	return genres, nil
}

// CreateGenre reuses an existing genre of the same name, like CreateTopic.
func (s *CatalogService) CreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	if matches, err := s.client.SearchGenres(ctx, name); err == nil {
		for i := range matches {
			if strings.EqualFold(matches[i].Name, name) {
				return &matches[i], nil
			}
		}
	} else {
		s.logger.Warn("genre search failed, creating anyway", "name", name, "error", err)
	}
	genre, err := s.client.CreateGenre(ctx, name)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateGenres()
	return genre, nil
}

func (s *CatalogService) UpdateGenre(ctx context.Context, id, name string) (*domain.Genre, error) {
	genre, err := s.client.UpdateGenre(ctx, id, name)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateGenres()
	s.store.InvalidateMedia()
	return genre, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, id string) error {
	if err := s.client.DeleteGenre(ctx, id); err != nil {
		return err
	}
	s.store.InvalidateGenres()
	s.store.InvalidateMedia()
	return nil
}

// === Mixlists ===

func (s *CatalogService) GetMixlists(ctx context.Context, refresh bool) ([]domain.Mixlist, error) {
	if !refresh {
		if lists, ok := s.store.GetMixlists(); ok {
			return lists, nil
		}
	}
	lists, err := s.client.ListMixlists(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveMixlists(lists); err != nil {
		s.logger.Warn("failed to cache mixlists", "error", err)
	}
	return lists, nil
}

func (s *CatalogService) GetMixlist(ctx context.Context, id string, refresh bool) (*domain.Mixlist, error) {
	if !refresh {
		if list, ok := s.store.GetMixlist(id); ok {
			return list, nil
		}
	}
	list, err := s.client.GetMixlist(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveMixlist(list); err != nil {
		s.logger.Warn("failed to cache mixlist", "id", id, "error", err)
	}
	return list, nil
}

// CreateMixlist reuses an existing mixlist of the same name rather than
// creating a second list with an identical title.
func (s *CatalogService) CreateMixlist(ctx context.Context, name string) (*domain.Mixlist, error) {
	if matches, err := s.client.SearchMixlists(ctx, name); err == nil {
		for i := range matches {
			if strings.EqualFold(matches[i].Name, name) {
				return &matches[i], nil
			}
		}
	} else {
		s.logger.Warn("mixlist search failed, creating anyway", "name", name, "error", err)
	}
	list, err := s.client.CreateMixlist(ctx, name)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateMixlists()
	return list, nil
}

func (s *CatalogService) RenameMixlist(ctx context.Context, id, name string) (*domain.Mixlist, error) {
	list, err := s.client.UpdateMixlist(ctx, id, name)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateMixlist(id)
	return list, nil
}

func (s *CatalogService) DeleteMixlist(ctx context.Context, id string) error {
	if err := s.client.DeleteMixlist(ctx, id); err != nil {
		return err
	}
	s.store.InvalidateMixlists()
	return nil
}

func (s *CatalogService) AddToMixlist(ctx context.Context, listID, mediaID string) error {
	if err := s.client.AddToMixlist(ctx, listID, mediaID); err != nil {
		return err
	}
	s.store.InvalidateMixlist(listID)
	return nil
}

func (s *CatalogService) RemoveFromMixlist(ctx context.Context, listID, mediaID string) error {
	if err := s.client.RemoveFromMixlist(ctx, listID, mediaID); err != nil {
		return err
	}
	s.store.InvalidateMixlist(listID)
	return nil
}

// RefreshCache wipes every cached list.
func (s *CatalogService) RefreshCache() {
	s.store.InvalidateAll()
}
