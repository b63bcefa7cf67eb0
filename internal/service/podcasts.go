package service

import (
	"context"
	"log/slog"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/importer"
	"github.com/pmeridian/charta/internal/store"
)

// PodcastService handles the podcast catalog: local series and episodes,
// the external directory, subscriptions and imports.
type PodcastService struct {
	client *api.Client
	store  *store.CatalogStore
	logger *slog.Logger
}

func NewPodcastService(client *api.Client, st *store.CatalogStore, logger *slog.Logger) *PodcastService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PodcastService{client: client, store: st, logger: logger}
}

// GetSeries returns all local podcast series, cache-first.
func (s *PodcastService) GetSeries(ctx context.Context, refresh bool) ([]domain.PodcastSeries, error) {
	if !refresh {
		if series, ok := s.store.GetPodcastSeries(); ok {
			return series, nil
		}
	}
	series, err := s.client.ListPodcastSeries(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.SavePodcastSeries(series); err != nil {
		s.logger.Warn("failed to cache podcast series", "error", err)
	}
	return series, nil
}

// GetSeriesByID fetches one series fresh, bypassing the list cache. Used
// right after an import, when the list cache predates the new series.
func (s *PodcastService) GetSeriesByID(ctx context.Context, id string) (*domain.PodcastSeries, error) {
	return s.client.GetPodcastSeries(ctx, id)
}

// SearchSeries searches local series on the server. Results are not cached.
func (s *PodcastService) SearchSeries(ctx context.Context, query string) ([]domain.PodcastSeries, error) {
	return s.client.SearchPodcastSeries(ctx, query)
}

// GetSubscriptions returns subscribed series only, always fresh: sync state
// changes server-side between reads.
func (s *PodcastService) GetSubscriptions(ctx context.Context) ([]domain.PodcastSeries, error) {
	return s.client.ListSubscribedSeries(ctx)
}

// GetEpisodes returns a series' episodes together with the imported-episode
// index derived from that same fetch. The index is recomputed on every
// refetch and never reused across a sync.
func (s *PodcastService) GetEpisodes(ctx context.Context, seriesID string, refresh bool) ([]domain.PodcastEpisode, importer.ImportedEpisodes, error) {
	if !refresh {
		if episodes, ok := s.store.GetSeriesEpisodes(seriesID); ok {
			return episodes, importer.IndexEpisodes(episodes), nil
		}
	}
	episodes, err := s.client.ListSeriesEpisodes(ctx, seriesID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.SaveSeriesEpisodes(seriesID, episodes); err != nil {
		s.logger.Warn("failed to cache episodes", "series", seriesID, "error", err)
	}
	return episodes, importer.IndexEpisodes(episodes), nil
}

// GetEpisode fetches one episode fresh for the detail view.
func (s *PodcastService) GetEpisode(ctx context.Context, id string) (*domain.PodcastEpisode, error) {
	return s.client.GetPodcastEpisode(ctx, id)
}

func (s *PodcastService) Subscribe(ctx context.Context, seriesID string) error {
	if err := s.client.SubscribeSeries(ctx, seriesID); err != nil {
		return err
	}
	s.store.InvalidatePodcastSeries()
	return nil
}

func (s *PodcastService) Unsubscribe(ctx context.Context, seriesID string) error {
	if err := s.client.UnsubscribeSeries(ctx, seriesID); err != nil {
		return err
	}
	s.store.InvalidatePodcastSeries()
	return nil
}

// SyncEpisodes asks the server to pull new episodes for a subscribed
// series, then drops the episode cache so the next read sees them.
func (s *PodcastService) SyncEpisodes(ctx context.Context, seriesID string) error {
	if err := s.client.SyncSeriesEpisodes(ctx, seriesID); err != nil {
		return err
	}
	s.store.InvalidateSeries(seriesID)
	s.logger.Info("synced series", "series", seriesID)
	return nil
}

func (s *PodcastService) DeleteSeries(ctx context.Context, seriesID string) error {
	if err := s.client.DeletePodcastSeries(ctx, seriesID); err != nil {
		return err
	}
	s.store.InvalidateSeries(seriesID)
	s.store.InvalidateMedia()
	return nil
}

func (s *PodcastService) DeleteEpisode(ctx context.Context, seriesID, episodeID string) error {
	if err := s.client.DeletePodcastEpisode(ctx, episodeID); err != nil {
		return err
	}
	s.store.InvalidateSeries(seriesID)
	s.store.InvalidateMedia()
	return nil
}

// === External catalog ===

// SearchCatalog searches the external podcast directory.
func (s *PodcastService) SearchCatalog(ctx context.Context, query string) ([]api.CatalogPodcast, error) {
	return s.client.SearchPodcastCatalog(ctx, query)
}

// GetCatalogEpisodes pages through a directory podcast's episodes. A zero
// cursor starts from the newest; the returned cursor fetches the next page.
func (s *PodcastService) GetCatalogEpisodes(ctx context.Context, externalID string, cursor int64) ([]api.CatalogEpisode, int64, error) {
	return s.client.ListCatalogEpisodes(ctx, externalID, cursor)
}

// === Imports ===

// ImportSeries imports a directory podcast by external id and returns the
// new local series id.
func (s *PodcastService) ImportSeries(ctx context.Context, externalID string) (string, error) {
	id, err := s.client.ImportPodcastSeries(ctx, externalID)
	if err != nil {
		return "", err
	}
	s.store.InvalidatePodcastSeries()
	s.store.InvalidateMedia()
	s.logger.Info("imported podcast series", "external", externalID, "local", id)
	return id, nil
}

// ImportSeriesByName imports the directory's best match for a name.
func (s *PodcastService) ImportSeriesByName(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", domain.NewValidationError("podcastName", "name is required")
	}
	id, err := s.client.ImportPodcastSeriesByName(ctx, name)
	if err != nil {
		return "", err
	}
	s.store.InvalidatePodcastSeries()
	s.store.InvalidateMedia()
	return id, nil
}

// ImportEpisode imports one directory episode into a local series. Callers
// check the imported-episode index first; an already-imported episode gets
// a "go to item" outcome instead of a second import.
func (s *PodcastService) ImportEpisode(ctx context.Context, externalEpisodeID, seriesID string) (string, error) {
	id, err := s.client.ImportPodcastEpisode(ctx, externalEpisodeID, seriesID)
	if err != nil {
		return "", err
	}
	s.store.InvalidateSeries(seriesID)
	s.store.InvalidateMedia()
	s.logger.Info("imported podcast episode", "external", externalEpisodeID, "series", seriesID, "local", id)
	return id, nil
}
