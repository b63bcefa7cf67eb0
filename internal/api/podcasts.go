package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pmeridian/charta/internal/domain"
)

// CatalogPodcast is a search hit from the third-party podcast catalog,
// proxied by the server. The proxy passes the catalog's own field names
// through, so mapping tolerates both those and the server's casing.
type CatalogPodcast struct {
	ExternalID    string
	Title         string
	Publisher     string
	Description   string
	Image         string
	TotalEpisodes int
}

// CatalogEpisode is one episode of a catalog podcast, used by the
// "view all episodes" import flow.
type CatalogEpisode struct {
	ExternalID      string
	Title           string
	Description     string
	AudioLink       string
	ReleaseDate     *time.Time
	DurationSeconds int
}

func buildCatalogPodcast(rec Record) CatalogPodcast {
	return CatalogPodcast{
		ExternalID:    ResolveString(rec, "id", "externalId"),
		Title:         ResolveString(rec, "title", "title_original"),
		Publisher:     ResolveString(rec, "publisher", "publisher_original"),
		Description:   ResolveString(rec, "description", "description_original"),
		Image:         ResolveString(rec, "image", "thumbnail"),
		TotalEpisodes: ResolveInt(rec, "totalEpisodes", "total_episodes"),
	}
}

func buildCatalogEpisode(rec Record) CatalogEpisode {
	ep := CatalogEpisode{
		ExternalID:      ResolveString(rec, "id", "externalId"),
		Title:           ResolveString(rec, "title", "title_original"),
		Description:     ResolveString(rec, "description", "description_original"),
		AudioLink:       ResolveString(rec, "audio", "audioLink"),
		DurationSeconds: ResolveInt(rec, "audio_length_sec", "durationInSeconds"),
	}
	if ms := ResolveInt(rec, "pub_date_ms"); ms > 0 {
		t := time.UnixMilli(int64(ms)).UTC()
		ep.ReleaseDate = &t
	} else {
		ep.ReleaseDate = ResolveTime(rec, "releaseDate")
	}
	return ep
}

// SearchPodcastCatalog searches the third-party podcast catalog through the
// server proxy.
func (c *Client) SearchPodcastCatalog(ctx context.Context, query string) ([]CatalogPodcast, error) {
	q := url.Values{"query": {query}, "type": {"podcast"}}
	var resp struct {
		Results []Record `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/listennotes/search", q, nil, &resp); err != nil {
		return nil, err
	}
	hits := make([]CatalogPodcast, 0, len(resp.Results))
	for _, rec := range resp.Results {
		hits = append(hits, buildCatalogPodcast(rec))
	}
	return hits, nil
}

// ListCatalogEpisodes pages through a catalog podcast's episodes. nextDate is
// the pagination cursor from the previous call, 0 for the first page. The
// returned cursor is 0 when no further pages exist.
func (c *Client) ListCatalogEpisodes(ctx context.Context, externalID string, nextDate int64) ([]CatalogEpisode, int64, error) {
	q := url.Values{}
	if nextDate > 0 {
		q.Set("next_episode_pub_date", strconv.FormatInt(nextDate, 10))
	}
	var resp struct {
		Episodes []Record `json:"episodes"`
		NextDate int64    `json:"next_episode_pub_date"`
	}
	if err := c.do(ctx, http.MethodGet, "/listennotes/podcasts/"+url.PathEscape(externalID), q, nil, &resp); err != nil {
		return nil, 0, err
	}
	episodes := make([]CatalogEpisode, 0, len(resp.Episodes))
	for _, rec := range resp.Episodes {
		episodes = append(episodes, buildCatalogEpisode(rec))
	}
	return episodes, resp.NextDate, nil
}

// ListPodcastSeries returns all local podcast series.
func (c *Client) ListPodcastSeries(ctx context.Context) ([]domain.PodcastSeries, error) {
	return c.seriesList(ctx, "/podcast/series", nil)
}

// SearchPodcastSeries runs a server-side series title search.
func (c *Client) SearchPodcastSeries(ctx context.Context, query string) ([]domain.PodcastSeries, error) {
	return c.seriesList(ctx, "/podcast/series/search", url.Values{"query": {query}})
}

// ListSubscribedSeries returns the series the user is subscribed to.
func (c *Client) ListSubscribedSeries(ctx context.Context) ([]domain.PodcastSeries, error) {
	return c.seriesList(ctx, "/podcast/series/subscriptions", nil)
}

func (c *Client) seriesList(ctx context.Context, path string, query url.Values) ([]domain.PodcastSeries, error) {
	recs, err := c.getRecords(ctx, path, query)
	if err != nil {
		return nil, err
	}
	series := make([]domain.PodcastSeries, 0, len(recs))
	for _, rec := range recs {
		series = append(series, BuildPodcastSeries(rec))
	}
	return series, nil
}

// GetPodcastSeries fetches one series.
func (c *Client) GetPodcastSeries(ctx context.Context, id string) (*domain.PodcastSeries, error) {
	rec, err := c.getRecord(ctx, "/podcast/series/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	series := BuildPodcastSeries(rec)
	return &series, nil
}

// DeletePodcastSeries removes a series and its local episodes.
func (c *Client) DeletePodcastSeries(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/podcast/series/"+url.PathEscape(id), nil, nil, nil)
}

// SubscribeSeries marks a series as subscribed.
func (c *Client) SubscribeSeries(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/podcast/series/"+url.PathEscape(id)+"/subscribe", nil, nil, nil)
}

// UnsubscribeSeries clears a series subscription.
func (c *Client) UnsubscribeSeries(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/podcast/series/"+url.PathEscape(id)+"/unsubscribe", nil, nil, nil)
}

// SyncSeriesEpisodes asks the server to pull new episodes from the catalog.
// Session-local caches derived from the episode list must be recomputed from
// a fresh ListSeriesEpisodes after this call.
func (c *Client) SyncSeriesEpisodes(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/podcast/series/"+url.PathEscape(id)+"/sync", nil, nil, nil)
}

// ListSeriesEpisodes returns the locally imported episodes of a series.
func (c *Client) ListSeriesEpisodes(ctx context.Context, seriesID string) ([]domain.PodcastEpisode, error) {
	recs, err := c.getRecords(ctx, "/podcast/series/"+url.PathEscape(seriesID)+"/episodes", nil)
	if err != nil {
		return nil, err
	}
	episodes := make([]domain.PodcastEpisode, 0, len(recs))
	for _, rec := range recs {
		episodes = append(episodes, BuildPodcastEpisode(rec))
	}
	return episodes, nil
}

// GetPodcastEpisode fetches one episode.
func (c *Client) GetPodcastEpisode(ctx context.Context, id string) (*domain.PodcastEpisode, error) {
	rec, err := c.getRecord(ctx, "/podcast/episodes/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	episode := BuildPodcastEpisode(rec)
	return &episode, nil
}

// CreatePodcastEpisode creates an episode under its parent series.
func (c *Client) CreatePodcastEpisode(ctx context.Context, item domain.MediaItem) (*domain.MediaItem, error) {
	if item.Podcast == nil || item.Podcast.ParentPodcastID == "" {
		return nil, domain.NewValidationError("parentPodcastId", "episode requires a parent series")
	}
	return c.createMediaAt(ctx, "/podcast/episodes", item)
}

// DeletePodcastEpisode removes one episode.
func (c *Client) DeletePodcastEpisode(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/podcast/episodes/"+url.PathEscape(id), nil, nil, nil)
}

// ImportPodcastSeries imports a series from the catalog by external id and
// returns the new local id, resolved under either id or Id.
func (c *Client) ImportPodcastSeries(ctx context.Context, externalID string) (string, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/podcast/series/from-api/"+url.PathEscape(externalID), nil, nil, &rec); err != nil {
		return "", err
	}
	return ResolveString(rec, "id"), nil
}

// ImportPodcastSeriesByName imports a series from the catalog by name.
func (c *Client) ImportPodcastSeriesByName(ctx context.Context, name string) (string, error) {
	var rec Record
	body := map[string]string{"podcastName": name}
	if err := c.do(ctx, http.MethodPost, "/podcast/series/from-api/by-name", nil, body, &rec); err != nil {
		return "", err
	}
	return ResolveString(rec, "id"), nil
}

// ImportPodcastEpisode imports a catalog episode into a local series and
// returns the new local id. Callers consult their imported-episodes map
// before issuing this call.
func (c *Client) ImportPodcastEpisode(ctx context.Context, externalEpisodeID, seriesID string) (string, error) {
	q := url.Values{"seriesId": {seriesID}}
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/podcast/episodes/from-api/"+url.PathEscape(externalEpisodeID), q, nil, &rec); err != nil {
		return "", err
	}
	return ResolveString(rec, "id"), nil
}
