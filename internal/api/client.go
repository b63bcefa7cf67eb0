package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pmeridian/charta/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "charta/1.0"
)

// Client talks to the catalog server's REST API. Responses are decoded into
// raw records and resolved field by field because key casing varies by
// endpoint.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a Client for the given server URL. The API key may be
// empty for servers running without auth.
func NewClient(serverURL, apiKey string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}, nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	serverURL = strings.TrimSpace(serverURL)
	if serverURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if !strings.Contains(serverURL, "://") {
		serverURL = "http://" + serverURL
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// do performs one API request. A non-nil body is JSON-encoded; a non-nil out
// receives the decoded response. Transport failures map to ErrServerOffline,
// 401 to ErrAuthFailed, 404 to ErrNotFound, and other error statuses to a
// classified RequestError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL.String() + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("api request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error("api request failed", "error", err)
		return domain.ErrServerOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error("api request error", "status", resp.StatusCode, "path", path)
		return newRequestError(resp.StatusCode, respBody,
			fmt.Sprintf("%s %s failed with status %d", method, path, resp.StatusCode))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "path", path, "bodyLen", len(respBody))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) getRecords(ctx context.Context, path string, query url.Values) ([]Record, error) {
	var recs []Record
	if err := c.do(ctx, http.MethodGet, path, query, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) getRecord(ctx context.Context, path string) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListMedia returns every catalog entry.
func (c *Client) ListMedia(ctx context.Context) ([]*domain.MediaItem, error) {
	recs, err := c.getRecords(ctx, "/media", nil)
	if err != nil {
		return nil, err
	}
	return BuildMediaItems(recs), nil
}

// ListMediaByType returns catalog entries filtered by media type.
func (c *Client) ListMediaByType(ctx context.Context, mt domain.MediaType) ([]*domain.MediaItem, error) {
	recs, err := c.getRecords(ctx, "/media/by-type/"+url.PathEscape(string(mt)), nil)
	if err != nil {
		return nil, err
	}
	return BuildMediaItems(recs), nil
}

// ListMediaByTopic returns catalog entries tagged with a topic.
func (c *Client) ListMediaByTopic(ctx context.Context, topicID string) ([]*domain.MediaItem, error) {
	recs, err := c.getRecords(ctx, "/media/by-topic/"+url.PathEscape(topicID), nil)
	if err != nil {
		return nil, err
	}
	return BuildMediaItems(recs), nil
}

// ListMediaByGenre returns catalog entries tagged with a genre.
func (c *Client) ListMediaByGenre(ctx context.Context, genreID string) ([]*domain.MediaItem, error) {
	recs, err := c.getRecords(ctx, "/media/by-genre/"+url.PathEscape(genreID), nil)
	if err != nil {
		return nil, err
	}
	return BuildMediaItems(recs), nil
}

// SearchMedia runs a server-side title search.
func (c *Client) SearchMedia(ctx context.Context, query string) ([]*domain.MediaItem, error) {
	q := url.Values{"query": {query}}
	recs, err := c.getRecords(ctx, "/media/search", q)
	if err != nil {
		return nil, err
	}
	return BuildMediaItems(recs), nil
}

// GetMedia fetches one catalog entry.
func (c *Client) GetMedia(ctx context.Context, id string) (*domain.MediaItem, error) {
	rec, err := c.getRecord(ctx, "/media/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	item := BuildMediaItem(rec)
	return &item, nil
}

// CreateMedia creates a generic catalog entry. Type-specific entries go
// through the typed creation calls instead.
func (c *Client) CreateMedia(ctx context.Context, item domain.MediaItem) (*domain.MediaItem, error) {
	return c.createMediaAt(ctx, "/media", item)
}

// CreateBook creates a book through the book endpoint.
func (c *Client) CreateBook(ctx context.Context, item domain.MediaItem) (*domain.MediaItem, error) {
	return c.createMediaAt(ctx, "/book", item)
}

// CreateMovie creates a movie through the movie endpoint.
func (c *Client) CreateMovie(ctx context.Context, item domain.MediaItem) (*domain.MediaItem, error) {
	return c.createMediaAt(ctx, "/movie", item)
}

// CreateTVShow creates a TV show through the tvshow endpoint.
func (c *Client) CreateTVShow(ctx context.Context, item domain.MediaItem) (*domain.MediaItem, error) {
	return c.createMediaAt(ctx, "/tvshow", item)
}

func (c *Client) createMediaAt(ctx context.Context, path string, item domain.MediaItem) (*domain.MediaItem, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPost, path, nil, createRecord(item), &rec); err != nil {
		return nil, err
	}
	created := BuildMediaItem(rec)
	return &created, nil
}

// createRecord is the canonical record without the id, which the server
// assigns.
func createRecord(item domain.MediaItem) Record {
	rec := MediaItemRecord(item)
	delete(rec, "id")
	return rec
}

// UpdateMedia replaces a catalog entry. The payload keeps stored completion
// fields even when status has moved away from Completed; only an explicit
// clear by the caller removes them.
func (c *Client) UpdateMedia(ctx context.Context, item domain.MediaItem) (*domain.MediaItem, error) {
	if item.ID == "" {
		return nil, domain.NewValidationError("id", "missing media id")
	}
	var rec Record
	if err := c.do(ctx, http.MethodPut, "/media/"+url.PathEscape(item.ID), nil, MediaItemRecord(item), &rec); err != nil {
		return nil, err
	}
	updated := BuildMediaItem(rec)
	return &updated, nil
}

// DeleteMedia removes one catalog entry.
func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/media/"+url.PathEscape(id), nil, nil, nil)
}

// BulkDeleteMedia removes the given entries in one call and returns the
// server's deleted count. Partial failure is not distinguished from total
// failure: the call is treated as all-or-nothing.
func (c *Client) BulkDeleteMedia(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var rec Record
	body := map[string][]string{"ids": ids}
	if err := c.do(ctx, http.MethodDelete, "/media/bulk", nil, body, &rec); err != nil {
		return 0, err
	}
	count := ResolveInt(rec, "deletedCount", "count")
	if count == 0 {
		count = len(ids)
	}
	return count, nil
}
