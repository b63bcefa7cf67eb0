package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pmeridian/charta/internal/domain"
)

// ListMixlists returns all mixlists.
func (c *Client) ListMixlists(ctx context.Context) ([]domain.Mixlist, error) {
	recs, err := c.getRecords(ctx, "/mixlist", nil)
	if err != nil {
		return nil, err
	}
	lists := make([]domain.Mixlist, 0, len(recs))
	for _, rec := range recs {
		lists = append(lists, BuildMixlist(rec))
	}
	return lists, nil
}

// SearchMixlists runs a server-side mixlist name search.
func (c *Client) SearchMixlists(ctx context.Context, query string) ([]domain.Mixlist, error) {
	recs, err := c.getRecords(ctx, "/mixlist/search", url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}
	lists := make([]domain.Mixlist, 0, len(recs))
	for _, rec := range recs {
		lists = append(lists, BuildMixlist(rec))
	}
	return lists, nil
}

// GetMixlist fetches one mixlist with its items.
func (c *Client) GetMixlist(ctx context.Context, id string) (*domain.Mixlist, error) {
	rec, err := c.getRecord(ctx, "/mixlist/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	list := BuildMixlist(rec)
	return &list, nil
}

// CreateMixlist creates an empty mixlist.
func (c *Client) CreateMixlist(ctx context.Context, name string) (*domain.Mixlist, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "mixlist name is required")
	}
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/mixlist", nil, map[string]string{"name": name}, &rec); err != nil {
		return nil, err
	}
	list := BuildMixlist(rec)
	return &list, nil
}

// UpdateMixlist renames a mixlist.
func (c *Client) UpdateMixlist(ctx context.Context, id, name string) (*domain.Mixlist, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "mixlist name is required")
	}
	var rec Record
	if err := c.do(ctx, http.MethodPut, "/mixlist/"+url.PathEscape(id), nil, map[string]string{"name": name}, &rec); err != nil {
		return nil, err
	}
	list := BuildMixlist(rec)
	return &list, nil
}

// DeleteMixlist removes a mixlist. Its items stay in the catalog.
func (c *Client) DeleteMixlist(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/mixlist/"+url.PathEscape(id), nil, nil, nil)
}

// AddToMixlist attaches a media item to a mixlist.
func (c *Client) AddToMixlist(ctx context.Context, mixlistID, mediaItemID string) error {
	path := "/mixlist/" + url.PathEscape(mixlistID) + "/items/" + url.PathEscape(mediaItemID)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// RemoveFromMixlist detaches a media item from a mixlist.
func (c *Client) RemoveFromMixlist(ctx context.Context, mixlistID, mediaItemID string) error {
	path := "/mixlist/" + url.PathEscape(mixlistID) + "/items/" + url.PathEscape(mediaItemID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
