package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pmeridian/charta/internal/domain"
)

// Topic and genre calls. Names are lowercased before they leave the client
// so "AI" and "ai" never become distinct labels; the server is not assumed
// to enforce this.

// ListTopics returns all topics with their attachment counts.
func (c *Client) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	recs, err := c.getRecords(ctx, "/topics", nil)
	if err != nil {
		return nil, err
	}
	topics := make([]domain.Topic, 0, len(recs))
	for _, rec := range recs {
		topics = append(topics, BuildTopic(rec))
	}
	return topics, nil
}

// SearchTopics runs a server-side topic name search.
func (c *Client) SearchTopics(ctx context.Context, query string) ([]domain.Topic, error) {
	recs, err := c.getRecords(ctx, "/topics/search", url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}
	topics := make([]domain.Topic, 0, len(recs))
	for _, rec := range recs {
		topics = append(topics, BuildTopic(rec))
	}
	return topics, nil
}

// CreateTopic creates a topic by name.
func (c *Client) CreateTopic(ctx context.Context, name string) (*domain.Topic, error) {
	name = domain.NormalizeLabel(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "topic name is required")
	}
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/topics", nil, map[string]string{"name": name}, &rec); err != nil {
		return nil, err
	}
	topic := BuildTopic(rec)
	return &topic, nil
}

// UpdateTopic renames a topic.
func (c *Client) UpdateTopic(ctx context.Context, id, name string) (*domain.Topic, error) {
	name = domain.NormalizeLabel(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "topic name is required")
	}
	var rec Record
	if err := c.do(ctx, http.MethodPut, "/topics/"+url.PathEscape(id), nil, map[string]string{"name": name}, &rec); err != nil {
		return nil, err
	}
	topic := BuildTopic(rec)
	return &topic, nil
}

// DeleteTopic removes a topic. The server rejects deletion while media is
// still attached; callers surface MediaItemCount before offering this.
func (c *Client) DeleteTopic(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/topics/"+url.PathEscape(id), nil, nil, nil)
}

// ListGenres returns all genres with their attachment counts.
func (c *Client) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	recs, err := c.getRecords(ctx, "/genres", nil)
	if err != nil {
		return nil, err
	}
	genres := make([]domain.Genre, 0, len(recs))
	for _, rec := range recs {
		genres = append(genres, BuildGenre(rec))
	}
	return genres, nil
}

// SearchGenres runs a server-side genre name search.
func (c *Client) SearchGenres(ctx context.Context, query string) ([]domain.Genre, error) {
	recs, err := c.getRecords(ctx, "/genres/search", url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}
	genres := make([]domain.Genre, 0, len(recs))
	for _, rec := range recs {
		genres = append(genres, BuildGenre(rec))
	}
	return genres, nil
}

// CreateGenre creates a genre by name.
func (c *Client) CreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	name = domain.NormalizeLabel(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "genre name is required")
	}
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/genres", nil, map[string]string{"name": name}, &rec); err != nil {
		return nil, err
	}
	genre := BuildGenre(rec)
	return &genre, nil
}

// UpdateGenre renames a genre.
func (c *Client) UpdateGenre(ctx context.Context, id, name string) (*domain.Genre, error) {
	name = domain.NormalizeLabel(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "genre name is required")
	}
	var rec Record
	if err := c.do(ctx, http.MethodPut, "/genres/"+url.PathEscape(id), nil, map[string]string{"name": name}, &rec); err != nil {
		return nil, err
	}
	genre := BuildGenre(rec)
	return &genre, nil
}

// DeleteGenre removes a genre.
func (c *Client) DeleteGenre(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/genres/"+url.PathEscape(id), nil, nil, nil)
}
