package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pmeridian/charta/internal/domain"
)

// Notes are created by an external vault sync; this client only reads them
// and mutates descriptions and media links.

// ListNotes returns all synced notes.
func (c *Client) ListNotes(ctx context.Context) ([]domain.Note, error) {
	recs, err := c.getRecords(ctx, "/note", nil)
	if err != nil {
		return nil, err
	}
	notes := make([]domain.Note, 0, len(recs))
	for _, rec := range recs {
		notes = append(notes, BuildNote(rec))
	}
	return notes, nil
}

// GetNote fetches one note with its media links.
func (c *Client) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	rec, err := c.getRecord(ctx, "/note/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	note := BuildNote(rec)
	return &note, nil
}

// ListNotesForMedia returns the notes linked to a media item.
func (c *Client) ListNotesForMedia(ctx context.Context, mediaItemID string) ([]domain.Note, error) {
	recs, err := c.getRecords(ctx, "/note/for-media/"+url.PathEscape(mediaItemID), nil)
	if err != nil {
		return nil, err
	}
	notes := make([]domain.Note, 0, len(recs))
	for _, rec := range recs {
		notes = append(notes, BuildNote(rec))
	}
	return notes, nil
}

// UpdateNoteDescription replaces a note's description.
func (c *Client) UpdateNoteDescription(ctx context.Context, id, description string) (*domain.Note, error) {
	var rec Record
	body := map[string]string{"description": description}
	if err := c.do(ctx, http.MethodPut, "/note/"+url.PathEscape(id), nil, body, &rec); err != nil {
		return nil, err
	}
	note := BuildNote(rec)
	return &note, nil
}

// GenerateNoteDescription asks the server's AI integration to write a
// description for the note and returns the updated note.
func (c *Client) GenerateNoteDescription(ctx context.Context, id string) (*domain.Note, error) {
	var rec Record
	path := "/ai/notes/" + url.PathEscape(id) + "/generate-description"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &rec); err != nil {
		return nil, err
	}
	note := BuildNote(rec)
	return &note, nil
}

// LinkNoteMedia links a note to a media item with an optional description of
// the relationship.
func (c *Client) LinkNoteMedia(ctx context.Context, noteID, mediaItemID, description string) error {
	body := Record{"mediaItemId": mediaItemID}
	if description != "" {
		body["description"] = description
	}
	return c.do(ctx, http.MethodPost, "/note/"+url.PathEscape(noteID)+"/link", nil, body, nil)
}

// UnlinkNoteMedia removes a note-to-media link.
func (c *Client) UnlinkNoteMedia(ctx context.Context, noteID, mediaItemID string) error {
	path := "/note/" + url.PathEscape(noteID) + "/link/" + url.PathEscape(mediaItemID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
