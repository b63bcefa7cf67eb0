package service

import (
	"context"
	"log/slog"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/store"
)

// NotesService handles imported vault notes and their links to media.
type NotesService struct {
	client *api.Client
	store  *store.CatalogStore
	logger *slog.Logger
}

func NewNotesService(client *api.Client, st *store.CatalogStore, logger *slog.Logger) *NotesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotesService{client: client, store: st, logger: logger}
}

func (s *NotesService) GetNotes(ctx context.Context, refresh bool) ([]domain.Note, error) {
	if !refresh {
		if notes, ok := s.store.GetNotes(); ok {
			return notes, nil
		}
	}
	notes, err := s.client.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveNotes(notes); err != nil {
		s.logger.Warn("failed to cache notes", "error", err)
	}
	return notes, nil
}

func (s *NotesService) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	return s.client.GetNote(ctx, id)
}

func (s *NotesService) GetNotesForMedia(ctx context.Context, mediaID string, refresh bool) ([]domain.Note, error) {
	if !refresh {
		if notes, ok := s.store.GetNotesForMedia(mediaID); ok {
			return notes, nil
		}
	}
	notes, err := s.client.ListNotesForMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveNotesForMedia(mediaID, notes); err != nil {
		s.logger.Warn("failed to cache media notes", "media", mediaID, "error", err)
	}
	return notes, nil
}

func (s *NotesService) UpdateDescription(ctx context.Context, id, description string) (*domain.Note, error) {
	note, err := s.client.UpdateNoteDescription(ctx, id, description)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateNotes()
	return note, nil
}

// GenerateDescription asks the server to draft a description for the note.
// The draft comes back on the note for review before the user saves it.
func (s *NotesService) GenerateDescription(ctx context.Context, id string) (*domain.Note, error) {
	return s.client.GenerateNoteDescription(ctx, id)
}

func (s *NotesService) LinkMedia(ctx context.Context, noteID, mediaID, description string) error {
	if err := s.client.LinkNoteMedia(ctx, noteID, mediaID, description); err != nil {
		return err
	}
	s.store.InvalidateNotes()
	return nil
}

func (s *NotesService) UnlinkMedia(ctx context.Context, noteID, mediaID string) error {
	if err := s.client.UnlinkNoteMedia(ctx, noteID, mediaID); err != nil {
		return err
	}
	s.store.InvalidateNotes()
	return nil
}
