package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/tui/components"
	"github.com/pmeridian/charta/internal/tui/styles"
)

type notesMode int

const (
	notesList notesMode = iota
	notesDetail
	notesEdit
)

type notesState struct {
	mode notesMode

	notes  map[string]domain.Note
	list   *components.List
	loaded bool

	open  *domain.Note
	draft string // server-generated description awaiting accept/reject

	descIn textinput.Model

	width, height int
}

func newNotesState() notesState {
	in := textinput.New()
	in.Prompt = "description: "
	in.CharLimit = 500
	return notesState{
		notes:  make(map[string]domain.Note),
		list:   components.NewList(),
		descIn: in,
	}
}

func (s *notesState) resize(w, h int) {
	s.width, s.height = w, h
	s.list.SetSize(w, h-2)
}

func (s *notesState) textEntryActive() bool {
	return s.mode == notesEdit || s.list.Filtering()
}

func (s *notesState) enterCmd(m *Model) tea.Cmd {
	if s.loaded {
		return nil
	}
	m.loading = true
	return tea.Batch(LoadNotesCmd(m.Svc.Notes, false), m.spin.Tick)
}

func (s *notesState) setNotes(notes []domain.Note) {
	s.notes = make(map[string]domain.Note, len(notes))
	rows := make([]components.Row, len(notes))
	for i, n := range notes {
		s.notes[n.ID] = n
		badge := ""
		if len(n.Links) > 0 {
			badge = "linked"
		}
		rows[i] = components.Row{
			ID:       n.ID,
			Title:    n.Title,
			Subtitle: n.VaultName,
			Badge:    badge,
		}
	}
	s.list.SetRows(rows)
}

func (m *Model) updateNotes(msg tea.Msg) tea.Cmd {
	s := &m.notes

	switch msg := msg.(type) {
	case NotesLoadedMsg:
		if msg.MediaID != "" {
			return nil // per-item note lists belong to the media detail
		}
		m.loading = false
		s.loaded = true
		s.setNotes(msg.Notes)
		return nil

	case NoteSavedMsg:
		m.loading = false
		s.open = msg.Note
		s.draft = ""
		s.mode = notesDetail
		m.setStatus("note saved", false)
		return tea.Batch(LoadNotesCmd(m.Svc.Notes, true), ClearStatusCmd())

	case NoteDraftMsg:
		m.loading = false
		// Hold the draft for review; nothing is saved yet.
		s.draft = msg.Note.Description
		return nil

	case NoteLinkChangedMsg:
		m.loading = false
		verb := "unlinked"
		if msg.Linked {
			verb = "linked"
		}
		m.setStatus("note "+verb, false)
		return tea.Batch(LoadNotesCmd(m.Svc.Notes, true), ClearStatusCmd())

	case tea.KeyMsg:
		return m.notesKey(msg)
	}
	return nil
}

func (m *Model) notesKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.notes

	if s.mode == notesEdit {
		switch msg.String() {
		case "enter":
			if s.open == nil {
				return nil
			}
			desc := strings.TrimSpace(s.descIn.Value())
			s.descIn.Blur()
			m.loading = true
			return tea.Batch(SaveNoteDescriptionCmd(m.Svc.Notes, s.open.ID, desc), m.spin.Tick)
		case "esc":
			s.mode = notesDetail
			s.descIn.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.descIn, cmd = s.descIn.Update(msg)
		return cmd
	}

	if s.mode == notesDetail {
		switch msg.String() {
		case "esc", "backspace":
			s.mode = notesList
			s.open = nil
			s.draft = ""
		case "e":
			if s.open != nil {
				s.descIn.SetValue(s.open.Description)
				s.mode = notesEdit
				return s.descIn.Focus()
			}
		case "g":
			if s.open != nil {
				m.loading = true
				return tea.Batch(GenerateNoteDescriptionCmd(m.Svc.Notes, s.open.ID), m.spin.Tick)
			}
		case "y":
			// Accept the generated draft.
			if s.open != nil && s.draft != "" {
				m.loading = true
				return tea.Batch(SaveNoteDescriptionCmd(m.Svc.Notes, s.open.ID, s.draft), m.spin.Tick)
			}
		case "N":
			s.draft = ""
		case "d", "delete":
			// Unlink the first linked item; full link management needs the
			// media picker.
			if s.open != nil && len(s.open.Links) > 0 {
				link := s.open.Links[0]
				m.loading = true
				return tea.Batch(SetNoteLinkCmd(m.Svc.Notes, s.open.ID, link.MediaItemID, false), m.spin.Tick)
			}
		}
		return nil
	}

	if s.list.Filtering() {
		return s.list.Update(msg)
	}

	switch msg.String() {
	case "enter":
		if row, ok := s.list.Current(); ok {
			if note, known := s.notes[row.ID]; known {
				s.open = &note
				s.draft = ""
				s.mode = notesDetail
			}
		}
		return nil
	case "r":
		m.loading = true
		return tea.Batch(LoadNotesCmd(m.Svc.Notes, true), m.spin.Tick)
	}
	return s.list.Update(msg)
}

func (m *Model) viewNotes() string {
	s := &m.notes

	if s.mode == notesEdit && s.open != nil {
		return lipgloss.NewStyle().Padding(0, 1).Render(
			styles.TitleStyle.Render("Edit description") + "\n\n" +
				s.descIn.View() + "\n\n" +
				styles.DimStyle.Render("enter: save    esc: cancel"),
		)
	}

	if s.mode == notesDetail && s.open != nil {
		var b strings.Builder
		n := s.open
		b.WriteString(styles.TitleStyle.Render(n.Title) + "\n")
		if n.VaultName != "" {
			b.WriteString(styles.SubtitleStyle.Render("vault: "+n.VaultName) + "\n")
		}
		if len(n.Tags) > 0 {
			b.WriteString(styles.SubtitleStyle.Render("tags: "+strings.Join(n.Tags, ", ")) + "\n")
		}
		b.WriteString("\n" + n.Description + "\n")

		if s.draft != "" {
			b.WriteString("\n" + styles.AccentStyle.Render("Generated draft") + "\n")
			b.WriteString(s.draft + "\n")
			b.WriteString(styles.DimStyle.Render("y: accept    N: discard") + "\n")
		}

		if len(n.Links) > 0 {
			b.WriteString("\n" + styles.SubtitleStyle.Render("Linked media") + "\n")
			for _, link := range n.Links {
				b.WriteString("  " + link.Title + "\n")
			}
		}

		b.WriteString("\n" + styles.DimStyle.Render("e: edit    g: generate description    d: unlink    esc: back"))
		return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
	}

	return styles.TitleStyle.Render("Notes") + "\n" + s.list.View()
}
