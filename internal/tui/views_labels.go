package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/service"
	"github.com/pmeridian/charta/internal/tui/components"
	"github.com/pmeridian/charta/internal/tui/styles"
)

// labelsState shows topics and genres side by side with rename/create
// prompts. Label names are normalized before they reach the server, so
// the lists here are always lowercase.
type labelsState struct {
	topics []domain.Topic
	genres []domain.Genre

	topicList *components.List
	genreList *components.List
	onGenres  bool
	loaded    bool

	naming   bool
	nameIn   textinput.Model
	renameID string

	width, height int
}

func newLabelsState() labelsState {
	in := textinput.New()
	in.Prompt = "name: "
	in.CharLimit = 80
	return labelsState{
		topicList: components.NewList(),
		genreList: components.NewList(),
		nameIn:    in,
	}
}

func (s *labelsState) resize(w, h int) {
	s.width, s.height = w, h
	half := w/2 - 2
	s.topicList.SetSize(half, h-3)
	s.genreList.SetSize(half, h-3)
}

func (s *labelsState) textEntryActive() bool {
	return s.naming || s.topicList.Filtering() || s.genreList.Filtering()
}

func (s *labelsState) enterCmd(m *Model) tea.Cmd {
	if s.loaded {
		return nil
	}
	m.loading = true
	return tea.Batch(
		LoadTopicsCmd(m.Svc.Catalog, false),
		LoadGenresCmd(m.Svc.Catalog, false),
		m.spin.Tick,
	)
}

func (s *labelsState) kind() string {
	if s.onGenres {
		return "genre"
	}
	return "topic"
}

func (s *labelsState) activeList() *components.List {
	if s.onGenres {
		return s.genreList
	}
	return s.topicList
}

func (m *Model) updateLabels(msg tea.Msg) tea.Cmd {
	s := &m.labels

	switch msg := msg.(type) {
	case TopicsLoadedMsg:
		m.loading = false
		s.loaded = true
		s.topics = msg.Topics
		s.topicList.SetRows(components.RowsFrom(msg.Topics, false))
		return nil

	case GenresLoadedMsg:
		m.loading = false
		s.genres = msg.Genres
		s.genreList.SetRows(components.RowsFrom(msg.Genres, false))
		return nil

	case LabelSavedMsg:
		m.loading = false
		s.naming = false
		m.setStatus("saved "+msg.Kind+" "+msg.Name, false)
		return tea.Batch(m.reloadLabels(msg.Kind), ClearStatusCmd())

	case LabelDeletedMsg:
		m.loading = false
		m.setStatus(msg.Kind+" deleted", false)
		return tea.Batch(m.reloadLabels(msg.Kind), ClearStatusCmd())

	case tea.KeyMsg:
		return m.labelsKey(msg)
	}
	return nil
}

func (m *Model) reloadLabels(kind string) tea.Cmd {
	if kind == "topic" {
		return LoadTopicsCmd(m.Svc.Catalog, true)
	}
	return LoadGenresCmd(m.Svc.Catalog, true)
}

func (m *Model) labelsKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.labels

	if s.naming {
		switch msg.String() {
		case "enter":
			name := domain.NormalizeLabel(s.nameIn.Value())
			if name == "" {
				return nil
			}
			s.nameIn.Blur()
			m.loading = true
			return tea.Batch(SaveLabelCmd(m.Svc.Catalog, s.kind(), s.renameID, name), m.spin.Tick)
		case "esc":
			s.naming = false
			s.nameIn.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.nameIn, cmd = s.nameIn.Update(msg)
		return cmd
	}

	list := s.activeList()
	if list.Filtering() {
		return list.Update(msg)
	}

	switch msg.String() {
	case "h", "l", "left", "right":
		s.onGenres = !s.onGenres
		return nil
	case "n":
		s.renameID = ""
		s.nameIn.SetValue("")
		s.naming = true
		return s.nameIn.Focus()
	case "e":
		if row, ok := list.Current(); ok {
			s.renameID = row.ID
			s.nameIn.SetValue(row.Title)
			s.naming = true
			return s.nameIn.Focus()
		}
		return nil
	case "d", "delete":
		if row, ok := list.Current(); ok {
			kind := s.kind()
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete %s %q? It is removed from every item.", kind, row.Title),
				cmd:    DeleteLabelCmd(m.Svc.Catalog, kind, row.ID),
			}
		}
		return nil
	case "enter":
		// Browse media carrying this label.
		if row, ok := list.Current(); ok {
			m.section = SectionMedia
			if s.onGenres {
				m.media.scope = service.MediaScope{GenreID: row.ID}
			} else {
				m.media.scope = service.MediaScope{TopicID: row.ID}
			}
			m.media.scopeKey = s.kind() + ":" + row.Title
			return m.media.loadCmd(m, false)
		}
		return nil
	case "r":
		m.loading = true
		return tea.Batch(LoadTopicsCmd(m.Svc.Catalog, true), LoadGenresCmd(m.Svc.Catalog, true), m.spin.Tick)
	}
	return list.Update(msg)
}

func (m *Model) viewLabels() string {
	s := &m.labels

	if s.naming {
		title := "New " + s.kind()
		if s.renameID != "" {
			title = "Rename " + s.kind()
		}
		box := styles.ActiveBorder.Padding(1, 2).Render(
			styles.TitleStyle.Render(title) + "\n\n" + s.nameIn.View(),
		)
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, box)
	}

	topicHeader := styles.TitleStyle.Render("Topics")
	genreHeader := styles.TitleStyle.Render("Genres")
	if s.onGenres {
		topicHeader = styles.DimStyle.Render("Topics")
	} else {
		genreHeader = styles.DimStyle.Render("Genres")
	}

	left := topicHeader + "\n" + s.topicList.View()
	right := genreHeader + "\n" + s.genreList.View()

	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(s.width/2).Render(left),
		right,
	)
	return cols + "\n" + styles.DimStyle.Render(strings.TrimSpace("h/l: switch column    enter: browse media    n/e/d: new, rename, delete"))
}
