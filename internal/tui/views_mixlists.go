package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/tui/components"
	"github.com/pmeridian/charta/internal/tui/styles"
)

type mixlistsMode int

const (
	mixlistsList mixlistsMode = iota
	mixlistsDetail
	mixlistsName // create/rename prompt
)

type mixlistsState struct {
	mode mixlistsMode

	lists  []domain.Mixlist
	list   *components.List
	loaded bool

	open     *domain.Mixlist
	itemList *components.List

	nameIn   textinput.Model
	renameID string // "" while creating

	width, height int
}

func newMixlistsState() mixlistsState {
	in := textinput.New()
	in.Prompt = "name: "
	in.CharLimit = 120
	return mixlistsState{
		list:     components.NewList(),
		itemList: components.NewList(),
		nameIn:   in,
	}
}

func (s *mixlistsState) resize(w, h int) {
	s.width, s.height = w, h
	s.list.SetSize(w, h-2)
	s.itemList.SetSize(w, h-3)
}

func (s *mixlistsState) textEntryActive() bool {
	return s.mode == mixlistsName || s.list.Filtering() || s.itemList.Filtering()
}

func (s *mixlistsState) enterCmd(m *Model) tea.Cmd {
	if s.loaded {
		return nil
	}
	m.loading = true
	return tea.Batch(LoadMixlistsCmd(m.Svc.Catalog, false), m.spin.Tick)
}

// resolveNames maps case-insensitive mixlist names to ids. Unknown names
// come back separately so the form can reject them inline.
func (s *mixlistsState) resolveNames(names []string) (ids []string, unknown []string) {
	for _, name := range names {
		found := false
		for _, list := range s.lists {
			if strings.EqualFold(list.Name, name) {
				ids = append(ids, list.ID)
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, name)
		}
	}
	return ids, unknown
}

func (s *mixlistsState) setLists(lists []domain.Mixlist) {
	s.lists = lists
	s.list.SetRows(components.RowsFrom(lists, false))
}

func (s *mixlistsState) setOpen(list *domain.Mixlist) {
	s.open = list
	s.itemList.SetRows(components.RowsFrom(list.Items, true))
}

func (m *Model) updateMixlists(msg tea.Msg) tea.Cmd {
	s := &m.mixlists

	switch msg := msg.(type) {
	case MixlistsLoadedMsg:
		m.loading = false
		s.loaded = true
		s.setLists(msg.Lists)
		return nil

	case MixlistLoadedMsg:
		m.loading = false
		s.setOpen(msg.List)
		s.mode = mixlistsDetail
		return nil

	case MixlistSavedMsg:
		m.loading = false
		s.mode = mixlistsList
		m.setStatus("saved "+msg.List.Name, false)
		return tea.Batch(LoadMixlistsCmd(m.Svc.Catalog, true), ClearStatusCmd())

	case MixlistDeletedMsg:
		m.loading = false
		m.setStatus("mixlist deleted", false)
		return tea.Batch(LoadMixlistsCmd(m.Svc.Catalog, true), ClearStatusCmd())

	case MixlistMembershipMsg:
		m.loading = false
		if s.open != nil && s.open.ID == msg.ListID {
			// Refetch the open list so the item set is authoritative.
			return LoadMixlistCmd(m.Svc.Catalog, msg.ListID, true)
		}
		return nil

	case tea.KeyMsg:
		return m.mixlistsKey(msg)
	}
	return nil
}

func (m *Model) mixlistsKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.mixlists

	if s.mode == mixlistsName {
		switch msg.String() {
		case "enter":
			name := strings.TrimSpace(s.nameIn.Value())
			if name == "" {
				return nil
			}
			s.nameIn.Blur()
			m.loading = true
			return tea.Batch(SaveMixlistCmd(m.Svc.Catalog, s.renameID, name), m.spin.Tick)
		case "esc":
			s.mode = mixlistsList
			s.nameIn.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.nameIn, cmd = s.nameIn.Update(msg)
		return cmd
	}

	if s.mode == mixlistsDetail {
		if s.itemList.Filtering() {
			return s.itemList.Update(msg)
		}
		switch msg.String() {
		case "esc", "backspace":
			s.mode = mixlistsList
			s.open = nil
			return nil
		case "d", "delete":
			if row, ok := s.itemList.Current(); ok && s.open != nil {
				listID := s.open.ID
				m.confirm = &confirmState{
					prompt: fmt.Sprintf("Remove %q from %s?", row.Title, s.open.Name),
					cmd:    RemoveFromMixlistCmd(m.Svc.Catalog, listID, row.ID),
				}
			}
			return nil
		case "r":
			if s.open != nil {
				m.loading = true
				return tea.Batch(LoadMixlistCmd(m.Svc.Catalog, s.open.ID, true), m.spin.Tick)
			}
			return nil
		}
		return s.itemList.Update(msg)
	}

	if s.list.Filtering() {
		return s.list.Update(msg)
	}

	switch msg.String() {
	case "enter":
		if row, ok := s.list.Current(); ok {
			m.loading = true
			return tea.Batch(LoadMixlistCmd(m.Svc.Catalog, row.ID, false), m.spin.Tick)
		}
		return nil
	case "n":
		s.renameID = ""
		s.nameIn.SetValue("")
		s.mode = mixlistsName
		return s.nameIn.Focus()
	case "e":
		if row, ok := s.list.Current(); ok {
			s.renameID = row.ID
			s.nameIn.SetValue(row.Title)
			s.mode = mixlistsName
			return s.nameIn.Focus()
		}
		return nil
	case "d", "delete":
		if row, ok := s.list.Current(); ok {
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete mixlist %q? Its items stay in the catalog.", row.Title),
				cmd:    DeleteMixlistCmd(m.Svc.Catalog, row.ID),
			}
		}
		return nil
	case "r":
		m.loading = true
		return tea.Batch(LoadMixlistsCmd(m.Svc.Catalog, true), m.spin.Tick)
	}
	return s.list.Update(msg)
}

func (m *Model) viewMixlists() string {
	s := &m.mixlists

	if s.mode == mixlistsName {
		title := "New mixlist"
		if s.renameID != "" {
			title = "Rename mixlist"
		}
		box := styles.ActiveBorder.Padding(1, 2).Render(
			styles.TitleStyle.Render(title) + "\n\n" + s.nameIn.View(),
		)
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, box)
	}

	if s.mode == mixlistsDetail && s.open != nil {
		header := styles.TitleStyle.Render(s.open.Name) +
			styles.SubtitleStyle.Render(fmt.Sprintf("  %d items", len(s.open.Items)))
		return header + "\n" + s.itemList.View() + "\n" +
			styles.DimStyle.Render("d: remove item    r: refresh    esc: back")
	}

	return styles.TitleStyle.Render("Mixlists") + "\n" + s.list.View()
}
