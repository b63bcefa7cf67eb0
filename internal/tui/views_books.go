package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/importer"
	"github.com/pmeridian/charta/internal/tui/components"
	"github.com/pmeridian/charta/internal/tui/styles"
)

// bookImportState drives the external book catalog search-and-import flow,
// reached from the media list with "b".
type bookImportState struct {
	flow      *importer.Flow[api.CatalogBook]
	searchIn  textinput.Model
	results   *components.List
	byKey     map[string]api.CatalogBook
	typeIdx   int
	searchGen int
}

var bookSearchTypes = []api.BookSearchType{
	api.BookSearchGeneral,
	api.BookSearchTitle,
	api.BookSearchAuthor,
	api.BookSearchISBN,
}

func newBookImportState() bookImportState {
	in := textinput.New()
	in.Prompt = "search books: "
	in.CharLimit = 120
	return bookImportState{
		flow:     importer.NewFlow[api.CatalogBook](),
		searchIn: in,
		results:  components.NewList(),
		byKey:    make(map[string]api.CatalogBook),
	}
}

func (b *bookImportState) searchType() api.BookSearchType {
	return bookSearchTypes[b.typeIdx]
}

func (m *Model) updateBookImport(msg tea.Msg) (tea.Cmd, bool) {
	s := &m.media
	b := &s.books

	switch msg := msg.(type) {
	case BookCatalogMsg:
		if msg.Token != b.searchGen {
			return nil, true
		}
		m.loading = false
		if err := b.flow.ShowResults(msg.Results); err != nil {
			return nil, true
		}
		b.byKey = make(map[string]api.CatalogBook, len(msg.Results))
		rows := make([]components.Row, len(msg.Results))
		for i, r := range msg.Results {
			key := r.Key
			if key == "" {
				key = r.ISBN
			}
			b.byKey[key] = r
			sub := r.Author
			if r.FirstPublishYear > 0 {
				sub = fmt.Sprintf("%s (%d)", r.Author, r.FirstPublishYear)
			}
			rows[i] = components.Row{ID: key, Title: r.Title, Subtitle: sub}
		}
		b.results.SetRows(rows)
		return nil, true

	case ImportedMsg:
		if msg.Kind != "book" {
			return nil, false
		}
		m.loading = false
		token, err := b.flow.ImportSucceeded(msg.LocalID)
		if err != nil {
			return nil, true
		}
		m.setStatus("book imported, opening...", false)
		return RedirectCmd(msg.LocalID, token), true

	case RedirectMsg:
		if !b.flow.RedirectDue(msg.Token) {
			return nil, false
		}
		b.flow.CancelRedirect()
		s.mode = mediaList
		m.loading = true
		// Open the imported item once the detail fetch lands.
		return tea.Batch(LoadMediaItemCmd(m.Svc.Catalog, msg.LocalID, true), m.spin.Tick), true

	case tea.KeyMsg:
		return m.bookImportKey(msg), true
	}
	return nil, false
}

func (m *Model) bookImportKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.media
	b := &s.books

	if msg.String() == "esc" {
		b.flow.CancelRedirect()
		s.mode = mediaList
		b.searchIn.Blur()
		return nil
	}

	switch b.flow.Phase() {
	case importer.SearchIdle, importer.Imported:
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(b.searchIn.Value())
			if query == "" {
				return nil
			}
			if err := b.flow.BeginSearch(); err != nil {
				return nil
			}
			b.searchGen++
			m.loading = true
			return tea.Batch(SearchBookCatalogCmd(m.Svc.Books, query, b.searchType(), b.searchGen), m.spin.Tick)
		case "ctrl+t":
			b.typeIdx = (b.typeIdx + 1) % len(bookSearchTypes)
			return nil
		case "ctrl+n":
			// Direct import: the input is an ISBN.
			isbn := strings.TrimSpace(b.searchIn.Value())
			if isbn == "" {
				return nil
			}
			if err := b.flow.BeginDirectImport(); err != nil {
				return nil
			}
			m.loading = true
			return tea.Batch(ImportBookByISBNCmd(m.Svc.Books, isbn, b.searchGen), m.spin.Tick)
		}
		var cmd tea.Cmd
		b.searchIn, cmd = b.searchIn.Update(msg)
		return cmd

	case importer.ResultsShown:
		if b.results.Filtering() {
			return b.results.Update(msg)
		}
		switch msg.String() {
		case "enter", "i":
			if row, ok := b.results.Current(); ok {
				book, known := b.byKey[row.ID]
				if !known {
					return nil
				}
				if err := b.flow.BeginImport(); err != nil {
					return nil
				}
				m.loading = true
				return tea.Batch(ImportBookCmd(m.Svc.Books, book, b.searchGen), m.spin.Tick)
			}
		case "s":
			if err := b.flow.BeginSearch(); err != nil {
				return nil
			}
			b.flow.SearchFailed()
			return b.searchIn.Focus()
		}
		return b.results.Update(msg)
	}

	return nil
}

func (b *bookImportState) handleError(m *Model, msg ErrMsg) (tea.Cmd, bool) {
	switch b.flow.Phase() {
	case importer.Searching:
		b.flow.SearchFailed()
	case importer.Importing:
		b.flow.ImportFailed()
	default:
		return nil, false
	}
	m.setStatus(msg.Error(), true)
	return ClearStatusCmd(), true
}

func (m *Model) viewBookImport() string {
	b := &m.media.books

	var body string
	switch b.flow.Phase() {
	case importer.Searching:
		body = m.spin.View() + " searching catalog..."
	case importer.ResultsShown:
		body = styles.SubtitleStyle.Render(fmt.Sprintf("%d results", len(b.flow.Results()))) + "\n" +
			b.results.View() + "\n" +
			styles.DimStyle.Render("enter: import    s: new search    esc: back")
	case importer.Importing:
		body = m.spin.View() + " importing..."
	case importer.Imported:
		body = styles.SuccessStyle.Render("imported") + "  " +
			styles.DimStyle.Render("opening shortly, esc to stay")
	default:
		body = b.searchIn.View() + "\n" +
			styles.SubtitleStyle.Render("search by: "+string(b.searchType())) + "\n\n" +
			styles.DimStyle.Render("enter: search    ctrl+t: search field    ctrl+n: import by ISBN    esc: back")
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(
		styles.TitleStyle.Render("Import book") + "\n\n" + body,
	)
}
