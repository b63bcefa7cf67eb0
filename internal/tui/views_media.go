package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmeridian/charta/internal/async"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/importer"
	"github.com/pmeridian/charta/internal/search"
	"github.com/pmeridian/charta/internal/selection"
	"github.com/pmeridian/charta/internal/service"
	"github.com/pmeridian/charta/internal/tui/components"
	"github.com/pmeridian/charta/internal/tui/styles"
)

type mediaMode int

const (
	mediaList mediaMode = iota
	mediaDetail
	mediaForm
	mediaImportBook
)

// mediaState holds the media browser: the scoped list with multi-select,
// the detail page and the create/edit form.
type mediaState struct {
	mode mediaMode

	list  *components.List
	marks *selection.Set
	items map[string]*domain.MediaItem

	scope     service.MediaScope
	scopeKey  string
	typeCycle int // index into typeScopes; 0 = all
	loaded    bool
	loadErr   string
	loadGen   int // drops stale list loads after scope changes

	searching bool
	searchIn  textinput.Model
	query     string // active server-search query, "" when browsing

	saves *async.Tracker // Pending/Succeeded/Failed for form submits

	detail      *domain.MediaItem
	detailNotes []domain.Note // notes linked to the detail item

	form     *components.Form
	formItem *domain.MediaItem // nil when creating

	books bookImportState

	width, height int
}

// typeScopes is the r-cycle of type filters, "" meaning all.
var typeScopes = []domain.MediaType{
	"",
	domain.MediaTypeBook,
	domain.MediaTypeMovie,
	domain.MediaTypeTVShow,
	domain.MediaTypePodcast,
	domain.MediaTypeVideoGame,
	domain.MediaTypeArticle,
	domain.MediaTypeWebsite,
}

func newMediaState() mediaState {
	in := textinput.New()
	in.Prompt = "search: "
	in.CharLimit = 120

	marks := selection.New()
	l := components.NewList()
	l.Marks = marks

	return mediaState{
		list:     l,
		marks:    marks,
		items:    make(map[string]*domain.MediaItem),
		scopeKey: "all",
		searchIn: in,
		saves:    async.NewTracker(),
		books:    newBookImportState(),
	}
}

func (s *mediaState) resize(w, h int) {
	s.width, s.height = w, h
	s.list.SetSize(w, h-2)
}

func (s *mediaState) textEntryActive() bool {
	if s.mode == mediaImportBook {
		phase := s.books.flow.Phase()
		return phase == importer.SearchIdle || phase == importer.Imported || s.books.results.Filtering()
	}
	return s.searching || s.list.Filtering() || s.mode == mediaForm
}

func (s *mediaState) enterCmd(m *Model) tea.Cmd {
	if s.loaded {
		return nil
	}
	return s.loadCmd(m, false)
}

func (s *mediaState) loadCmd(m *Model, refresh bool) tea.Cmd {
	s.loadGen++
	s.loadErr = ""
	m.loading = true
	return tea.Batch(
		LoadMediaCmd(m.Svc.Catalog, s.scope, s.scopeKey, refresh, s.loadGen),
		m.spin.Tick,
	)
}

func (s *mediaState) handleError(m *Model, msg ErrMsg) (tea.Cmd, bool) {
	if msg.Token != 0 && msg.Token == s.loadGen {
		// The list load itself failed: show a retryable full-area error.
		s.loadErr = msg.Error()
		m.logger.Warn("media load failed", "error", msg.Err)
		return nil, true
	}
	if s.mode == mediaForm {
		if ve, ok := validationOf(msg.Err); ok {
			s.form.SetError(ve.Field, ve.Message)
			return nil, true
		}
		s.saves.Fail(msg.Token, msg.Error())
		return nil, true
	}
	if s.mode == mediaImportBook {
		return s.books.handleError(m, msg)
	}
	return nil, false
}

func validationOf(err error) (*domain.ValidationError, bool) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func (m *Model) updateMedia(msg tea.Msg) tea.Cmd {
	s := &m.media

	if s.mode == mediaImportBook {
		if cmd, handled := m.updateBookImport(msg); handled {
			return cmd
		}
	}

	switch msg := msg.(type) {
	case MediaLoadedMsg:
		if msg.Token != s.loadGen {
			return nil // a newer scope superseded this load
		}
		m.loading = false
		s.loaded = true
		s.query = ""
		s.setItems(msg.Items)
		return nil

	case MediaSearchedMsg:
		if msg.Token != s.loadGen {
			return nil
		}
		m.loading = false
		s.query = msg.Query
		s.setItems(msg.Items)
		return nil

	case MediaItemLoadedMsg:
		m.loading = false
		s.detail = msg.Item
		s.detailNotes = nil
		s.items[msg.Item.ID] = msg.Item
		s.mode = mediaDetail
		return LoadNotesForMediaCmd(m.Svc.Notes, msg.Item.ID, false)

	case NotesLoadedMsg:
		if s.detail == nil || msg.MediaID != s.detail.ID {
			return nil
		}
		s.detailNotes = msg.Notes
		return nil

	case MediaSavedMsg:
		m.loading = false
		if msg.Partial != nil {
			s.saves.Succeed(msg.Token, partialSummary(msg.Partial))
		} else if msg.Created {
			s.saves.Succeed(msg.Token, "created "+msg.Item.Title)
		} else {
			note := "saved " + msg.Item.Title
			if msg.Item.PromptForCompletion() && msg.Item.Rating == "" {
				note += " (completed, no rating yet)"
			}
			s.saves.Succeed(msg.Token, note)
		}
		s.mode = mediaList
		s.form = nil
		m.setStatus(s.saves.Message(), msg.Partial != nil)
		return tea.Batch(s.loadCmd(m, true), ClearStatusCmd())

	case MediaDeletedMsg:
		m.loading = false
		s.marks.Clear()
		if s.mode == mediaDetail {
			s.mode = mediaList
			s.detail = nil
		}
		m.setStatus("deleted", false)
		return tea.Batch(s.loadCmd(m, true), ClearStatusCmd())

	case MediaBulkDeletedMsg:
		m.loading = false
		s.marks.Clear()
		m.setStatus(fmt.Sprintf("deleted %d items", msg.Count), false)
		return tea.Batch(s.loadCmd(m, true), ClearStatusCmd())

	case tea.KeyMsg:
		return m.mediaKey(msg)
	}

	return nil
}

func partialSummary(p *domain.PartialActionError) string {
	return fmt.Sprintf("saved, but %d mixlist step(s) failed", len(p.Failures))
}

func (m *Model) mediaKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.media

	switch s.mode {
	case mediaForm:
		return m.mediaFormKey(msg)
	case mediaDetail:
		return m.mediaDetailKey(msg)
	}

	if s.searching {
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(s.searchIn.Value())
			s.searching = false
			s.searchIn.Blur()
			if q == "" {
				return nil
			}
			s.loadGen++
			m.loading = true
			return tea.Batch(SearchMediaCmd(m.Svc.Catalog, q, s.loadGen), m.spin.Tick)
		case "esc":
			s.searching = false
			s.searchIn.Blur()
			s.searchIn.SetValue("")
			return nil
		}
		var cmd tea.Cmd
		s.searchIn, cmd = s.searchIn.Update(msg)
		return cmd
	}

	if s.list.Filtering() {
		return s.list.Update(msg)
	}

	switch msg.String() {
	case "s":
		s.searching = true
		return s.searchIn.Focus()
	case "r":
		if s.query != "" {
			// Leave search results back to the browse scope.
			s.query = ""
			return s.loadCmd(m, false)
		}
		return s.loadCmd(m, true)
	case "t":
		s.typeCycle = (s.typeCycle + 1) % len(typeScopes)
		s.scope = service.MediaScope{Type: typeScopes[s.typeCycle]}
		s.scopeKey = scopeLabel(s.scope)
		return s.loadCmd(m, false)
	case "n":
		m.openMediaForm(nil)
		return nil
	case "b":
		s.mode = mediaImportBook
		s.books.searchGen++
		return s.books.searchIn.Focus()
	case "e":
		if row, ok := s.list.Current(); ok {
			if item := s.items[row.ID]; item != nil {
				m.openMediaForm(item)
			}
		}
		return nil
	case "enter":
		if s.loadErr != "" {
			return s.loadCmd(m, true) // retry the failed load
		}
		if row, ok := s.list.Current(); ok {
			m.loading = true
			return tea.Batch(LoadMediaItemCmd(m.Svc.Catalog, row.ID, false), m.spin.Tick)
		}
		return nil
	case "d", "delete":
		return m.mediaDeleteKey()
	case "esc":
		if s.loadErr != "" {
			s.loadErr = ""
			return nil
		}
		if s.query != "" {
			s.query = ""
			return s.loadCmd(m, false)
		}
	}

	return s.list.Update(msg)
}

// mediaDeleteKey deletes the marked items, or the cursor row when nothing
// is marked. Either way a confirmation stands between the key and the call.
func (m *Model) mediaDeleteKey() tea.Cmd {
	s := &m.media

	if s.marks.Size() > 0 {
		ids := s.marks.IDs()
		s.loadGen++
		m.confirm = &confirmState{
			prompt: fmt.Sprintf("Delete %d marked items? This cannot be undone.", len(ids)),
			cmd:    BulkDeleteMediaCmd(m.Svc.Catalog, ids, s.loadGen),
		}
		return nil
	}

	if row, ok := s.list.Current(); ok {
		s.loadGen++
		m.confirm = &confirmState{
			prompt: fmt.Sprintf("Delete %q?", row.Title),
			cmd:    DeleteMediaCmd(m.Svc.Catalog, row.ID, s.loadGen),
		}
	}
	return nil
}

func (m *Model) mediaDetailKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.media
	switch msg.String() {
	case "esc", "backspace":
		s.mode = mediaList
		s.detail = nil
		s.detailNotes = nil
	case "e":
		if s.detail != nil {
			m.openMediaForm(s.detail)
		}
	case "d", "delete":
		if s.detail != nil {
			s.loadGen++
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete %q?", s.detail.Title),
				cmd:    DeleteMediaCmd(m.Svc.Catalog, s.detail.ID, s.loadGen),
			}
		}
	case "r":
		if s.detail != nil {
			m.loading = true
			return tea.Batch(LoadMediaItemCmd(m.Svc.Catalog, s.detail.ID, true), m.spin.Tick)
		}
	}
	return nil
}

func (s *mediaState) setItems(items []*domain.MediaItem) {
	s.items = make(map[string]*domain.MediaItem, len(items))
	rows := make([]components.Row, len(items))
	for i, item := range items {
		s.items[item.ID] = item
		rows[i] = components.Row{
			ID:       item.ID,
			Title:    item.Title,
			Subtitle: string(item.Status),
			Badge:    string(item.MediaType),
		}
	}
	s.list.SetRows(rows)
}

func scopeLabel(sc service.MediaScope) string {
	if sc.Type == "" {
		return "all"
	}
	return string(sc.Type)
}

// === Form ===

func (m *Model) openMediaForm(item *domain.MediaItem) {
	s := &m.media

	fields := []components.Field{
		components.TextField("title", "Title", "required", components.Required("title is required")),
	}
	// The type is fixed at creation, so edits never offer it.
	if item == nil {
		fields = append(fields, components.TextField("mediaType", "Type", "Book, Movie, Podcast...", validMediaType))
	}
	fields = append(fields, components.TextField("status", "Status", "Uncharted", validStatus))
	// A rating only makes sense once the item is completed.
	if item != nil && item.PromptForCompletion() {
		fields = append(fields, components.TextField("rating", "Rating", "", validRating))
	}
	fields = append(fields,
		components.TextField("link", "Link", "https://", nil),
		components.TextField("description", "Description", "", nil),
		components.TextField("thumbnail", "Thumbnail", "image URL", nil),
		components.TextField("topics", "Topics", "comma separated", nil),
		components.TextField("genres", "Genres", "comma separated", nil),
		components.TextField("mixlists", "Mixlists", "comma separated names", nil),
	)

	s.form = components.NewForm(fields)
	s.formItem = item
	if item != nil {
		s.form.SetValue("title", item.Title)
		s.form.SetValue("status", string(item.Status))
		s.form.SetValue("rating", string(item.Rating))
		s.form.SetValue("link", item.Link)
		s.form.SetValue("description", item.Description)
		s.form.SetValue("thumbnail", item.Thumbnail)
		s.form.SetValue("topics", strings.Join(item.Topics, ", "))
		s.form.SetValue("genres", strings.Join(item.Genres, ", "))
	}
	s.mode = mediaForm
}

func validMediaType(v string) string {
	if v == "" {
		return ""
	}
	if domain.ParseMediaType(v) == domain.MediaTypeOther && !strings.EqualFold(v, string(domain.MediaTypeOther)) {
		return "unknown type (will be saved as Other)"
	}
	return ""
}

func validStatus(v string) string {
	switch strings.ToLower(v) {
	case "", "uncharted", "activelyexploring", "completed", "abandoned":
		return ""
	}
	return "one of Uncharted, ActivelyExploring, Completed, Abandoned"
}

func validRating(v string) string {
	switch strings.ToLower(v) {
	case "", "superlike", "like", "neutral", "dislike":
		return ""
	}
	return "one of SuperLike, Like, Neutral, Dislike"
}

func (m *Model) mediaFormKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.media

	switch msg.String() {
	case "esc":
		s.mode = mediaList
		s.form = nil
		return nil
	case "enter":
		return m.submitMediaForm()
	}
	return s.form.Update(msg)
}

func (m *Model) submitMediaForm() tea.Cmd {
	s := &m.media

	if !s.form.ValidateAll() {
		return nil
	}

	item := domain.MediaItem{
		Title:       s.form.Value("title"),
		MediaType:   domain.ParseMediaType(s.form.Value("mediaType")),
		Status:      domain.Status(s.form.Value("status")),
		Rating:      domain.Rating(s.form.Value("rating")),
		Link:        s.form.Value("link"),
		Description: s.form.Value("description"),
		Topics:      domain.NormalizeLabels(splitCSV(s.form.Value("topics"))),
		Genres:      domain.NormalizeLabels(splitCSV(s.form.Value("genres"))),
	}
	if item.Status == "" {
		item.Status = domain.StatusUncharted
	}

	mixlistIDs, unknown := m.mixlists.resolveNames(splitCSV(s.form.Value("mixlists")))
	if len(unknown) > 0 {
		errText := "unknown mixlist: " + strings.Join(unknown, ", ")
		names := make([]string, len(m.mixlists.lists))
		for i, list := range m.mixlists.lists {
			names[i] = list.Name
		}
		if sugg := search.RankTitles(unknown[0], names); len(sugg) > 0 {
			errText += ", closest: " + sugg[0]
		}
		s.form.SetError("mixlists", errText)
		return nil
	}

	token := s.saves.Begin()
	m.loading = true

	thumb := strings.TrimSpace(s.form.Value("thumbnail"))

	if s.formItem != nil {
		item.ID = s.formItem.ID
		// The form never offers the type on edit; keep what the item was
		// created as, along with its typed payload.
		item.MediaType = s.formItem.MediaType
		if !s.formItem.PromptForCompletion() {
			item.Rating = s.formItem.Rating
		}
		item.DateAdded = s.formItem.DateAdded
		item.DateCompleted = s.formItem.DateCompleted
		item.Notes = s.formItem.Notes
		item.Thumbnail = s.formItem.Thumbnail
		item.Book = s.formItem.Book
		item.Movie = s.formItem.Movie
		item.TVShow = s.formItem.TVShow
		item.Podcast = s.formItem.Podcast
		item.Extra = s.formItem.Extra
		save := UpdateMediaCmd(m.Svc.Catalog, item, token)
		if thumb != "" && thumb != s.formItem.Thumbnail {
			// A new image URL goes through the server so the item points at
			// the stored copy rather than the remote host.
			save = SaveMediaThumbnailCmd(m.Svc.Catalog, item, thumb, token)
		}
		cmds := []tea.Cmd{save, m.spin.Tick}
		// Mixlists named in the form are attached on top of the update.
		for _, listID := range mixlistIDs {
			cmds = append(cmds, AddToMixlistCmd(m.Svc.Catalog, listID, item.ID))
		}
		return tea.Batch(cmds...)
	}
	item.Thumbnail = thumb
	return tea.Batch(CreateMediaCmd(m.Svc.Catalog, item, mixlistIDs, token), m.spin.Tick)
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// === Views ===

func (m *Model) viewMedia() string {
	s := &m.media

	switch s.mode {
	case mediaForm:
		return m.viewMediaForm()
	case mediaDetail:
		return m.viewMediaDetail()
	case mediaImportBook:
		return m.viewBookImport()
	}

	if s.loadErr != "" {
		box := styles.InactiveBorder.Padding(1, 2).Render(
			styles.ErrorStyle.Render("Could not load media") + "\n\n" +
				s.loadErr + "\n\n" +
				styles.DimStyle.Render("enter: retry    esc: dismiss"),
		)
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, box)
	}

	header := styles.TitleStyle.Render("Media")
	if s.query != "" {
		header += styles.SubtitleStyle.Render("  results for \"" + s.query + "\"")
	} else if s.scope.Type != "" {
		header += styles.SubtitleStyle.Render("  " + string(s.scope.Type))
	}
	if n := s.marks.Size(); n > 0 {
		header += styles.WarningStyle.Render(fmt.Sprintf("  %d marked", n))
	}
	if s.searching {
		header += "\n" + s.searchIn.View()
	}

	return header + "\n" + s.list.View()
}

func (m *Model) viewMediaDetail() string {
	item := m.media.detail
	if item == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(item.Title))
	b.WriteString("  " + styles.DimStyle.Render("["+string(item.MediaType)+"]"))
	b.WriteString("\n\n")

	writeField := func(label, value string) {
		if value != "" {
			b.WriteString(styles.SubtitleStyle.Render(label+": ") + value + "\n")
		}
	}

	writeField("Status", string(item.Status))
	writeField("Rating", string(item.Rating))
	writeField("Ownership", string(item.Ownership))
	writeField("Link", item.Link)
	writeField("Topics", strings.Join(item.Topics, ", "))
	writeField("Genres", strings.Join(item.Genres, ", "))
	if !item.DateAdded.IsZero() {
		writeField("Added", item.DateAdded.Format("2006-01-02"))
	}
	if item.DateCompleted != nil {
		writeField("Completed", item.DateCompleted.Format("2006-01-02"))
	}

	switch {
	case item.Book != nil:
		writeField("Author", item.Book.Author)
		writeField("ISBN", item.Book.ISBN)
		writeField("Format", item.Book.Format)
	case item.Movie != nil:
		writeField("Director", item.Movie.Director)
		if item.Movie.ReleaseYear > 0 {
			writeField("Year", fmt.Sprintf("%d", item.Movie.ReleaseYear))
		}
		writeField("Runtime", item.FormattedRuntime())
	case item.TVShow != nil:
		writeField("Creator", item.TVShow.Creator)
		if item.TVShow.Seasons > 0 {
			writeField("Seasons", fmt.Sprintf("%d", item.TVShow.Seasons))
		}
	case item.Podcast != nil:
		writeField("Publisher", item.Podcast.Publisher)
		writeField("Audio", item.Podcast.AudioLink)
	}

	if item.Description != "" {
		b.WriteString("\n" + item.Description + "\n")
	}
	if item.Notes != "" {
		b.WriteString("\n" + styles.SubtitleStyle.Render("Notes") + "\n" + item.Notes + "\n")
	}
	if len(m.media.detailNotes) > 0 {
		b.WriteString("\n" + styles.SubtitleStyle.Render("Linked notes") + "\n")
		for _, note := range m.media.detailNotes {
			b.WriteString("  • " + note.Title + "\n")
		}
	}

	b.WriteString("\n" + styles.DimStyle.Render("e: edit    d: delete    r: refresh    esc: back"))
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m *Model) viewMediaForm() string {
	s := &m.media
	title := "New item"
	if s.formItem != nil {
		title = "Edit " + s.formItem.Title
	}

	msg := ""
	if s.saves.State() == async.Failed && s.saves.Message() != "" {
		msg = "\n" + styles.ErrorStyle.Render(s.saves.Message())
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(
		styles.TitleStyle.Render(title) + "\n\n" +
			s.form.View() + msg + "\n" +
			styles.DimStyle.Render("enter: save    tab: next field    esc: cancel"),
	)
}
