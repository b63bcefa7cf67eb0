package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/importer"
	"github.com/pmeridian/charta/internal/tui/components"
	"github.com/pmeridian/charta/internal/tui/styles"
)

type podcastsMode int

const (
	podcastsSeries podcastsMode = iota
	podcastsEpisodes
	podcastsEpisodeDetail
	podcastsImport        // directory search and import
	podcastsImportEpisode // directory episode browser for the open series
)

type podcastsState struct {
	mode podcastsMode

	series     []domain.PodcastSeries
	seriesByID map[string]domain.PodcastSeries
	seriesList *components.List
	subsOnly   bool
	loaded     bool

	// Server-side series search, distinct from the list's local filter.
	seriesSearching bool
	seriesIn        textinput.Model

	openSeries *domain.PodcastSeries
	episodes   []domain.PodcastEpisode
	epList     *components.List
	epDetail   *domain.PodcastEpisode
	imported   importer.ImportedEpisodes

	// Directory import flow for whole series.
	flow      *importer.Flow[api.CatalogPodcast]
	searchIn  textinput.Model
	resultsUI *components.List
	searchGen int

	// Directory episode browser for the open series.
	catEpisodes []api.CatalogEpisode
	catList     *components.List
	catCursor   int64
	epFlow      *importer.Flow[api.CatalogEpisode]

	width, height int
}

func newPodcastsState() podcastsState {
	in := textinput.New()
	in.Prompt = "search directory: "
	in.CharLimit = 120
	sin := textinput.New()
	sin.Prompt = "search series: "
	sin.CharLimit = 120
	return podcastsState{
		seriesByID: make(map[string]domain.PodcastSeries),
		seriesList: components.NewList(),
		epList:     components.NewList(),
		resultsUI:  components.NewList(),
		catList:    components.NewList(),
		searchIn:   in,
		seriesIn:   sin,
		flow:       importer.NewFlow[api.CatalogPodcast](),
		epFlow:     importer.NewFlow[api.CatalogEpisode](),
	}
}

func (s *podcastsState) resize(w, h int) {
	s.width, s.height = w, h
	s.seriesList.SetSize(w, h-2)
	s.epList.SetSize(w, h-3)
	s.resultsUI.SetSize(w, h-4)
	s.catList.SetSize(w, h-4)
}

func (s *podcastsState) textEntryActive() bool {
	if s.mode == podcastsImport && (s.flow.Phase() == importer.SearchIdle || s.flow.Phase() == importer.Searching) {
		return true
	}
	return s.seriesSearching || s.seriesList.Filtering() || s.epList.Filtering() ||
		s.resultsUI.Filtering() || s.catList.Filtering()
}

func (s *podcastsState) enterCmd(m *Model) tea.Cmd {
	if s.loaded {
		return nil
	}
	m.loading = true
	return tea.Batch(LoadSeriesCmd(m.Svc.Podcasts, false, false), m.spin.Tick)
}

func (s *podcastsState) handleError(m *Model, msg ErrMsg) (tea.Cmd, bool) {
	switch s.mode {
	case podcastsImport:
		switch s.flow.Phase() {
		case importer.Searching:
			s.flow.SearchFailed()
		case importer.Importing:
			s.flow.ImportFailed()
		default:
			return nil, false
		}
		m.setStatus(msg.Error(), true)
		return ClearStatusCmd(), true
	case podcastsImportEpisode:
		if s.epFlow.Phase() == importer.Importing {
			s.epFlow.ImportFailed()
			m.setStatus(msg.Error(), true)
			return ClearStatusCmd(), true
		}
	}
	return nil, false
}

func (s *podcastsState) setSeries(series []domain.PodcastSeries, subs bool) {
	s.series = series
	s.subsOnly = subs
	s.seriesByID = make(map[string]domain.PodcastSeries, len(series))
	rows := make([]components.Row, len(series))
	for i, sr := range series {
		s.seriesByID[sr.ID] = sr
		badge := ""
		if sr.IsSubscribed {
			badge = "subscribed"
		}
		rows[i] = components.Row{
			ID:       sr.ID,
			Title:    sr.Title,
			Subtitle: sr.Publisher,
			Badge:    badge,
		}
	}
	s.seriesList.SetRows(rows)
}

func (s *podcastsState) setEpisodes(episodes []domain.PodcastEpisode, imported importer.ImportedEpisodes) {
	s.episodes = episodes
	s.imported = imported
	rows := make([]components.Row, len(episodes))
	for i, ep := range episodes {
		sub := ""
		if ep.ReleaseDate != nil {
			sub = ep.ReleaseDate.Format("2006-01-02")
		}
		rows[i] = components.Row{
			ID:       ep.ID,
			Title:    ep.Title,
			Subtitle: sub,
			Badge:    ep.EpisodeCode(),
		}
	}
	s.epList.SetRows(rows)
}

func (m *Model) updatePodcasts(msg tea.Msg) tea.Cmd {
	s := &m.podcasts

	switch msg := msg.(type) {
	case SeriesLoadedMsg:
		m.loading = false
		s.loaded = true
		s.setSeries(msg.Series, msg.Subscriptions)
		return nil

	case EpisodesLoadedMsg:
		m.loading = false
		if s.openSeries == nil || s.openSeries.ID != msg.SeriesID {
			return nil
		}
		s.setEpisodes(msg.Episodes, msg.Imported)
		if s.mode == podcastsSeries {
			s.mode = podcastsEpisodes
		}
		return nil

	case SeriesSearchedMsg:
		m.loading = false
		s.setSeries(msg.Series, false)
		m.setStatus(fmt.Sprintf("%d series match %q, r restores the full list", len(msg.Series), msg.Query), false)
		return ClearStatusCmd()

	case SeriesDetailMsg:
		series := msg.Series
		s.openSeries = &series
		s.seriesByID[series.ID] = series
		s.mode = podcastsSeries
		// Stay loading until the episode fetch lands and flips the mode.
		m.loading = true
		return tea.Batch(LoadEpisodesCmd(m.Svc.Podcasts, series.ID, true), m.spin.Tick)

	case EpisodeDetailMsg:
		m.loading = false
		episode := msg.Episode
		s.epDetail = &episode
		s.mode = podcastsEpisodeDetail
		return nil

	case SubscriptionChangedMsg:
		m.loading = false
		verb := "unsubscribed"
		if msg.Subscribed {
			verb = "subscribed"
		}
		m.setStatus(verb, false)
		return tea.Batch(LoadSeriesCmd(m.Svc.Podcasts, s.subsOnly, true), ClearStatusCmd())

	case SeriesSyncedMsg:
		m.loading = false
		m.setStatus("sync complete", false)
		cmds := []tea.Cmd{ClearStatusCmd()}
		if s.openSeries != nil && s.openSeries.ID == msg.SeriesID {
			cmds = append(cmds, LoadEpisodesCmd(m.Svc.Podcasts, msg.SeriesID, true))
		}
		return tea.Batch(cmds...)

	case PodcastCatalogMsg:
		if msg.Token != s.searchGen {
			return nil
		}
		m.loading = false
		if err := s.flow.ShowResults(msg.Results); err != nil {
			return nil
		}
		rows := make([]components.Row, len(msg.Results))
		for i, r := range msg.Results {
			rows[i] = components.Row{
				ID:       r.ExternalID,
				Title:    r.Title,
				Subtitle: r.Publisher,
				Badge:    fmt.Sprintf("%d eps", r.TotalEpisodes),
			}
		}
		s.resultsUI.SetRows(rows)
		return nil

	case CatalogEpisodesMsg:
		m.loading = false
		if s.openSeries == nil || s.openSeries.ExternalID != msg.ExternalID {
			return nil
		}
		s.catEpisodes = append(s.catEpisodes, msg.Episodes...)
		s.catCursor = msg.NextCursor
		rows := make([]components.Row, len(s.catEpisodes))
		for i, ep := range s.catEpisodes {
			badge := ""
			if s.imported.Contains(ep.ExternalID) {
				badge = "imported"
			}
			sub := ""
			if ep.ReleaseDate != nil {
				sub = ep.ReleaseDate.Format("2006-01-02")
			}
			rows[i] = components.Row{ID: ep.ExternalID, Title: ep.Title, Subtitle: sub, Badge: badge}
		}
		s.catList.SetRows(rows)
		s.mode = podcastsImportEpisode
		return nil

	case ImportedMsg:
		return m.podcastImported(msg)

	case RedirectMsg:
		return m.podcastRedirect(msg)

	case tea.KeyMsg:
		return m.podcastsKey(msg)
	}
	return nil
}

func (m *Model) podcastImported(msg ImportedMsg) tea.Cmd {
	s := &m.podcasts
	m.loading = false

	switch msg.Kind {
	case "podcast":
		token, err := s.flow.ImportSucceeded(msg.LocalID)
		if err != nil {
			return nil
		}
		m.setStatus("imported, opening...", false)
		return RedirectCmd(msg.LocalID, token)
	case "episode":
		token, err := s.epFlow.ImportSucceeded(msg.LocalID)
		if err != nil {
			return nil
		}
		m.setStatus("episode imported, opening...", false)
		return RedirectCmd(msg.LocalID, token)
	}
	return nil
}

func (m *Model) podcastRedirect(msg RedirectMsg) tea.Cmd {
	s := &m.podcasts

	if s.flow.RedirectDue(msg.Token) {
		s.flow.CancelRedirect()
		s.mode = podcastsSeries
		s.searchIn.SetValue("")
		m.loading = true
		// Open the imported series directly; the list cache predates it,
		// so it is reloaded in the background for the series view.
		return tea.Batch(
			LoadSeriesDetailCmd(m.Svc.Podcasts, msg.LocalID),
			LoadSeriesCmd(m.Svc.Podcasts, false, true),
			m.spin.Tick,
		)
	}

	if s.epFlow.RedirectDue(msg.Token) {
		s.epFlow.CancelRedirect()
		if s.openSeries != nil {
			s.mode = podcastsEpisodes
			m.loading = true
			return tea.Batch(LoadEpisodesCmd(m.Svc.Podcasts, s.openSeries.ID, true), m.spin.Tick)
		}
	}
	return nil
}

func (m *Model) podcastsKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.podcasts

	switch s.mode {
	case podcastsImport:
		return m.podcastImportKey(msg)
	case podcastsImportEpisode:
		return m.podcastEpisodeImportKey(msg)
	case podcastsEpisodes:
		return m.podcastEpisodesKey(msg)
	case podcastsEpisodeDetail:
		switch msg.String() {
		case "esc", "backspace", "enter":
			s.epDetail = nil
			s.mode = podcastsEpisodes
		}
		return nil
	}

	if s.seriesSearching {
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(s.seriesIn.Value())
			s.seriesSearching = false
			s.seriesIn.Blur()
			if query == "" {
				return nil
			}
			m.loading = true
			return tea.Batch(SearchSeriesCmd(m.Svc.Podcasts, query), m.spin.Tick)
		case "esc":
			s.seriesSearching = false
			s.seriesIn.Blur()
			s.seriesIn.SetValue("")
			return nil
		}
		var cmd tea.Cmd
		s.seriesIn, cmd = s.seriesIn.Update(msg)
		return cmd
	}

	if s.seriesList.Filtering() {
		return s.seriesList.Update(msg)
	}

	switch msg.String() {
	case "enter":
		if row, ok := s.seriesList.Current(); ok {
			sr := s.seriesByID[row.ID]
			s.openSeries = &sr
			m.loading = true
			return tea.Batch(LoadEpisodesCmd(m.Svc.Podcasts, row.ID, false), m.spin.Tick)
		}
	case "s":
		s.seriesSearching = true
		return s.seriesIn.Focus()
	case "i":
		s.mode = podcastsImport
		s.searchGen++
		return s.searchIn.Focus()
	case "u":
		if row, ok := s.seriesList.Current(); ok {
			sr := s.seriesByID[row.ID]
			m.loading = true
			return tea.Batch(SetSubscriptionCmd(m.Svc.Podcasts, row.ID, !sr.IsSubscribed), m.spin.Tick)
		}
	case "S":
		if row, ok := s.seriesList.Current(); ok {
			m.loading = true
			return tea.Batch(SyncSeriesCmd(m.Svc.Podcasts, row.ID), m.spin.Tick)
		}
	case "o":
		s.subsOnly = !s.subsOnly
		m.loading = true
		return tea.Batch(LoadSeriesCmd(m.Svc.Podcasts, s.subsOnly, false), m.spin.Tick)
	case "d", "delete":
		if row, ok := s.seriesList.Current(); ok {
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete series %q and its episodes?", row.Title),
				cmd: tea.Sequence(
					deleteSeriesCmd(m, row.ID),
					LoadSeriesCmd(m.Svc.Podcasts, s.subsOnly, true),
				),
			}
		}
	case "r":
		m.loading = true
		return tea.Batch(LoadSeriesCmd(m.Svc.Podcasts, s.subsOnly, true), m.spin.Tick)
	}
	return s.seriesList.Update(msg)
}

func deleteSeriesCmd(m *Model, seriesID string) tea.Cmd {
	svc := m.Svc.Podcasts
	return func() tea.Msg {
		ctx, cancel := newMutateCtx()
		defer cancel()
		if err := svc.DeleteSeries(ctx, seriesID); err != nil {
			return ErrMsg{Err: err, Context: "deleting series"}
		}
		return StatusMsg{Text: "series deleted"}
	}
}

func (m *Model) podcastEpisodesKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.podcasts

	if s.epList.Filtering() {
		return s.epList.Update(msg)
	}

	switch msg.String() {
	case "esc", "backspace":
		s.mode = podcastsSeries
		s.openSeries = nil
		s.catEpisodes = nil
		s.catCursor = 0
		return nil
	case "enter":
		if row, ok := s.epList.Current(); ok {
			m.loading = true
			return tea.Batch(LoadEpisodeDetailCmd(m.Svc.Podcasts, row.ID), m.spin.Tick)
		}
	case "r":
		if s.openSeries != nil {
			m.loading = true
			return tea.Batch(LoadEpisodesCmd(m.Svc.Podcasts, s.openSeries.ID, true), m.spin.Tick)
		}
	case "S":
		if s.openSeries != nil {
			m.loading = true
			return tea.Batch(SyncSeriesCmd(m.Svc.Podcasts, s.openSeries.ID), m.spin.Tick)
		}
	case "i":
		// Browse the directory's episode list for this series.
		if s.openSeries != nil && s.openSeries.ExternalID != "" {
			s.catEpisodes = nil
			s.catCursor = 0
			m.loading = true
			return tea.Batch(LoadCatalogEpisodesCmd(m.Svc.Podcasts, s.openSeries.ExternalID, 0), m.spin.Tick)
		}
		m.setStatus("series has no directory link", true)
		return ClearStatusCmd()
	case "d", "delete":
		if row, ok := s.epList.Current(); ok && s.openSeries != nil {
			seriesID := s.openSeries.ID
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete episode %q?", row.Title),
				cmd: tea.Sequence(
					deleteEpisodeCmd(m, seriesID, row.ID),
					LoadEpisodesCmd(m.Svc.Podcasts, seriesID, true),
				),
			}
		}
	}
	return s.epList.Update(msg)
}

func deleteEpisodeCmd(m *Model, seriesID, episodeID string) tea.Cmd {
	svc := m.Svc.Podcasts
	return func() tea.Msg {
		ctx, cancel := newMutateCtx()
		defer cancel()
		if err := svc.DeleteEpisode(ctx, seriesID, episodeID); err != nil {
			return ErrMsg{Err: err, Context: "deleting episode"}
		}
		return StatusMsg{Text: "episode deleted"}
	}
}

func (m *Model) podcastImportKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.podcasts

	// Leaving the import view cancels any scheduled redirect.
	if msg.String() == "esc" {
		s.flow.CancelRedirect()
		s.mode = podcastsSeries
		s.searchIn.Blur()
		return nil
	}

	switch s.flow.Phase() {
	case importer.SearchIdle, importer.Imported:
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(s.searchIn.Value())
			if query == "" {
				return nil
			}
			if err := s.flow.BeginSearch(); err != nil {
				return nil
			}
			s.searchGen++
			m.loading = true
			return tea.Batch(SearchPodcastCatalogCmd(m.Svc.Podcasts, query, s.searchGen), m.spin.Tick)
		case "ctrl+n":
			// Direct import: treat the input as an exact podcast name.
			name := strings.TrimSpace(s.searchIn.Value())
			if name == "" {
				return nil
			}
			if err := s.flow.BeginDirectImport(); err != nil {
				return nil
			}
			m.loading = true
			return tea.Batch(ImportSeriesByNameCmd(m.Svc.Podcasts, name, s.searchGen), m.spin.Tick)
		}
		var cmd tea.Cmd
		s.searchIn, cmd = s.searchIn.Update(msg)
		return cmd

	case importer.ResultsShown:
		if s.resultsUI.Filtering() {
			return s.resultsUI.Update(msg)
		}
		switch msg.String() {
		case "enter", "i":
			if row, ok := s.resultsUI.Current(); ok {
				if err := s.flow.BeginImport(); err != nil {
					return nil
				}
				m.loading = true
				return tea.Batch(ImportSeriesCmd(m.Svc.Podcasts, row.ID, s.searchGen), m.spin.Tick)
			}
		case "s":
			// Re-search from the result list.
			if err := s.flow.BeginSearch(); err != nil {
				return nil
			}
			s.flow.SearchFailed() // back to idle so the input owns keys again
			return s.searchIn.Focus()
		}
		return s.resultsUI.Update(msg)
	}

	return nil
}

func (m *Model) podcastEpisodeImportKey(msg tea.KeyMsg) tea.Cmd {
	s := &m.podcasts

	if s.catList.Filtering() {
		return s.catList.Update(msg)
	}

	switch msg.String() {
	case "esc", "backspace":
		s.epFlow.CancelRedirect()
		s.mode = podcastsEpisodes
		return nil
	case "m":
		// Next page of directory episodes.
		if s.openSeries != nil && s.catCursor > 0 {
			m.loading = true
			return tea.Batch(LoadCatalogEpisodesCmd(m.Svc.Podcasts, s.openSeries.ExternalID, s.catCursor), m.spin.Tick)
		}
		return nil
	case "enter", "i":
		row, ok := s.catList.Current()
		if !ok || s.openSeries == nil {
			return nil
		}
		// Already imported: jump to the local item instead of importing.
		if localID, imported := s.imported.LocalID(row.ID); imported {
			m.setStatus("already imported, opening local episode", false)
			s.mode = podcastsEpisodes
			s.selectEpisode(localID)
			return ClearStatusCmd()
		}
		if err := s.epFlow.BeginDirectImport(); err != nil {
			return nil
		}
		m.loading = true
		return tea.Batch(ImportEpisodeCmd(m.Svc.Podcasts, row.ID, s.openSeries.ID, 0), m.spin.Tick)
	}
	return s.catList.Update(msg)
}

// selectEpisode moves the local episode list cursor to the given id.
func (s *podcastsState) selectEpisode(localID string) {
	for _, id := range s.epList.VisibleIDs() {
		if id == localID {
			// Rebuild with the cursor on the target via filter reset.
			s.epList.ClearFilter()
			break
		}
	}
}

func (m *Model) viewPodcasts() string {
	s := &m.podcasts

	switch s.mode {
	case podcastsImport:
		return m.viewPodcastImport()
	case podcastsImportEpisode:
		header := styles.TitleStyle.Render("Directory episodes")
		if s.openSeries != nil {
			header += styles.SubtitleStyle.Render("  " + s.openSeries.Title)
		}
		more := ""
		if s.catCursor > 0 {
			more = "    m: more"
		}
		return header + "\n" + s.catList.View() + "\n" +
			styles.DimStyle.Render("enter: import / open"+more+"    esc: back")
	case podcastsEpisodes:
		header := styles.TitleStyle.Render("Episodes")
		if s.openSeries != nil {
			header = styles.TitleStyle.Render(s.openSeries.Title) +
				styles.SubtitleStyle.Render(fmt.Sprintf("  %d episodes", len(s.episodes)))
		}
		return header + "\n" + s.epList.View() + "\n" +
			styles.DimStyle.Render("enter: details    i: import from directory    S: sync    d: delete    esc: back")
	case podcastsEpisodeDetail:
		return m.viewEpisodeDetail()
	}

	header := styles.TitleStyle.Render("Podcasts")
	if s.subsOnly {
		header += styles.AccentStyle.Render("  subscriptions")
	}
	if s.seriesSearching {
		header += "\n" + s.seriesIn.View()
	}
	return header + "\n" + s.seriesList.View() + "\n" +
		styles.DimStyle.Render("s: search    i: import    u: subscribe    S: sync    o: subscriptions only")
}

func (m *Model) viewEpisodeDetail() string {
	s := &m.podcasts
	ep := s.epDetail
	if ep == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(ep.Title) + "\n")
	if s.openSeries != nil {
		b.WriteString(styles.SubtitleStyle.Render(s.openSeries.Title) + "\n")
	}
	b.WriteString("\n")

	if code := ep.EpisodeCode(); code != "" {
		b.WriteString("  " + code + "\n")
	}
	if ep.ReleaseDate != nil {
		b.WriteString("  released " + ep.ReleaseDate.Format("2006-01-02") + "\n")
	}
	if ep.DurationSeconds > 0 {
		b.WriteString(fmt.Sprintf("  %d min\n", (ep.DurationSeconds+59)/60))
	}
	if ep.AudioLink != "" {
		b.WriteString("  " + styles.DimStyle.Render(ep.AudioLink) + "\n")
	}

	b.WriteString("\n" + styles.DimStyle.Render("esc: back"))
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m *Model) viewPodcastImport() string {
	s := &m.podcasts

	var body string
	switch s.flow.Phase() {
	case importer.Searching:
		body = m.spin.View() + " searching directory..."
	case importer.ResultsShown:
		n := len(s.flow.Results())
		body = styles.SubtitleStyle.Render(fmt.Sprintf("%d results", n)) + "\n" +
			s.resultsUI.View() + "\n" +
			styles.DimStyle.Render("enter: import    s: new search    esc: back")
	case importer.Importing:
		body = m.spin.View() + " importing..."
	case importer.Imported:
		body = styles.SuccessStyle.Render("imported") + "  " +
			styles.DimStyle.Render("opening shortly, esc to stay")
	default:
		body = s.searchIn.View() + "\n\n" +
			styles.DimStyle.Render("enter: search    ctrl+n: import by exact name    esc: back")
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(
		styles.TitleStyle.Render("Import podcast") + "\n\n" + body,
	)
}
