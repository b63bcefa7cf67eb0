package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/service"
	"github.com/pmeridian/charta/internal/tui/styles"
)

// Section is a top-level area of the app, cycled with tab.
type Section int

const (
	SectionMedia Section = iota
	SectionMixlists
	SectionPodcasts
	SectionNotes
	SectionLabels
	sectionCount
)

func (s Section) String() string {
	switch s {
	case SectionMedia:
		return "Media"
	case SectionMixlists:
		return "Mixlists"
	case SectionPodcasts:
		return "Podcasts"
	case SectionNotes:
		return "Notes"
	case SectionLabels:
		return "Topics & Genres"
	default:
		return "?"
	}
}

// Services bundles everything the TUI needs.
type Services struct {
	Catalog  *service.CatalogService
	Podcasts *service.PodcastService
	Books    *service.BookService
	Notes    *service.NotesService
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Keys KeyMap
	Svc  Services

	logger *slog.Logger

	width  int
	height int
	ready  bool

	section Section
	spin    spinner.Model
	loading bool

	status    string
	statusErr bool

	// Section state, defined alongside their update/view code.
	media    mediaState
	mixlists mixlistsState
	podcasts podcastsState
	notes    notesState
	labels   labelsState

	// Modal overlays. Only one is active at a time; nil means none.
	confirm *confirmState
	help    bool
}

// confirmState is a yes/no prompt blocking the current view.
type confirmState struct {
	prompt string
	cmd    tea.Cmd // runs on confirm
}

// New builds the root model.
func New(svc Services, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	m := &Model{
		Keys:   DefaultKeyMap(),
		Svc:    svc,
		logger: logger,
		spin:   sp,
	}
	m.media = newMediaState()
	m.mixlists = newMixlistsState()
	m.podcasts = newPodcastsState()
	m.notes = newNotesState()
	m.labels = newLabelsState()
	return m
}

// Init kicks off the first load.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(
		m.spin.Tick,
		m.media.loadCmd(m, false),
	)
}

// Update is the top-level message router.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case StatusMsg:
		m.setStatus(msg.Text, msg.IsError)
		return m, ClearStatusCmd()

	case ClearStatusMsg:
		m.status = ""
		return m, nil

	case ErrMsg:
		return m, m.handleError(msg)

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	// Confirmation modal swallows everything else.
	if m.confirm != nil {
		return m, m.updateConfirm(msg)
	}

	return m, m.updateSection(msg)
}

// handleGlobalKey handles keys that work everywhere. Text-entry modes get
// first refusal so typing "q" into a filter does not quit.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if m.textEntryActive() || m.confirm != nil {
		return nil, false
	}

	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "?":
		m.help = !m.help
		return nil, true
	case "tab", "]":
		m.section = (m.section + 1) % sectionCount
		return m.enterSection(), true
	case "shift+tab", "[":
		m.section = (m.section + sectionCount - 1) % sectionCount
		return m.enterSection(), true
	case "ctrl+r":
		// Drop every cached list; each view refetches on its next load.
		m.Svc.Catalog.RefreshCache()
		m.setStatus("caches cleared", false)
		return ClearStatusCmd(), true
	}
	return nil, false
}

// textEntryActive reports whether some input currently owns keystrokes.
func (m *Model) textEntryActive() bool {
	switch m.section {
	case SectionMedia:
		return m.media.textEntryActive()
	case SectionMixlists:
		return m.mixlists.textEntryActive()
	case SectionPodcasts:
		return m.podcasts.textEntryActive()
	case SectionNotes:
		return m.notes.textEntryActive()
	case SectionLabels:
		return m.labels.textEntryActive()
	}
	return false
}

// enterSection fires the section's initial load if it has not run yet.
func (m *Model) enterSection() tea.Cmd {
	m.status = ""
	switch m.section {
	case SectionMedia:
		return m.media.enterCmd(m)
	case SectionMixlists:
		return m.mixlists.enterCmd(m)
	case SectionPodcasts:
		return m.podcasts.enterCmd(m)
	case SectionNotes:
		return m.notes.enterCmd(m)
	case SectionLabels:
		return m.labels.enterCmd(m)
	}
	return nil
}

// updateSection routes a message to the active section.
func (m *Model) updateSection(msg tea.Msg) tea.Cmd {
	switch m.section {
	case SectionMedia:
		return m.updateMedia(msg)
	case SectionMixlists:
		return m.updateMixlists(msg)
	case SectionPodcasts:
		return m.updatePodcasts(msg)
	case SectionNotes:
		return m.updateNotes(msg)
	case SectionLabels:
		return m.updateLabels(msg)
	}
	return nil
}

func (m *Model) updateConfirm(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "y", "Y":
		cmd := m.confirm.cmd
		m.confirm = nil
		m.loading = cmd != nil
		return tea.Batch(cmd, m.spin.Tick)
	case "n", "N", "esc":
		m.confirm = nil
	}
	return nil
}

// handleError surfaces an error. Token-carrying errors are dropped when
// the section tracker has moved on.
func (m *Model) handleError(msg ErrMsg) tea.Cmd {
	m.loading = false
	if cmd, handled := m.sectionHandlesError(msg); handled {
		return cmd
	}
	if domain.IsPartial(msg.Err) {
		// The primary action landed; only follow-up steps failed.
		m.logger.Warn("operation partially failed", "context", msg.Context, "error", msg.Err)
	} else {
		m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
	}
	m.setStatus(msg.Error(), true)
	return ClearStatusCmd()
}

func (m *Model) sectionHandlesError(msg ErrMsg) (tea.Cmd, bool) {
	switch m.section {
	case SectionMedia:
		return m.media.handleError(m, msg)
	case SectionPodcasts:
		return m.podcasts.handleError(m, msg)
	}
	return nil, false
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) resize() {
	w, h := m.width, m.contentHeight()
	m.media.resize(w, h)
	m.mixlists.resize(w, h)
	m.podcasts.resize(w, h)
	m.notes.resize(w, h)
	m.labels.resize(w, h)
}

// contentHeight is the rows left after the tab bar and status bar.
func (m *Model) contentHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the whole screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.help {
		return m.helpView()
	}

	var body string
	switch m.section {
	case SectionMedia:
		body = m.viewMedia()
	case SectionMixlists:
		body = m.viewMixlists()
	case SectionPodcasts:
		body = m.viewPodcasts()
	case SectionNotes:
		body = m.viewNotes()
	case SectionLabels:
		body = m.viewLabels()
	}

	if m.confirm != nil {
		body = m.viewConfirm()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.tabBar(),
		lipgloss.NewStyle().Height(m.contentHeight()).Render(body),
		m.statusBar(),
	)
}

func (m *Model) tabBar() string {
	var tabs []string
	for s := Section(0); s < sectionCount; s++ {
		label := " " + s.String() + " "
		if s == m.section {
			tabs = append(tabs, styles.HighlightStyle.Render(label))
		} else {
			tabs = append(tabs, styles.DimStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *Model) statusBar() string {
	left := ""
	if m.loading {
		left = m.spin.View() + " working"
	}

	switch {
	case m.status != "" && m.statusErr:
		return styles.StatusErrorStyle.Width(m.width).Render(m.status)
	case m.status != "":
		return styles.StatusSuccessStyle.Width(m.width).Render(m.status)
	default:
		hint := "tab: sections  /: filter  ?: help  q: quit"
		return styles.StatusBarStyle.Width(m.width).Render(left + "  " + hint)
	}
}

func (m *Model) viewConfirm() string {
	box := styles.ActiveBorder.Padding(1, 2).Render(
		m.confirm.prompt + "\n\n" +
			styles.AccentStyle.Render("y") + " confirm    " +
			styles.DimStyle.Render("n") + " cancel",
	)
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) helpView() string {
	rows := []string{
		styles.TitleStyle.Render("charta"),
		"",
		"tab / shift+tab   switch section",
		"j/k or arrows     move",
		"/                 quick filter",
		"s                 server search (media)",
		"enter             open",
		"esc               back",
		"n / e / d         new, edit, delete",
		"space             mark item    a  mark all shown",
		"i                 import (podcasts, books)",
		"u                 subscribe / unsubscribe",
		"S                 sync subscribed series",
		"r                 refresh from server",
		"q                 quit",
		"",
		styles.DimStyle.Render("press ? to close"),
	}
	return lipgloss.NewStyle().Padding(1, 3).Render(strings.Join(rows, "\n"))
}
