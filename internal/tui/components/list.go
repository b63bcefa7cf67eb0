// Package components holds the reusable TUI widgets: the filterable list
// and the text form used by the create/edit screens.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmeridian/charta/internal/domain"
	"github.com/pmeridian/charta/internal/search"
	"github.com/pmeridian/charta/internal/selection"
	"github.com/pmeridian/charta/internal/tui/styles"
)

// Row is one renderable list entry.
type Row struct {
	ID       string
	Title    string
	Subtitle string
	Badge    string // short trailing tag, like a media type or episode code
}

// RowsFrom converts domain entities into rows through their list interface.
// The type badge only earns its space in mixed lists, so callers opt in.
// Views whose badge carries other state (sync flags, episode codes) still
// build rows by hand.
func RowsFrom[T domain.ListItem](items []T, typeBadge bool) []Row {
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = Row{
			ID:       it.GetID(),
			Title:    it.GetTitle(),
			Subtitle: it.GetDescription(),
		}
		if typeBadge {
			rows[i].Badge = it.GetItemType()
		}
	}
	return rows
}

// List is a scrollable, filterable, optionally multi-selectable list.
type List struct {
	rows    []Row
	visible []int // indexes into rows after filtering
	matches map[int][]int

	cursor int
	offset int
	width  int
	height int

	filter    *search.Filter
	filtering bool
	filterIn  textinput.Model

	// Marks holds multi-select state; nil disables marking.
	Marks *selection.Set
}

func NewList() *List {
	in := textinput.New()
	in.Prompt = "/"
	in.CharLimit = 80
	return &List{
		filter:   &search.Filter{},
		filterIn: in,
	}
}

// SetRows replaces the list contents, resetting filter and cursor but
// keeping marks: a refetch must not clear the user's selection.
func (l *List) SetRows(rows []Row) {
	l.rows = rows
	titles := make([]string, len(rows))
	for i, r := range rows {
		titles[i] = r.Title
	}
	l.filter.Set(titles)
	l.applyFilter()
	if l.cursor >= len(l.visible) {
		l.cursor = max(0, len(l.visible)-1)
	}
}

func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// Len returns the number of visible rows.
func (l *List) Len() int { return len(l.visible) }

// Current returns the row under the cursor.
func (l *List) Current() (Row, bool) {
	if l.cursor < 0 || l.cursor >= len(l.visible) {
		return Row{}, false
	}
	return l.rows[l.visible[l.cursor]], true
}

// Filtering reports whether the quick-filter input owns keystrokes.
func (l *List) Filtering() bool { return l.filtering }

// StartFilter focuses the quick-filter input.
func (l *List) StartFilter() tea.Cmd {
	l.filtering = true
	return l.filterIn.Focus()
}

// ClearFilter drops the filter and shows the full list.
func (l *List) ClearFilter() {
	l.filtering = false
	l.filterIn.SetValue("")
	l.filterIn.Blur()
	l.applyFilter()
}

// VisibleIDs returns the ids of the rows currently shown, in order.
func (l *List) VisibleIDs() []string {
	ids := make([]string, len(l.visible))
	for i, idx := range l.visible {
		ids[i] = l.rows[idx].ID
	}
	return ids
}

func (l *List) applyFilter() {
	query := l.filterIn.Value()
	if strings.TrimSpace(query) == "" {
		l.visible = make([]int, len(l.rows))
		for i := range l.rows {
			l.visible[i] = i
		}
		l.matches = nil
		l.clamp()
		return
	}

	hits := l.filter.Match(query)
	l.visible = make([]int, len(hits))
	l.matches = make(map[int][]int, len(hits))
	for i, h := range hits {
		l.visible[i] = h.Index
		l.matches[h.Index] = h.MatchedIndexes
	}
	l.cursor = 0
	l.offset = 0
}

func (l *List) clamp() {
	if l.cursor >= len(l.visible) {
		l.cursor = max(0, len(l.visible)-1)
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.height > 0 && l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
}

// Update handles navigation and filter keystrokes.
func (l *List) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if l.filtering {
		switch key.String() {
		case "enter":
			l.filtering = false
			l.filterIn.Blur()
			return nil
		case "esc":
			l.ClearFilter()
			return nil
		}
		var cmd tea.Cmd
		l.filterIn, cmd = l.filterIn.Update(msg)
		l.applyFilter()
		return cmd
	}

	switch key.String() {
	case "k", "up":
		if l.cursor > 0 {
			l.cursor--
		}
	case "j", "down":
		if l.cursor < len(l.visible)-1 {
			l.cursor++
		}
	case "pgup", "ctrl+b":
		l.cursor = max(0, l.cursor-l.height)
	case "pgdown", "ctrl+f":
		l.cursor = min(len(l.visible)-1, l.cursor+l.height)
	case "g", "home":
		l.cursor = 0
	case "G", "end":
		l.cursor = max(0, len(l.visible)-1)
	case " ", "x":
		if l.Marks != nil {
			if row, ok := l.Current(); ok {
				l.Marks.Toggle(row.ID)
			}
		}
	case "a":
		if l.Marks != nil {
			l.Marks.SelectAll(l.VisibleIDs())
		}
	}
	l.clamp()
	return nil
}

// View renders the list within the configured size.
func (l *List) View() string {
	var b strings.Builder

	if l.filtering || l.filterIn.Value() != "" {
		b.WriteString(l.filterIn.View())
		b.WriteString("\n")
	}

	if len(l.visible) == 0 {
		if l.filterIn.Value() != "" {
			b.WriteString(styles.DimStyle.Render("no matches"))
		} else {
			b.WriteString(styles.DimStyle.Render("nothing here yet"))
		}
		return b.String()
	}

	end := min(l.offset+l.height, len(l.visible))
	for i := l.offset; i < end; i++ {
		idx := l.visible[i]
		row := l.rows[idx]

		mark := ""
		if l.Marks != nil {
			if l.Marks.Has(row.ID) {
				mark = styles.WarningStyle.Render(styles.MarkedChar) + " "
			} else {
				mark = styles.UnmarkedChar + " "
			}
		}

		title := row.Title
		if hl, ok := l.matches[idx]; ok {
			title = highlight(title, hl)
		}

		line := mark + title
		if row.Badge != "" {
			line += " " + styles.DimStyle.Render("["+row.Badge+"]")
		}
		if row.Subtitle != "" {
			line += "  " + styles.SubtitleStyle.Render(truncate(row.Subtitle, 40))
		}

		if i == l.cursor {
			b.WriteString(styles.SelectedItemStyle.Render(truncate(line, l.width-2)))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(truncate(line, l.width-2)))
		}
		b.WriteString("\n")
	}

	if len(l.visible) > l.height {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d/%d", l.cursor+1, len(l.visible))))
	}

	return b.String()
}

// highlight re-renders title with the matched rune positions emphasized.
func highlight(title string, positions []int) string {
	set := make(map[int]bool, len(positions))
	for _, p := range positions {
		set[p] = true
	}

	var b strings.Builder
	for i, r := range []rune(title) {
		if set[i] {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, w int) string {
	if w <= 0 {
		return s
	}
	if lipgloss.Width(s) <= w {
		return s
	}
	runes := []rune(s)
	if len(runes) <= w {
		return s
	}
	return string(runes[:w-1]) + "…"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
