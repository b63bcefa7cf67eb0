package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmeridian/charta/internal/tui/styles"
)

// Field is one labelled text input with an optional inline validation
// message. Validation failures stay on the field and never leave the form.
type Field struct {
	Name     string
	Label    string
	Input    textinput.Model
	Err      string
	Validate func(value string) string // returns "" when valid
}

// Form is a vertical stack of fields with focus handling.
type Form struct {
	Fields  []Field
	focused int
}

func NewForm(fields []Field) *Form {
	f := &Form{Fields: fields}
	if len(f.Fields) > 0 {
		f.Fields[0].Input.Focus()
	}
	return f
}

// Value returns the trimmed value of the named field.
func (f *Form) Value(name string) string {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return strings.TrimSpace(f.Fields[i].Input.Value())
		}
	}
	return ""
}

// SetValue sets the named field's value.
func (f *Form) SetValue(name, value string) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			f.Fields[i].Input.SetValue(value)
			return
		}
	}
}

// SetError attaches an inline error to the named field and focuses it.
func (f *Form) SetError(name, msg string) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			f.Fields[i].Err = msg
			f.focus(i)
			return
		}
	}
}

// ValidateAll runs every field validator. It returns true when the form is
// clean; otherwise the first failing field gets focus.
func (f *Form) ValidateAll() bool {
	firstBad := -1
	for i := range f.Fields {
		field := &f.Fields[i]
		field.Err = ""
		if field.Validate != nil {
			if msg := field.Validate(strings.TrimSpace(field.Input.Value())); msg != "" {
				field.Err = msg
				if firstBad < 0 {
					firstBad = i
				}
			}
		}
	}
	if firstBad >= 0 {
		f.focus(firstBad)
		return false
	}
	return true
}

func (f *Form) focus(i int) {
	for j := range f.Fields {
		f.Fields[j].Input.Blur()
	}
	f.focused = i
	f.Fields[i].Input.Focus()
}

// Update routes keystrokes: tab/shift+tab move focus, everything else goes
// to the focused input. Enter and esc are left for the owning view.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.focus((f.focused + 1) % len(f.Fields))
			return nil
		case "shift+tab", "up":
			f.focus((f.focused + len(f.Fields) - 1) % len(f.Fields))
			return nil
		}
	}

	field := &f.Fields[f.focused]
	var cmd tea.Cmd
	field.Input, cmd = field.Input.Update(msg)

	// Re-validate as the user types so stale errors clear immediately.
	if field.Err != "" && field.Validate != nil {
		field.Err = field.Validate(strings.TrimSpace(field.Input.Value()))
	}
	return cmd
}

// View renders the form.
func (f *Form) View() string {
	var b strings.Builder
	for i := range f.Fields {
		field := &f.Fields[i]

		label := styles.LabelStyle.Render(field.Label)
		if i == f.focused {
			label = styles.FocusedLabelStyle.Render(field.Label)
		}

		b.WriteString(label)
		b.WriteString(field.Input.View())
		b.WriteString("\n")
		if field.Err != "" {
			b.WriteString(styles.LabelStyle.Render(""))
			b.WriteString(styles.FieldErrorStyle.Render(field.Err))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// TextField builds a Field with sane input defaults.
func TextField(name, label, placeholder string, validate func(string) string) Field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 300
	return Field{Name: name, Label: label, Input: in, Validate: validate}
}

// Required is a validator for mandatory fields.
func Required(msg string) func(string) string {
	return func(v string) string {
		if v == "" {
			return msg
		}
		return ""
	}
}
