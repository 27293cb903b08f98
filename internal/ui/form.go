package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/hmx/internal/routes"
)

type fieldSpec struct {
	label       string
	placeholder string
	secret      bool
}

// form is a vertical stack of text inputs with one focused field.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(specs ...fieldSpec) *form {
	f := &form{labels: make([]string, len(specs)), inputs: make([]textinput.Model, len(specs))}
	for i, s := range specs {
		in := textinput.New()
		in.Prompt = "> "
		in.Placeholder = s.placeholder
		in.CharLimit = 128
		if s.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.labels[i] = s.label
		f.inputs[i] = in
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// Update moves focus on tab/shift+tab and forwards everything else to the focused input.
func (f *form) Update(msg tea.KeyMsg, keys keyMap) tea.Cmd {
	switch {
	case key.Matches(msg, keys.next):
		return f.move(1)
	case key.Matches(msg, keys.prev):
		return f.move(-1)
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// Last reports whether the focused field is the final one.
func (f *form) Last() bool { return f.focus == len(f.inputs)-1 }

func (f *form) Value(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

// Secret returns the raw value, without trimming.
func (f *form) Secret(i int) string { return f.inputs[i].Value() }

func (f *form) SetValue(i int, v string) { f.inputs[i].SetValue(v) }

func (f *form) View() string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := f.labels[i]
		if i == f.focus {
			label = styles.cursor.Render(label)
		}
		b.WriteString(styles.label.Render(label))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	return b.String()
}

// formFor returns the fields of a form view, or nil for other views.
func formFor(r routes.Route) *form {
	switch r {
	case routes.Login:
		return newForm(
			fieldSpec{label: "Username"},
			fieldSpec{label: "Password", secret: true},
		)
	case routes.Register:
		return newForm(
			fieldSpec{label: "Name"},
			fieldSpec{label: "Surname"},
			fieldSpec{label: "Username"},
			fieldSpec{label: "Email", placeholder: "name@example.com"},
			fieldSpec{label: "Age"},
			fieldSpec{label: "Password", secret: true},
		)
	case routes.Activate:
		return newForm(fieldSpec{label: "Token"})
	case routes.ForgotPassword:
		return newForm(fieldSpec{label: "Email", placeholder: "name@example.com"})
	case routes.NewPassword:
		return newForm(
			fieldSpec{label: "Token"},
			fieldSpec{label: "New password", secret: true},
			fieldSpec{label: "Confirm password", secret: true},
		)
	case routes.ChangeEmail:
		return newForm(
			fieldSpec{label: "Current password", secret: true},
			fieldSpec{label: "New email"},
			fieldSpec{label: "Confirm email"},
		)
	case routes.ChangePassword:
		return newForm(
			fieldSpec{label: "Current password", secret: true},
			fieldSpec{label: "New password", secret: true},
			fieldSpec{label: "Confirm password", secret: true},
		)
	default:
		return nil
	}
}

// holidayForm is the inline request form of the holidays view.
func holidayForm() *form {
	return newForm(
		fieldSpec{label: "Start", placeholder: "2006-01-02T09:00"},
		fieldSpec{label: "End", placeholder: "2006-01-02T17:00"},
	)
}
