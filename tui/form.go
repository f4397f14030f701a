package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gosterim-cli/service"
)

const (
	fieldCardNumber = iota
	fieldExpiry
	fieldCVC
	fieldCount
)

type cardForm struct {
	inputs  [fieldCount]textinput.Model
	focused int
}

func newCardForm() cardForm {
	var f cardForm
	labels := [fieldCount]string{"Card number", "Expiry", "CVC"}
	placeholders := [fieldCount]string{"1234 5678 9012 3456", "MM/YY", "123"}
	limits := [fieldCount]int{19, 5, 4}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = lipgloss.NewStyle().Width(13).Render(labels[i]) + " "
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Width = 22
		f.inputs[i] = in
	}
	f.inputs[fieldCardNumber].Focus()
	return f
}

func (f cardForm) details() service.CardDetails {
	return service.CardDetails{
		Number: f.inputs[fieldCardNumber].Value(),
		Expiry: f.inputs[fieldExpiry].Value(),
		CVC:    f.inputs[fieldCVC].Value(),
	}
}

func (f cardForm) valid() bool {
	return service.CardValid(f.details())
}

// focus moves the cursor to field i.
func (f *cardForm) focus(i int) tea.Cmd {
	f.focused = (i%fieldCount + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focused {
			cmd = f.inputs[j].Focus()
			continue
		}
		f.inputs[j].Blur()
	}
	return cmd
}

func (f *cardForm) focusNext(delta int) tea.Cmd {
	return f.focus(f.focused + delta)
}

// update feeds msg to the focused input and reformats what was typed.
func (f cardForm) update(msg tea.Msg) (cardForm, tea.Cmd) {
	var cmd tea.Cmd
	in := f.inputs[f.focused]
	before := in.Value()
	in, cmd = in.Update(msg)

	if value := in.Value(); value != before {
		formatted := formatField(f.focused, value)
		if len(value) < len(before) && formatted == before {
			// deleting a separator also deletes the digit before it
			formatted = formatField(f.focused, trimLastRune(value))
		}
		in.SetValue(formatted)
		in.CursorEnd()
	}
	f.inputs[f.focused] = in
	return f, cmd
}

func formatField(i int, raw string) string {
	switch i {
	case fieldCardNumber:
		return service.FormatCardNumber(raw)
	case fieldExpiry:
		return service.FormatExpiry(raw)
	default:
		return service.SanitizeCVC(raw)
	}
}

func (f cardForm) view() string {
	lines := make([]string, 0, fieldCount)
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	return strings.Join(lines, "\n")
}
