package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldTitle = iota
	fieldURL
	fieldDescription
	fieldCount
)

// form is the add-bookmark form: title, url, description.
type form struct {
	inputs  []textinput.Model
	focused int
}

func newForm() form {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 2048
		ti.Width = 60
		inputs[i] = ti
	}
	inputs[fieldTitle].Placeholder = "Title"
	inputs[fieldTitle].CharLimit = 256
	inputs[fieldURL].Placeholder = "https://..."
	inputs[fieldDescription].Placeholder = "Description (optional)"
	return form{inputs: inputs}
}

// focus moves the cursor to field i, wrapping around.
func (f *form) focus(i int) tea.Cmd {
	f.focused = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focused].Focus()
}

func (f *form) blur() {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
}

func (f *form) reset() {
	for j := range f.inputs {
		f.inputs[j].Reset()
	}
	f.blur()
	f.focused = fieldTitle
}

func (f *form) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	for j := range f.inputs {
		f.inputs[j].Width = w
	}
}

func (f form) values() (title, url, description string) {
	return f.inputs[fieldTitle].Value(), f.inputs[fieldURL].Value(), f.inputs[fieldDescription].Value()
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return f, cmd
}
