package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(13)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func (m model) View() string {
	var b strings.Builder

	if m.mode == modeForm {
		b.WriteString(m.formView())
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	b.WriteString(m.statusLine())

	help := "[j/k]nav [a]dd [d]elete [r]efresh [o]pen [q]uit"
	if m.mode == modeForm {
		help = "[tab]next field [enter]save [esc]cancel"
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m model) formView() string {
	labels := [fieldCount]string{"Title", "URL", "Description"}
	rows := make([]string, 0, fieldCount+1)
	rows = append(rows, okStyle.Render("New bookmark"))
	for i, in := range m.form.inputs {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(labels[i]), in.View()))
	}
	return formStyle.Render(strings.Join(rows, "\n"))
}

// statusLine shows the spinner while busy, then the current notice.
func (m model) statusLine() string {
	var parts []string
	switch {
	case m.snap.Loading:
		parts = append(parts, m.spinner.View()+" Loading bookmarks...")
	case m.saving || m.snap.Submitting:
		parts = append(parts, m.spinner.View()+" Saving...")
	}
	if m.notice.text != "" {
		style := okStyle
		if m.notice.isErr {
			style = errStyle
		}
		parts = append(parts, style.Render(m.notice.text))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "  ") + "\n"
}
