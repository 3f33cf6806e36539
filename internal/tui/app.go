package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/state"
)

const noticeTTL = 4 * time.Second

// Refresh triggers a background reload of the list.
type Refresh interface {
	Trigger() bool
}

type mode int

const (
	modeList mode = iota
	modeForm
)

type model struct {
	ctx     context.Context
	state   *state.State
	owner   string
	refresh Refresh

	snap    state.Snapshot
	mode    mode
	list    list.Model
	spinner spinner.Model
	form    form
	notice  notice
	saving  bool // a create was sent and its createdMsg has not arrived
	width   int
	height  int
}

type notice struct {
	text  string
	isErr bool
	seq   int
}

type bookmarkItem struct {
	bookmark domain.Bookmark
	pending  bool
}

func (b bookmarkItem) Title() string {
	if b.pending {
		return b.bookmark.Title + " (deleting...)"
	}
	return b.bookmark.Title
}

func (b bookmarkItem) Description() string {
	line := b.bookmark.Host()
	if d := b.bookmark.CreatedDate(); d != "" {
		line += " · " + d
	}
	if desc := b.bookmark.DescriptionText(); desc != "" {
		line += " · " + truncate(desc, 80)
	}
	return line
}

func (b bookmarkItem) FilterValue() string {
	return b.bookmark.Title + " " + b.bookmark.URL
}

// Messages

type snapshotMsg state.Snapshot

type loadedMsg struct{ err error }

type createdMsg struct{ err error }

type deletedMsg struct{ err error }

type clearNoticeMsg struct{ seq int }

func newModel(ctx context.Context, st *state.State, owner string, refresh Refresh) model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Shelf"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return model{
		ctx:     ctx,
		state:   st,
		owner:   owner,
		refresh: refresh,
		snap:    st.Snapshot(),
		list:    l,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		form:    newForm(),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-6, 1))
		m.form.setWidth(msg.Width - 20)
		return m, nil

	case snapshotMsg:
		m.apply(state.Snapshot(msg))
		return m, nil

	case loadedMsg:
		m.apply(m.state.Snapshot())
		if msg.err != nil {
			return m, m.setNotice(domain.UserMessage(msg.err), true)
		}
		return m, nil

	case createdMsg:
		m.saving = false
		m.apply(m.state.Snapshot())
		if msg.err != nil {
			// Keep the fields so the user can fix them.
			return m, m.setNotice(domain.UserMessage(msg.err), true)
		}
		m.form.reset()
		m.mode = modeList
		return m, m.setNotice("Bookmark added successfully", false)

	case deletedMsg:
		m.apply(m.state.Snapshot())
		if errors.Is(msg.err, state.ErrDeletePending) {
			return m, nil
		}
		if msg.err != nil {
			return m, m.setNotice(domain.UserMessage(msg.err), true)
		}
		return m, m.setNotice("Bookmark removed successfully", false)

	case clearNoticeMsg:
		if msg.seq == m.notice.seq {
			m.notice.text = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "a":
		m.mode = modeForm
		return m, m.form.focus(0)
	case "d":
		item, ok := m.list.SelectedItem().(bookmarkItem)
		if !ok || m.snap.IsPending(item.bookmark.ID) {
			return m, nil
		}
		return m, m.deleteCmd(item.bookmark.ID)
	case "r":
		if m.refresh != nil && !m.refresh.Trigger() {
			return m, m.setNotice("Refresh already in progress", false)
		}
		return m, nil
	case "o":
		if item, ok := m.list.SelectedItem().(bookmarkItem); ok {
			if err := openBrowser(item.bookmark.URL); err != nil {
				return m, m.setNotice("Could not open browser", true)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.form.blur()
		return m, nil
	case "enter":
		if m.saving || m.snap.Submitting {
			return m, nil
		}
		m.saving = true
		title, url, desc := m.form.values()
		return m, m.createCmd(title, url, desc)
	case "tab", "down":
		return m, m.form.focus(m.form.focused + 1)
	case "shift+tab", "up":
		return m, m.form.focus(m.form.focused - 1)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m model) createCmd(title, url, description string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.state.Create(m.ctx, title, url, description, m.owner)
		return createdMsg{err: err}
	}
}

func (m model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{err: m.state.Delete(m.ctx, id, m.owner)}
	}
}

// apply re-renders the list from a snapshot, keeping the cursor in range.
func (m *model) apply(snap state.Snapshot) {
	m.snap = snap
	items := make([]list.Item, 0, len(snap.Bookmarks))
	for _, b := range snap.Bookmarks {
		items = append(items, bookmarkItem{bookmark: b, pending: snap.IsPending(b.ID)})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

func (m *model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice.seq++
	m.notice.text = text
	m.notice.isErr = isErr
	seq := m.notice.seq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
