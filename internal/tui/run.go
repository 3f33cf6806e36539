package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/state"
)

// Run starts the TUI for owner. The refresher performs the initial load;
// its results and every state change are forwarded to the program.
func Run(ctx context.Context, st *state.State, owner string, refresher *scheduler.Refresher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(ctx, st, owner, refresher), tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := st.OnChange(func(s state.Snapshot) { p.Send(snapshotMsg(s)) })
	defer unsubscribe()

	refresher.OnResult(func(err error) { p.Send(loadedMsg{err: err}) })
	refresher.Start(ctx)
	defer refresher.Stop()

	_, err := p.Run()
	return err
}
