package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/tui"
)

func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive bookmark list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd)
		},
	}
}

func runUI(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI: log to SHELF_LOG_FILE or nowhere.
	log := logger.NewNop()
	if cfg.LogFile != "" {
		log = logger.NewWithOutput(cfg.LogLevel, false, cfg.LogFile)
	}
	defer func() { _ = log.Sync() }()

	s, err := app.NewSession(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return tui.Run(cmd.Context(), s.State, s.Owner, s.Refresher)
}
