package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// openSession loads config and opens a session for one-shot commands.
// Logs go to stderr at warn level unless SHELF_LOG_LEVEL asks for more.
func openSession(cmd *cobra.Command) (*app.Session, logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogLevel == "info" {
		cfg.LogLevel = "warn"
	}
	log := newLogger(cfg)

	s, err := app.NewSession(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return s, log, nil
}

func newListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your bookmarks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.Load(cmd.Context()); err != nil {
				return errors.New(domain.UserMessage(err))
			}

			rows := s.State.Snapshot().Bookmarks
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), rows)
			}
			outputDefault(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func newAddCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			row, err := s.State.Create(cmd.Context(), title, args[0], description, s.Owner)
			if err != nil {
				return errors.New(domain.UserMessage(err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bookmark added successfully: %s (%s)\n", row.Title, row.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Bookmark title (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete one of your bookmarks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			// Load first so the ownership check sees the row.
			if err := s.Load(cmd.Context()); err != nil {
				return errors.New(domain.UserMessage(err))
			}
			if !slices.ContainsFunc(s.State.Snapshot().Bookmarks, func(b domain.Bookmark) bool {
				return b.ID == args[0]
			}) {
				return fmt.Errorf("%s: %s", domain.UserMessage(domain.ErrNotFound), args[0])
			}
			if err := s.State.Delete(cmd.Context(), args[0], s.Owner); err != nil {
				return errors.New(domain.UserMessage(err))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Bookmark removed successfully")
			return nil
		},
	}
}

func outputJSON(w io.Writer, rows []domain.Bookmark) error {
	if rows == nil {
		rows = []domain.Bookmark{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func outputDefault(w io.Writer, rows []domain.Bookmark) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No bookmarks yet.")
		return
	}
	for i, b := range rows {
		fmt.Fprintf(w, "%d. %s  [%s]\n   %s\n", i+1, b.Title, b.ID, b.URL)
		if desc := b.DescriptionText(); desc != "" {
			fmt.Fprintf(w, "   %s\n", desc)
		}
		fmt.Fprintln(w)
	}
}
