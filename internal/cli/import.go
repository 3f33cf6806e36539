package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/sources/homepage"
)

func newImportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a Homepage bookmarks.yaml or services.yaml",
		Long:  "Create one bookmark per link of a Homepage (gethomepage.dev) config file. Invalid entries are reported and skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := homepage.NewLoader(args[0]).Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, e := range entries {
					fmt.Fprintf(out, "%s\t%s\t%s\n", e.Group, e.Title, e.URL)
				}
				return nil
			}

			s, log, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			var added, skipped int
			for _, e := range entries {
				if _, err := s.State.Create(cmd.Context(), e.Title, e.URL, e.Description, s.Owner); err != nil {
					skipped++
					fmt.Fprintf(out, "skipped %q: %s\n", e.Title, domain.UserMessage(err))
					if !domain.IsValidation(err, "") {
						log.Warn("import entry failed", logger.String("title", e.Title), logger.Error(err))
					}
					continue
				}
				added++
			}

			fmt.Fprintf(out, "Imported %d bookmarks (%d skipped)\n", added, skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the entries without saving them")
	return cmd
}
