// Package cli holds the cobra commands of the shelf binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

type rootOptions struct {
	configFile string
	backend    string
	owner      string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "shelf",
		Short:         "Per-owner bookmark manager",
		Long:          "Save, list and delete bookmarks against a shared store, from a TUI, the command line or an HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.export()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: ~/.config/shelf/config.yaml)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "Store backend: memory, redis, sqlite or remote")
	root.PersistentFlags().StringVar(&opts.owner, "owner", "", "Owner id used for bookmark operations")

	root.AddCommand(
		newServeCmd(),
		newUICmd(),
		newListCmd(),
		newAddCmd(),
		newRmCmd(),
		newImportCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// export maps flags onto SHELF_* variables so config.Load sees them with
// the same precedence as the environment.
func (o *rootOptions) export() {
	for key, val := range map[string]string{
		"SHELF_CONFIG":        o.configFile,
		"SHELF_STORE_BACKEND": o.backend,
		"SHELF_OWNER":         o.owner,
	} {
		if val != "" {
			_ = os.Setenv(key, val)
		}
	}
}

func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid configuration: %v", r)
		}
	}()
	return config.Load(), nil
}

func newLogger(cfg *config.Config) logger.Logger {
	if cfg.LogFile != "" {
		return logger.NewWithOutput(cfg.LogLevel, false, cfg.LogFile)
	}
	return logger.New(cfg.LogLevel, cfg.PrettyLog)
}
