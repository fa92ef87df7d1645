// Package cli wires the cobra command tree. The bare command launches
// the TUI; subcommands cover the headless paths (webhook dispatch,
// reports, export).
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/institutofocos/consultorpro-sub003/internal/config"
	"github.com/institutofocos/consultorpro-sub003/internal/store"
	"github.com/institutofocos/consultorpro-sub003/internal/tui"
)

var (
	configPath string
	dbPath     string
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "consultorpro",
		Short: "Consultancy project and work-time tracker",
		Long: `consultorpro tracks clients, projects, stages and the time spent on
them. Stage timers write an auditable session ledger, and every
transition is queued for webhook delivery.

Run without arguments to open the TUI.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/consultorpro/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to database file (overrides config)")

	rootCmd.AddCommand(newDispatchCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newInitConfigCommand())

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config and opens the store, honoring the flag
// precedence --db > config file > default location.
func setup() (*config.Config, *store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	path := dbPath
	if path == "" {
		path = cfg.DatabasePath
	}
	if path == "" {
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
	}

	s, err := store.New(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, s, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, s, err := setup()
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(s, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func newInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write an annotated sample config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}
